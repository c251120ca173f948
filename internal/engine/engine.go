// Package engine runs workbook conversions.
// It reads the workbook, assembles the semantic model, derives the QA
// baseline and records the run in the state store when one is configured.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/leapstack-labs/tablook/internal/assemble"
	"github.com/leapstack-labs/tablook/internal/qa"
	"github.com/leapstack-labs/tablook/internal/state"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// ErrNoStore is returned by history operations on an engine without a state store.
var ErrNoStore = errors.New("no state store configured")

// Engine converts workbooks.
type Engine struct {
	logger   *slog.Logger
	store    *state.SQLiteStore
	reviewer *qa.Reviewer
	parallel bool
	reuse    bool
}

// Config holds engine configuration.
type Config struct {
	// StatePath is the path to the SQLite state database. Empty disables persistence.
	StatePath string
	// Parallel runs the extractors concurrently.
	Parallel bool
	// ReuseRuns returns the stored result of a completed run with the same content hash.
	ReuseRuns bool
	// QA configures the rules behind the QA report (optional)
	QA *qa.AnalyzerConfig
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Source is a workbook to convert. When Data is nil it is read from Path.
type Source struct {
	Path string
	Data []byte
}

// Result is the outcome of one conversion.
type Result struct {
	// RunID is empty when the engine has no store.
	RunID string
	// Reused is set when the result was loaded from a previous run.
	Reused   bool
	Model    *core.SemanticModel
	Findings []core.Finding
	Report   *core.QAReport
	Duration time.Duration
}

// New creates an engine, opening and migrating the state store if configured.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Engine{
		logger:   logger,
		reviewer: qa.NewReviewer(qa.NewAnalyzer(cfg.QA), logger),
		parallel: cfg.Parallel,
		reuse:    cfg.ReuseRuns,
	}

	if cfg.StatePath != "" {
		logger.Debug("initializing engine", "state_path", cfg.StatePath)
		store := state.NewSQLiteStore(logger)
		if err := store.Open(cfg.StatePath); err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize state schema: %w", err)
		}
		e.store = store
	}
	return e, nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Store returns the state store, or nil when persistence is disabled.
func (e *Engine) Store() *state.SQLiteStore {
	return e.store
}

// ContentHash returns the hex SHA-256 of workbook bytes.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Convert converts one workbook. A malformed document is returned as
// *rawdoc.MalformedDocumentError wrapped with the source path.
func (e *Engine) Convert(ctx context.Context, src Source) (*Result, error) {
	start := time.Now()
	data := src.Data
	if data == nil {
		var err error
		data, err = os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read workbook: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := ContentHash(data)
	e.logger.Info("converting workbook", "source", src.Path, "bytes", len(data))

	if e.store != nil && e.reuse {
		res, err := e.reuseRun(ctx, hash)
		if err != nil {
			return nil, err
		}
		if res != nil {
			res.Duration = time.Since(start)
			e.logger.Info("reused previous run", "run_id", res.RunID, "source", src.Path)
			return res, nil
		}
	}

	var run *state.Run
	if e.store != nil {
		var err error
		run, err = e.store.CreateRun(ctx, src.Path, hash)
		if err != nil {
			return nil, fmt.Errorf("failed to create run: %w", err)
		}
	}

	res, err := e.convert(ctx, data)
	if err != nil {
		if run != nil {
			_ = e.store.CompleteRun(ctx, run.ID, state.RunStatusFailed, err.Error())
		}
		e.logger.Info("conversion failed", "source", src.Path, "error", err.Error())
		return nil, fmt.Errorf("%s: %w", displayName(src), err)
	}

	if run != nil {
		res.RunID = run.ID
		if err := e.persist(ctx, run.ID, res); err != nil {
			_ = e.store.CompleteRun(ctx, run.ID, state.RunStatusFailed, err.Error())
			return nil, err
		}
		if err := e.store.CompleteRun(ctx, run.ID, state.RunStatusCompleted, ""); err != nil {
			return nil, fmt.Errorf("failed to complete run: %w", err)
		}
	}

	res.Duration = time.Since(start)
	e.logger.Info("conversion completed",
		"source", src.Path,
		"run_id", res.RunID,
		"findings", len(res.Findings),
		"manual_intervention", res.Report.ManualInterventionRequired,
		"duration", res.Duration)
	return res, nil
}

func (e *Engine) convert(ctx context.Context, data []byte) (*Result, error) {
	m, findings, err := assemble.Parse(data,
		assemble.WithParallel(e.parallel),
		assemble.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	report, err := e.reviewer.ReviewFindings(ctx, nil, m, findings)
	if err != nil {
		return nil, fmt.Errorf("qa review failed: %w", err)
	}
	return &Result{Model: m, Findings: findings, Report: report}, nil
}

func (e *Engine) persist(ctx context.Context, runID string, res *Result) error {
	if err := e.store.SaveModel(ctx, runID, res.Model); err != nil {
		return err
	}
	if err := e.store.SaveFindings(ctx, runID, res.Findings); err != nil {
		return err
	}
	return e.store.SaveReport(ctx, runID, res.Report)
}

func (e *Engine) reuseRun(ctx context.Context, hash string) (*Result, error) {
	run, err := e.store.FindRunByHash(ctx, hash)
	if err != nil || run == nil {
		return nil, err
	}
	res, err := e.LoadRun(ctx, run.ID)
	if err != nil {
		// A completed run with missing artifacts is converted again.
		if errors.Is(err, state.ErrNotFound) {
			e.logger.Debug("stored run is incomplete", "run_id", run.ID)
			return nil, nil
		}
		return nil, err
	}
	// Rebuild the report so the current QA configuration applies.
	res.Report, err = e.reviewer.ReviewFindings(ctx, nil, res.Model, res.Findings)
	if err != nil {
		return nil, fmt.Errorf("qa review failed: %w", err)
	}
	res.Reused = true
	return res, nil
}

// LoadRun loads the stored result of a run.
func (e *Engine) LoadRun(ctx context.Context, runID string) (*Result, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	m, err := e.store.GetModel(ctx, runID)
	if err != nil {
		return nil, err
	}
	findings, err := e.store.ListFindings(ctx, runID)
	if err != nil {
		return nil, err
	}
	report, err := e.store.GetReport(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &Result{RunID: runID, Model: m, Findings: findings, Report: report}, nil
}

// Runs lists recorded runs, most recent first.
func (e *Engine) Runs(ctx context.Context, limit int) ([]*state.Run, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.ListRuns(ctx, limit)
}

func displayName(src Source) string {
	if src.Path == "" {
		return "workbook"
	}
	return src.Path
}

// Run returns a recorded run.
func (e *Engine) Run(ctx context.Context, runID string) (*state.Run, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.GetRun(ctx, runID)
}
