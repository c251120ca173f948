package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/leapstack-labs/tablook/pkg/core"
)

// SaveModel stores the semantic model produced by a run.
func (s *SQLiteStore) SaveModel(ctx context.Context, runID string, m *core.SemanticModel) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if m == nil {
		return errors.New("model is nil")
	}

	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	workbookID := ""
	if m.Workbook != nil {
		workbookID = m.Workbook.ID
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO models (run_id, workbook_id, schema_version, datasources, sheets, body)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id) DO UPDATE SET
		   workbook_id = excluded.workbook_id,
		   schema_version = excluded.schema_version,
		   datasources = excluded.datasources,
		   sheets = excluded.sheets,
		   body = excluded.body`,
		runID, workbookID, m.SchemaVersion, len(m.Datasources), len(m.Sheets), string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	return nil
}

// GetModel loads the semantic model stored for a run.
func (s *SQLiteStore) GetModel(ctx context.Context, runID string) (*core.SemanticModel, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM models WHERE run_id = ?`, runID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("model for run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model: %w", err)
	}

	m := &core.SemanticModel{}
	if err := json.Unmarshal([]byte(body), m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return m, nil
}

// SaveReport stores the QA report of a run.
func (s *SQLiteStore) SaveReport(ctx context.Context, runID string, report *core.QAReport) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if report == nil {
		return errors.New("report is nil")
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (run_id, manual_intervention_required, body) VALUES (?, ?, ?)
		 ON CONFLICT (run_id) DO UPDATE SET
		   manual_intervention_required = excluded.manual_intervention_required,
		   body = excluded.body`,
		runID, report.ManualInterventionRequired, string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetReport loads the QA report stored for a run.
func (s *SQLiteStore) GetReport(ctx context.Context, runID string) (*core.QAReport, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE run_id = ?`, runID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report for run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	report := &core.QAReport{}
	if err := json.Unmarshal([]byte(body), report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return report, nil
}
