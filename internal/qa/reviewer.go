package qa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/tablook/pkg/core"
)

// ErrNothingToReview is returned when neither a project nor a model is given.
var ErrNothingToReview = errors.New("qa: nothing to review")

// Reviewer builds QA reports from rule findings.
type Reviewer struct {
	analyzer *Analyzer
	logger   *slog.Logger
}

var _ core.Reviewer = (*Reviewer)(nil)

// NewReviewer creates a reviewer. Nil arguments fall back to a default
// analyzer and a discarding logger.
func NewReviewer(analyzer *Analyzer, logger *slog.Logger) *Reviewer {
	if analyzer == nil {
		analyzer = NewAnalyzer(nil)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reviewer{analyzer: analyzer, logger: logger}
}

// Review implements core.Reviewer.
func (r *Reviewer) Review(ctx context.Context, project *core.LookMLProject, model *core.SemanticModel) (*core.QAReport, error) {
	return r.ReviewFindings(ctx, project, model, nil)
}

// ReviewFindings reviews like Review and also reports the findings raised
// while the model was built.
func (r *Reviewer) ReviewFindings(ctx context.Context, project *core.LookMLProject, model *core.SemanticModel, build []core.Finding) (*core.QAReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if project == nil && model == nil {
		return nil, ErrNothingToReview
	}
	findings := r.analyzer.Merge(model, build)
	report := Report(findings, project, model)
	r.logger.Debug("qa review complete",
		"findings", len(findings),
		"build_findings", len(build),
		"manual_intervention", report.ManualInterventionRequired)
	return report, nil
}

// Report builds a QA report from findings already produced elsewhere.
// Any finding at warning severity or above requires manual intervention.
func Report(findings []core.Finding, project *core.LookMLProject, model *core.SemanticModel) *core.QAReport {
	report := &core.QAReport{
		Reasons:          []string{},
		DashboardSummary: summarize(project, model),
	}
	for _, f := range findings {
		if f.Severity <= core.SeverityWarning {
			report.ManualInterventionRequired = true
		}
		report.Reasons = append(report.Reasons, f.Reason())
	}
	if len(findings) > 0 {
		notes := severityNotes(findings)
		report.Notes = &notes
	}
	return report
}

func summarize(project *core.LookMLProject, model *core.SemanticModel) *core.DashboardSummary {
	s := &core.DashboardSummary{TilesByType: map[string]int{}}
	if project != nil {
		s.DashboardsCreated = len(project.DashboardFiles)
	}
	if model == nil {
		return s
	}
	s.TotalSheets = len(model.Sheets)
	for _, sheet := range model.Sheets {
		if sheet.Visualization == nil || sheet.Visualization.ChartType == core.ChartUnknown {
			continue
		}
		s.TilesCreated++
		s.TilesByType[string(sheet.Visualization.ChartType)]++
	}
	return s
}

// severityNotes renders counts like "1 error, 2 warning".
func severityNotes(findings []core.Finding) string {
	counts := core.CountBySeverity(findings)
	var parts []string
	for _, sev := range []core.Severity{core.SeverityError, core.SeverityWarning, core.SeverityInfo, core.SeverityHint} {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	return strings.Join(parts, ", ")
}
