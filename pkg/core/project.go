package core

import "context"

// LookMLFile is a single generated .lkml file.
type LookMLFile struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// LookMLProject is the in-memory output of the rendering layer, bucketed by file kind.
type LookMLProject struct {
	ModelFiles     []LookMLFile `json:"model_files"`
	ViewFiles      []LookMLFile `json:"view_files"`
	DashboardFiles []LookMLFile `json:"dashboard_files"`
}

// AllFiles returns every file in the fixed order model, view, dashboard.
func (p *LookMLProject) AllFiles() []LookMLFile {
	if p == nil {
		return nil
	}
	files := make([]LookMLFile, 0, len(p.ModelFiles)+len(p.ViewFiles)+len(p.DashboardFiles))
	files = append(files, p.ModelFiles...)
	files = append(files, p.ViewFiles...)
	files = append(files, p.DashboardFiles...)
	return files
}

// Renderer turns a populated semantic model into LookML files.
// Implementations live outside this module.
type Renderer interface {
	Render(ctx context.Context, model *SemanticModel) (*LookMLProject, error)
}

// DashboardSummary is a high-level summary of the dashboard conversion.
type DashboardSummary struct {
	TotalSheets       int            `json:"total_sheets"`
	DashboardsCreated int            `json:"dashboards_created"`
	TilesCreated      int            `json:"tiles_created"`
	TilesByType       map[string]int `json:"tiles_by_type"`
}

// QAReport is the outcome of the QA step, persisted as qa_report.json.
type QAReport struct {
	ManualInterventionRequired bool              `json:"manual_intervention_required"`
	Reasons                    []string          `json:"reasons"`
	DashboardSummary           *DashboardSummary `json:"dashboard_summary"`
	Notes                      *string           `json:"notes"`
}

// Reviewer produces a QA report for a generated project and its source model.
// Either argument may be nil when only one side is available.
type Reviewer interface {
	Review(ctx context.Context, project *LookMLProject, model *SemanticModel) (*QAReport, error)
}
