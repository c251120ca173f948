package qa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tablook/internal/testutil"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// brokenModel has exactly one problem per built-in rule, except QK02 which
// depends on the configured threshold.
func brokenModel() *core.SemanticModel {
	m := core.NewSemanticModel()
	m.Workbook = core.DefaultWorkbook()
	m.Datasources = []core.Datasource{
		{
			ID:         "ds.sql",
			Connection: core.Connection{Type: core.ConnectionCustomSQL},
			Tables:     []core.Table{{ID: "Custom SQL Query", IsPrimary: true}},
			Fields: []core.Field{
				{ID: "amount", Role: core.RoleMeasure, Datatype: core.DataTypeNumber, Source: core.SourceColumn,
					TableID: core.OptString(core.UnresolvedRef("Ghost"))},
				{ID: "odd", Role: core.RoleUnknown, Datatype: core.DataTypeUnknown, Source: core.SourceColumn},
			},
		},
		{
			ID:         "ds.joined",
			Connection: core.Connection{Type: core.ConnectionTable},
			Tables:     []core.Table{{ID: "orders", IsPrimary: true}, {ID: "items"}},
			Joins: []core.Join{
				{ID: "join_1", LeftTableID: "orders", RightTableID: core.UnresolvedRef("Ghost"),
					JoinType: core.JoinInner, NeedsManualReview: true},
			},
		},
		{ID: "ds.unknown", Connection: core.Connection{Type: core.ConnectionUnknown}},
		{ID: "Parameters", Connection: core.Connection{Type: core.ConnectionUnknown}},
	}
	m.Calculations = []core.Calculation{
		{ID: "Calculation_1", DatasourceID: "ds.sql", Expression: "[a]", Category: core.CategoryUnknown, ComplexityScore: 0.1},
		{ID: "Calculation_2", DatasourceID: "ds.sql", Expression: "WINDOW_SUM(SUM([a]))",
			Category: core.CategoryTableCalc, ComplexityScore: 0.8},
	}
	m.Sheets = []core.Sheet{
		{
			ID: "Orphan", DatasourceID: core.UnresolvedRef("gone"), UsedFieldIDs: []string{},
			Visualization: &core.SheetVisualization{ChartType: core.ChartUnknown},
		},
		{
			ID: "Broken", DatasourceID: "ds.sql",
			UsedFieldIDs: []string{"odd", core.UnresolvedRef("missing")},
			Filters:      []core.SheetFilter{{FieldID: core.UnresolvedRef("x"), AppliedTo: core.ScopeTable}},
			Visualization: &core.SheetVisualization{ChartType: core.ChartUnknown},
		},
		{
			ID: "Fine", DatasourceID: "ds.sql", UsedFieldIDs: []string{"amount"},
			Visualization: &core.SheetVisualization{ChartType: core.ChartBar},
		},
	}
	return m
}

func rulesOf(findings []core.Finding) map[string]int {
	out := make(map[string]int)
	for _, f := range findings {
		out[f.Rule]++
	}
	return out
}

func TestRegistry_BuiltinRules(t *testing.T) {
	rules := GetAll()
	require.Len(t, rules, 12)
	for i := 1; i < len(rules); i++ {
		assert.Less(t, rules[i-1].ID, rules[i].ID)
	}

	rule, ok := GetByID("QJ01")
	require.True(t, ok)
	assert.Equal(t, "join-unresolved-table", rule.Name)
	assert.Equal(t, core.SeverityError, rule.Severity)

	_, ok = GetByID("NOPE")
	assert.False(t, ok)

	sheetRules := GetByGroup("sheet")
	require.Len(t, sheetRules, 2)
	assert.Equal(t, "QS01", sheetRules[0].ID)
	assert.Equal(t, "QS02", sheetRules[1].ID)
}

func TestAnalyzer_Analyze_Empty(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	assert.Empty(t, analyzer.Analyze(nil))
	assert.Empty(t, analyzer.Analyze(core.NewSemanticModel()))
}

func TestAnalyzer_Analyze_BuiltinRules(t *testing.T) {
	findings := NewAnalyzer(nil).Analyze(brokenModel())

	assert.Equal(t, map[string]int{
		"QC01": 1, // ds.unknown only, parameters are exempt
		"QC02": 1,
		"QC03": 1,
		"QJ01": 1,
		"QJ02": 1,
		"QF01": 1,
		"QF02": 1,
		"QF03": 1,
		"QK01": 1,
		"QK02": 1,
		"QS01": 3,
		"QS02": 1,
	}, rulesOf(findings))

	for i, f := range findings {
		rule, ok := GetByID(f.Rule)
		require.True(t, ok, f.Rule)
		assert.Equal(t, rule.Severity, f.Severity, f.Rule)
		if i > 0 {
			assert.LessOrEqual(t, findings[i-1].Severity, f.Severity)
		}
	}
	assert.Equal(t, core.SeverityError, findings[0].Severity)
}

func TestAnalyzer_SheetFindingsSkipUnresolvedDatasource(t *testing.T) {
	findings := NewAnalyzer(nil).Analyze(brokenModel())
	for _, f := range findings {
		if f.EntityID == "Orphan" {
			assert.Equal(t, "QS01", f.Rule)
			assert.Empty(t, f.DatasourceID)
			assert.Contains(t, f.Message, `"gone"`)
		}
	}
}

func TestAnalyzer_DisableRule(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	analyzer.Disable("QS01")
	analyzer.Disable("QK02")

	counts := rulesOf(analyzer.Analyze(brokenModel()))
	assert.NotContains(t, counts, "QS01")
	assert.NotContains(t, counts, "QK02")

	analyzer.Enable("QS01")
	counts = rulesOf(analyzer.Analyze(brokenModel()))
	assert.Equal(t, 3, counts["QS01"])
}

func TestAnalyzer_SeverityOverride(t *testing.T) {
	cfg := NewAnalyzerConfig()
	cfg.SeverityOverrides["QF02"] = core.SeverityError

	for _, f := range NewAnalyzer(cfg).Analyze(brokenModel()) {
		if f.Rule == "QF02" {
			assert.Equal(t, core.SeverityError, f.Severity)
		}
	}
}

func TestAnalyzer_ComplexityThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      int
	}{
		{"default", DefaultComplexityThreshold, 1},
		{"low", 0.05, 2},
		{"above max", 1.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewAnalyzerConfig()
			cfg.ComplexityThreshold = tt.threshold
			counts := rulesOf(NewAnalyzer(cfg).Analyze(brokenModel()))
			assert.Equal(t, tt.want, counts["QK02"])
		})
	}
}

// buildFindings mimics what the assembler reports for brokenModel.
func buildFindings() []core.Finding {
	return []core.Finding{
		{Kind: core.FindingUnresolved, Severity: core.SeverityWarning, DatasourceID: "ds.sql",
			Entity: core.EntityCalculation, EntityID: "Calculation_1", Message: "reference [Ghost] does not resolve"},
		{Kind: core.FindingReview, Severity: core.SeverityWarning, DatasourceID: "ds.sql",
			Entity: core.EntityCalculation, EntityID: "Calculation_2", Message: "calculations depend on each other"},
		{Kind: core.FindingReview, Severity: core.SeverityWarning, DatasourceID: "ds.joined",
			Entity: core.EntityTable, EntityID: "items", Message: "table is not joined to primary table"},
		// Restates QF02 on the same field.
		{Kind: core.FindingAmbiguous, Severity: core.SeverityInfo, DatasourceID: "ds.sql",
			Entity: core.EntityField, EntityID: "odd", Message: "role is neither dimension nor measure"},
	}
}

func TestAnalyzer_Merge(t *testing.T) {
	t.Run("adds build findings no rule covers", func(t *testing.T) {
		a := NewAnalyzer(nil)
		rules := a.Analyze(brokenModel())
		merged := a.Merge(brokenModel(), buildFindings())

		assert.Len(t, merged, len(rules)+3)
		counts := rulesOf(merged)
		assert.Equal(t, 3, counts[""])
		delete(counts, "")
		assert.Equal(t, rulesOf(rules), counts)
		for i := 1; i < len(merged); i++ {
			assert.LessOrEqual(t, merged[i-1].Severity, merged[i].Severity)
		}
	})

	t.Run("complexity does not hide a dependency cycle", func(t *testing.T) {
		merged := NewAnalyzer(nil).Merge(brokenModel(), buildFindings())
		var messages []string
		for _, f := range merged {
			if f.EntityID == "Calculation_2" {
				messages = append(messages, f.Message)
			}
		}
		assert.Contains(t, messages, "calculations depend on each other")
		assert.Len(t, messages, 2)
	})

	t.Run("disabled rule silences what it covers", func(t *testing.T) {
		a := NewAnalyzer(nil)
		a.Disable("QF02")
		for _, f := range a.Merge(brokenModel(), buildFindings()) {
			assert.NotEqual(t, "role is neither dimension nor measure", f.Message)
		}
	})

	t.Run("nil model keeps build findings", func(t *testing.T) {
		merged := NewAnalyzer(nil).Merge(nil, buildFindings())
		assert.Len(t, merged, 4)
	})
}

func TestReviewer_ReviewFindings(t *testing.T) {
	m := core.NewSemanticModel()
	m.Workbook = core.DefaultWorkbook()
	build := buildFindings()[:1]

	report, err := NewReviewer(nil, testutil.NewTestLogger(t)).ReviewFindings(context.Background(), nil, m, build)
	require.NoError(t, err)
	assert.True(t, report.ManualInterventionRequired)
	assert.Equal(t, []string{build[0].Reason()}, report.Reasons)
	require.NotNil(t, report.Notes)
	assert.Equal(t, "1 warning", *report.Notes)
}

func TestReviewer_Review(t *testing.T) {
	r := NewReviewer(nil, testutil.NewTestLogger(t))
	project := &core.LookMLProject{
		DashboardFiles: []core.LookMLFile{{Filename: "sales.dashboard.lookml"}},
	}

	report, err := r.Review(context.Background(), project, brokenModel())
	require.NoError(t, err)

	assert.True(t, report.ManualInterventionRequired)
	require.NotEmpty(t, report.Reasons)
	assert.Contains(t, report.Reasons[0], "[QJ01]")
	require.NotNil(t, report.Notes)
	assert.Contains(t, *report.Notes, "2 error")

	s := report.DashboardSummary
	require.NotNil(t, s)
	assert.Equal(t, 3, s.TotalSheets)
	assert.Equal(t, 1, s.TilesCreated)
	assert.Equal(t, map[string]int{"bar": 1}, s.TilesByType)
	assert.Equal(t, 1, s.DashboardsCreated)
}

func TestReviewer_CleanModel(t *testing.T) {
	m := core.NewSemanticModel()
	m.Workbook = core.DefaultWorkbook()

	report, err := NewReviewer(nil, nil).Review(context.Background(), nil, m)
	require.NoError(t, err)
	assert.False(t, report.ManualInterventionRequired)
	assert.Empty(t, report.Reasons)
	assert.Nil(t, report.Notes)
	assert.Equal(t, 0, report.DashboardSummary.TotalSheets)
}

func TestReviewer_Errors(t *testing.T) {
	r := NewReviewer(nil, nil)

	_, err := r.Review(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNothingToReview)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Review(ctx, nil, brokenModel())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReport_InfoOnlyNeedsNoIntervention(t *testing.T) {
	findings := []core.Finding{
		{Kind: core.FindingAmbiguous, Severity: core.SeverityInfo, Entity: core.EntityField, EntityID: "x", Message: "role is unknown"},
		{Kind: core.FindingReview, Severity: core.SeverityHint, Entity: core.EntityCalculation, EntityID: "c", Message: "complex"},
	}
	report := Report(findings, nil, nil)
	assert.False(t, report.ManualInterventionRequired)
	assert.Len(t, report.Reasons, 2)
	require.NotNil(t, report.Notes)
	assert.Equal(t, "1 info, 1 hint", *report.Notes)
	assert.Equal(t, 0, report.DashboardSummary.TotalSheets)
}
