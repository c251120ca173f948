package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	clitest "github.com/leapstack-labs/tablook/internal/cli/testutil"
	"github.com/leapstack-labs/tablook/pkg/core"
)

func renderFixtureModel() *core.SemanticModel {
	m := core.NewSemanticModel()
	m.Workbook = core.DefaultWorkbook()
	m.Datasources = []core.Datasource{{
		ID:         "ds",
		Name:       "Orders",
		Connection: core.Connection{Type: core.ConnectionTable, Dialect: core.OptString("postgres")},
		Tables: []core.Table{
			{ID: "orders", Name: "orders", IsPrimary: true},
			{ID: "people", Name: "people"},
		},
		Joins: []core.Join{{
			ID: "j1", LeftTableID: "orders", RightTableID: "people",
			JoinType: core.JoinLeft, Condition: "[orders].[region] = [people].[region] | x", NeedsManualReview: true,
		}},
		Fields: []core.Field{{
			ID: "Sales", Name: "Sales", Role: core.RoleMeasure, Datatype: core.DataTypeNumber,
			Source: core.SourceColumn, TableID: core.OptString("orders"),
		}},
	}}
	m.Calculations = []core.Calculation{{
		ID: "c1", Name: "Ratio", DatasourceID: "ds", Expression: "SUM([Sales])\n/ SUM([Profit])",
		Category: core.CategorySimple, ComplexityScore: 0.25,
	}}
	m.Sheets = []core.Sheet{{
		ID: "s1", Name: "Trend", DatasourceID: "ds", UsedFieldIDs: []string{"Sales"},
		Visualization: &core.SheetVisualization{ChartType: core.ChartLine},
	}}
	return m
}

func TestRenderModelSections(t *testing.T) {
	m := renderFixtureModel()

	t.Run("text", func(t *testing.T) {
		tr := clitest.NewTestRendererText()
		renderDatasources(tr.Renderer, m)
		renderFields(tr.Renderer, m)
		renderCalculations(tr.Renderer, m)
		renderSheets(tr.Renderer, m)

		out := clitest.StripANSI(tr.Output())
		assert.Contains(t, out, "Datasources")
		assert.Contains(t, out, "postgres")
		assert.Contains(t, out, "Joins")
		assert.Contains(t, out, "SUM([Sales]) / SUM([Profit])")
		assert.Contains(t, out, "Trend")
		assert.Contains(t, out, "┌")
	})

	t.Run("markdown", func(t *testing.T) {
		tr := clitest.NewTestRendererMarkdown()
		renderDatasources(tr.Renderer, m)
		tr.Println("")
		renderCalculations(tr.Renderer, m)

		out := tr.Output()
		clitest.AssertNoANSI(t, out)
		clitest.AssertValidMarkdown(t, out)
		assert.Contains(t, out, `\| x`)
		assert.Contains(t, out, "| ds | orders | people | left |")
	})
}

func TestRenderFindings(t *testing.T) {
	findings := []core.Finding{
		{Severity: core.SeverityError, Kind: core.FindingUnresolved, DatasourceID: "ds", Entity: core.EntityJoin, EntityID: "j1", Message: "left table missing"},
		{Rule: "QK02", Severity: core.SeverityHint, Kind: core.FindingReview, Entity: core.EntityCalculation, EntityID: "c1", Message: "complex"},
	}

	t.Run("text", func(t *testing.T) {
		tr := clitest.NewTestRendererText()
		renderFindingsText(tr.Renderer, findings)
		out := clitest.StripANSI(tr.Output())
		assert.Contains(t, out, "left table missing")
		assert.Contains(t, out, "QK02")
		assert.Contains(t, out, "2 findings: 1 error, 1 hint")
	})

	t.Run("text empty", func(t *testing.T) {
		tr := clitest.NewTestRendererText()
		renderFindingsText(tr.Renderer, nil)
		assert.Empty(t, tr.Output())
		assert.Contains(t, tr.ErrorOutput(), "No findings")
	})

	t.Run("markdown", func(t *testing.T) {
		tr := clitest.NewTestRendererMarkdown()
		renderFindingsMarkdown(tr.Renderer, findings)
		clitest.AssertValidMarkdown(t, tr.Output())
		assert.Contains(t, tr.Output(), "| error |  | unresolved_reference | ds | join | j1 | left table missing |")
	})
}

func TestFilterFindings(t *testing.T) {
	findings := []core.Finding{
		{Severity: core.SeverityHint}, {Severity: core.SeverityError}, {Severity: core.SeverityInfo},
	}
	assert.Len(t, filterFindings(findings, core.SeverityHint), 3)
	assert.Len(t, filterFindings(findings, core.SeverityInfo), 2)
	assert.Len(t, filterFindings(findings, core.SeverityError), 1)
	assert.NotNil(t, filterFindings(nil, core.SeverityError))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "sales", workbookStem("/tmp/x/sales.twbx"))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "-", joinOrDash(nil))
	assert.Equal(t, "none", severityCounts(nil))
	assert.Equal(t, "abcdef012345", shortHash("abcdef0123456789"))
	assert.Equal(t, "-", formatDuration(0))
}
