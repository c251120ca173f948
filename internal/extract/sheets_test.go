package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tablook/pkg/core"
)

// rolesOf builds a role lookup from extracted fields.
func rolesOf(fields []core.Field) func(string) core.Role {
	roles := make(map[string]core.Role, len(fields))
	for _, f := range fields {
		roles[f.ID] = f.Role
	}
	return func(id string) core.Role {
		if r, ok := roles[id]; ok {
			return r
		}
		return core.RoleUnknown
	}
}

func TestSheets_Superstore(t *testing.T) {
	root := loadFixture(t, "superstore.twb")
	drafts := Sheets(root)
	require.Len(t, drafts, 5)
	roleOf := rolesOf(Fields(root)[1].Fields)

	t.Run("time series with area mark", func(t *testing.T) {
		d := drafts[0]
		assert.Equal(t, "Sales Trend", d.Sheet.ID)
		assert.Equal(t, "federated.orders", d.Sheet.DatasourceID)
		assert.Equal(t, str("Monthly Sales"), d.Sheet.Description)
		assert.Equal(t, []string{"Sales", "Order Date"}, d.Sheet.UsedFieldIDs)
		assert.Equal(t, "Order Date", d.Hints.TimeField)
		assert.Equal(t, "month", d.Hints.TimeBucket)
		assert.Equal(t, "area", d.Hints.MarkClass)

		viz := d.Visualize(roleOf).Visualization
		require.NotNil(t, viz)
		assert.Equal(t, core.ChartArea, viz.ChartType)
		assert.Equal(t, str("Order Date"), viz.PrimaryDimensionID)
		assert.Equal(t, []string{"Sales"}, viz.PrimaryMeasureIDs)
		assert.Empty(t, viz.SplitByDimensionIDs)
		assert.Equal(t, str("month"), viz.Granularity)
		assert.Nil(t, viz.SortOrder)
	})

	t.Run("bar with filters and sort", func(t *testing.T) {
		d := drafts[1]
		assert.Equal(t, []string{"Region", "Sales"}, d.Sheet.UsedFieldIDs)
		assert.Empty(t, d.Hints.MarkClass, "automatic marks carry no hint")
		assert.Nil(t, d.Sheet.Description)

		require.Len(t, d.Sheet.Filters, 3)
		assert.Equal(t, core.SheetFilter{
			FieldID:    "Region",
			Expression: `[Region] IN ("East", "West")`,
			AppliedTo:  core.ScopeRows,
		}, d.Sheet.Filters[0])
		assert.Equal(t, core.SheetFilter{
			FieldID:    "Profit",
			Expression: "[Profit] >= 0",
			AppliedTo:  core.ScopeTable,
		}, d.Sheet.Filters[1])
		assert.Equal(t, core.SheetFilter{
			FieldID:    core.UnresolvedRef("not a reference"),
			Expression: "categorical",
			AppliedTo:  core.ScopeUnknown,
		}, d.Sheet.Filters[2])

		viz := d.Visualize(roleOf).Visualization
		assert.Equal(t, core.ChartBar, viz.ChartType)
		assert.Equal(t, str("Region"), viz.PrimaryDimensionID)
		assert.Equal(t, str("category"), viz.Granularity)
		assert.Equal(t, str("by_Sales_desc"), viz.SortOrder)
	})

	t.Run("single value from encodings", func(t *testing.T) {
		d := drafts[2]
		assert.Equal(t, []string{"Sales"}, d.Sheet.UsedFieldIDs)
		viz := d.Visualize(roleOf).Visualization
		assert.Equal(t, core.ChartSingleValue, viz.ChartType)
		assert.Nil(t, viz.PrimaryDimensionID)
		assert.Nil(t, viz.Granularity)
	})

	t.Run("mixed shelves", func(t *testing.T) {
		d := drafts[3]
		assert.Equal(t, []string{
			"Region", "Order ID", "Sales", "federated.customsql.TOTAL", "Returned",
		}, d.Sheet.UsedFieldIDs)
		require.Len(t, d.Sheet.Filters, 1)
		assert.Equal(t, "Order Date", d.Sheet.Filters[0].FieldID)
		assert.Equal(t, "RELATIVE_DATE([Order Date], 'month', -3, 0)", d.Sheet.Filters[0].Expression)
		assert.Equal(t, core.ScopeTable, d.Sheet.Filters[0].AppliedTo)

		// Fields without a role do not shape the chart.
		viz := d.Visualize(roleOf).Visualization
		assert.Equal(t, core.ChartBar, viz.ChartType)
		assert.Equal(t, []string{"Sales"}, viz.PrimaryMeasureIDs)
	})

	t.Run("empty worksheet", func(t *testing.T) {
		d := drafts[4]
		assert.Equal(t, "Empty", d.Sheet.ID)
		assert.Empty(t, d.Sheet.DatasourceID)
		assert.NotNil(t, d.Sheet.UsedFieldIDs)
		assert.Empty(t, d.Sheet.UsedFieldIDs)
		assert.NotNil(t, d.Sheet.Filters)

		viz := d.Visualize(roleOf).Visualization
		assert.Equal(t, core.ChartUnknown, viz.ChartType)
		assert.NotNil(t, viz.PrimaryMeasureIDs)
		assert.NotNil(t, viz.SplitByDimensionIDs)
	})
}

func TestSheets_UnnamedWorksheet(t *testing.T) {
	drafts := Sheets(parse(t, `<workbook><worksheets><worksheet /><worksheet /></worksheets></workbook>`))
	require.Len(t, drafts, 2)
	assert.Equal(t, "sheet_1", drafts[0].Sheet.ID)
	assert.Equal(t, "sheet_2", drafts[1].Sheet.Name)
}

func TestChartType(t *testing.T) {
	tests := []struct {
		name     string
		measures int
		dims     int
		timed    bool
		want     core.ChartType
	}{
		{"nothing", 0, 0, false, core.ChartUnknown},
		{"time series", 1, 1, true, core.ChartLine},
		{"category", 1, 1, false, core.ChartBar},
		{"two measures", 2, 0, false, core.ChartScatter},
		{"one measure", 1, 0, false, core.ChartSingleValue},
		{"dimension only", 0, 1, false, core.ChartTable},
		{"crosstab", 2, 2, false, core.ChartTable},
		{"three measures", 3, 0, false, core.ChartTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chartType(tt.measures, tt.dims, tt.timed))
		})
	}
}

func TestVisualize_SplitBy(t *testing.T) {
	d := SheetDraft{
		Sheet: core.Sheet{ID: "s", UsedFieldIDs: []string{"Region", "Sales", "Segment", "Profit"}},
		Hints: VisualHints{MarkClass: "pie"},
	}
	roles := map[string]core.Role{
		"Region": core.RoleDimension, "Segment": core.RoleDimension,
		"Sales": core.RoleMeasure, "Profit": core.RoleMeasure,
	}
	viz := d.Visualize(func(id string) core.Role { return roles[id] }).Visualization
	assert.Equal(t, core.ChartTable, viz.ChartType)
	assert.Equal(t, str("Region"), viz.PrimaryDimensionID)
	assert.Equal(t, []string{"Segment"}, viz.SplitByDimensionIDs)
	assert.Equal(t, []string{"Sales", "Profit"}, viz.PrimaryMeasureIDs)

	pie := SheetDraft{
		Sheet: core.Sheet{UsedFieldIDs: []string{"Region", "Sales"}},
		Hints: VisualHints{MarkClass: "pie"},
	}
	assert.Equal(t, core.ChartPie, pie.Visualize(func(id string) core.Role { return roles[id] }).Visualization.ChartType)
}
