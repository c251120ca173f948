package core_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tablook/pkg/core"
)

func TestUnresolvedRef(t *testing.T) {
	ref := core.UnresolvedRef("[Sales].[Region]")
	assert.Equal(t, "unresolved:[Sales].[Region]", ref)
	assert.True(t, core.IsUnresolved(ref))
	assert.Equal(t, "[Sales].[Region]", core.UnresolvedTarget(ref))

	// Marking twice keeps a single prefix.
	assert.Equal(t, ref, core.UnresolvedRef(ref))
	assert.False(t, core.IsUnresolved("[Region]"))
	assert.Equal(t, "[Region]", core.UnresolvedTarget("[Region]"))
}

func TestOptString(t *testing.T) {
	assert.Nil(t, core.OptString(""))
	s := core.OptString("orders")
	require.NotNil(t, s)
	assert.Equal(t, "orders", *s)
	assert.Equal(t, "orders", core.Deref(s))
	assert.Equal(t, "", core.Deref(nil))
}

func TestParseAxes(t *testing.T) {
	tests := []struct {
		in   string
		join core.JoinType
		role core.Role
		typ  core.DataType
	}{
		{in: "inner", join: core.JoinInner, role: core.RoleUnknown, typ: core.DataTypeUnknown},
		{in: " Left ", join: core.JoinLeft, role: core.RoleUnknown, typ: core.DataTypeUnknown},
		{in: "full outer", join: core.JoinFull, role: core.RoleUnknown, typ: core.DataTypeUnknown},
		{in: "dimension", join: core.JoinUnknown, role: core.RoleDimension, typ: core.DataTypeUnknown},
		{in: "MEASURE", join: core.JoinUnknown, role: core.RoleMeasure, typ: core.DataTypeUnknown},
		{in: "real", join: core.JoinUnknown, role: core.RoleUnknown, typ: core.DataTypeNumber},
		{in: "timestamp", join: core.JoinUnknown, role: core.RoleUnknown, typ: core.DataTypeDateTime},
		{in: "bool", join: core.JoinUnknown, role: core.RoleUnknown, typ: core.DataTypeBoolean},
		{in: "", join: core.JoinUnknown, role: core.RoleUnknown, typ: core.DataTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.join, core.ParseJoinType(tt.in))
			assert.Equal(t, tt.role, core.ParseRole(tt.in))
			assert.Equal(t, tt.typ, core.ParseDataType(tt.in))
		})
	}

	assert.True(t, core.ConnectionExtract.Valid())
	assert.False(t, core.ConnectionType("odbc").Valid())
}

func TestSeverity(t *testing.T) {
	assert.True(t, core.SeverityError.AtLeast(core.SeverityWarning))
	assert.True(t, core.SeverityWarning.AtLeast(core.SeverityWarning))
	assert.False(t, core.SeverityHint.AtLeast(core.SeverityInfo))

	sev, ok := core.ParseSeverity("INFO")
	assert.True(t, ok)
	assert.Equal(t, core.SeverityInfo, sev)

	sev, ok = core.ParseSeverity("fatal")
	assert.False(t, ok)
	assert.Equal(t, core.SeverityWarning, sev)

	data, err := json.Marshal(core.Finding{Kind: core.FindingReview, Severity: core.SeverityHint})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"severity":"hint"`)

	var f core.Finding
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, core.SeverityHint, f.Severity)
}

func TestFindings(t *testing.T) {
	findings := []core.Finding{
		{Severity: core.SeverityHint, Entity: core.EntitySheet, EntityID: "b"},
		{Severity: core.SeverityError, DatasourceID: "ds2", Entity: core.EntityField, EntityID: "x"},
		{Severity: core.SeverityHint, Entity: core.EntitySheet, EntityID: "a"},
		{Severity: core.SeverityError, DatasourceID: "ds1", Entity: core.EntityJoin, EntityID: "j"},
	}
	core.SortFindings(findings)

	var order []string
	for _, f := range findings {
		order = append(order, f.EntityID)
	}
	assert.Equal(t, []string{"j", "x", "a", "b"}, order)

	counts := core.CountBySeverity(findings)
	assert.Equal(t, 2, counts[core.SeverityError])
	assert.Equal(t, 2, counts[core.SeverityHint])
	assert.Zero(t, counts[core.SeverityWarning])

	withRule := core.Finding{Rule: "Q001", Entity: core.EntityField, EntityID: "[Profit]", DatasourceID: "ds1", Message: "missing"}
	assert.Equal(t, `[Q001] field "[Profit]" in datasource "ds1": missing`, withRule.Reason())

	bare := core.Finding{Entity: core.EntityWorkbook, EntityID: "wb", Message: "no datasources"}
	assert.Equal(t, `workbook "wb": no datasources`, bare.Reason())
}

func TestLookups(t *testing.T) {
	m := core.NewSemanticModel()
	assert.Equal(t, core.SchemaVersion, m.SchemaVersion)
	assert.NotNil(t, m.Datasources)

	m.Datasources = append(m.Datasources, core.Datasource{
		ID:     "ds1",
		Tables: []core.Table{{ID: "orders", IsPrimary: true}},
		Fields: []core.Field{
			{ID: "[Region]", Name: "Region"},
			{ID: "[Calc_1]", Name: "Calc_1", Caption: core.OptString("Margin")},
		},
	})
	m.Calculations = append(m.Calculations, core.Calculation{ID: "[Calc_1]", DatasourceID: "ds1"})

	ds, ok := m.Datasource("ds1")
	require.True(t, ok)

	f, ok := ds.Field("[Calc_1]")
	require.True(t, ok)
	assert.Equal(t, "Margin", f.Label())

	f, ok = ds.Field("[Region]")
	require.True(t, ok)
	assert.Equal(t, "Region", f.Label())

	_, ok = ds.Field("[Missing]")
	assert.False(t, ok)

	tbl, ok := ds.Table("orders")
	require.True(t, ok)
	assert.True(t, tbl.IsPrimary)

	_, ok = m.Calculation("ds1", "[Calc_1]")
	assert.True(t, ok)
	_, ok = m.Calculation("ds2", "[Calc_1]")
	assert.False(t, ok)
	_, ok = m.Datasource("ds2")
	assert.False(t, ok)
}

func TestLookMLProjectAllFiles(t *testing.T) {
	var nilProject *core.LookMLProject
	assert.Nil(t, nilProject.AllFiles())

	p := &core.LookMLProject{
		ModelFiles:     []core.LookMLFile{{Filename: "m.model.lkml"}},
		ViewFiles:      []core.LookMLFile{{Filename: "a.view.lkml"}, {Filename: "b.view.lkml"}},
		DashboardFiles: []core.LookMLFile{{Filename: "d.dashboard.lookml"}},
	}
	var names []string
	for _, f := range p.AllFiles() {
		names = append(names, f.Filename)
	}
	assert.Equal(t, []string{"m.model.lkml", "a.view.lkml", "b.view.lkml", "d.dashboard.lookml"}, names)
}
