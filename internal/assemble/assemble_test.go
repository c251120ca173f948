package assemble

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/tablook/internal/rawdoc"
	"github.com/leapstack-labs/tablook/internal/testutil"
	"github.com/leapstack-labs/tablook/pkg/core"
)

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func superstore(t *testing.T) []byte {
	return readFile(t, filepath.Join("..", "extract", "testdata", "superstore.twb"))
}

func parseFile(t *testing.T, data []byte, opts ...Option) (*core.SemanticModel, []core.Finding) {
	t.Helper()
	opts = append(opts, WithLogger(testutil.NewTestLogger(t)))
	m, findings, err := Parse(data, opts...)
	require.NoError(t, err)
	require.NotNil(t, m)
	assertTotal(t, m)
	return m, findings
}

// assertTotal checks that every reference in the model resolves inside its
// datasource or carries the unresolved marker.
func assertTotal(t *testing.T, m *core.SemanticModel) {
	t.Helper()
	require.NotNil(t, m.Workbook)
	assert.Equal(t, core.SchemaVersion, m.SchemaVersion)

	ok := func(valid bool, id string) bool { return valid || core.IsUnresolved(id) }
	for i := range m.Datasources {
		ds := &m.Datasources[i]
		for _, j := range ds.Joins {
			_, left := ds.Table(j.LeftTableID)
			_, right := ds.Table(j.RightTableID)
			assert.True(t, ok(left, j.LeftTableID), "join %s left %s", j.ID, j.LeftTableID)
			assert.True(t, ok(right, j.RightTableID), "join %s right %s", j.ID, j.RightTableID)
			if !left || !right {
				assert.True(t, j.NeedsManualReview, "join %s with missing table must be reviewed", j.ID)
			}
		}
		for _, f := range ds.Fields {
			assert.True(t, f.Role.Valid() && f.Datatype.Valid() && f.Source.Valid(), f.ID)
			if f.TableID != nil {
				_, found := ds.Table(*f.TableID)
				assert.True(t, ok(found, *f.TableID), "field %s table %s", f.ID, *f.TableID)
			}
			if f.Source == core.SourceCalculation {
				require.NotNil(t, f.CalculationID, f.ID)
				_, found := m.Calculation(ds.ID, *f.CalculationID)
				assert.True(t, ok(found, *f.CalculationID), "field %s calculation", f.ID)
			}
		}
	}
	for _, c := range m.Calculations {
		_, found := m.Datasource(c.DatasourceID)
		assert.True(t, found, "calculation %s datasource", c.ID)
		assert.True(t, c.ComplexityScore >= 0 && c.ComplexityScore <= 1, c.ID)
	}
	for _, s := range m.Sheets {
		ds, found := m.Datasource(s.DatasourceID)
		assert.True(t, ok(found, s.DatasourceID), "sheet %s datasource", s.ID)
		used := make(map[string]bool)
		for _, id := range s.UsedFieldIDs {
			used[id] = true
			if found {
				_, fieldFound := ds.Field(id)
				assert.True(t, ok(fieldFound, id), "sheet %s field %s", s.ID, id)
			} else {
				assert.True(t, core.IsUnresolved(id), "sheet %s field %s", s.ID, id)
			}
		}
		for _, f := range s.Filters {
			fieldFound := false
			if found {
				_, fieldFound = ds.Field(f.FieldID)
			}
			assert.True(t, ok(fieldFound, f.FieldID), "sheet %s filter %s", s.ID, f.FieldID)
		}
		if v := s.Visualization; v != nil {
			if v.PrimaryDimensionID != nil {
				assert.True(t, used[*v.PrimaryDimensionID], s.ID)
			}
			for _, id := range append(append([]string{}, v.PrimaryMeasureIDs...), v.SplitByDimensionIDs...) {
				assert.True(t, used[id], "sheet %s axis %s", s.ID, id)
			}
		}
	}
}

func hasFinding(findings []core.Finding, kind core.FindingKind, entity, id string) bool {
	for _, f := range findings {
		if f.Kind == kind && f.Entity == entity && f.EntityID == id {
			return true
		}
	}
	return false
}

func TestParse_Scenarios(t *testing.T) {
	m, findings := parseFile(t, readFile(t, filepath.Join("testdata", "scenarios.twb")))
	require.Len(t, m.Datasources, 1)
	ds := m.Datasources[0]

	t.Run("missing workbook identity", func(t *testing.T) {
		assert.Equal(t, &core.Workbook{ID: "unknown", Name: "Unknown Workbook"}, m.Workbook)
		assert.Nil(t, m.Workbook.Description)
		assert.True(t, hasFinding(findings, core.FindingAmbiguous, core.EntityWorkbook, "unknown"))
	})

	t.Run("role default", func(t *testing.T) {
		f, ok := ds.Field("order_id")
		require.True(t, ok)
		assert.Equal(t, core.RoleUnknown, f.Role)
		assert.Equal(t, core.SourceColumn, f.Source)
		assert.Equal(t, "orders", core.Deref(f.TableID))
		assert.True(t, hasFinding(findings, core.FindingAmbiguous, core.EntityField, "order_id"))
	})

	t.Run("ratio calculation", func(t *testing.T) {
		f, ok := ds.Field("Calculation_10")
		require.True(t, ok)
		assert.Equal(t, core.SourceCalculation, f.Source)

		ratio, ok := m.Calculation(ds.ID, "Calculation_10")
		require.True(t, ok)
		bare, ok := m.Calculation(ds.ID, "Calculation_11")
		require.True(t, ok)
		assert.Equal(t, core.CategorySimple, ratio.Category)
		assert.Equal(t, 0.0, bare.ComplexityScore)
		assert.Greater(t, ratio.ComplexityScore, bare.ComplexityScore)
	})

	t.Run("dotted join condition", func(t *testing.T) {
		require.Len(t, ds.Joins, 1)
		j := ds.Joins[0]
		assert.Equal(t, "orders", j.LeftTableID)
		assert.Equal(t, "line_items", j.RightTableID)
		assert.False(t, j.NeedsManualReview)
		assert.Equal(t, core.JoinUnknown, j.JoinType)
		assert.False(t, hasFinding(findings, core.FindingUnresolved, core.EntityJoin, j.ID))
		assert.False(t, hasFinding(findings, core.FindingReview, core.EntityJoin, j.ID))
	})
}

func TestParse_Superstore(t *testing.T) {
	m, findings := parseFile(t, superstore(t))
	assert.Equal(t, "SuperstoreSales", m.Workbook.ID)
	require.Len(t, m.Datasources, 5)
	require.Len(t, m.Calculations, 4)
	require.Len(t, m.Sheets, 5)

	t.Run("dangling join endpoint", func(t *testing.T) {
		messy, ok := m.Datasource("federated.messy")
		require.True(t, ok)
		require.Len(t, messy.Joins, 2)
		j := messy.Joins[1]
		assert.Equal(t, "Accounts", j.LeftTableID)
		assert.Equal(t, core.UnresolvedRef("Ghost"), j.RightTableID)
		assert.True(t, j.NeedsManualReview)
		assert.True(t, hasFinding(findings, core.FindingUnresolved, core.EntityJoin, "join_2"))
		assert.True(t, hasFinding(findings, core.FindingReview, core.EntityTable, "Accounts"),
			"Accounts is only reachable through the broken join")
	})

	t.Run("foreign field on a sheet", func(t *testing.T) {
		detail := m.Sheets[3]
		assert.Contains(t, detail.UsedFieldIDs, core.UnresolvedRef("federated.customsql.TOTAL"))
		assert.True(t, hasFinding(findings, core.FindingUnresolved, core.EntitySheet, "Detail"))
		assert.Equal(t, core.ChartBar, detail.Visualization.ChartType)
	})

	t.Run("unreadable filter", func(t *testing.T) {
		byRegion := m.Sheets[1]
		require.Len(t, byRegion.Filters, 3)
		assert.Equal(t, core.UnresolvedRef("not a reference"), byRegion.Filters[2].FieldID)
		assert.True(t, hasFinding(findings, core.FindingAmbiguous, core.EntityFilter, "Sales by Region"))
	})

	t.Run("sheet without datasource", func(t *testing.T) {
		empty := m.Sheets[4]
		assert.True(t, core.IsUnresolved(empty.DatasourceID))
		assert.Equal(t, core.ChartUnknown, empty.Visualization.ChartType)
	})

	t.Run("parameter reference resolves", func(t *testing.T) {
		assert.False(t, hasFinding(findings, core.FindingUnresolved, core.EntityCalculation, "Calculation_2"))
	})

	t.Run("findings are sorted", func(t *testing.T) {
		for i := 1; i < len(findings); i++ {
			assert.True(t, findings[i-1].Severity <= findings[i].Severity)
		}
		assert.Equal(t, core.SeverityError, findings[0].Severity)
	})
}

func TestParse_Determinism(t *testing.T) {
	data := superstore(t)
	first, firstFindings := parseFile(t, data)
	second, secondFindings := parseFile(t, data)
	parallel, parallelFindings := parseFile(t, data, WithParallel(true))

	assert.Equal(t, first, second)
	assert.Equal(t, firstFindings, secondFindings)
	assert.Equal(t, first, parallel)
	assert.Equal(t, firstFindings, parallelFindings)
}

func TestParse_Packaged(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("Superstore.twb")
	require.NoError(t, err)
	_, err = w.Write(superstore(t))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	packaged, _ := parseFile(t, buf.Bytes())
	plain, _ := parseFile(t, superstore(t))
	assert.Equal(t, plain, packaged)
}

func TestParse_Malformed(t *testing.T) {
	for _, input := range []string{"", "<workbook>", "not markup at all", "<a></b>"} {
		m, findings, err := Parse([]byte(input))
		require.Error(t, err, input)
		assert.True(t, errors.Is(err, rawdoc.ErrMalformedDocument), input)
		var mde *rawdoc.MalformedDocumentError
		assert.True(t, errors.As(err, &mde), input)
		assert.Nil(t, m)
		assert.Nil(t, findings)
	}
}

func TestAssemble_EmptyWorkbook(t *testing.T) {
	m, findings := parseFile(t, []byte(`<workbook />`))
	assert.Equal(t, core.DefaultWorkbook(), m.Workbook)
	assert.NotNil(t, m.Datasources)
	assert.NotNil(t, m.Calculations)
	assert.NotNil(t, m.Sheets)
	require.Len(t, findings, 1)
	assert.Equal(t, core.EntityWorkbook, findings[0].Entity)
}
