package assemble

import (
	"strings"

	"github.com/leapstack-labs/tablook/internal/extract"
	"github.com/leapstack-labs/tablook/pkg/calc"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// validateDatasources checks every datasource in place.
func validateDatasources(m *core.SemanticModel, mi *modelIndex, c *collector) {
	seen := make(map[string]bool, len(m.Datasources))
	for i := range m.Datasources {
		ds := &m.Datasources[i]
		ix := mi.byID[ds.ID]
		duplicate := seen[ds.ID]
		if duplicate {
			c.review(core.SeverityWarning, ds.ID, core.EntityDatasource, ds.ID,
				"datasource id is declared more than once; references resolve to the first")
			ix = newIndex(ds, m.Calculations)
		}
		seen[ds.ID] = true

		validateConnection(ds, c)
		validateTables(ds, c)
		validateJoins(ds, ix, c)
		validateJoinGraph(ds, c)
		validateFields(ds, ix, c)
		if !duplicate {
			validateCalculations(m, mi, ix, c)
		}
	}
}

func validateConnection(ds *core.Datasource, c *collector) {
	conn := ds.Connection
	switch conn.Type {
	case core.ConnectionCustomSQL:
		if conn.RawSQL == nil || strings.TrimSpace(*conn.RawSQL) == "" {
			c.ambiguous(core.SeverityWarning, ds.ID, core.EntityConnection, ds.ID,
				"custom SQL connection has no query text")
		}
	case core.ConnectionTable:
		if conn.Table == nil {
			c.ambiguous(core.SeverityWarning, ds.ID, core.EntityConnection, ds.ID,
				"table connection does not name a single table")
		}
	case core.ConnectionUnknown:
		if ds.ID != extract.ParametersDatasource {
			c.ambiguous(core.SeverityInfo, ds.ID, core.EntityConnection, ds.ID,
				"connection type could not be determined")
		}
	}
}

func validateTables(ds *core.Datasource, c *collector) {
	var primaries []string
	for _, t := range ds.Tables {
		if t.IsPrimary {
			primaries = append(primaries, t.ID)
		}
	}
	if len(primaries) > 1 {
		c.review(core.SeverityHint, ds.ID, core.EntityTable, primaries[0],
			"%d tables are marked primary: %s", len(primaries), strings.Join(primaries, ", "))
	}
}

func validateJoins(ds *core.Datasource, ix *dsIndex, c *collector) {
	for i := range ds.Joins {
		j := &ds.Joins[i]
		resolved := true
		for _, side := range []struct {
			name string
			id   *string
		}{{"left", &j.LeftTableID}, {"right", &j.RightTableID}} {
			id := *side.id
			switch {
			case core.IsUnresolved(id):
				resolved = false
				c.unresolved(core.SeverityError, ds.ID, core.EntityJoin, j.ID,
					"%s side of the join names no table", side.name)
			case !ix.tables[id]:
				resolved = false
				*side.id = core.UnresolvedRef(id)
				c.unresolved(core.SeverityError, ds.ID, core.EntityJoin, j.ID,
					"%s table %q does not exist in the datasource", side.name, id)
			}
		}
		if !resolved {
			j.NeedsManualReview = true
			continue
		}
		if j.NeedsManualReview {
			c.review(core.SeverityWarning, ds.ID, core.EntityJoin, j.ID,
				"join condition is not a single column equality: %s", j.Condition)
		}
		if j.JoinType == core.JoinUnknown {
			c.ambiguous(core.SeverityHint, ds.ID, core.EntityJoin, j.ID, "join type is not declared")
		}
	}
}

func validateJoinGraph(ds *core.Datasource, c *collector) {
	if len(ds.Joins) == 0 {
		return
	}
	jg := NewJoinGraph(ds)
	for _, id := range jg.Unreachable() {
		c.review(core.SeverityWarning, ds.ID, core.EntityTable, id,
			"table is not joined to primary table %q", jg.Anchor())
	}
	for _, cycle := range jg.Cycles() {
		c.review(core.SeverityWarning, ds.ID, core.EntityTable, cycle[0],
			"joins form a loop through tables %s", strings.Join(cycle, ", "))
	}
}

func validateFields(ds *core.Datasource, ix *dsIndex, c *collector) {
	for i := range ds.Fields {
		f := &ds.Fields[i]
		if f.TableID != nil && !core.IsUnresolved(*f.TableID) && !ix.tables[*f.TableID] {
			c.unresolved(core.SeverityError, ds.ID, core.EntityField, f.ID,
				"table %q does not exist in the datasource", *f.TableID)
			f.TableID = core.OptString(core.UnresolvedRef(*f.TableID))
		}

		switch f.Source {
		case core.SourceCalculation:
			if f.CalculationID == nil {
				c.unresolved(core.SeverityError, ds.ID, core.EntityField, f.ID,
					"calculated field has no calculation")
				f.CalculationID = core.OptString(core.UnresolvedRef(f.ID))
			} else if _, ok := ix.calcs[*f.CalculationID]; !ok && !core.IsUnresolved(*f.CalculationID) {
				c.unresolved(core.SeverityError, ds.ID, core.EntityField, f.ID,
					"calculation %q does not exist in the datasource", *f.CalculationID)
				f.CalculationID = core.OptString(core.UnresolvedRef(*f.CalculationID))
			}
		case core.SourceColumn:
			if f.ColumnName == nil {
				c.ambiguous(core.SeverityHint, ds.ID, core.EntityField, f.ID, "column field has no column name")
			}
		case core.SourceUnknown:
			c.ambiguous(core.SeverityInfo, ds.ID, core.EntityField, f.ID, "field source could not be determined")
		}

		if f.Role == core.RoleUnknown {
			c.ambiguous(core.SeverityInfo, ds.ID, core.EntityField, f.ID,
				"role is neither dimension nor measure")
		}
		if f.Datatype == core.DataTypeUnknown {
			c.ambiguous(core.SeverityInfo, ds.ID, core.EntityField, f.ID, "datatype is not declared")
		}
	}
}

func validateCalculations(m *core.SemanticModel, mi *modelIndex, ix *dsIndex, c *collector) {
	dsID := ix.ds.ID
	for i := range m.Calculations {
		calculation := &m.Calculations[i]
		if calculation.DatasourceID != dsID {
			continue
		}
		a := calc.Analyze(calculation.Expression, calc.Options{})
		if a.Err != nil {
			c.ambiguous(core.SeverityInfo, dsID, core.EntityCalculation, calculation.ID,
				"expression could not be parsed: %v", a.Err)
		} else if calculation.Category == core.CategoryUnknown {
			c.ambiguous(core.SeverityInfo, dsID, core.EntityCalculation, calculation.ID,
				"category could not be determined from functions %s", strings.Join(a.Functions, ", "))
		}
		for _, ref := range a.Refs {
			if _, ok := mi.resolveRef(ix, ref); !ok {
				c.unresolved(core.SeverityWarning, dsID, core.EntityCalculation, calculation.ID,
					"reference %s does not resolve", ref.String())
			}
		}
	}

	for _, cycle := range calculationGraph(m, mi, ix).Cycles() {
		c.review(core.SeverityWarning, dsID, core.EntityCalculation, cycle[0],
			"calculations depend on each other: %s", strings.Join(append(cycle, cycle[0]), " -> "))
	}
}
