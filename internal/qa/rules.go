package qa

import (
	"fmt"

	"github.com/leapstack-labs/tablook/internal/extract"
	"github.com/leapstack-labs/tablook/pkg/core"
)

func init() {
	for _, rule := range []RuleDef{
		{
			ID: "QC01", Name: "unknown-connection", Group: "connection",
			Description: "Connection type could not be determined",
			Severity:    core.SeverityInfo,
			Check:       checkUnknownConnection,
		},
		{
			ID: "QC02", Name: "custom-sql-without-query", Group: "connection",
			Description: "Custom SQL connection carries no query text",
			Severity:    core.SeverityWarning,
			Check:       checkCustomSQL,
		},
		{
			ID: "QC03", Name: "table-connection-without-table", Group: "connection",
			Description: "Table connection does not name a single table",
			Severity:    core.SeverityWarning,
			Check:       checkTableConnection,
		},
		{
			ID: "QJ01", Name: "join-unresolved-table", Group: "join",
			Description: "Join endpoint does not resolve to a table",
			Severity:    core.SeverityError,
			Check:       checkJoinEndpoints,
		},
		{
			ID: "QJ02", Name: "join-review", Group: "join",
			Description: "Join condition needs manual review",
			Severity:    core.SeverityWarning,
			Check:       checkJoinReview,
		},
		{
			ID: "QF01", Name: "field-unresolved-reference", Group: "field",
			Description: "Field table or calculation does not resolve",
			Severity:    core.SeverityError,
			Check:       checkFieldReferences,
		},
		{
			ID: "QF02", Name: "field-unknown-role", Group: "field",
			Description: "Field is neither dimension nor measure",
			Severity:    core.SeverityInfo,
			Check:       checkFieldRole,
		},
		{
			ID: "QF03", Name: "field-unknown-datatype", Group: "field",
			Description: "Field datatype is not declared",
			Severity:    core.SeverityInfo,
			Check:       checkFieldDatatype,
		},
		{
			ID: "QK01", Name: "calculation-unknown-category", Group: "calculation",
			Description: "Calculation category could not be determined",
			Severity:    core.SeverityInfo,
			Check:       checkCalculationCategory,
		},
		{
			ID: "QK02", Name: "calculation-complexity", Group: "calculation",
			Description: "Calculation complexity is above the configured threshold",
			Severity:    core.SeverityHint,
			Check:       checkCalculationComplexity,
			Standalone:  true,
		},
		{
			ID: "QS01", Name: "sheet-unresolved-reference", Group: "sheet",
			Description: "Sheet datasource, used field or filter does not resolve",
			Severity:    core.SeverityWarning,
			Check:       checkSheetReferences,
		},
		{
			ID: "QS02", Name: "sheet-unknown-chart", Group: "sheet",
			Description: "Sheet uses fields but no chart type could be chosen",
			Severity:    core.SeverityInfo,
			Check:       checkSheetChart,
		},
	} {
		Register(rule)
	}
}

func finding(kind core.FindingKind, dsID, entity, id, format string, args ...any) core.Finding {
	return core.Finding{
		Kind:         kind,
		DatasourceID: dsID,
		Entity:       entity,
		EntityID:     id,
		Message:      fmt.Sprintf(format, args...),
	}
}

func checkUnknownConnection(m *core.SemanticModel, _ *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, ds := range m.Datasources {
		if ds.Connection.Type == core.ConnectionUnknown && ds.ID != extract.ParametersDatasource {
			out = append(out, finding(core.FindingAmbiguous, ds.ID, core.EntityConnection, ds.ID,
				"connection type is unknown"))
		}
	}
	return out
}

func checkCustomSQL(m *core.SemanticModel, _ *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, ds := range m.Datasources {
		if ds.Connection.Type == core.ConnectionCustomSQL && core.Deref(ds.Connection.RawSQL) == "" {
			out = append(out, finding(core.FindingAmbiguous, ds.ID, core.EntityConnection, ds.ID,
				"custom SQL query text is missing"))
		}
	}
	return out
}

func checkTableConnection(m *core.SemanticModel, _ *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, ds := range m.Datasources {
		if ds.Connection.Type == core.ConnectionTable && ds.Connection.Table == nil {
			out = append(out, finding(core.FindingAmbiguous, ds.ID, core.EntityConnection, ds.ID,
				"no single table is referenced directly"))
		}
	}
	return out
}

func checkJoinEndpoints(m *core.SemanticModel, _ *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, ds := range m.Datasources {
		for _, j := range ds.Joins {
			for _, id := range []string{j.LeftTableID, j.RightTableID} {
				if core.IsUnresolved(id) {
					out = append(out, finding(core.FindingUnresolved, ds.ID, core.EntityJoin, j.ID,
						"table %q does not resolve", core.UnresolvedTarget(id)))
				}
			}
		}
	}
	return out
}

func checkJoinReview(m *core.SemanticModel, _ *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, ds := range m.Datasources {
		for _, j := range ds.Joins {
			if j.NeedsManualReview {
				out = append(out, finding(core.FindingReview, ds.ID, core.EntityJoin, j.ID,
					"join %s -> %s needs manual review: %s", j.LeftTableID, j.RightTableID, j.Condition))
			}
		}
	}
	return out
}

func checkFieldReferences(m *core.SemanticModel, _ *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, ds := range m.Datasources {
		for _, f := range ds.Fields {
			if f.TableID != nil && core.IsUnresolved(*f.TableID) {
				out = append(out, finding(core.FindingUnresolved, ds.ID, core.EntityField, f.ID,
					"table %q does not resolve", core.UnresolvedTarget(*f.TableID)))
			}
			if f.CalculationID != nil && core.IsUnresolved(*f.CalculationID) {
				out = append(out, finding(core.FindingUnresolved, ds.ID, core.EntityField, f.ID,
					"calculation %q does not resolve", core.UnresolvedTarget(*f.CalculationID)))
			}
		}
	}
	return out
}

func checkFieldRole(m *core.SemanticModel, _ *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, ds := range m.Datasources {
		for _, f := range ds.Fields {
			if f.Role == core.RoleUnknown {
				out = append(out, finding(core.FindingAmbiguous, ds.ID, core.EntityField, f.ID, "role is unknown"))
			}
		}
	}
	return out
}

func checkFieldDatatype(m *core.SemanticModel, _ *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, ds := range m.Datasources {
		for _, f := range ds.Fields {
			if f.Datatype == core.DataTypeUnknown {
				out = append(out, finding(core.FindingAmbiguous, ds.ID, core.EntityField, f.ID, "datatype is unknown"))
			}
		}
	}
	return out
}

func checkCalculationCategory(m *core.SemanticModel, _ *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, c := range m.Calculations {
		if c.Category == core.CategoryUnknown {
			out = append(out, finding(core.FindingAmbiguous, c.DatasourceID, core.EntityCalculation, c.ID,
				"category is unknown for expression %s", c.Expression))
		}
	}
	return out
}

func checkCalculationComplexity(m *core.SemanticModel, cfg *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, c := range m.Calculations {
		if c.ComplexityScore >= cfg.ComplexityThreshold {
			out = append(out, finding(core.FindingReview, c.DatasourceID, core.EntityCalculation, c.ID,
				"complexity %.2f is at or above %.2f", c.ComplexityScore, cfg.ComplexityThreshold))
		}
	}
	return out
}

func checkSheetReferences(m *core.SemanticModel, _ *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, s := range m.Sheets {
		dsID := s.DatasourceID
		if core.IsUnresolved(dsID) {
			out = append(out, finding(core.FindingUnresolved, "", core.EntitySheet, s.ID,
				"datasource %q does not resolve", core.UnresolvedTarget(dsID)))
			continue
		}
		for _, id := range s.UsedFieldIDs {
			if core.IsUnresolved(id) {
				out = append(out, finding(core.FindingUnresolved, dsID, core.EntitySheet, s.ID,
					"used field %q does not resolve", core.UnresolvedTarget(id)))
			}
		}
		for _, f := range s.Filters {
			if core.IsUnresolved(f.FieldID) {
				out = append(out, finding(core.FindingUnresolved, dsID, core.EntityFilter, s.ID,
					"filter field %q does not resolve", core.UnresolvedTarget(f.FieldID)))
			}
		}
	}
	return out
}

func checkSheetChart(m *core.SemanticModel, _ *AnalyzerConfig) []core.Finding {
	var out []core.Finding
	for _, s := range m.Sheets {
		if s.Visualization == nil || s.Visualization.ChartType != core.ChartUnknown || len(s.UsedFieldIDs) == 0 {
			continue
		}
		dsID := s.DatasourceID
		if core.IsUnresolved(dsID) {
			dsID = ""
		}
		out = append(out, finding(core.FindingAmbiguous, dsID, core.EntityChart, s.ID, "chart type is unknown"))
	}
	return out
}
