package assemble

import (
	"github.com/leapstack-labs/tablook/internal/extract"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// noDatasource marks a sheet that names no datasource at all.
var noDatasource = core.UnresolvedRef("(none)")

// buildSheet resolves a sheet draft against its datasource and completes
// its visualization.
func buildSheet(d extract.SheetDraft, mi *modelIndex, c *collector) core.Sheet {
	sheet := d.Sheet
	ix, ok := mi.byID[sheet.DatasourceID]
	if !ok {
		raw := sheet.DatasourceID
		if raw == "" {
			sheet.DatasourceID = noDatasource
			c.unresolved(core.SeverityWarning, "", core.EntitySheet, sheet.ID, "sheet names no datasource")
		} else {
			sheet.DatasourceID = core.UnresolvedRef(raw)
			c.unresolved(core.SeverityError, "", core.EntitySheet, sheet.ID,
				"datasource %q does not exist", raw)
		}
	}
	dsID := ""
	if ok {
		dsID = sheet.DatasourceID
	}

	used := make([]string, 0, len(sheet.UsedFieldIDs))
	for _, id := range sheet.UsedFieldIDs {
		if _, found := ix.fieldByID(id); found || core.IsUnresolved(id) {
			used = append(used, id)
			continue
		}
		if ok {
			c.unresolved(core.SeverityWarning, dsID, core.EntitySheet, sheet.ID,
				"used field %q does not exist in the datasource", id)
		}
		used = append(used, core.UnresolvedRef(id))
	}
	sheet.UsedFieldIDs = used

	filters := make([]core.SheetFilter, 0, len(sheet.Filters))
	for _, f := range sheet.Filters {
		switch {
		case core.IsUnresolved(f.FieldID):
			c.unresolved(core.SeverityWarning, dsID, core.EntityFilter, sheet.ID,
				"filter column %q could not be read", core.UnresolvedTarget(f.FieldID))
		default:
			if _, found := ix.fieldByID(f.FieldID); !found {
				c.unresolved(core.SeverityWarning, dsID, core.EntityFilter, sheet.ID,
					"filter field %q does not exist in the datasource", f.FieldID)
				f.FieldID = core.UnresolvedRef(f.FieldID)
			}
		}
		if f.AppliedTo == core.ScopeUnknown {
			c.ambiguous(core.SeverityInfo, dsID, core.EntityFilter, sheet.ID,
				"filter on %q has no known scope", f.FieldID)
		}
		filters = append(filters, f)
	}
	sheet.Filters = filters

	d.Sheet = sheet
	sheet = d.Visualize(func(id string) core.Role {
		if f, found := ix.fieldByID(id); found {
			return f.Role
		}
		return core.RoleUnknown
	})
	validateVisualization(&sheet, c)
	return sheet
}

// validateVisualization keeps every axis reference inside the sheet's used fields.
func validateVisualization(sheet *core.Sheet, c *collector) {
	viz := sheet.Visualization
	if viz == nil {
		return
	}
	used := make(map[string]bool, len(sheet.UsedFieldIDs))
	for _, id := range sheet.UsedFieldIDs {
		used[id] = true
	}
	check := func(id string) string {
		if used[id] || core.IsUnresolved(id) {
			return id
		}
		c.unresolved(core.SeverityWarning, findingDatasource(sheet), core.EntityChart, sheet.ID,
			"axis field %q is not used by the sheet", id)
		return core.UnresolvedRef(id)
	}

	if viz.PrimaryDimensionID != nil {
		viz.PrimaryDimensionID = core.OptString(check(*viz.PrimaryDimensionID))
	}
	for i, id := range viz.PrimaryMeasureIDs {
		viz.PrimaryMeasureIDs[i] = check(id)
	}
	for i, id := range viz.SplitByDimensionIDs {
		viz.SplitByDimensionIDs[i] = check(id)
	}
	if viz.ChartType == core.ChartUnknown && len(sheet.UsedFieldIDs) > 0 {
		c.ambiguous(core.SeverityInfo, findingDatasource(sheet), core.EntityChart, sheet.ID,
			"no used field has a known role, chart type is unknown")
	}
}

func findingDatasource(sheet *core.Sheet) string {
	if core.IsUnresolved(sheet.DatasourceID) {
		return ""
	}
	return sheet.DatasourceID
}
