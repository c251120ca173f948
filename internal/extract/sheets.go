package extract

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/tablook/internal/rawdoc"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// SheetDraft is a sheet as read from its worksheet, before field roles are
// known. Visualize completes it once the datasource fields are classified.
type SheetDraft struct {
	Sheet core.Sheet
	Hints VisualHints
}

// VisualHints are the chart signals a worksheet carries besides its fields.
type VisualHints struct {
	TimeField  string // used field with a date-part derivation
	TimeBucket string // granularity of that derivation
	MarkClass  string // explicit mark class, lower-cased
	SortOrder  string
	RowsIDs    []string
	ColumnsIDs []string
}

// Sheets extracts every worksheet in document order.
func Sheets(root *rawdoc.Node) []SheetDraft {
	nodes := root.Path("worksheets", "worksheet")
	out := make([]SheetDraft, 0, len(nodes))
	for i, ws := range nodes {
		out = append(out, sheetFor(ws, i))
	}
	return out
}

// usedFields accumulates used field ids in order of first appearance.
type usedFields struct {
	dsID  string
	ids   []string
	seen  map[string]bool
	hints *VisualHints
}

// fieldID reduces a shelf reference to a field id. References into another
// datasource keep their qualifier so they cannot resolve by accident.
// Pseudo fields such as ":Measure Names" yield "".
func (u *usedFields) fieldID(ref qualifiedRef) (string, instance) {
	inst := parseInstance(ref.Name)
	if inst.Name == "" || strings.HasPrefix(ref.Name, ":") {
		return "", inst
	}
	if ref.Qualifier == ParametersDatasource {
		return "", inst
	}
	if ref.Qualifier != "" && ref.Qualifier != u.dsID {
		return ref.Qualifier + "." + inst.Name, inst
	}
	return inst.Name, inst
}

func (u *usedFields) add(text string) []string {
	var added []string
	for _, ref := range scanRefs(text) {
		id, inst := u.fieldID(ref)
		if id == "" {
			continue
		}
		added = append(added, id)
		if u.hints.TimeBucket == "" {
			if g := timeBucket(inst.Derivation); g != "" {
				u.hints.TimeField = id
				u.hints.TimeBucket = g
			}
		}
		if !u.seen[id] {
			u.seen[id] = true
			u.ids = append(u.ids, id)
		}
	}
	return added
}

func sheetFor(ws *rawdoc.Node, index int) SheetDraft {
	name := ws.AttrOr("name", fmt.Sprintf("sheet_%d", index+1))
	table := ws.Child("table")
	view := table.Child("view")
	dsID := sheetDatasource(view)

	d := SheetDraft{
		Sheet: core.Sheet{
			ID:           name,
			Name:         name,
			DatasourceID: dsID,
			UsedFieldIDs: []string{},
			Filters:      []core.SheetFilter{},
			Description:  sheetTitle(ws),
		},
	}
	u := &usedFields{dsID: dsID, ids: []string{}, seen: make(map[string]bool), hints: &d.Hints}

	d.Hints.RowsIDs = u.add(table.Child("rows").TrimmedText())
	d.Hints.ColumnsIDs = u.add(table.Child("cols").TrimmedText())
	for _, pane := range childrenByTag(table.Child("panes"), "pane") {
		if mark := pane.Child("mark"); mark != nil && d.Hints.MarkClass == "" {
			if class := strings.ToLower(mark.AttrOr("class", "")); class != "automatic" {
				d.Hints.MarkClass = class
			}
		}
		for _, enc := range children(pane.Child("encodings")) {
			u.add(enc.AttrOr("column", ""))
		}
	}
	if pages := table.Child("pages"); pages != nil {
		u.add(pages.Text)
		for _, c := range pages.Children {
			u.add(c.AttrOr("column", "") + " " + c.Text)
		}
	}
	d.Sheet.UsedFieldIDs = u.ids

	for _, f := range view.ChildrenByTag("filter") {
		if filter, ok := u.filter(f, d.Hints); ok {
			d.Sheet.Filters = append(d.Sheet.Filters, filter)
		}
	}
	d.Hints.SortOrder = u.sortOrder(view)
	return d
}

// sheetDatasource is the first non-parameter datasource of the view.
func sheetDatasource(view *rawdoc.Node) string {
	for _, ds := range view.Path("datasources", "datasource") {
		if name := ds.AttrOr("name", ""); name != "" && name != ParametersDatasource {
			return name
		}
	}
	return ""
}

func sheetTitle(ws *rawdoc.Node) *string {
	title := ws.First("layout-options", "title")
	if title == nil {
		return nil
	}
	var b strings.Builder
	for _, run := range title.Descendants("run") {
		b.WriteString(run.Text)
	}
	return core.OptString(strings.TrimSpace(b.String()))
}

// filter reads one filter element. Filters on pseudo fields are skipped;
// a filter whose column cannot be read keeps the raw column text.
func (u *usedFields) filter(f *rawdoc.Node, hints VisualHints) (core.SheetFilter, bool) {
	column := f.AttrOr("column", "")
	refs := scanRefs(column)
	if len(refs) == 0 {
		return core.SheetFilter{
			FieldID:    core.UnresolvedRef(column),
			Expression: f.AttrOr("class", ""),
			AppliedTo:  core.ScopeUnknown,
		}, true
	}
	if strings.HasPrefix(refs[0].Name, ":") {
		return core.SheetFilter{}, false
	}
	id, _ := u.fieldID(refs[0])
	if id == "" {
		return core.SheetFilter{}, false
	}

	scope := core.ScopeTable
	switch {
	case contains(hints.RowsIDs, id):
		scope = core.ScopeRows
	case contains(hints.ColumnsIDs, id):
		scope = core.ScopeColumns
	}
	return core.SheetFilter{
		FieldID:    id,
		Expression: filterExpression(f, "["+id+"]"),
		AppliedTo:  scope,
	}, true
}

func children(n *rawdoc.Node) []*rawdoc.Node {
	if n == nil {
		return nil
	}
	return n.Children
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// filterExpression rebuilds a readable expression from filter settings.
func filterExpression(f *rawdoc.Node, field string) string {
	switch f.AttrOr("class", "") {
	case "categorical":
		var members []string
		for _, gf := range f.Descendants("groupfilter") {
			if gf.AttrOr("function", "") == "member" {
				if m, ok := gf.Attr("member"); ok {
					members = append(members, m)
				}
			}
		}
		top := f.Child("groupfilter")
		fn := top.AttrOr("function", "")
		switch {
		case len(members) > 0 && fn == "except":
			return field + " NOT IN (" + strings.Join(members, ", ") + ")"
		case len(members) > 0:
			return field + " IN (" + strings.Join(members, ", ") + ")"
		case fn != "":
			return field + " " + fn
		}
		return field
	case "quantitative":
		var parts []string
		if lo := f.Child("min").TrimmedText(); lo != "" {
			parts = append(parts, field+" >= "+lo)
		}
		if hi := f.Child("max").TrimmedText(); hi != "" {
			parts = append(parts, field+" <= "+hi)
		}
		if len(parts) == 0 {
			return field + " " + f.AttrOr("included-values", "all")
		}
		return strings.Join(parts, " AND ")
	case "relative-date":
		return fmt.Sprintf("RELATIVE_DATE(%s, '%s', %s, %s)", field,
			f.AttrOr("period-type", "day"), f.AttrOr("first-period", "0"), f.AttrOr("last-period", "0"))
	default:
		if class := f.AttrOr("class", ""); class != "" {
			return field + " " + class
		}
		return field
	}
}

// sortOrder renders the first sort of the view as "by_<field>_<asc|desc>".
func (u *usedFields) sortOrder(view *rawdoc.Node) string {
	for _, s := range children(view) {
		if s.Tag != "sort" && s.Tag != "computed-sort" && s.Tag != "natural-sort" && s.Tag != "manual-sort" {
			continue
		}
		target := s.AttrOr("using", s.AttrOr("column", ""))
		refs := scanRefs(target)
		if len(refs) == 0 {
			continue
		}
		id, _ := u.fieldID(refs[0])
		if id == "" {
			continue
		}
		dir := "asc"
		if strings.EqualFold(s.AttrOr("direction", ""), "desc") {
			dir = "desc"
		}
		return "by_" + id + "_" + dir
	}
	return ""
}

// Visualize completes a draft with its visualization. roleOf returns the
// classified role of a field of the sheet's datasource.
func (d SheetDraft) Visualize(roleOf func(fieldID string) core.Role) core.Sheet {
	sheet := d.Sheet
	viz := &core.SheetVisualization{
		ChartType:           core.ChartUnknown,
		PrimaryMeasureIDs:   []string{},
		SplitByDimensionIDs: []string{},
		SortOrder:           core.OptString(d.Hints.SortOrder),
	}

	var dims, measures []string
	for _, id := range sheet.UsedFieldIDs {
		switch roleOf(id) {
		case core.RoleDimension:
			dims = append(dims, id)
		case core.RoleMeasure:
			measures = append(measures, id)
		}
	}
	if len(dims) > 0 {
		viz.PrimaryDimensionID = core.OptString(dims[0])
		viz.SplitByDimensionIDs = append(viz.SplitByDimensionIDs, dims[1:]...)
		viz.Granularity = core.OptString("category")
		if dims[0] == d.Hints.TimeField {
			viz.Granularity = core.OptString(d.Hints.TimeBucket)
		}
	}
	viz.PrimaryMeasureIDs = append(viz.PrimaryMeasureIDs, measures...)

	viz.ChartType = chartType(len(measures), len(dims), len(dims) == 1 && dims[0] == d.Hints.TimeField)
	switch {
	case viz.ChartType == core.ChartLine && d.Hints.MarkClass == "area":
		viz.ChartType = core.ChartArea
	case viz.ChartType == core.ChartBar && d.Hints.MarkClass == "pie":
		viz.ChartType = core.ChartPie
	}

	sheet.Visualization = viz
	return sheet
}

// chartType applies the chart rule, first match wins.
func chartType(measures, dims int, timeBucketed bool) core.ChartType {
	switch {
	case measures+dims == 0:
		return core.ChartUnknown
	case measures == 1 && dims == 1 && timeBucketed:
		return core.ChartLine
	case measures == 1 && dims == 1:
		return core.ChartBar
	case measures == 2 && dims == 0:
		return core.ChartScatter
	case measures == 1 && dims == 0:
		return core.ChartSingleValue
	default:
		return core.ChartTable
	}
}
