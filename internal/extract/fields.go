package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/tablook/internal/rawdoc"
	"github.com/leapstack-labs/tablook/pkg/calc"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// DatasourceFields holds the fields and calculations of one datasource.
type DatasourceFields struct {
	DatasourceID string
	Fields       []core.Field
	Calculations []core.Calculation
}

// columnRecord is a physical column described by connection metadata.
type columnRecord struct {
	localName   string
	remoteName  string
	parentName  string
	localType   string
	aggregation string
}

// Fields classifies every field of every datasource. Parameter names and
// captions are collected first so calculations can recognize unqualified
// parameter references.
func Fields(root *rawdoc.Node) []DatasourceFields {
	nodes := datasourceNodes(root)
	opts := calc.Options{Parameters: parameterNames(nodes)}

	out := make([]DatasourceFields, 0, len(nodes))
	for i, ds := range nodes {
		out = append(out, fieldsFor(ds, datasourceID(ds, i), opts))
	}
	return out
}

// ParameterNames returns the names and captions of workbook parameters.
func ParameterNames(root *rawdoc.Node) []string {
	return parameterNames(datasourceNodes(root))
}

func parameterNames(nodes []*rawdoc.Node) []string {
	var names []string
	for _, ds := range nodes {
		if !isParameters(ds) {
			continue
		}
		for _, col := range ds.ChildrenByTag("column") {
			if n := unbracket(col.AttrOr("name", "")); n != "" {
				names = append(names, n)
			}
			if c := col.AttrOr("caption", ""); c != "" {
				names = append(names, c)
			}
		}
	}
	return names
}

func fieldsFor(ds *rawdoc.Node, dsID string, opts calc.Options) DatasourceFields {
	out := DatasourceFields{
		DatasourceID: dsID,
		Fields:       []core.Field{},
		Calculations: []core.Calculation{},
	}

	conn := childByTag(ds, "connection")
	records, recordOrder := columnRecords(conn)
	colTables := columnTables(conn)
	folders := folderTags(ds)

	seen := make(map[string]bool)
	unnamed := 0
	for _, col := range ds.ChildrenByTag("column") {
		id := unbracket(col.AttrOr("name", ""))
		if id == "" {
			unnamed++
			out.Fields = append(out.Fields, unknownField(fmt.Sprintf("unnamed_%d", unnamed)))
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		f := core.Field{
			ID:       id,
			Name:     id,
			Caption:  core.OptString(col.AttrOr("caption", "")),
			Role:     classifyRole(col),
			Datatype: core.ParseDataType(col.AttrOr("datatype", "")),
			Source:   core.SourceUnknown,
			IsHidden: col.AttrOr("hidden", "") == "true",
			Tags:     fieldTags(col, folders[id]),
		}
		rec, hasRecord := records[id]
		if f.Datatype == core.DataTypeUnknown && hasRecord {
			f.Datatype = core.ParseDataType(rec.localType)
		}

		switch formula := childByTag(col, "calculation"); {
		case col.HasAttr("param-domain-type"):
			f.Source = core.SourceParameter
		case formula != nil:
			f.Source = core.SourceCalculation
			f.CalculationID = core.OptString(id)
			expr := formula.AttrOr("formula", "")
			a := calc.Analyze(expr, opts)
			out.Calculations = append(out.Calculations, core.Calculation{
				ID:              id,
				Name:            f.Label(),
				DatasourceID:    dsID,
				Expression:      expr,
				Datatype:        f.Datatype,
				Category:        a.Category,
				ComplexityScore: a.Score,
			})
		default:
			f.Source = core.SourceColumn
			f.ColumnName = core.OptString(id)
			if hasRecord && rec.remoteName != "" {
				f.ColumnName = core.OptString(rec.remoteName)
			}
			f.TableID = tableOf(id, rec, hasRecord, colTables)
		}

		if f.Role == core.RoleMeasure {
			f.Aggregation = aggregationOf(col, rec, hasRecord)
		}
		out.Fields = append(out.Fields, f)
	}

	for _, localName := range recordOrder {
		if seen[localName] {
			continue
		}
		seen[localName] = true
		rec := records[localName]
		f := core.Field{
			ID:         localName,
			Name:       localName,
			Role:       core.RoleUnknown,
			Datatype:   core.ParseDataType(rec.localType),
			Source:     core.SourceColumn,
			ColumnName: core.OptString(localName),
			TableID:    tableOf(localName, rec, true, colTables),
			Tags:       fieldTags(nil, folders[localName]),
		}
		if rec.remoteName != "" {
			f.ColumnName = core.OptString(rec.remoteName)
		}
		out.Fields = append(out.Fields, f)
	}
	return out
}

// unknownField is emitted for a field node that cannot be read at all.
func unknownField(id string) core.Field {
	return core.Field{
		ID:       id,
		Name:     id,
		Role:     core.RoleUnknown,
		Datatype: core.DataTypeUnknown,
		Source:   core.SourceUnknown,
		Tags:     []string{},
	}
}

// classifyRole applies the role rules: a declared aggregation other than
// none makes a measure, then an explicit role marker decides. Without
// either signal the role stays unknown.
func classifyRole(col *rawdoc.Node) core.Role {
	if agg := col.AttrOr("aggregation", ""); agg != "" && !strings.EqualFold(agg, "none") {
		return core.RoleMeasure
	}
	return core.ParseRole(col.AttrOr("role", ""))
}

func aggregationOf(col *rawdoc.Node, rec columnRecord, hasRecord bool) *string {
	if agg := col.AttrOr("aggregation", ""); agg != "" && !strings.EqualFold(agg, "none") {
		return core.OptString(strings.ToLower(agg))
	}
	if hasRecord && rec.aggregation != "" && !strings.EqualFold(rec.aggregation, "none") {
		return core.OptString(strings.ToLower(rec.aggregation))
	}
	return nil
}

func tableOf(id string, rec columnRecord, hasRecord bool, colTables map[string]string) *string {
	if hasRecord && rec.parentName != "" {
		return core.OptString(unbracket(rec.parentName))
	}
	return core.OptString(colTables[id])
}

// columnRecords reads metadata records describing physical columns, keyed
// by local name, plus their document order.
func columnRecords(conn *rawdoc.Node) (map[string]columnRecord, []string) {
	records := make(map[string]columnRecord)
	var order []string
	for _, md := range conn.Descendants("metadata-record") {
		if md.AttrOr("class", "") != "column" {
			continue
		}
		rec := columnRecord{
			localName:   unbracket(md.Child("local-name").TrimmedText()),
			remoteName:  md.Child("remote-name").TrimmedText(),
			parentName:  md.Child("parent-name").TrimmedText(),
			localType:   md.Child("local-type").TrimmedText(),
			aggregation: md.Child("aggregation").TrimmedText(),
		}
		if rec.localName == "" {
			continue
		}
		if _, dup := records[rec.localName]; dup {
			continue
		}
		records[rec.localName] = rec
		order = append(order, rec.localName)
	}
	return records, order
}

// columnTables reads the <cols> map of field to qualified column.
func columnTables(conn *rawdoc.Node) map[string]string {
	tables := make(map[string]string)
	for _, m := range childrenByTag(childByTag(conn, "cols"), "map") {
		key := unbracket(m.AttrOr("key", ""))
		if parts := splitQualified(m.AttrOr("value", "")); key != "" && len(parts) >= 2 {
			tables[key] = parts[len(parts)-2]
		}
	}
	return tables
}

// folderTags maps field ids to "folder:<name>" tags.
func folderTags(ds *rawdoc.Node) map[string][]string {
	tags := make(map[string][]string)
	for _, folder := range ds.Descendants("folder") {
		name := folder.AttrOr("name", "")
		if name == "" {
			continue
		}
		for _, item := range folder.ChildrenByTag("folder-item") {
			id := unbracket(item.AttrOr("name", ""))
			if id != "" {
				tags[id] = append(tags[id], "folder:"+name)
			}
		}
	}
	return tags
}

func fieldTags(col *rawdoc.Node, folders []string) []string {
	tags := append([]string{}, folders...)
	if col != nil {
		if sr := col.AttrOr("semantic-role", ""); sr != "" {
			tags = append(tags, "semantic-role:"+sr)
		}
	}
	sort.Strings(tags)
	return tags
}
