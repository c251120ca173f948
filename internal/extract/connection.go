package extract

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/tablook/internal/rawdoc"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// Relation types as written in the type attribute.
const (
	relationTable      = "table"
	relationText       = "text"
	relationJoin       = "join"
	relationCollection = "collection"
)

// extractClasses are connection classes that read a materialized extract.
var extractClasses = map[string]bool{
	"hyper":      true,
	"dataengine": true,
}

// DatasourceInfo is what the connection extractor finds for one datasource.
type DatasourceInfo struct {
	ID           string
	Name         string
	Connection   core.Connection
	Tables       []core.Table
	IsParameters bool
}

// Connections extracts every datasource with its connection and tables,
// in document order.
func Connections(root *rawdoc.Node) []DatasourceInfo {
	nodes := datasourceNodes(root)
	out := make([]DatasourceInfo, 0, len(nodes))
	for i, ds := range nodes {
		out = append(out, connectionFor(ds, i))
	}
	return out
}

func connectionFor(ds *rawdoc.Node, index int) DatasourceInfo {
	id := datasourceID(ds, index)
	info := DatasourceInfo{
		ID:           id,
		Name:         ds.AttrOr("caption", id),
		Connection:   core.Connection{Type: core.ConnectionUnknown},
		Tables:       []core.Table{},
		IsParameters: isParameters(ds),
	}

	conn := childByTag(ds, "connection")
	named := namedConnections(conn)
	top := topRelation(ds)
	objects := graphObjects(ds)

	// Collect tables: relation tree first, then object-graph objects.
	seen := make(map[string]bool)
	var textRel *rawdoc.Node
	hasTableRel := false
	addTable := func(rel *rawdoc.Node) {
		t := tableFromRelation(rel, len(info.Tables), conn, named)
		if seen[t.ID] {
			return
		}
		seen[t.ID] = true
		info.Tables = append(info.Tables, t)
	}
	visit := func(rel *rawdoc.Node) {
		switch rel.AttrOr("type", "") {
		case relationText:
			if textRel == nil {
				textRel = rel
			}
			addTable(rel)
		case relationTable:
			hasTableRel = true
			addTable(rel)
		}
	}
	walkRelations(top, visit)
	objectIDs := objectTableIDs(objects)
	for _, obj := range objects {
		if obj.relation != nil {
			walkRelations(obj.relation, visit)
			continue
		}
		if tid := objectIDs[obj.id]; !seen[tid] {
			seen[tid] = true
			info.Tables = append(info.Tables, core.Table{ID: tid, Name: tid})
		}
	}

	primary := primaryRelation(top, objects)
	primaryID := ""
	if primary != nil {
		primaryID = tableID(primary, 0)
		for i := range info.Tables {
			if info.Tables[i].ID == primaryID {
				info.Tables[i].IsPrimary = true
				break
			}
		}
	}

	c := &info.Connection
	c.Dialect = dialect(conn, named, primary)
	switch {
	case textRel != nil:
		c.Type = core.ConnectionCustomSQL
		sql := textRel.Text
		if strings.TrimSpace(sql) != "" {
			c.RawSQL = &sql
		}
		c.Database = database(conn, named, textRel)
	case hasTableRel:
		c.Type = core.ConnectionTable
		if t, ok := tableByID(info.Tables, primaryID); ok {
			c.Database = t.Database
			c.Schema = t.Schema
			c.Table = t.Table
		}
	case hasExtract(ds, conn, named):
		c.Type = core.ConnectionExtract
	}
	return info
}

func tableByID(tables []core.Table, id string) (core.Table, bool) {
	if id == "" {
		return core.Table{}, false
	}
	for _, t := range tables {
		if t.ID == id {
			return t, true
		}
	}
	return core.Table{}, false
}

// topRelation returns the first relation directly under the datasource
// connection, or under the datasource itself in older documents.
func topRelation(ds *rawdoc.Node) *rawdoc.Node {
	if rel := childByTag(childByTag(ds, "connection"), "relation"); rel != nil {
		return rel
	}
	return childByTag(ds, "relation")
}

// relationChildren returns the nested relations of a join or collection.
func relationChildren(rel *rawdoc.Node) []*rawdoc.Node {
	return childrenByTag(rel, "relation")
}

// walkRelations visits rel and its nested relations depth-first, left to right.
func walkRelations(rel *rawdoc.Node, fn func(*rawdoc.Node)) {
	if rel == nil {
		return
	}
	fn(rel)
	for _, c := range relationChildren(rel) {
		walkRelations(c, fn)
	}
}

// leftmostLeaf descends through the first child of nested joins.
func leftmostLeaf(rel *rawdoc.Node) *rawdoc.Node {
	for rel != nil && rel.AttrOr("type", "") == relationJoin {
		children := relationChildren(rel)
		if len(children) == 0 {
			return nil
		}
		rel = children[0]
	}
	return rel
}

// primaryRelation picks the single relation the connection references
// directly. Collections and multi-object graphs have no primary.
func primaryRelation(top *rawdoc.Node, objects []graphObject) *rawdoc.Node {
	if top == nil {
		if len(objects) == 1 {
			return leftmostLeaf(objects[0].relation)
		}
		return nil
	}
	switch top.AttrOr("type", "") {
	case relationTable, relationText:
		return top
	case relationJoin:
		return leftmostLeaf(top)
	case relationCollection:
		children := relationChildren(top)
		if len(children) == 1 && len(objects) <= 1 {
			return leftmostLeaf(children[0])
		}
	}
	return nil
}

// tableID is the logical table identity: the relation name, then the last
// part of the physical name.
func tableID(rel *rawdoc.Node, index int) string {
	if name := rel.AttrOr("name", ""); name != "" {
		return name
	}
	if parts := splitQualified(rel.AttrOr("table", "")); len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return fmt.Sprintf("table_%d", index+1)
}

func tableFromRelation(rel *rawdoc.Node, index int, conn *rawdoc.Node, named map[string]*rawdoc.Node) core.Table {
	id := tableID(rel, index)
	t := core.Table{ID: id, Name: id}

	if rel.AttrOr("type", "") == relationTable {
		parts := splitQualified(rel.AttrOr("table", ""))
		switch len(parts) {
		case 0:
		case 1:
			t.Table = core.OptString(parts[0])
		case 2:
			t.Schema = core.OptString(parts[0])
			t.Table = core.OptString(parts[1])
		default:
			n := len(parts)
			t.Database = core.OptString(parts[n-3])
			t.Schema = core.OptString(parts[n-2])
			t.Table = core.OptString(parts[n-1])
		}
	}
	if t.Database == nil {
		t.Database = database(conn, named, rel)
	}
	return t
}

// namedConnections indexes the upstream connections of a federated connection.
func namedConnections(conn *rawdoc.Node) map[string]*rawdoc.Node {
	named := make(map[string]*rawdoc.Node)
	for _, nc := range childrenByTag(childByTag(conn, "named-connections"), "named-connection") {
		if inner := childByTag(nc, "connection"); inner != nil {
			named[nc.AttrOr("name", "")] = inner
		}
	}
	return named
}

// upstream returns the concrete connection a relation reads from.
func upstream(conn *rawdoc.Node, named map[string]*rawdoc.Node, rel *rawdoc.Node) *rawdoc.Node {
	if rel != nil {
		if c, ok := named[rel.AttrOr("connection", "")]; ok {
			return c
		}
	}
	if len(named) == 1 {
		for _, c := range named {
			return c
		}
	}
	return conn
}

func database(conn *rawdoc.Node, named map[string]*rawdoc.Node, rel *rawdoc.Node) *string {
	c := upstream(conn, named, rel)
	if c == nil {
		return nil
	}
	return core.OptString(c.AttrOr("dbname", ""))
}

// dialect is the lower-cased class of the upstream connection. The federated
// wrapper class is not a dialect.
func dialect(conn *rawdoc.Node, named map[string]*rawdoc.Node, primary *rawdoc.Node) *string {
	c := upstream(conn, named, primary)
	if c == nil {
		return nil
	}
	class := strings.ToLower(c.AttrOr("class", ""))
	if class == "federated" {
		return nil
	}
	return core.OptString(class)
}

func hasExtract(ds, conn *rawdoc.Node, named map[string]*rawdoc.Node) bool {
	if ex := childByTag(ds, "extract"); ex != nil && ex.AttrOr("enabled", "") == "true" {
		return true
	}
	if conn != nil && extractClasses[strings.ToLower(conn.AttrOr("class", ""))] {
		return true
	}
	for _, c := range named {
		if extractClasses[strings.ToLower(c.AttrOr("class", ""))] {
			return true
		}
	}
	return false
}

// graphObject is a logical table of the relationship model.
type graphObject struct {
	id       string
	caption  string
	relation *rawdoc.Node
}

func objectGraph(ds *rawdoc.Node) *rawdoc.Node {
	return childByTag(ds, "object-graph")
}

func graphObjects(ds *rawdoc.Node) []graphObject {
	var out []graphObject
	for _, obj := range childrenByTag(childByTag(objectGraph(ds), "objects"), "object") {
		out = append(out, graphObject{
			id:       obj.AttrOr("id", ""),
			caption:  obj.AttrOr("caption", ""),
			relation: childByTag(childByTag(obj, "properties"), "relation"),
		})
	}
	return out
}

// objectTableIDs maps object-graph object ids to logical table ids.
func objectTableIDs(objects []graphObject) map[string]string {
	ids := make(map[string]string, len(objects))
	for i, obj := range objects {
		switch {
		case obj.relation != nil:
			if leaf := leftmostLeaf(obj.relation); leaf != nil {
				ids[obj.id] = tableID(leaf, i)
				continue
			}
			ids[obj.id] = obj.id
		case obj.caption != "":
			ids[obj.id] = obj.caption
		default:
			ids[obj.id] = obj.id
		}
	}
	return ids
}
