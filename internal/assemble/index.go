package assemble

import (
	"strings"

	"github.com/leapstack-labs/tablook/internal/extract"
	"github.com/leapstack-labs/tablook/pkg/calc"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// dsIndex resolves identifiers inside one datasource. It is built once the
// datasource's tables, fields and calculations are in place and holds
// pointers into those slices, so they must not grow afterwards.
type dsIndex struct {
	ds     *core.Datasource
	tables map[string]bool
	fields map[string]*core.Field
	labels map[string]*core.Field
	calcs  map[string]*core.Calculation
}

func newIndex(ds *core.Datasource, calcs []core.Calculation) *dsIndex {
	ix := &dsIndex{
		ds:     ds,
		tables: make(map[string]bool, len(ds.Tables)),
		fields: make(map[string]*core.Field, len(ds.Fields)),
		labels: make(map[string]*core.Field, len(ds.Fields)),
		calcs:  make(map[string]*core.Calculation),
	}
	for _, t := range ds.Tables {
		ix.tables[t.ID] = true
	}
	for i := range ds.Fields {
		f := &ds.Fields[i]
		if _, dup := ix.fields[f.ID]; !dup {
			ix.fields[f.ID] = f
		}
		label := strings.ToLower(f.Label())
		if _, dup := ix.labels[label]; !dup {
			ix.labels[label] = f
		}
	}
	for i := range calcs {
		c := &calcs[i]
		if c.DatasourceID == ds.ID {
			if _, dup := ix.calcs[c.ID]; !dup {
				ix.calcs[c.ID] = c
			}
		}
	}
	return ix
}

// fieldByID looks a field up by id only.
func (ix *dsIndex) fieldByID(id string) (*core.Field, bool) {
	if ix == nil {
		return nil, false
	}
	f, ok := ix.fields[id]
	return f, ok
}

// field looks a name up by id, then by caption.
func (ix *dsIndex) field(name string) (*core.Field, bool) {
	if ix == nil {
		return nil, false
	}
	if f, ok := ix.fields[name]; ok {
		return f, true
	}
	f, ok := ix.labels[strings.ToLower(name)]
	return f, ok
}

// modelIndex holds one dsIndex per datasource plus the parameter scope.
type modelIndex struct {
	byID   map[string]*dsIndex
	params *dsIndex
}

func newModelIndex(m *core.SemanticModel) *modelIndex {
	mi := &modelIndex{byID: make(map[string]*dsIndex, len(m.Datasources))}
	for i := range m.Datasources {
		ds := &m.Datasources[i]
		if _, dup := mi.byID[ds.ID]; dup {
			continue
		}
		ix := newIndex(ds, m.Calculations)
		mi.byID[ds.ID] = ix
		if ds.ID == extract.ParametersDatasource {
			mi.params = ix
		}
	}
	return mi
}

// resolveRef resolves a formula reference made from inside ix. Unqualified
// names fall back to workbook parameters; any other qualifier names a
// different datasource and does not resolve.
func (mi *modelIndex) resolveRef(ix *dsIndex, ref calc.FieldRef) (*core.Field, bool) {
	switch ref.Qualifier {
	case extract.ParametersDatasource:
		return mi.params.field(ref.Name)
	case "", ix.ds.ID:
		if f, ok := ix.field(ref.Name); ok {
			return f, true
		}
		if ref.Qualifier == "" {
			return mi.params.field(ref.Name)
		}
	}
	return nil, false
}
