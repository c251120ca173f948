package assemble

import (
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/tablook/internal/extract"
	"github.com/leapstack-labs/tablook/internal/rawdoc"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// Result is an assembled model with the findings raised while building it.
type Result struct {
	Model    *core.SemanticModel
	Findings []core.Finding
}

// Parse reads workbook bytes, plain or packaged, and assembles the model.
// The only error is *rawdoc.MalformedDocumentError.
func Parse(data []byte, opts ...Option) (*core.SemanticModel, []core.Finding, error) {
	root, err := rawdoc.ReadPackaged(data)
	if err != nil {
		return nil, nil, err
	}
	res := Assemble(root, opts...)
	return res.Model, res.Findings, nil
}

// extraction holds the raw output of the independent extractors.
type extraction struct {
	workbook    *core.Workbook
	connections []extract.DatasourceInfo
	joins       []extract.DatasourceJoins
	fields      []extract.DatasourceFields
	sheets      []extract.SheetDraft
}

// run executes the extractors. They only read the tree, so the parallel
// path needs no synchronization beyond the final wait.
func (e *extraction) run(root *rawdoc.Node, parallel bool) {
	tasks := []func(){
		func() { e.workbook = extract.Workbook(root) },
		func() { e.connections = extract.Connections(root) },
		func() { e.joins = extract.Joins(root) },
		func() { e.fields = extract.Fields(root) },
		func() { e.sheets = extract.Sheets(root) },
	}
	if !parallel {
		for _, task := range tasks {
			task()
		}
		return
	}
	var g errgroup.Group
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			task()
			return nil
		})
	}
	_ = g.Wait()
}

// Assemble builds and validates the semantic model of a parsed document.
// It never fails: every problem becomes a marker in the model and a finding.
func Assemble(root *rawdoc.Node, opts ...Option) *Result {
	o := buildOptions(opts)
	start := time.Now()

	var ex extraction
	ex.run(root, o.Parallel)

	c := &collector{}
	m := core.NewSemanticModel()

	m.Workbook = ex.workbook
	if m.Workbook == nil {
		m.Workbook = core.DefaultWorkbook()
		c.ambiguous(core.SeverityInfo, "", core.EntityWorkbook, m.Workbook.ID,
			"workbook identity is missing, using a placeholder")
	}

	// The extractors walk the same datasource list, so entries line up by index.
	for i, info := range ex.connections {
		ds := core.Datasource{
			ID:         info.ID,
			Name:       info.Name,
			Connection: info.Connection,
			Tables:     info.Tables,
			Joins:      []core.Join{},
			Fields:     []core.Field{},
		}
		if i < len(ex.joins) && ex.joins[i].DatasourceID == info.ID {
			ds.Joins = ex.joins[i].Joins
		}
		if i < len(ex.fields) && ex.fields[i].DatasourceID == info.ID {
			ds.Fields = ex.fields[i].Fields
			m.Calculations = append(m.Calculations, ex.fields[i].Calculations...)
		}
		m.Datasources = append(m.Datasources, ds)
	}

	mi := newModelIndex(m)
	validateDatasources(m, mi, c)
	for _, d := range ex.sheets {
		m.Sheets = append(m.Sheets, buildSheet(d, mi, c))
	}

	core.SortFindings(c.findings)
	if c.findings == nil {
		c.findings = []core.Finding{}
	}

	o.Logger.Debug("assembled semantic model",
		"workbook", m.Workbook.ID,
		"datasources", len(m.Datasources),
		"calculations", len(m.Calculations),
		"sheets", len(m.Sheets),
		"findings", len(c.findings),
		"parallel", o.Parallel,
		"duration", time.Since(start))
	return &Result{Model: m, Findings: c.findings}
}
