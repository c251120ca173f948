package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tablook/internal/cli/output"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// inspectSections are the sections shown by default.
var inspectSections = []string{"datasources", "fields", "calculations", "sheets"}

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Sections []string
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect <workbook>",
		Short: "Show the semantic model of a workbook",
		Long: `Show the semantic model of a workbook as tables of datasources, fields,
calculations and sheets. JSON output prints the full model.`,
		Example: `  # Show everything
  tablook inspect sales.twb

  # Only calculations, as markdown
  tablook inspect sales.twb --section calculations -o markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Sections, "section", "s", nil,
		"Sections to show: "+strings.Join(inspectSections, ", "))
	_ = cmd.RegisterFlagCompletionFunc("section", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return inspectSections, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runInspect(cmd *cobra.Command, path string, opts *InspectOptions) error {
	sections := opts.Sections
	if len(sections) == 0 {
		sections = inspectSections
	}
	for _, s := range sections {
		if !slices.Contains(inspectSections, s) {
			return fmt.Errorf("unknown section %q (expected one of %s)", s, strings.Join(inspectSections, ", "))
		}
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := loadWorkbook(cmd, cmdCtx, path)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res.Model)
	}

	m := res.Model
	r.Header(1, fmt.Sprintf("%s (%s)", m.Workbook.Name, m.Workbook.ID))
	r.KeyValue("Schema", m.SchemaVersion)
	r.KeyValue("Findings", severityCounts(res.Findings))
	r.Println("")

	for _, s := range sections {
		switch s {
		case "datasources":
			renderDatasources(r, m)
		case "fields":
			renderFields(r, m)
		case "calculations":
			renderCalculations(r, m)
		case "sheets":
			renderSheets(r, m)
		}
		r.Println("")
	}
	return nil
}

func renderDatasources(r *output.Renderer, m *core.SemanticModel) {
	r.Header(2, "Datasources")
	rows := make([][]string, 0, len(m.Datasources))
	for _, ds := range m.Datasources {
		primary := ""
		for _, t := range ds.Tables {
			if t.IsPrimary {
				primary = t.ID
				break
			}
		}
		rows = append(rows, []string{
			ds.ID, ds.Name, string(ds.Connection.Type), core.Deref(ds.Connection.Dialect),
			fmt.Sprint(len(ds.Tables)), primary, fmt.Sprint(len(ds.Joins)), fmt.Sprint(len(ds.Fields)),
		})
	}
	r.Table([]string{"ID", "Name", "Connection", "Dialect", "Tables", "Primary", "Joins", "Fields"}, rows)

	var joins [][]string
	for _, ds := range m.Datasources {
		for _, j := range ds.Joins {
			review := ""
			if j.NeedsManualReview {
				review = "yes"
			}
			joins = append(joins, []string{ds.ID, j.LeftTableID, j.RightTableID, string(j.JoinType), j.Condition, review})
		}
	}
	if len(joins) > 0 {
		r.Println("")
		r.Header(3, "Joins")
		r.Table([]string{"Datasource", "Left", "Right", "Type", "Condition", "Review"}, joins)
	}
}

func renderFields(r *output.Renderer, m *core.SemanticModel) {
	r.Header(2, "Fields")
	var rows [][]string
	for _, ds := range m.Datasources {
		for i := range ds.Fields {
			f := &ds.Fields[i]
			rows = append(rows, []string{
				ds.ID, f.ID, f.Label(), string(f.Source), string(f.Role), string(f.Datatype),
				core.Deref(f.TableID), core.Deref(f.Aggregation),
			})
		}
	}
	r.Table([]string{"Datasource", "ID", "Label", "Source", "Role", "Datatype", "Table", "Aggregation"}, rows)
}

func renderCalculations(r *output.Renderer, m *core.SemanticModel) {
	r.Header(2, "Calculations")
	rows := make([][]string, 0, len(m.Calculations))
	for _, c := range m.Calculations {
		rows = append(rows, []string{
			c.DatasourceID, c.ID, c.Name, string(c.Category),
			fmt.Sprintf("%.2f", c.ComplexityScore), truncate(c.Expression, 60),
		})
	}
	r.Table([]string{"Datasource", "ID", "Name", "Category", "Score", "Expression"}, rows)
}

func renderSheets(r *output.Renderer, m *core.SemanticModel) {
	r.Header(2, "Sheets")
	rows := make([][]string, 0, len(m.Sheets))
	for _, s := range m.Sheets {
		chart := ""
		if s.Visualization != nil {
			chart = string(s.Visualization.ChartType)
		}
		rows = append(rows, []string{
			s.Name, s.DatasourceID, chart, fmt.Sprint(len(s.UsedFieldIDs)), fmt.Sprint(len(s.Filters)),
		})
	}
	r.Table([]string{"Name", "Datasource", "Chart", "Fields", "Filters"}, rows)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
