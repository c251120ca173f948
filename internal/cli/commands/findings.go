package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tablook/internal/cli/output"
	"github.com/leapstack-labs/tablook/internal/qa"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// FindingsOptions holds options for the findings command.
type FindingsOptions struct {
	Severity string // Minimum severity to show
	QA       bool   // Show QA rule findings instead of assembler findings
}

// NewFindingsCommand creates the findings command.
func NewFindingsCommand() *cobra.Command {
	opts := &FindingsOptions{}
	cmd := &cobra.Command{
		Use:   "findings <workbook>",
		Short: "List unresolved references and ambiguous classifications",
		Long: `List the findings raised while assembling the semantic model of a workbook.

With --qa the findings of the QA rules are listed instead; these are the
findings behind the reasons of the QA report.`,
		Example: `  # All findings
  tablook findings sales.twb

  # Only errors and warnings
  tablook findings sales.twb --severity warning

  # QA rule findings as JSON
  tablook findings sales.twb --qa -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFindings(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Severity, "severity", "hint", "Minimum severity: error, warning, info, hint")
	cmd.Flags().BoolVar(&opts.QA, "qa", false, "List QA rule findings")
	_ = cmd.RegisterFlagCompletionFunc("severity", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"error", "warning", "info", "hint"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runFindings(cmd *cobra.Command, path string, opts *FindingsOptions) error {
	minSev, ok := core.ParseSeverity(opts.Severity)
	if !ok {
		return fmt.Errorf("unknown severity %q", opts.Severity)
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

	findings := res.Findings
	if opts.QA {
		qaCfg, err := cmdCtx.Cfg.QA.AnalyzerConfig()
		if err != nil {
			return err
		}
		findings = qa.NewAnalyzer(qaCfg).Analyze(res.Model)
	}
	findings = filterFindings(findings, minSev)

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(findings)
	case output.ModeMarkdown:
		renderFindingsMarkdown(r, findings)
	default:
		renderFindingsText(r, findings)
	}
	return nil
}

func filterFindings(findings []core.Finding, minSev core.Severity) []core.Finding {
	out := make([]core.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Severity.AtLeast(minSev) {
			out = append(out, f)
		}
	}
	return out
}

func findingRows(findings []core.Finding, sev func(core.Severity) string) [][]string {
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, []string{
			sev(f.Severity), f.Rule, string(f.Kind), f.DatasourceID, f.Entity, f.EntityID, f.Message,
		})
	}
	return rows
}

var findingsHeader = []string{"Severity", "Rule", "Kind", "Datasource", "Entity", "ID", "Message"}

func renderFindingsText(r *output.Renderer, findings []core.Finding) {
	styles := r.Styles()
	if len(findings) == 0 {
		r.Success("No findings")
		return
	}
	r.Table(findingsHeader, findingRows(findings, func(s core.Severity) string {
		return styles.Severity(s).Render(s.String())
	}))
	r.Println(styles.Muted.Render(fmt.Sprintf("%d findings: %s", len(findings), severityCounts(findings))))
}

func renderFindingsMarkdown(r *output.Renderer, findings []core.Finding) {
	r.Println("# Findings")
	r.Println("")
	if len(findings) == 0 {
		r.Println("No findings.")
		return
	}
	r.Table(findingsHeader, findingRows(findings, core.Severity.String))
	r.Println("")
	r.Printf("%d findings: %s\n", len(findings), severityCounts(findings))
}
