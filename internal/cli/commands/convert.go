package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tablook/internal/cli/output"
	"github.com/leapstack-labs/tablook/internal/engine"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	OutputDir string
	Format    string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}
	cmd := &cobra.Command{
		Use:   "convert <workbook>...",
		Short: "Convert workbooks into semantic model artifacts",
		Long: `Convert one or more Tableau workbooks (.twb or .twbx) into a semantic model.

For each workbook the command writes the semantic model (JSON or YAML) and a
QA report. With several workbooks each gets its own subdirectory named after
the file.`,
		Example: `  # Convert a workbook into ./tablook_out
  tablook convert sales.twb

  # Write YAML into a custom directory
  tablook convert sales.twbx -d build --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "d", "", "Directory for the generated artifacts")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Semantic model format: json, yaml")

	return cmd
}

// convertSummary is the JSON output of one conversion.
type convertSummary struct {
	Source                     string   `json:"source"`
	RunID                      string   `json:"run_id,omitempty"`
	Reused                     bool     `json:"reused"`
	Workbook                   string   `json:"workbook"`
	Datasources                int      `json:"datasources"`
	Calculations               int      `json:"calculations"`
	Sheets                     int      `json:"sheets"`
	Findings                   int      `json:"findings"`
	ManualInterventionRequired bool     `json:"manual_intervention_required"`
	Files                      []string `json:"files"`
}

func runConvert(cmd *cobra.Command, args []string, opts *ConvertOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	outDir := cfg.OutputDir
	if opts.OutputDir != "" {
		outDir = opts.OutputDir
	}
	formatName := cfg.Format
	if opts.Format != "" {
		formatName = opts.Format
	}
	format, err := engine.ParseFormat(formatName)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	summaries := make([]convertSummary, 0, len(args))
	for _, path := range args {
		res, err := cmdCtx.Engine.Convert(cmd.Context(), engine.Source{Path: path})
		if err != nil {
			return err
		}

		dir := outDir
		if len(args) > 1 {
			dir = filepath.Join(outDir, workbookStem(path))
		}
		files, err := engine.WriteArtifacts(dir, res, format)
		if err != nil {
			return err
		}
		summaries = append(summaries, summarizeConversion(path, res, files))

		if r.EffectiveMode() != output.ModeJSON {
			renderConversion(r, summaries[len(summaries)-1])
		}
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(summaries)
	}
	return nil
}

func summarizeConversion(path string, res *engine.Result, files []string) convertSummary {
	return convertSummary{
		Source:                     path,
		RunID:                      res.RunID,
		Reused:                     res.Reused,
		Workbook:                   res.Model.Workbook.Name,
		Datasources:                len(res.Model.Datasources),
		Calculations:               len(res.Model.Calculations),
		Sheets:                     len(res.Model.Sheets),
		Findings:                   len(res.Findings),
		ManualInterventionRequired: res.Report.ManualInterventionRequired,
		Files:                      files,
	}
}

func renderConversion(r *output.Renderer, s convertSummary) {
	verb := "Converted"
	if s.Reused {
		verb = "Reused"
	}
	r.Success(fmt.Sprintf("%s %s (%s)", verb, s.Source, s.Workbook))
	r.KeyValue("Datasources", s.Datasources)
	r.KeyValue("Calculations", s.Calculations)
	r.KeyValue("Sheets", s.Sheets)
	r.KeyValue("Findings", s.Findings)
	if s.RunID != "" {
		r.KeyValue("Run", s.RunID)
	}
	for _, f := range s.Files {
		r.KeyValue("Wrote", f)
	}
	if s.ManualInterventionRequired {
		r.Warning("manual intervention required, see the QA report")
	}
}

// workbookStem returns the file name without directory and extension.
func workbookStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loadWorkbook converts a single workbook for the read-only commands.
func loadWorkbook(cmd *cobra.Command, cmdCtx *CommandContext, path string) (*engine.Result, error) {
	return cmdCtx.Engine.Convert(cmd.Context(), engine.Source{Path: path})
}

func severityCounts(findings []core.Finding) string {
	counts := core.CountBySeverity(findings)
	parts := make([]string, 0, len(counts))
	for _, sev := range []core.Severity{core.SeverityError, core.SeverityWarning, core.SeverityInfo, core.SeverityHint} {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
