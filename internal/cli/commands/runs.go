package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tablook/internal/cli/output"
	"github.com/leapstack-labs/tablook/internal/state"
	"github.com/leapstack-labs/tablook/pkg/core"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded conversion runs",
		Long: `List the conversion runs recorded in the state database, most recent first.
Use 'runs show <run-id>' for the QA report of a single run.`,
		Example: `  # Last 20 runs
  tablook runs

  # All runs as JSON
  tablook runs --limit 0 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listRuns(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs (0 for all)")
	cmd.AddCommand(newRunsShowCommand())

	return cmd
}

func newRunsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a recorded run and its QA report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showRun(cmd, args[0])
		},
	}
}

func listRuns(cmd *cobra.Command, opts *RunsOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	runs, err := cmdCtx.Engine.Runs(cmd.Context(), opts.Limit)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*state.Run{}
		}
		return r.JSON(runs)
	}
	if len(runs) == 0 {
		r.Println("No runs recorded.")
		return nil
	}

	styles := r.Styles()
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := string(run.Status)
		if r.EffectiveMode() == output.ModeText {
			status = runStatusStyle(styles, run.Status).Render(status)
		}
		rows = append(rows, []string{
			run.ID, run.Source, status, run.StartedAt.Local().Format(time.DateTime),
			formatDuration(run.Duration()), shortHash(run.ContentHash),
		})
	}
	r.Table([]string{"Run", "Source", "Status", "Started", "Duration", "Hash"}, rows)
	return nil
}

// runDetail is the JSON output of runs show.
type runDetail struct {
	Run      *state.Run     `json:"run"`
	Findings int            `json:"findings"`
	Report   *core.QAReport `json:"qa_report,omitempty"`
}

func showRun(cmd *cobra.Command, runID string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	run, err := cmdCtx.Engine.Run(ctx, runID)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}

	detail := runDetail{Run: run}
	if run.Status == state.RunStatusCompleted {
		res, err := cmdCtx.Engine.LoadRun(ctx, runID)
		if err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		detail.Findings = len(res.Findings)
		detail.Report = res.Report
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(detail)
	}

	r.Header(1, "Run "+run.ID)
	r.KeyValue("Source", run.Source)
	r.KeyValue("Status", run.Status)
	r.KeyValue("Started", run.StartedAt.Local().Format(time.DateTime))
	r.KeyValue("Duration", formatDuration(run.Duration()))
	r.KeyValue("Hash", run.ContentHash)
	if run.Error != "" {
		r.KeyValue("Error", run.Error)
	}
	if detail.Report == nil {
		return nil
	}

	rep := detail.Report
	r.Println("")
	r.Header(2, "QA Report")
	r.KeyValue("Findings", detail.Findings)
	r.KeyValue("Manual review", rep.ManualInterventionRequired)
	if rep.Notes != nil {
		r.KeyValue("Notes", *rep.Notes)
	}
	if s := rep.DashboardSummary; s != nil {
		r.KeyValue("Sheets", s.TotalSheets)
		r.KeyValue("Tiles", s.TilesCreated)
	}
	if len(rep.Reasons) > 0 {
		r.Println("")
		for _, reason := range rep.Reasons {
			r.Println("- " + reason)
		}
	}
	return nil
}

func runStatusStyle(styles *output.Styles, status state.RunStatus) lipgloss.Style {
	switch status {
	case state.RunStatusCompleted:
		return styles.Success
	case state.RunStatusFailed:
		return styles.Error
	default:
		return styles.Warning
	}
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
