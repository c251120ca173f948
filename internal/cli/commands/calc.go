package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tablook/internal/cli/output"
	"github.com/leapstack-labs/tablook/pkg/calc"
)

// CalcOptions holds options for the calc command.
type CalcOptions struct {
	Parameters []string
}

// NewCalcCommand creates the calc command.
func NewCalcCommand() *cobra.Command {
	opts := &CalcOptions{}
	cmd := &cobra.Command{
		Use:   "calc [expression]",
		Short: "Classify a calculation expression",
		Long: `Classify a Tableau calculation expression: category, complexity score,
nesting depth, functions and field references.

Without an expression an interactive session starts. Each line is analyzed
on its own; use .help for the available commands.`,
		Example: `  # Analyze one expression
  tablook calc 'SUM([Sales]) / SUM([Profit])'

  # Treat [Target] as a parameter
  tablook calc 'IF [Sales] > [Target] THEN "hit" END' --param Target

  # Interactive session
  tablook calc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			if len(args) == 1 {
				return renderAnalysis(cmdCtx.Renderer, args[0], calc.Analyze(args[0], calc.Options{Parameters: opts.Parameters}))
			}
			return runCalcREPL(cmd, cmdCtx, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Parameters, "param", "p", nil, "Names treated as workbook parameters")

	return cmd
}

// analysisOutput is the JSON form of an analysis.
type analysisOutput struct {
	Expression     string   `json:"expression"`
	Category       string   `json:"category"`
	Score          float64  `json:"complexity_score"`
	Depth          int      `json:"depth"`
	Functions      []string `json:"functions"`
	Refs           []string `json:"references"`
	HasConditional bool     `json:"has_conditional"`
	HasAggregate   bool     `json:"has_aggregate"`
	Error          string   `json:"error,omitempty"`
}

func newAnalysisOutput(expr string, a calc.Analysis) analysisOutput {
	out := analysisOutput{
		Expression:     expr,
		Category:       string(a.Category),
		Score:          a.Score,
		Depth:          a.Depth,
		Functions:      a.Functions,
		Refs:           make([]string, 0, len(a.Refs)),
		HasConditional: a.HasConditional,
		HasAggregate:   a.HasAggregate,
	}
	if out.Functions == nil {
		out.Functions = []string{}
	}
	for _, ref := range a.Refs {
		out.Refs = append(out.Refs, ref.String())
	}
	if a.Err != nil {
		out.Error = a.Err.Error()
	}
	return out
}

func renderAnalysis(r *output.Renderer, expr string, a calc.Analysis) error {
	out := newAnalysisOutput(expr, a)
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.KeyValue("Category", out.Category)
	r.KeyValue("Score", fmt.Sprintf("%.2f", out.Score))
	r.KeyValue("Depth", out.Depth)
	r.KeyValue("Functions", joinOrDash(out.Functions))
	r.KeyValue("References", joinOrDash(out.Refs))
	r.KeyValue("Conditional", out.HasConditional)
	r.KeyValue("Aggregate", out.HasAggregate)
	if out.Error != "" {
		r.Warning(out.Error)
	}
	return nil
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func runCalcREPL(cmd *cobra.Command, cmdCtx *CommandContext, opts *CalcOptions) error {
	// History lives next to the state database
	historyFile := ""
	if cmdCtx.Cfg.StatePath != "" {
		historyFile = filepath.Join(filepath.Dir(cmdCtx.Cfg.StatePath), "calc_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "calc> ",
		HistoryFile:     historyFile,
		AutoComplete:    newFunctionCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "tablook calculation analyzer")
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	params := append([]string(nil), opts.Parameters...)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			quit := handleCalcCommand(cmd, cmdCtx.Renderer, line, &params)
			if quit {
				break
			}
			continue
		}

		if err := renderAnalysis(cmdCtx.Renderer, line, calc.Analyze(line, calc.Options{Parameters: params})); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		_, _ = fmt.Fprintln(out)
	}
	return nil
}

// handleCalcCommand runs a dot-command and reports whether the session should end.
func handleCalcCommand(cmd *cobra.Command, r *output.Renderer, line string, params *[]string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printCalcHelp(cmd.OutOrStdout())

	case ".param":
		if len(parts) < 2 {
			r.Printf("parameters: %s\n", joinOrDash(*params))
			break
		}
		*params = append(*params, strings.Join(parts[1:], " "))

	case ".func":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .func <name>")
			break
		}
		info, ok := calc.LookupFunction(parts[1])
		if !ok {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown function: %s\n", parts[1])
			break
		}
		r.KeyValue("Signature", info.Signature)
		r.KeyValue("Category", info.Category)
		r.KeyValue("Description", info.Description)

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printCalcHelp(w io.Writer) {
	_, _ = fmt.Fprintln(w, `Commands:
  .help           Show this help
  .param [name]   Add a parameter name, or list the current ones
  .func <name>    Describe a catalog function
  .quit           Exit

Any other line is analyzed as a calculation expression.`)
}

// newFunctionCompleter completes catalog function names.
func newFunctionCompleter() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(calc.Catalog)+4)
	for _, c := range []string{".help", ".param", ".func", ".quit"} {
		items = append(items, readline.PcItem(c))
	}
	for _, fn := range calc.Catalog {
		items = append(items, readline.PcItem(fn.Name+"("))
	}
	return readline.NewPrefixCompleter(items...)
}
