package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/tablook/internal/cli/output"
	"github.com/leapstack-labs/tablook/internal/rawdoc"
)

// RawOptions holds options for the raw command.
type RawOptions struct {
	Path string // slash separated child tags below the root
}

// NewRawCommand creates the raw command.
func NewRawCommand() *cobra.Command {
	opts := &RawOptions{}
	cmd := &cobra.Command{
		Use:   "raw <workbook>",
		Short: "Dump the raw document tree of a workbook",
		Long: `Dump the raw document tree of a workbook as YAML (or JSON with -o json).
Packaged workbooks are unwrapped first. Use --path to dump only the nodes
at the end of a chain of child tags.`,
		Example: `  # Whole document
  tablook raw sales.twb

  # Only the datasources
  tablook raw sales.twbx --path datasources/datasource`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRaw(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Path, "path", "", "Child tag chain to select, e.g. datasources/datasource")

	return cmd
}

func runRaw(cmd *cobra.Command, path string, opts *RawOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}
	root, err := rawdoc.ReadPackaged(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var dump any = root.Map()
	if opts.Path != "" {
		nodes := root.Path(strings.Split(strings.Trim(opts.Path, "/"), "/")...)
		maps := make([]map[string]any, 0, len(nodes))
		for _, n := range nodes {
			maps = append(maps, n.Map())
		}
		dump = maps
	}

	r := cmdCtx.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(dump)
	}
	enc := yaml.NewEncoder(r.Writer())
	enc.SetIndent(2)
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return enc.Close()
}
