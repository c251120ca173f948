package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tablook/internal/engine"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	OutputDir string
	Format    string
	Debounce  time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch <workbook>",
		Short: "Convert a workbook again whenever it changes",
		Long: `Convert a workbook, then watch it and convert it again after every change.
Bursts of file events are collapsed into one conversion after the debounce
interval. Stop with Ctrl-C.`,
		Example: `  tablook watch sales.twb -d build --debounce 500ms`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "d", "", "Directory for the generated artifacts")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Semantic model format: json, yaml")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "Quiet period before converting again")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, path string, opts *WatchOptions) error {
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
	debounce := cfg.Watch.Debounce
	if opts.Debounce > 0 {
		debounce = opts.Debounce
	}

	r := cmdCtx.Renderer
	convert := func() {
		res, err := cmdCtx.Engine.Convert(ctx, engine.Source{Path: path})
		if err != nil {
			r.Error(err.Error())
			return
		}
		files, err := engine.WriteArtifacts(outDir, res, format)
		if err != nil {
			r.Error(err.Error())
			return
		}
		renderConversion(r, summarizeConversion(path, res, files))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file, so the directory is watched instead.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	convert()
	r.Printf("Watching %s (Ctrl-C to stop)\n", path)
	cmdCtx.Logger.Debug("watching workbook", "path", path, "debounce", debounce)

	return watchLoop(ctx, watcher, path, debounce, convert, func(err error) {
		cmdCtx.Logger.Warn("watch error", "error", err)
	})
}

// watchLoop calls onChange once per burst of write or create events on path.
// It returns when ctx is done or the watcher is closed.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, debounce time.Duration,
	onChange func(), onError func(error)) error {
	target := filepath.Clean(path)

	var pending <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			pending = timer.C

		case <-pending:
			pending = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			onError(err)
		}
	}
}
