package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lumipallolabs/sweeper/internal/core"
	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/lumipallolabs/sweeper/internal/ui"
	"github.com/spf13/cobra"
)

var tuiFlags struct {
	all           bool
	oneFileSystem bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui [PATH]",
	Short: "Browse disk usage interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogging(false); err != nil {
			return err
		}
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return usageError{fmt.Errorf("%s is not a directory", path)}
		}
		return runTUI(cmd, path)
	},
}

func runTUI(cmd *cobra.Command, path string) error {
	// Hidden entries are always scanned so "." can reveal them without a rescan
	opts := cfg.ScanOptions()
	opts.IncludeHidden = true
	if cmd.Flags().Changed("one-file-system") {
		opts.OneFileSystem = tuiFlags.oneFileSystem
	}

	statsMgr := newStats()
	if err := statsMgr.Load(); err != nil {
		logging.Debug.Warn().Err(err).Msg("could not load stats, starting fresh")
	}

	ctrl := core.NewController(path, opts, statsMgr)
	defer ctrl.Stop()

	showHidden := cfg.TUI.ShowHidden
	if cmd.Flags().Changed("all") {
		showHidden = tuiFlags.all
	}

	app := ui.NewApp(cmd.Context(), ctrl, ui.Options{
		Version:    Version,
		Sort:       cfg.SortOrder(),
		ShowHidden: showHidden,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && cmd.Context().Err() == nil {
		return err
	}
	return nil
}

func init() {
	f := tuiCmd.Flags()
	f.BoolVarP(&tuiFlags.all, "all", "a", false, "show hidden files")
	f.BoolVarP(&tuiFlags.oneFileSystem, "one-file-system", "x", false, "stay on the root's filesystem")

	rootCmd.AddCommand(tuiCmd)
}
