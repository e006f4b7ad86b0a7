package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/lumipallolabs/sweeper/internal/format"
	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/lumipallolabs/sweeper/internal/model"
	"github.com/lumipallolabs/sweeper/internal/scanner"
	"github.com/spf13/cobra"
)

// scanDepthMargin is how far below the displayed depth the scan reaches,
// so directory totals at the display limit include deeper content
const scanDepthMargin = 10

var scanFlags struct {
	maxDepth       int
	top            int
	all            bool
	oneFileSystem  bool
	jobs           int
	followSymlinks bool
	exclude        []string
	json           bool
	summary        bool
	table          bool
	sort           string
	noColor        bool
}

var scanCmd = &cobra.Command{
	Use:   "scan [PATH]",
	Short: "Scan a directory and print its largest entries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogging(true); err != nil {
			return err
		}
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		return runScan(cmd, path, cmd.OutOrStdout())
	},
}

func scanOptions(cmd *cobra.Command) scanner.Options {
	opts := cfg.ScanOptions()
	opts.MaxDepth = scanFlags.maxDepth + scanDepthMargin
	if cmd.Flags().Changed("all") {
		opts.IncludeHidden = scanFlags.all
	}
	if cmd.Flags().Changed("one-file-system") {
		opts.OneFileSystem = scanFlags.oneFileSystem
	}
	if cmd.Flags().Changed("jobs") {
		opts.Threads = scanFlags.jobs
	}
	if cmd.Flags().Changed("follow-symlinks") {
		opts.FollowSymlinks = scanFlags.followSymlinks
	}
	opts.Exclude = append(opts.Exclude, scanFlags.exclude...)
	return opts
}

func runScan(cmd *cobra.Command, path string, out io.Writer) error {
	if !model.ValidSortOrder(scanFlags.sort) {
		return usageError{fmt.Errorf("invalid --sort %q: want size, name or mtime", scanFlags.sort)}
	}
	if scanFlags.maxDepth < 0 || scanFlags.jobs < 0 {
		return usageError{fmt.Errorf("--max-depth and --jobs must not be negative")}
	}
	for _, pattern := range scanFlags.exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return usageError{fmt.Errorf("invalid --exclude pattern %q: %w", pattern, err)}
		}
	}

	opts := scanOptions(cmd)
	logging.Scanner.Info().Str("path", path).Int("threads", opts.Threads).Msg("scanning")

	root, err := scanner.ScanParallel(cmd.Context(), path, opts)
	if err != nil {
		return err
	}
	root.SortTree(model.ParseSortOrder(scanFlags.sort))

	if scanFlags.json {
		var text string
		if scanFlags.summary {
			text, err = format.JSONSummary(root, true)
		} else {
			text, err = format.JSON(root, true)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
		return nil
	}

	fopts := format.DefaultOptions()
	fopts.MaxDepth = scanFlags.maxDepth
	fopts.TopN = scanFlags.top
	fopts.Colors = !scanFlags.noColor

	if scanFlags.table {
		fmt.Fprint(out, format.Table(root, fopts))
	} else {
		fmt.Fprint(out, format.Tree(root, fopts))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, format.Totals(root))
	return nil
}

func init() {
	addScanFlags(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

func addScanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVarP(&scanFlags.maxDepth, "max-depth", "d", 3, "levels to display")
	f.IntVarP(&scanFlags.top, "top", "n", 20, "largest children to show per directory")
	f.BoolVarP(&scanFlags.all, "all", "a", false, "include hidden files")
	f.BoolVarP(&scanFlags.oneFileSystem, "one-file-system", "x", false, "stay on the root's filesystem")
	f.IntVarP(&scanFlags.jobs, "jobs", "j", 0, "worker threads (0 = number of CPUs)")
	f.BoolVarP(&scanFlags.followSymlinks, "follow-symlinks", "L", false, "follow symbolic links")
	f.StringArrayVarP(&scanFlags.exclude, "exclude", "e", nil, "exclude names matching a glob (repeatable)")
	f.BoolVar(&scanFlags.json, "json", false, "print JSON")
	f.BoolVar(&scanFlags.summary, "summary", false, "with --json, print only sizes and counts")
	f.BoolVar(&scanFlags.table, "table", false, "print a table instead of a tree")
	f.StringVar(&scanFlags.sort, "sort", "size", "sort by size, name or mtime")
	f.BoolVar(&scanFlags.noColor, "no-color", false, "disable colours")
	cmd.MarkFlagsMutuallyExclusive("json", "table")
}
