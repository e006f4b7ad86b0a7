package cmd

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/lumipallolabs/sweeper/internal/cleaner"
	"github.com/lumipallolabs/sweeper/internal/format"
	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/spf13/cobra"
)

var cleanFlags struct {
	dryRun      bool
	maxDepth    int
	types       []string
	exclude     []string
	age         int
	force       bool
	jobs        int
	sizeOnly    bool
	noNative    bool
	commandOnly bool
}

var cleanCmd = &cobra.Command{
	Use:   "clean [PATH]",
	Short: "Remove build artifacts of the projects below a directory",
	Long: `Clean finds software projects (` + strings.Join(cleaner.NewRegistry().IDs(), ", ") + `)
below PATH and removes their rebuildable artifacts such as target/ or
node_modules/. The project's own clean command is tried first unless
--no-native is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogging(true); err != nil {
			return err
		}
		path := "."
		if len(args) == 1 {
			path = args[0]
		}
		return runClean(cmd, path, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// cleanSettings merges the cleaner config section with the flags
type cleanSettings struct {
	maxDepth int
	types    []string
	exclude  []string
	minAge   int
	jobs     int
	native   bool
}

func cleanOptions(cmd *cobra.Command) cleanSettings {
	s := cleanSettings{
		maxDepth: cfg.Cleaner.MaxDepth,
		types:    cfg.Cleaner.ProjectTypes,
		minAge:   cfg.Cleaner.MinAgeDays,
		jobs:     cfg.Cleaner.ParallelJobs,
		native:   cfg.Cleaner.NativeCommands,
	}
	f := cmd.Flags()
	if f.Changed("max-depth") {
		s.maxDepth = cleanFlags.maxDepth
	}
	if f.Changed("types") {
		s.types = cleanFlags.types
	}
	if f.Changed("age") {
		s.minAge = cleanFlags.age
	}
	if f.Changed("jobs") {
		s.jobs = cleanFlags.jobs
	}
	if f.Changed("no-native") {
		s.native = !cleanFlags.noNative
	}
	s.exclude = append([]string{".git"}, cfg.Cleaner.ExcludePatterns...)
	s.exclude = append(s.exclude, cleanFlags.exclude...)
	return s
}

func runClean(cmd *cobra.Command, path string, in io.Reader, out io.Writer) error {
	if cleanFlags.maxDepth < 0 || cleanFlags.jobs < 0 || cleanFlags.age < 0 {
		return usageError{fmt.Errorf("--max-depth, --jobs and --age must not be negative")}
	}
	for _, pattern := range cleanFlags.exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return usageError{fmt.Errorf("invalid --exclude pattern %q: %w", pattern, err)}
		}
	}
	settings := cleanOptions(cmd)
	reg, err := cleaner.NewRegistry().Select(settings.types)
	if err != nil {
		return usageError{err}
	}

	scan := cfg.ScanOptions()
	scan.Exclude = settings.exclude
	logging.Debug.Info().Str("path", path).Strs("types", reg.IDs()).Int("max_depth", settings.maxDepth).Msg("clean: searching")

	projects, tree, err := cleaner.Find(cmd.Context(), path, reg, scan, cleaner.FindOptions{
		MaxDepth:           settings.maxDepth,
		IncludeCommandOnly: cleanFlags.commandOnly,
	})
	if err != nil {
		return err
	}
	if settings.minAge > 0 {
		projects = cleaner.FilterByAge(projects, time.Duration(settings.minAge)*24*time.Hour, time.Now())
	}
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects with build artifacts found.")
		return nil
	}

	printProjects(out, tree.Path, projects)
	if cleanFlags.sizeOnly {
		return nil
	}

	if !cleanFlags.force && !cleanFlags.dryRun && !confirm(in, out, "Proceed with cleanup? [y/N] ") {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	executor := cleaner.NewExecutor(reg)
	executor.DryRun = cleanFlags.dryRun
	executor.NativeCommands = settings.native

	results, err := cleaner.CleanAll(cmd.Context(), executor, projects, settings.jobs, func(done, total int, r cleaner.Result) {
		ev := logging.Debug.Info()
		if r.Err != nil {
			ev = logging.Debug.Warn().Err(r.Err)
		}
		ev.Int("done", done).Int("total", total).Str("project", r.Project.Path).Stringer("status", r.Status).Msg("clean: progress")
	})
	if err != nil {
		return err
	}

	summary := cleaner.Summarize(results)
	printResults(out, tree.Path, results, summary, cleanFlags.dryRun)
	if !cleanFlags.dryRun {
		recordFreed(results)
	}
	if summary.Failed > 0 {
		return partialError{failed: summary.Failed, total: len(results)}
	}
	return nil
}

func printProjects(out io.Writer, root string, projects []cleaner.Project) {
	fmt.Fprintf(out, "%-16s %-50s %10s\n", "TYPE", "PATH", "SIZE")
	for _, p := range projects {
		fmt.Fprintf(out, "%-16s %-50s %10s\n", p.Name, displayPath(root, p.Path, 50), format.Size(p.Size))
	}
	size, _ := cleaner.Total(projects)
	fmt.Fprintf(out, "\nTotal: %s in %d project(s)\n", format.Size(size), len(projects))
}

func printResults(out io.Writer, root string, results []cleaner.Result, s cleaner.Summary, dryRun bool) {
	fmt.Fprintln(out)
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "  %-8s %s: %v\n", r.Status, displayPath(root, r.Project.Path, 0), r.Err)
		}
	}
	freed := "Freed"
	if dryRun {
		freed = "Would free"
	}
	fmt.Fprintf(out, "Cleaned: %d, Failed: %d, Skipped: %d\n", s.Cleaned, s.Failed, s.Skipped)
	fmt.Fprintf(out, "%s: %s\n", freed, format.Size(s.Freed))
}

// displayPath shows path relative to root, keeping the tail when it is
// longer than width (0 = no limit)
func displayPath(root, path string, width int) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	if width > 3 && len(rel) > width {
		rel = "..." + rel[len(rel)-width+3:]
	}
	return rel
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// recordFreed adds every cleaned project to the lifetime stats
func recordFreed(results []cleaner.Result) {
	mgr := newStats()
	if err := mgr.Load(); err != nil {
		logging.Debug.Warn().Err(err).Msg("could not load stats, starting fresh")
	}
	for _, r := range results {
		if r.Status == cleaner.StatusCleaned && r.Freed > 0 {
			mgr.AddFreed(r.Freed)
		}
	}
	if err := mgr.Close(); err != nil {
		logging.Debug.Warn().Err(err).Msg("could not save stats")
	}
}

func init() {
	addCleanFlags(cleanCmd)
	rootCmd.AddCommand(cleanCmd)
}

func addCleanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVarP(&cleanFlags.dryRun, "dry-run", "n", false, "show what would be freed without deleting")
	f.IntVarP(&cleanFlags.maxDepth, "max-depth", "d", 10, "levels below PATH to look for projects")
	f.StringSliceVarP(&cleanFlags.types, "types", "t", nil, "project types to clean, comma separated (default all)")
	f.StringArrayVarP(&cleanFlags.exclude, "exclude", "e", nil, "skip names matching a glob (repeatable)")
	f.IntVarP(&cleanFlags.age, "age", "a", 0, "only clean projects unchanged for this many days")
	f.BoolVarP(&cleanFlags.force, "force", "f", false, "do not ask for confirmation")
	f.IntVarP(&cleanFlags.jobs, "jobs", "j", 4, "projects cleaned in parallel")
	f.BoolVar(&cleanFlags.sizeOnly, "size-only", false, "list projects and sizes, then exit")
	f.BoolVar(&cleanFlags.noNative, "no-native", false, "delete artifacts directly instead of running the project's clean command")
	f.BoolVar(&cleanFlags.commandOnly, "include-command-only", false, "also list projects cleaned only by their own command (go, bazel)")
}
