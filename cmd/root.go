package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/lumipallolabs/sweeper/internal/config"
	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/lumipallolabs/sweeper/internal/stats"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	ExitOK         = 0
	ExitError      = 1
	ExitConfig     = 2
	ExitPermission = 3
	ExitPartial    = 5
)

// Version is set at build time with -ldflags "-X github.com/lumipallolabs/sweeper/cmd.Version=..."
var Version = "dev"

var (
	cfgFile string
	verbose int
	quiet   bool

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Find out what is using your disk",
	Long: `Sweeper scans a directory tree and reports where the space went.

  sweeper scan [PATH]   print the largest entries as a tree, table or JSON
  sweeper tui [PATH]    browse the tree and treemap interactively
  sweeper clean [PATH]  remove build artifacts of projects below PATH
  sweeper monitor       alert when a filesystem fills up`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// usageError marks bad flag values so they exit like config errors
type usageError struct{ error }

// partialError reports a clean run where some projects failed
type partialError struct {
	failed, total int
}

func (e partialError) Error() string {
	return fmt.Sprintf("%d of %d projects could not be cleaned", e.failed, e.total)
}

// newStats opens the persistent stats shared by tui and clean
var newStats = stats.NewManager

// Execute runs the command tree and returns the process exit code.
// This is called by main.main().
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logging.Close()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitCode(err)
}

func exitCode(err error) int {
	var cfgErr *config.Error
	var usage usageError
	var partial partialError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &usage):
		return ExitConfig
	case errors.Is(err, fs.ErrPermission):
		return ExitPermission
	case errors.As(err, &partial):
		return ExitPartial
	default:
		return ExitError
	}
}

// initLogging applies -v/-q on top of the config file settings. Console
// logging is skipped for the TUI, which owns the terminal.
func initLogging(console bool) error {
	level := logging.VerbosityLevel(verbose, quiet, cfg.Logging.Level)
	if cfg.Logging.File == "" && !console {
		return nil
	}
	return logging.Init(level, cfg.Logging.File)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches $XDG_CONFIG_HOME/sweeper, ~/.config/sweeper, ~/.sweeper, .)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}
