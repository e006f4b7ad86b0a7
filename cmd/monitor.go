package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/lumipallolabs/sweeper/internal/format"
	"github.com/lumipallolabs/sweeper/internal/logging"
	"github.com/lumipallolabs/sweeper/internal/monitor"
	"github.com/spf13/cobra"
)

var monitorFlags struct {
	interval time.Duration
	warn     int
	critical int
	mounts   []string
	once     bool
	notify   string
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch filesystem usage and alert when it crosses a threshold",
	Long: `Monitor checks the usage of every real filesystem (or the ones given with
--mount) at a fixed interval. An alert is sent when a filesystem rises to
the warning or critical level, and on every check once it is 95% full.

Monitor runs in the foreground until interrupted; use a service manager
such as systemd to run it in the background.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogging(true); err != nil {
			return err
		}
		return runMonitor(cmd, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func monitorOptions(cmd *cobra.Command) (monitor.Options, string) {
	opts := cfg.MonitorOptions()
	backend := cfg.Monitor.NotificationBackend
	f := cmd.Flags()
	if f.Changed("interval") {
		opts.Interval = monitorFlags.interval
	}
	if f.Changed("warn") {
		opts.Warn = monitorFlags.warn
	}
	if f.Changed("critical") {
		opts.Critical = monitorFlags.critical
	}
	if f.Changed("mount") {
		opts.Mounts = monitorFlags.mounts
	}
	if f.Changed("notify") {
		backend = monitorFlags.notify
	}
	opts.Once = monitorFlags.once
	return opts, backend
}

func runMonitor(cmd *cobra.Command, out, alerts io.Writer) error {
	opts, backend := monitorOptions(cmd)
	if err := opts.Validate(); err != nil {
		return usageError{err}
	}
	n, err := monitor.NewNotifier(backend, alerts)
	if err != nil {
		return usageError{err}
	}
	notifiers := []monitor.Notifier{n}
	if bar := monitor.NewNagbar(); bar.Available() {
		notifiers = append(notifiers, bar)
	}
	logging.Debug.Info().Str("notifier", n.Name()).Strs("mounts", opts.Mounts).Msg("monitor: configured")

	m := monitor.New(opts, notifiers...)
	if !opts.Once {
		return m.Run(cmd.Context())
	}

	statuses, err := m.Check(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-30s %10s %10s %6s  %s\n", "MOUNT", "USED", "TOTAL", "USE%", "LEVEL")
	for _, s := range statuses {
		level := monitor.LevelFor(s.Percent(), opts.Warn, opts.Critical)
		fmt.Fprintf(out, "%-30s %10s %10s %5.1f%%  %s\n",
			s.MountPoint, format.Size(s.UsedBytes()), format.Size(s.TotalBytes), s.Percent(), level)
	}
	return nil
}

func init() {
	addMonitorFlags(monitorCmd)
	rootCmd.AddCommand(monitorCmd)
}

func addMonitorFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.DurationVarP(&monitorFlags.interval, "interval", "i", 5*time.Minute, "time between checks")
	f.IntVarP(&monitorFlags.warn, "warn", "w", 80, "warning threshold in percent")
	f.IntVarP(&monitorFlags.critical, "critical", "C", 90, "critical threshold in percent")
	f.StringArrayVarP(&monitorFlags.mounts, "mount", "m", nil, "filesystem to watch (repeatable, default all)")
	f.BoolVar(&monitorFlags.once, "once", false, "check once, print usage and exit")
	f.StringVar(&monitorFlags.notify, "notify", monitor.BackendAuto, "alert backend: auto, notify-send or stderr")
}
