package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumipallolabs/sweeper/internal/logging"
)

// Options configures a Monitor
type Options struct {
	// Interval is the time between checks
	Interval time.Duration
	// Warn and Critical are usage percentages
	Warn     int
	Critical int
	// Mounts limits checks to these paths; empty checks every real
	// filesystem in the mount table
	Mounts []string
	// Once runs a single check and returns
	Once bool
}

// DefaultOptions checks every five minutes with 80% and 90% thresholds
func DefaultOptions() Options {
	return Options{Interval: 5 * time.Minute, Warn: 80, Critical: 90}
}

// Validate rejects thresholds and intervals no check can use
func (o Options) Validate() error {
	if o.Warn <= 0 || o.Critical > 100 {
		return fmt.Errorf("thresholds must lie in 1..100, got warn %d critical %d", o.Warn, o.Critical)
	}
	if o.Warn >= o.Critical {
		return fmt.Errorf("warn threshold (%d) must be below critical threshold (%d)", o.Warn, o.Critical)
	}
	if o.Interval <= 0 && !o.Once {
		return fmt.Errorf("interval must be positive, got %s", o.Interval)
	}
	return nil
}

// Monitor checks filesystems and notifies when their alert level rises
type Monitor struct {
	opts      Options
	notifiers []Notifier
	last      map[string]Level

	mounts func() ([]Mount, error)
	stat   func(Mount) (Status, error)
}

// New returns a monitor that alerts through notifiers
func New(opts Options, notifiers ...Notifier) *Monitor {
	return &Monitor{
		opts:      opts,
		notifiers: notifiers,
		last:      make(map[string]Level),
		mounts:    SystemMounts,
		stat:      StatMount,
	}
}

// Run checks immediately and then every interval until ctx is done. With
// Once set it returns after the first check.
func (m *Monitor) Run(ctx context.Context) error {
	logging.Debug.Info().Dur("interval", m.opts.Interval).Int("warn", m.opts.Warn).Int("critical", m.opts.Critical).Msg("monitor: started")
	if _, err := m.Check(ctx); err != nil {
		if m.opts.Once {
			return err
		}
		logging.Debug.Error().Err(err).Msg("monitor: check failed")
	}
	if m.opts.Once {
		return nil
	}

	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Debug.Info().Msg("monitor: stopped")
			return nil
		case <-ticker.C:
			if _, err := m.Check(ctx); err != nil {
				logging.Debug.Error().Err(err).Msg("monitor: check failed")
			}
		}
	}
}

// Check reads every monitored filesystem once and sends the alerts that
// are due. Filesystems that cannot be read are logged and skipped; the
// error is returned only when none could be read.
func (m *Monitor) Check(ctx context.Context) ([]Status, error) {
	mounts, err := m.targets()
	if err != nil {
		return nil, err
	}

	var statuses []Status
	var errs []error
	for _, mnt := range mounts {
		s, err := m.stat(mnt)
		if err != nil {
			logging.Debug.Warn().Err(err).Str("mount", mnt.Path).Msg("monitor: stat failed")
			errs = append(errs, err)
			continue
		}
		level := LevelFor(s.Percent(), m.opts.Warn, m.opts.Critical)
		logging.Debug.Debug().Str("mount", s.MountPoint).Float64("percent", s.Percent()).Stringer("level", level).Msg("monitor: checked")
		m.alert(ctx, level, s)
		statuses = append(statuses, s)
	}
	if len(statuses) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return statuses, nil
}

func (m *Monitor) targets() ([]Mount, error) {
	if len(m.opts.Mounts) == 0 {
		return m.mounts()
	}
	mounts := make([]Mount, len(m.opts.Mounts))
	for i, p := range m.opts.Mounts {
		mounts[i] = Mount{Path: p}
	}
	return mounts, nil
}

// alert notifies when level is due and remembers it for the next check
func (m *Monitor) alert(ctx context.Context, level Level, s Status) {
	if shouldNotify(level, m.last[s.MountPoint]) {
		for _, n := range m.notifiers {
			if err := n.Notify(ctx, level, s); err != nil {
				logging.Debug.Error().Err(err).Str("notifier", n.Name()).Msg("monitor: notify failed")
			}
		}
	}
	m.last[s.MountPoint] = level
}

// shouldNotify alerts on every rise above normal and on every emergency
// check
func shouldNotify(level, last Level) bool {
	if level == LevelEmergency {
		return true
	}
	return level != LevelNormal && level > last
}
