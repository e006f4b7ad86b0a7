package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/lumipallolabs/sweeper/internal/model"
	"github.com/lumipallolabs/sweeper/internal/monitor"
	"github.com/lumipallolabs/sweeper/internal/scanner"
	"github.com/spf13/viper"
)

type Config struct {
	Scanner struct {
		Threads        int      `mapstructure:"threads"`
		OneFileSystem  bool     `mapstructure:"one_file_system"`
		FollowSymlinks bool     `mapstructure:"follow_symlinks"`
		IncludeHidden  bool     `mapstructure:"include_hidden"`
		Exclude        []string `mapstructure:"exclude"`
	} `mapstructure:"scanner"`
	TUI struct {
		ShowHidden  bool   `mapstructure:"show_hidden"`
		DefaultSort string `mapstructure:"default_sort"`
	} `mapstructure:"tui"`
	Logging struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"logging"`
	Cleaner struct {
		ProjectTypes    []string `mapstructure:"project_types"` // empty = every type
		ExcludePatterns []string `mapstructure:"exclude_patterns"`
		MinAgeDays      int      `mapstructure:"min_age_days"`
		MaxDepth        int      `mapstructure:"max_depth"`
		ParallelJobs    int      `mapstructure:"parallel_jobs"`
		NativeCommands  bool     `mapstructure:"native_commands"`
	} `mapstructure:"cleaner"`
	Monitor struct {
		Interval            time.Duration `mapstructure:"interval"`
		WarnThreshold       int           `mapstructure:"warn_threshold"`
		CriticalThreshold   int           `mapstructure:"critical_threshold"`
		MountPoints         []string      `mapstructure:"mount_points"` // empty = every real filesystem
		NotificationBackend string        `mapstructure:"notification_backend"`
	} `mapstructure:"monitor"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// Error reports a config file that could not be read or is invalid
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SearchPaths lists the directories searched for config.yaml, in order
func SearchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "sweeper"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "sweeper"),
			filepath.Join(home, ".sweeper"),
		)
	}
	return append(paths, ".")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scanner.threads", 0)
	v.SetDefault("scanner.one_file_system", false)
	v.SetDefault("scanner.follow_symlinks", false)
	v.SetDefault("scanner.include_hidden", false)
	v.SetDefault("scanner.exclude", []string{})
	v.SetDefault("tui.show_hidden", false)
	v.SetDefault("tui.default_sort", "size")
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.file", "")
	v.SetDefault("cleaner.project_types", []string{})
	v.SetDefault("cleaner.exclude_patterns", []string{})
	v.SetDefault("cleaner.min_age_days", 0)
	v.SetDefault("cleaner.max_depth", 10)
	v.SetDefault("cleaner.parallel_jobs", 4)
	v.SetDefault("cleaner.native_commands", true)
	v.SetDefault("monitor.interval", "5m")
	v.SetDefault("monitor.warn_threshold", 80)
	v.SetDefault("monitor.critical_threshold", 90)
	v.SetDefault("monitor.mount_points", []string{})
	v.SetDefault("monitor.notification_backend", "auto")
}

// Load reads the config file at path, or searches SearchPaths when path is
// empty. A missing file in the search paths is not an error; SWEEPER_*
// environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("sweeper")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range SearchPaths() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, &Error{Path: path, Err: err}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &Error{Path: v.ConfigFileUsed(), Err: err}
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate rejects values no command can use
func (c *Config) Validate() error {
	if c.Scanner.Threads < 0 {
		return &Error{Path: c.File, Err: fmt.Errorf("scanner.threads must be >= 0, got %d", c.Scanner.Threads)}
	}
	if !model.ValidSortOrder(c.TUI.DefaultSort) {
		return &Error{Path: c.File, Err: fmt.Errorf("tui.default_sort must be size, name or mtime, got %q", c.TUI.DefaultSort)}
	}
	if err := validatePatterns("scanner.exclude", c.Scanner.Exclude); err != nil {
		return &Error{Path: c.File, Err: err}
	}
	if err := validatePatterns("cleaner.exclude_patterns", c.Cleaner.ExcludePatterns); err != nil {
		return &Error{Path: c.File, Err: err}
	}
	if c.Cleaner.MinAgeDays < 0 || c.Cleaner.MaxDepth < 0 || c.Cleaner.ParallelJobs < 0 {
		return &Error{Path: c.File, Err: errors.New("cleaner.min_age_days, max_depth and parallel_jobs must be >= 0")}
	}
	if !slices.Contains(monitor.Backends, c.Monitor.NotificationBackend) {
		return &Error{Path: c.File, Err: fmt.Errorf("monitor.notification_backend must be one of %s, got %q",
			strings.Join(monitor.Backends, ", "), c.Monitor.NotificationBackend)}
	}
	if err := c.MonitorOptions().Validate(); err != nil {
		return &Error{Path: c.File, Err: fmt.Errorf("monitor: %w", err)}
	}
	return nil
}

func validatePatterns(key string, patterns []string) error {
	for _, pattern := range patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("%s pattern %q: %w", key, pattern, err)
		}
	}
	return nil
}

// ScanOptions converts the scanner section with unlimited depth
func (c *Config) ScanOptions() scanner.Options {
	opts := scanner.DefaultOptions()
	opts.Threads = c.Scanner.Threads
	opts.OneFileSystem = c.Scanner.OneFileSystem
	opts.FollowSymlinks = c.Scanner.FollowSymlinks
	opts.IncludeHidden = c.Scanner.IncludeHidden
	opts.Exclude = append([]string(nil), c.Scanner.Exclude...)
	return opts
}

// MonitorOptions converts the monitor section
func (c *Config) MonitorOptions() monitor.Options {
	return monitor.Options{
		Interval: c.Monitor.Interval,
		Warn:     c.Monitor.WarnThreshold,
		Critical: c.Monitor.CriticalThreshold,
		Mounts:   append([]string(nil), c.Monitor.MountPoints...),
	}
}

// SortOrder is the configured default sort for the TUI
func (c *Config) SortOrder() model.SortOrder {
	return model.ParseSortOrder(c.TUI.DefaultSort)
}
