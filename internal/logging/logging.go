package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	Debug   zerolog.Logger
	Scanner zerolog.Logger
	Enabled bool

	// logFile is the file the loggers write to, nil for stderr or discard
	logFile *os.File
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// Only enable logging if SWEEPER_DEBUG environment variable is set
	if os.Getenv("SWEEPER_DEBUG") == "" {
		Debug = zerolog.Nop()
		Scanner = zerolog.Nop()
		Enabled = false
		return
	}

	// Open debug.log once for all loggers
	debugFile, err := os.OpenFile("debug.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// Fallback to stderr if we can't open the file
		setOutput(console(os.Stderr), zerolog.DebugLevel)
		return
	}
	logFile = debugFile
	setOutput(debugFile, zerolog.TraceLevel)
}

// Init configures both loggers for a CLI run. An empty file means a
// human-readable console writer on stderr. SWEEPER_DEBUG still wins.
// A file opened by an earlier Init is closed.
func Init(level, file string) error {
	if Enabled && os.Getenv("SWEEPER_DEBUG") != "" {
		return nil
	}

	var out io.Writer = console(os.Stderr)
	var f *os.File
	if file != "" {
		var err error
		f, err = os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		out = f
	}
	setOutput(out, ParseLevel(level))
	closeFile()
	logFile = f
	return nil
}

// Close releases the log file, if any. The loggers discard output
// afterwards.
func Close() error {
	if logFile == nil {
		return nil
	}
	Debug = zerolog.Nop()
	Scanner = zerolog.Nop()
	Enabled = false
	return closeFile()
}

func closeFile() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ParseLevel maps a config/flag level name to a zerolog level; unknown
// names mean warn
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return l
}

// VerbosityLevel turns -v/-q flags into a level name
func VerbosityLevel(verbose int, quiet bool, fallback string) string {
	switch {
	case quiet:
		return "error"
	case verbose >= 3:
		return "trace"
	case verbose == 2:
		return "debug"
	case verbose == 1:
		return "info"
	default:
		return fallback
	}
}

func console(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
}

func setOutput(out io.Writer, level zerolog.Level) {
	base := zerolog.New(out).Level(level).With().Timestamp().Logger()
	Debug = base.With().Str("component", "debug").Logger()
	Scanner = base.With().Str("component", "scanner").Logger()
	Enabled = level < zerolog.Disabled
}
