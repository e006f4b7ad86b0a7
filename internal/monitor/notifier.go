package monitor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Notifier delivers alerts
type Notifier interface {
	Name() string
	Available() bool
	Notify(ctx context.Context, level Level, s Status) error
}

// Notifier backends accepted by NewNotifier
const (
	BackendAuto       = "auto"
	BackendNotifySend = "notify-send"
	BackendStderr     = "stderr"
)

// Backends lists the accepted backend names
var Backends = []string{BackendAuto, BackendNotifySend, BackendStderr}

// NewNotifier returns the backend called name. auto picks notify-send when
// it is installed and a desktop session is present, stderr otherwise.
func NewNotifier(name string, w io.Writer) (Notifier, error) {
	switch name {
	case BackendStderr:
		return NewWriterNotifier(w), nil
	case BackendNotifySend:
		n := NewNotifySend()
		if !n.Available() {
			return nil, fmt.Errorf("notify-send is not available")
		}
		return n, nil
	case BackendAuto, "":
		if n := NewNotifySend(); n.Available() {
			return n, nil
		}
		return NewWriterNotifier(w), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q (valid: %s)", name, strings.Join(Backends, ", "))
	}
}

// WriterNotifier prints alerts as text blocks
type WriterNotifier struct {
	w io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Name() string    { return BackendStderr }
func (n *WriterNotifier) Available() bool { return true }

func (n *WriterNotifier) Notify(_ context.Context, level Level, s Status) error {
	var prefix string
	switch level.Urgency() {
	case "critical":
		prefix = "[CRITICAL]"
	case "normal":
		prefix = "[WARNING]"
	default:
		prefix = "[INFO]"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s %s\n%s\n", prefix, level.Title(), strings.Repeat("-", 60))
	for _, line := range strings.Split(s.Body(), "\n") {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(n.w, b.String())
	return err
}

// NotifySend posts desktop notifications through notify-send
type NotifySend struct {
	lookPath func(string) (string, error)
	run      func(ctx context.Context, argv []string) error
}

func NewNotifySend() *NotifySend {
	return &NotifySend{lookPath: exec.LookPath, run: runQuiet}
}

func (n *NotifySend) Name() string { return BackendNotifySend }

// Available needs the binary and a graphical session to show it in
func (n *NotifySend) Available() bool {
	if _, err := n.lookPath("notify-send"); err != nil {
		return false
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("DBUS_SESSION_BUS_ADDRESS") != ""
}

func (n *NotifySend) Notify(ctx context.Context, level Level, s Status) error {
	return n.run(ctx, notifySendArgs(level, s))
}

func notifySendArgs(level Level, s Status) []string {
	argv := []string{"notify-send",
		"--urgency", level.Urgency(),
		"--app-name", "Sweeper",
		"--icon", "drive-harddisk",
	}
	// critical notifications stay until dismissed
	if level.Urgency() == "critical" {
		argv = append(argv, "--expire-time=0")
	}
	return append(argv, level.Title(), s.Body())
}

// Nagbar shows a bar under i3 or sway for critical alerts only
type Nagbar struct {
	start func(argv []string) error
}

func NewNagbar() *Nagbar {
	return &Nagbar{start: startDetached}
}

func (n *Nagbar) Name() string { return "i3-nagbar" }

func (n *Nagbar) Available() bool {
	if _, err := exec.LookPath("i3-nagbar"); err != nil {
		return false
	}
	return os.Getenv("I3SOCK") != "" || os.Getenv("SWAYSOCK") != ""
}

func (n *Nagbar) Notify(_ context.Context, level Level, s Status) error {
	if level < LevelCritical {
		return nil
	}
	return n.start(nagbarArgs(level, s))
}

func nagbarArgs(level Level, s Status) []string {
	kind := "warning"
	if level.Urgency() == "critical" {
		kind = "error"
	}
	msg := level.Title() + ": " + strings.ReplaceAll(s.Body(), "\n", " | ")
	return []string{"i3-nagbar", "-t", kind, "-m", msg, "-b", "Open TUI", "sweeper tui " + s.MountPoint}
}

func runQuiet(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", argv[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// startDetached starts argv without waiting; i3-nagbar blocks until the
// bar is dismissed
func startDetached(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
