// Package notify implements ports.Notifier sinks: a structured log line,
// a desktop notification, and a fan-out over several sinks.
package notify

import (
	"context"
	"os/exec"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/corey/tabwarden/internal/ports"
)

// Log writes every alert to a zap logger.
type Log struct {
	log *zap.Logger
}

// NewLog creates a log sink.
func NewLog(log *zap.Logger) *Log {
	return &Log{log: log}
}

// Show logs the alert at info level.
func (l *Log) Show(title, message string) {
	l.log.Info("notification", zap.String("title", title), zap.String("message", message))
}

// runFunc executes a notification command.
type runFunc func(ctx context.Context, name string, args ...string) error

func execRun(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Desktop shows alerts through the OS notification service
// (notify-send on Linux, osascript on macOS). Delivery is best effort.
type Desktop struct {
	log     *zap.Logger
	run     runFunc
	goos    string
	timeout time.Duration
}

// NewDesktop creates a desktop sink for the current OS.
func NewDesktop(log *zap.Logger) *Desktop {
	return &Desktop{log: log, run: execRun, goos: runtime.GOOS, timeout: 5 * time.Second}
}

// Show spawns the notifier in the background and returns immediately.
func (d *Desktop) Show(title, message string) {
	name, args, ok := d.command(title, message)
	if !ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.run(ctx, name, args...); err != nil {
			d.log.Debug("desktop notification failed", zap.String("cmd", name), zap.Error(err))
		}
	}()
}

func (d *Desktop) command(title, message string) (string, []string, bool) {
	switch d.goos {
	case "linux", "freebsd", "openbsd":
		return "notify-send", []string{"--app-name=tabwarden", title, message}, true
	case "darwin":
		script := "display notification " + quoteAppleScript(message) + " with title " + quoteAppleScript(title)
		return "osascript", []string{"-e", script}, true
	default:
		return "", nil, false
	}
}

func quoteAppleScript(s string) string {
	out := make([]rune, 0, len(s)+2)
	out = append(out, '"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(append(out, '"'))
}

// Multi fans an alert out to every sink in order.
type Multi []ports.Notifier

// Show forwards to each sink.
func (m Multi) Show(title, message string) {
	for _, n := range m {
		n.Show(title, message)
	}
}
