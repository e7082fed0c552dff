// Package report renders the driver's verbose/trace diagnostics: the
// teacher's CLI (cmd/avenir/main.go) logged failures with a bare
// fmt.Fprintln(os.Stderr, ...); this keeps that texture but adds
// timestamped, humanized lines for -verbose and -trace mode, gated on
// -color/TTY detection.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"
)

// ColorMode selects when diagnostics are ANSI-colorized.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode parses the -color flag's value.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "auto", "":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("unknown -color value %q (want auto|always|never)", s)
	}
}

// Logger writes timestamped verbose/trace lines to an io.Writer, with
// ANSI coloring gated on the writer being a real terminal.
type Logger struct {
	w       io.Writer
	colored bool
}

// NewLogger wraps w. fd is used for isatty detection when mode is
// ColorAuto; pass the writer's underlying file descriptor, or -1 if w
// is not backed by one (ColorAuto then disables coloring; ColorAlways
// still colors).
func NewLogger(w io.Writer, fd uintptr, mode ColorMode) *Logger {
	colored := false
	switch mode {
	case ColorAlways:
		colored = true
	case ColorNever:
		colored = false
	case ColorAuto:
		colored = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return &Logger{w: w, colored: colored}
}

const timestampLayout = "%Y-%m-%d %H:%M:%S"

func (l *Logger) timestamp(now time.Time) string {
	return strftime.Format(timestampLayout, now)
}

func (l *Logger) colorize(code, s string) string {
	if !l.colored {
		return s
	}
	return fmt.Sprintf("\x1b[%sm%s\x1b[0m", code, s)
}

// Line writes one plain verbose/trace message, prefixed with a
// timestamp.
func (l *Logger) Line(now time.Time, format string, args ...interface{}) {
	fmt.Fprintf(l.w, "[%s] %s\n", l.timestamp(now), fmt.Sprintf(format, args...))
}

// Error writes one failure message in red (when colored).
func (l *Logger) Error(now time.Time, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.w, "[%s] %s\n", l.timestamp(now), l.colorize("31", msg))
}

// Summary writes a run's final step count and how long ago it started,
// humanized (e.g. "12,345 steps, started 3 seconds ago").
func (l *Logger) Summary(now time.Time, steps int, started time.Time) {
	l.Line(now, "%s steps, started %s", humanize.Comma(int64(steps)), humanize.Time(started))
}
