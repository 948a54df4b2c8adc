package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleSink writes entries to a writer with [HH:MM:SS] timestamps.
// Color output is enabled automatically when the writer is a terminal.
// A nil writer silently discards all entries.
type ConsoleSink struct {
	writer      io.Writer
	colorOutput bool
	mu          sync.Mutex
}

// NewConsoleSink creates a ConsoleSink for the given writer.
// Color is enabled when the writer is os.Stdout or os.Stderr on a TTY and
// NO_COLOR is not set.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{
		writer:      w,
		colorOutput: isTerminal(w),
	}
}

// Write renders one entry to the console. Write errors are swallowed; the
// return value reports whether the entry was delivered.
func (cs *ConsoleSink) Write(e Entry) bool {
	if cs.writer == nil {
		return false
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	ts := e.Timestamp.Format("15:04:05")
	level := e.Level
	if cs.colorOutput {
		level = colorizeLevel(level)
	}

	line := fmt.Sprintf("[%s] [%s] [%s] %s%s\n", ts, level, e.Component, e.Message, formatData(e.Data))
	_, err := cs.writer.Write([]byte(line))
	return err == nil
}

// Close is a no-op: the console sink does not own its writer.
func (cs *ConsoleSink) Close() error {
	return nil
}

// colorizeLevel wraps a level tag in its ANSI color.
func colorizeLevel(level string) string {
	switch level {
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARNING":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	case "SUCCESS":
		return color.New(color.FgGreen).Sprint(level)
	default:
		return level
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns true for os.Stdout and os.Stderr when they are TTYs.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if f != os.Stdout && f != os.Stderr {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// formatData renders structured data as " (k1=v1 k2=v2)" for line output.
func formatData(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}

	out := " ("
	for i, k := range sortKeys(data) {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%v", k, data[k])
	}
	return out + ")"
}

// sortKeys returns map keys in ascending order for stable output.
func sortKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
