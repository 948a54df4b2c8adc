package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileSink writes entries as human-readable lines to a timestamped per-run
// log file. Creating a sink also sweeps run logs older than the retention
// window from the log directory.
type FileSink struct {
	file *os.File
	path string
	mu   sync.Mutex
}

// NewFileSink opens run-YYYYMMDD-HHMMSS.log in logDir, creating the directory
// if needed. Logs older than retentionDays are removed; retentionDays <= 0
// disables the sweep.
func NewFileSink(logDir string, retentionDays int) (*FileSink, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	sweepOldLogs(logDir, retentionDays)

	path := filepath.Join(logDir, fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	return &FileSink{file: file, path: path}, nil
}

// Path returns the path of the log file this sink writes to.
func (fs *FileSink) Path() string {
	return fs.path
}

// Write appends one formatted line. Failures are reported via the return
// value only.
func (fs *FileSink) Write(e Entry) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.file == nil {
		return false
	}

	line := fmt.Sprintf("[%s] [%s] [%s] %s%s\n",
		e.Timestamp.Format("2006-01-02 15:04:05"), e.Level, e.Component, e.Message, formatData(e.Data))
	_, err := fs.file.WriteString(line)
	return err == nil
}

// Close flushes and closes the log file.
func (fs *FileSink) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.file == nil {
		return nil
	}
	if err := fs.file.Sync(); err != nil {
		fs.file.Close()
		fs.file = nil
		return fmt.Errorf("failed to sync run log: %w", err)
	}
	err := fs.file.Close()
	fs.file = nil
	return err
}

// JSONFileSink writes entries as line-delimited JSON to a timestamped per-run
// file, for machine consumption alongside the plain-text log.
type JSONFileSink struct {
	file *os.File
	path string
	mu   sync.Mutex
}

// NewJSONFileSink opens run-YYYYMMDD-HHMMSS.jsonl in logDir.
// The retention sweep is shared with NewFileSink; callers creating both sinks
// for the same directory only pay for it once per construction.
func NewJSONFileSink(logDir string, retentionDays int) (*JSONFileSink, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	sweepOldLogs(logDir, retentionDays)

	path := filepath.Join(logDir, fmt.Sprintf("run-%s.jsonl", time.Now().Format("20060102-150405")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create structured log file: %w", err)
	}

	return &JSONFileSink{file: file, path: path}, nil
}

// Path returns the path of the structured log file.
func (js *JSONFileSink) Path() string {
	return js.path
}

// Write marshals the entry to one JSON line. Marshal and write failures are
// reported via the return value only.
func (js *JSONFileSink) Write(e Entry) bool {
	js.mu.Lock()
	defer js.mu.Unlock()

	if js.file == nil {
		return false
	}

	data, err := json.Marshal(e)
	if err != nil {
		return false
	}
	_, err = js.file.Write(append(data, '\n'))
	return err == nil
}

// Close flushes and closes the structured log file.
func (js *JSONFileSink) Close() error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if js.file == nil {
		return nil
	}
	if err := js.file.Sync(); err != nil {
		js.file.Close()
		js.file = nil
		return fmt.Errorf("failed to sync structured log: %w", err)
	}
	err := js.file.Close()
	js.file = nil
	return err
}

// sweepOldLogs removes run-*.log and run-*.jsonl files whose modification
// time is older than retentionDays. Sweep failures are ignored: retention is
// housekeeping, never a reason to block a run.
func sweepOldLogs(logDir string, retentionDays int) {
	if retentionDays <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "run-") {
			continue
		}
		if !strings.HasSuffix(name, ".log") && !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(logDir, name))
		}
	}
}
