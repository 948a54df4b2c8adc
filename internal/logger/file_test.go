package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileSinkWritesLines(t *testing.T) {
	dir := t.TempDir()

	sink, err := NewFileSink(dir, 30)
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}

	e := Entry{
		Timestamp: time.Now(),
		Level:     "ERROR",
		Component: "runner",
		Message:   "choco exited with code 1",
	}
	if !sink.Write(e) {
		t.Fatal("Write returned false")
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	content := readFile(t, sink.Path())
	if !strings.Contains(content, "[ERROR] [runner] choco exited with code 1") {
		t.Errorf("log file missing entry, got:\n%s", content)
	}
	if !strings.HasPrefix(filepath.Base(sink.Path()), "run-") {
		t.Errorf("unexpected log file name: %s", sink.Path())
	}
}

func TestFileSinkWriteAfterClose(t *testing.T) {
	dir := t.TempDir()

	sink, err := NewFileSink(dir, 0)
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Best-effort contract: a dead sink reports false, never panics.
	if sink.Write(Entry{Level: "INFO", Message: "late"}) {
		t.Error("expected Write to report false after Close")
	}
}

func TestJSONFileSinkRoundTrip(t *testing.T) {
	dir := t.TempDir()

	sink, err := NewJSONFileSink(dir, 30)
	if err != nil {
		t.Fatalf("NewJSONFileSink failed: %v", err)
	}

	written := Entry{
		Timestamp: time.Now().UTC(),
		Level:     "SUCCESS",
		Component: "orchestrator",
		Message:   "2 updated, 0 failed",
		SessionID: "session-1",
		Data:      map[string]any{"succeeded": float64(2)},
	}
	if !sink.Write(written) {
		t.Fatal("Write returned false")
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(sink.Path())
	if err != nil {
		t.Fatalf("failed to open structured log: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("structured log is empty")
	}

	var got Entry
	if err := json.Unmarshal(scanner.Bytes(), &got); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if got.Level != "SUCCESS" || got.Component != "orchestrator" || got.SessionID != "session-1" {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got.Data["succeeded"] != float64(2) {
		t.Errorf("Data[succeeded] = %v, want 2", got.Data["succeeded"])
	}
}

func TestSweepOldLogs(t *testing.T) {
	dir := t.TempDir()

	oldLog := filepath.Join(dir, "run-20200101-000000.log")
	oldJSON := filepath.Join(dir, "run-20200101-000000.jsonl")
	unrelated := filepath.Join(dir, "notes.txt")
	for _, p := range []string{oldLog, oldJSON, unrelated} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to seed %s: %v", p, err)
		}
		stale := time.Now().AddDate(0, 0, -60)
		if err := os.Chtimes(p, stale, stale); err != nil {
			t.Fatalf("failed to age %s: %v", p, err)
		}
	}

	sink, err := NewFileSink(dir, 30)
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	defer sink.Close()

	for _, p := range []string{oldLog, oldJSON} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s to be swept", p)
		}
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("expected unrelated file to survive sweep: %v", err)
	}
}

func TestSweepDisabledByZeroRetention(t *testing.T) {
	dir := t.TempDir()

	oldLog := filepath.Join(dir, "run-20200101-000000.log")
	if err := os.WriteFile(oldLog, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to seed log: %v", err)
	}
	stale := time.Now().AddDate(0, 0, -60)
	if err := os.Chtimes(oldLog, stale, stale); err != nil {
		t.Fatalf("failed to age log: %v", err)
	}

	sink, err := NewFileSink(dir, 0)
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	defer sink.Close()

	if _, err := os.Stat(oldLog); err != nil {
		t.Errorf("expected old log to survive with retention disabled: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
