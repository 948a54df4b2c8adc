package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// stubSpec describes a stand-in executable for exercising the runner without
// touching real package managers.
type stubSpec struct {
	stdout string
	stderr string
	sleep  time.Duration
	exit   int
}

// writeStub writes a stub executable into dir and returns the path to pass
// as Command.FilePath. On Windows the stub is a .bat reached through
// extension resolution; elsewhere it is an executable sh script.
func writeStub(t *testing.T, dir, name string, spec stubSpec) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		var b strings.Builder
		b.WriteString("@echo off\r\n")
		if spec.stdout != "" {
			fmt.Fprintf(&b, "echo %s\r\n", spec.stdout)
		}
		if spec.stderr != "" {
			fmt.Fprintf(&b, "echo %s 1>&2\r\n", spec.stderr)
		}
		if spec.sleep > 0 {
			// ping waits roughly n-1 seconds for n pings
			secs := int(spec.sleep.Seconds()) + 1
			fmt.Fprintf(&b, "ping -n %d 127.0.0.1 >nul\r\n", secs+1)
		}
		fmt.Fprintf(&b, "exit /b %d\r\n", spec.exit)

		path := filepath.Join(dir, name+".bat")
		if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
			t.Fatalf("failed to write stub: %v", err)
		}
		// Return the extensionless path so resolution appends .bat.
		return filepath.Join(dir, name)
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	if spec.stdout != "" {
		fmt.Fprintf(&b, "echo '%s'\n", spec.stdout)
	}
	if spec.stderr != "" {
		fmt.Fprintf(&b, "echo '%s' >&2\n", spec.stderr)
	}
	if spec.sleep > 0 {
		fmt.Fprintf(&b, "sleep %d\n", int(spec.sleep.Seconds()))
	}
	fmt.Fprintf(&b, "exit %d\n", spec.exit)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}
	return path
}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "fake-manager", stubSpec{stdout: "all up to date", exit: 0})

	r := New(nil)
	result, err := r.Run(context.Background(), Command{FilePath: stub, Timeout: 30 * time.Second})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.Success {
		t.Error("Success = false, want true")
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if result.TimedOut {
		t.Error("TimedOut = true, want false")
	}
	if !strings.Contains(result.Stdout, "all up to date") {
		t.Errorf("Stdout = %q, missing stub output", result.Stdout)
	}
	if result.Duration <= 0 {
		t.Errorf("Duration = %v, want > 0", result.Duration)
	}
}

func TestRunNonzeroExitIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "failing-manager", stubSpec{stderr: "upgrade failed", exit: 3})

	r := New(nil)
	result, err := r.Run(context.Background(), Command{FilePath: stub, Timeout: 30 * time.Second})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Success {
		t.Error("Success = true, want false")
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3 (code preserved, not translated)", result.ExitCode)
	}
	if !strings.Contains(result.Stderr, "upgrade failed") {
		t.Errorf("Stderr = %q, missing stub output", result.Stderr)
	}
}

func TestRunTimeout(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "hanging-manager", stubSpec{sleep: 10 * time.Second, exit: 0})

	r := New(nil)
	start := time.Now()
	result, err := r.Run(context.Background(), Command{FilePath: stub, Timeout: 1 * time.Second})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !result.TimedOut {
		t.Error("TimedOut = false, want true")
	}
	if result.Success {
		t.Error("Success = true, want false")
	}
	if result.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", result.ExitCode)
	}
	if result.Duration != 1*time.Second {
		t.Errorf("Duration = %v, want the configured timeout 1s", result.Duration)
	}
	if elapsed := time.Since(start); elapsed > 8*time.Second {
		t.Errorf("Run blocked for %v, the process was not killed at the deadline", elapsed)
	}
}

func TestRunExecutableNotFound(t *testing.T) {
	r := New(nil)
	_, err := r.Run(context.Background(), Command{FilePath: "no-such-manager-xyz", Timeout: time.Second})
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Errorf("err = %v, want ErrExecutableNotFound", err)
	}
}

func TestResolveExecutableLiteralWins(t *testing.T) {
	dir := t.TempDir()
	literal := filepath.Join(dir, "tool")
	if err := os.WriteFile(literal, []byte("x"), 0755); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}
	if err := os.WriteFile(literal+".exe", []byte("x"), 0755); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	got, err := ResolveExecutable(literal)
	if err != nil {
		t.Fatalf("ResolveExecutable failed: %v", err)
	}
	if got != literal {
		t.Errorf("resolved %q, want literal path %q", got, literal)
	}
}

func TestResolveExecutableExtensionOrder(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "tool")
	// .cmd must win over .bat and .ps1 when .exe is absent.
	for _, ext := range []string{".cmd", ".bat", ".ps1"} {
		if err := os.WriteFile(base+ext, []byte("x"), 0755); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}
	}

	got, err := ResolveExecutable(base)
	if err != nil {
		t.Fatalf("ResolveExecutable failed: %v", err)
	}
	if got != base+".cmd" {
		t.Errorf("resolved %q, want %q", got, base+".cmd")
	}
}

func TestResolveExecutableNotFound(t *testing.T) {
	_, err := ResolveExecutable(filepath.Join(t.TempDir(), "ghost"))
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Errorf("err = %v, want ErrExecutableNotFound", err)
	}
}

func TestProbeAvailable(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "versioned", stubSpec{stdout: "v10.2.1", exit: 0})

	r := New(nil)
	avail := r.Probe(context.Background(), stub)

	if !avail.Available {
		t.Fatalf("Available = false, error = %s", avail.Error)
	}
	if avail.Version != "v10.2.1" {
		t.Errorf("Version = %q, want v10.2.1", avail.Version)
	}
	if avail.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", avail.ExitCode)
	}
	if avail.Path == "" {
		t.Error("Path is empty")
	}
}

func TestProbeVersionOnStderr(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "stderr-version", stubSpec{stderr: "Python 3.12.0", exit: 0})

	r := New(nil)
	avail := r.Probe(context.Background(), stub)

	if !avail.Available {
		t.Fatalf("Available = false, error = %s", avail.Error)
	}
	if avail.Version != "Python 3.12.0" {
		t.Errorf("Version = %q, want the stderr line", avail.Version)
	}
}

func TestProbeMissingCommand(t *testing.T) {
	r := New(nil)
	avail := r.Probe(context.Background(), "no-such-manager-xyz")

	if avail.Available {
		t.Error("Available = true for missing command")
	}
	if avail.Error == "" {
		t.Error("Error is empty, want an explanation")
	}
}

func TestProbeNonzeroExit(t *testing.T) {
	dir := t.TempDir()
	stub := writeStub(t, dir, "broken", stubSpec{exit: 2})

	r := New(nil)
	avail := r.Probe(context.Background(), stub)

	if avail.Available {
		t.Error("Available = true, want false for failing probe")
	}
	if avail.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", avail.ExitCode)
	}
}
