package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/harrison/updatectl/internal/logger"
)

// ErrExecutableNotFound is returned when a command resolves to nothing: not
// as a literal path, not with a known extension, not on PATH.
var ErrExecutableNotFound = errors.New("executable not found")

// resolveExtensions is the order in which suffixes are tried when the
// literal path does not name a file. Native executables come before scripts.
var resolveExtensions = []string{".exe", ".cmd", ".bat", ".ps1"}

// Command describes one process invocation.
type Command struct {
	// FilePath is the executable path or bare command name.
	FilePath string

	// Args are the process arguments.
	Args []string

	// WorkDir is the working directory; empty means inherit.
	WorkDir string

	// Timeout is the maximum run time. Zero or negative disables the
	// deadline.
	Timeout time.Duration
}

// Runner launches processes. It is safe for concurrent use; the logger may
// be nil for silent operation.
type Runner struct {
	logger *logger.Logger
}

// New creates a Runner logging through log. log may be nil.
func New(log *logger.Logger) *Runner {
	return &Runner{logger: log}
}

// Run resolves and launches the command, waits up to the timeout, and
// returns a ProcessResult. Nonzero exits are results, not errors; only
// resolution and launch failures return an error.
func (r *Runner) Run(ctx context.Context, cmd Command) (*ProcessResult, error) {
	resolved, err := ResolveExecutable(cmd.FilePath)
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	proc := exec.CommandContext(runCtx, resolved, cmd.Args...)
	proc.Dir = cmd.WorkDir

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	// Launch without a console window so scheduled runs stay invisible.
	hideWindow(proc)

	r.debugf("runner", "launching %s with %d args (timeout %s)", resolved, len(cmd.Args), cmd.Timeout)

	start := time.Now()
	runErr := proc.Run()
	elapsed := time.Since(start)

	result := &ProcessResult{
		FilePath:  resolved,
		Arguments: cmd.Args,
		Duration:  elapsed,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
	}

	if runErr == nil {
		result.ExitCode = 0
		result.Success = true
		return result, nil
	}

	// Deadline hit: the process was killed; report the configured timeout
	// as the duration so callers see the budget that was exhausted.
	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		result.Duration = cmd.Timeout
		r.warnf("runner", "%s timed out after %s", resolved, cmd.Timeout)
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	// The executable resolved but the OS refused to start it. This is a
	// distinct failure, not a nonzero exit.
	return nil, fmt.Errorf("failed to launch %s: %w", resolved, runErr)
}

// ResolveExecutable locates an executable. The literal path wins when it
// names a file; otherwise .exe, .cmd, .bat, .ps1 are tried in order, then a
// generic PATH lookup. Returns ErrExecutableNotFound when nothing matches.
func ResolveExecutable(path string) (string, error) {
	if isFile(path) {
		return path, nil
	}

	for _, ext := range resolveExtensions {
		candidate := path + ext
		if isFile(candidate) {
			return candidate, nil
		}
	}

	if found, err := exec.LookPath(path); err == nil {
		return found, nil
	}

	return "", fmt.Errorf("%w: %s", ErrExecutableNotFound, path)
}

// isFile reports whether path exists and is a regular file.
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// debugf logs at debug level if a logger is attached.
func (r *Runner) debugf(component, format string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(component, format, args...)
	}
}

// warnf logs at warning level if a logger is attached.
func (r *Runner) warnf(component, format string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(component, format, args...)
	}
}
