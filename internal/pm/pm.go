// Package pm contains the per-package-manager adapters.
//
// Each adapter isolates one tool's quirks (argument spelling, acceptable
// nonzero exit codes, pre-update rituals) behind a uniform Manager interface
// so the orchestrator can iterate without tool-specific knowledge.
package pm

import (
	"context"
	"strings"
	"time"

	"github.com/harrison/updatectl/internal/logger"
	"github.com/harrison/updatectl/internal/runner"
)

// Operation distinguishes a mutating update from a read-only check.
type Operation string

const (
	// OpUpdate applies updates.
	OpUpdate Operation = "update"
	// OpDryRunCheck only lists what would change.
	OpDryRunCheck Operation = "dry-run-check"
)

// Result is the normalized outcome of one adapter operation, aggregated by
// the orchestrator into the run summary.
type Result struct {
	PackageManager string
	Operation      Operation
	Success        bool
	ExitCode       int
	Duration       time.Duration
	TimedOut       bool
	Error          string
}

// Info combines an availability probe with a static description.
type Info struct {
	Name         string
	Description  string
	Availability runner.Availability
}

// UpdateOptions carries the per-run settings an adapter needs.
type UpdateOptions struct {
	// DryRun restricts the adapter to its listing subcommand.
	DryRun bool

	// ExtraArgs are appended to the mutating update command (from config).
	ExtraArgs []string

	// Timeout bounds each process invocation.
	Timeout time.Duration

	// MaxRetries and RetryDelay configure the retry wrapper.
	MaxRetries int
	RetryDelay time.Duration
}

// Manager is one package-manager adapter. Test never returns an error: an
// absent tool is an availability fact, not a failure.
type Manager interface {
	Name() string
	Test(ctx context.Context) runner.Availability
	Update(ctx context.Context, opts UpdateOptions) Result
	Info(ctx context.Context) Info
}

// ProcessRunner is what adapters need from the runner: single invocations
// and availability probes. *runner.Runner implements it.
type ProcessRunner interface {
	runner.Executor
	Probe(ctx context.Context, command string, testArgs ...string) runner.Availability
}

// base carries the shared wiring for all adapters.
type base struct {
	runner ProcessRunner
	logger *logger.Logger
}

// acceptFunc decides whether a completed invocation counts as success.
// The default is exit code 0; adapters override for tool quirks.
type acceptFunc func(res *runner.ProcessResult) bool

func acceptZero(res *runner.ProcessResult) bool {
	return res.Success
}

// runOp invokes one subcommand through the retry wrapper and normalizes the
// outcome. Errors (unresolvable executable, launch failure) are converted to
// a failed Result so one adapter never aborts the run.
func (b *base) runOp(ctx context.Context, name, exe string, args []string, op Operation, opts UpdateOptions, accept acceptFunc) Result {
	if accept == nil {
		accept = acceptZero
	}

	cmd := runner.Command{
		FilePath: exe,
		Args:     args,
		Timeout:  opts.Timeout,
	}

	res, err := runner.RunWithRetry(ctx, b.runner, cmd, opts.MaxRetries, opts.RetryDelay, b.logger)
	if err != nil {
		return Result{
			PackageManager: name,
			Operation:      op,
			Success:        false,
			ExitCode:       -1,
			Error:          err.Error(),
		}
	}

	result := Result{
		PackageManager: name,
		Operation:      op,
		Success:        accept(res),
		ExitCode:       res.ExitCode,
		Duration:       res.Duration,
		TimedOut:       res.TimedOut,
	}
	if !result.Success {
		if res.TimedOut {
			result.Error = "timed out after " + opts.Timeout.String()
		} else {
			result.Error = strings.TrimSpace(firstNonEmpty(res.Stderr, res.Stdout))
		}
	}
	return result
}

// SplitArgs turns a configured argument string into argv elements.
func SplitArgs(args string) []string {
	return strings.Fields(args)
}

// firstNonEmpty returns the first non-blank string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func (b *base) debugf(component, format string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(component, format, args...)
	}
}

func (b *base) warnf(component, format string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(component, format, args...)
	}
}
