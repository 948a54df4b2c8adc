// Package runner launches external package-manager executables with timeout
// enforcement, exit-code capture, retry, and availability probing.
//
// The runner never interprets nonzero exit codes: they are preserved on the
// ProcessResult and acceptability is the caller's policy (winget, for one,
// exits nonzero on a partial success).
package runner

import "time"

// ProcessResult captures one completed (or timed-out) process invocation.
// It is immutable once returned.
type ProcessResult struct {
	// FilePath is the resolved executable that was launched.
	FilePath string

	// Arguments are the arguments the process was launched with.
	Arguments []string

	// ExitCode is the process exit code. -1 indicates a timeout.
	ExitCode int

	// Duration is how long the invocation took. On timeout it equals the
	// configured timeout.
	Duration time.Duration

	// TimedOut is true when the process was killed at the deadline.
	TimedOut bool

	// Success is true only for exit code 0.
	Success bool

	// Stdout contains the captured standard output.
	Stdout string

	// Stderr contains the captured standard error.
	Stderr string
}

// Availability reports whether a command is resolvable and minimally
// functional. Probing never fails: problems are carried in Error.
type Availability struct {
	// Available is true when the command resolved and the probe ran.
	Available bool

	// Path is the resolved executable path, when resolution succeeded.
	Path string

	// Version is the first line of the probe output, when the probe ran.
	Version string

	// ExitCode is the probe's exit code; meaningful only when Available
	// or when the probe ran and failed.
	ExitCode int

	// Error describes why the command is unavailable.
	Error string
}
