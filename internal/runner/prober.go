package runner

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// probeTimeout bounds a version probe; a manager that cannot print its
// version inside this window is treated as unavailable.
const probeTimeout = 15 * time.Second

// Probe checks whether command is resolvable and minimally functional by
// running it with testArgs (default --version). When more than one candidate
// exists, native executables win over scripts (.exe > .cmd > .bat > .ps1).
//
// Probe never returns an error: every failure becomes Available=false with
// an explanatory Error string.
func (r *Runner) Probe(ctx context.Context, command string, testArgs ...string) Availability {
	if len(testArgs) == 0 {
		testArgs = []string{"--version"}
	}

	resolved, err := ResolveExecutable(command)
	if err != nil {
		return Availability{Available: false, Error: err.Error()}
	}

	result, err := r.Run(ctx, Command{
		FilePath: resolved,
		Args:     testArgs,
		Timeout:  probeTimeout,
	})
	if err != nil {
		return Availability{Available: false, Path: resolved, Error: err.Error()}
	}

	avail := Availability{
		Path:     resolved,
		ExitCode: result.ExitCode,
		Version:  firstLine(result.Stdout, result.Stderr),
	}

	switch {
	case result.TimedOut:
		avail.Error = "version probe timed out"
	case !result.Success:
		avail.Error = "version probe exited with code " + strconv.Itoa(result.ExitCode)
	default:
		avail.Available = true
	}

	return avail
}

// firstLine returns the first non-empty line of the given outputs, trimmed.
// Some tools print their version to stderr.
func firstLine(outputs ...string) string {
	for _, out := range outputs {
		for _, line := range strings.Split(out, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				return line
			}
		}
	}
	return ""
}
