package pm

import (
	"context"

	"github.com/harrison/updatectl/internal/logger"
	"github.com/harrison/updatectl/internal/runner"
)

// Scoop adapts the Scoop CLI.
type Scoop struct {
	base
}

// NewScoop creates the Scoop adapter.
func NewScoop(r ProcessRunner, log *logger.Logger) *Scoop {
	return &Scoop{base{runner: r, logger: log}}
}

// Name returns the registry name.
func (s *Scoop) Name() string {
	return "scoop"
}

// Test probes scoop availability.
func (s *Scoop) Test(ctx context.Context) runner.Availability {
	return s.runner.Probe(ctx, "scoop")
}

// Update updates every installed app, or reports status in dry-run mode.
func (s *Scoop) Update(ctx context.Context, opts UpdateOptions) Result {
	if opts.DryRun {
		return s.runOp(ctx, s.Name(), "scoop", []string{"status"}, OpDryRunCheck, opts, nil)
	}

	args := append([]string{"update", "*"}, opts.ExtraArgs...)
	return s.runOp(ctx, s.Name(), "scoop", args, OpUpdate, opts, nil)
}

// Info combines the availability probe with a static description.
func (s *Scoop) Info(ctx context.Context) Info {
	return Info{
		Name:         s.Name(),
		Description:  "Scoop, per-user command-line installer for Windows developer tools",
		Availability: s.Test(ctx),
	}
}
