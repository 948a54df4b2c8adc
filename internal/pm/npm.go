package pm

import (
	"context"

	"github.com/harrison/updatectl/internal/logger"
	"github.com/harrison/updatectl/internal/runner"
)

// Npm adapts the npm CLI for global package updates.
type Npm struct {
	base
}

// NewNpm creates the npm adapter.
func NewNpm(r ProcessRunner, log *logger.Logger) *Npm {
	return &Npm{base{runner: r, logger: log}}
}

// Name returns the registry name.
func (n *Npm) Name() string {
	return "npm"
}

// Test probes npm availability.
func (n *Npm) Test(ctx context.Context) runner.Availability {
	return n.runner.Probe(ctx, "npm")
}

// Update updates global packages. In dry-run mode it lists outdated globals;
// "npm outdated" exits 1 whenever anything is outdated, which is the
// expected answer, not a failure.
func (n *Npm) Update(ctx context.Context, opts UpdateOptions) Result {
	if opts.DryRun {
		accept := func(res *runner.ProcessResult) bool {
			return res.Success || res.ExitCode == 1
		}
		return n.runOp(ctx, n.Name(), "npm", []string{"outdated", "-g"}, OpDryRunCheck, opts, accept)
	}

	args := append([]string{"update"}, opts.ExtraArgs...)
	return n.runOp(ctx, n.Name(), "npm", args, OpUpdate, opts, nil)
}

// Info combines the availability probe with a static description.
func (n *Npm) Info(ctx context.Context) Info {
	return Info{
		Name:         n.Name(),
		Description:  "npm, updates globally installed Node.js packages",
		Availability: n.Test(ctx),
	}
}
