package pm

import (
	"context"

	"github.com/harrison/updatectl/internal/logger"
	"github.com/harrison/updatectl/internal/runner"
)

// Pip adapts the pip CLI. pip has no bulk-upgrade subcommand, so both
// modes run "pip list --outdated" and report what an upgrade would touch.
type Pip struct {
	base
}

// NewPip creates the pip adapter.
func NewPip(r ProcessRunner, log *logger.Logger) *Pip {
	return &Pip{base{runner: r, logger: log}}
}

// Name returns the registry name.
func (p *Pip) Name() string {
	return "pip"
}

// Test probes pip availability.
func (p *Pip) Test(ctx context.Context) runner.Availability {
	return p.runner.Probe(ctx, "pip")
}

// Update lists outdated packages. Individual upgrades are left to the
// user; applying them blindly can break interdependent environments.
func (p *Pip) Update(ctx context.Context, opts UpdateOptions) Result {
	op := OpUpdate
	if opts.DryRun {
		op = OpDryRunCheck
	}
	args := append([]string{"list", "--outdated"}, opts.ExtraArgs...)
	return p.runOp(ctx, p.Name(), "pip", args, op, opts, nil)
}

// Info combines the availability probe with a static description.
func (p *Pip) Info(ctx context.Context) Info {
	return Info{
		Name:         p.Name(),
		Description:  "pip, reports outdated Python packages (no bulk upgrade)",
		Availability: p.Test(ctx),
	}
}
