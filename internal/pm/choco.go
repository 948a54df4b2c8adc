package pm

import (
	"context"

	"github.com/harrison/updatectl/internal/logger"
	"github.com/harrison/updatectl/internal/runner"
)

// Choco adapts the Chocolatey CLI.
type Choco struct {
	base
}

// NewChoco creates the Chocolatey adapter.
func NewChoco(r ProcessRunner, log *logger.Logger) *Choco {
	return &Choco{base{runner: r, logger: log}}
}

// Name returns the registry name.
func (c *Choco) Name() string {
	return "choco"
}

// Test probes choco availability.
func (c *Choco) Test(ctx context.Context) runner.Availability {
	return c.runner.Probe(ctx, "choco")
}

// Update upgrades all packages, or lists outdated ones in dry-run mode.
func (c *Choco) Update(ctx context.Context, opts UpdateOptions) Result {
	if opts.DryRun {
		return c.runOp(ctx, c.Name(), "choco", []string{"outdated"}, OpDryRunCheck, opts, nil)
	}

	args := append([]string{"upgrade", "all"}, opts.ExtraArgs...)
	return c.runOp(ctx, c.Name(), "choco", args, OpUpdate, opts, nil)
}

// Info combines the availability probe with a static description.
func (c *Choco) Info(ctx context.Context) Info {
	return Info{
		Name:         c.Name(),
		Description:  "Chocolatey, community package manager for Windows applications and tools",
		Availability: c.Test(ctx),
	}
}
