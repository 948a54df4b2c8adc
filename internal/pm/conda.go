package pm

import (
	"context"
	"os"
	"path/filepath"

	"github.com/harrison/updatectl/internal/logger"
	"github.com/harrison/updatectl/internal/runner"
)

// condaTosChannels are the channels whose terms of service must be accepted
// before newer conda releases will run unattended updates.
var condaTosChannels = []string{
	"https://repo.anaconda.com/pkgs/main",
	"https://repo.anaconda.com/pkgs/r",
	"https://repo.anaconda.com/pkgs/msys2",
}

// Conda adapts the conda CLI for base-environment updates.
type Conda struct {
	base
	exe string
}

// NewConda creates the conda adapter.
func NewConda(r ProcessRunner, log *logger.Logger) *Conda {
	return &Conda{base: base{runner: r, logger: log}}
}

// Name returns the registry name.
func (c *Conda) Name() string {
	return "conda"
}

// executable returns the conda invocation path. Conda installs frequently
// leave PATH untouched, so when the plain name does not resolve we check the
// usual install roots and cache the first hit.
func (c *Conda) executable() string {
	if c.exe != "" {
		return c.exe
	}
	c.exe = "conda"
	if _, err := runner.ResolveExecutable("conda"); err == nil {
		return c.exe
	}
	for _, candidate := range condaInstallCandidates() {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			c.debugf(c.Name(), "found conda outside PATH at %s", candidate)
			c.exe = candidate
			break
		}
	}
	return c.exe
}

// condaInstallCandidates lists the common per-user and machine-wide install
// locations for Miniconda and Anaconda.
func condaInstallCandidates() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, "miniconda3"), filepath.Join(home, "anaconda3"))
	}
	roots = append(roots,
		`C:\ProgramData\miniconda3`,
		`C:\ProgramData\anaconda3`,
		`C:\miniconda3`,
		`C:\anaconda3`,
	)

	candidates := make([]string, 0, len(roots))
	for _, root := range roots {
		candidates = append(candidates, filepath.Join(root, "Scripts", "conda.exe"))
	}
	return candidates
}

// Test probes conda availability, including installs left off PATH.
func (c *Conda) Test(ctx context.Context) runner.Availability {
	return c.runner.Probe(ctx, c.executable())
}

// Update updates all packages in the base environment. Before a mutating run
// it accepts channel terms of service and enables always_yes so conda never
// stalls on a prompt; failures of those preparation calls are logged and
// ignored because older conda releases reject the subcommands.
func (c *Conda) Update(ctx context.Context, opts UpdateOptions) Result {
	exe := c.executable()

	if opts.DryRun {
		return c.runOp(ctx, c.Name(), exe, []string{"update", "--all", "--dry-run"}, OpDryRunCheck, opts, nil)
	}

	c.prepare(ctx, exe, opts)

	args := append([]string{"update", "--all", "-y"}, opts.ExtraArgs...)
	return c.runOp(ctx, c.Name(), exe, args, OpUpdate, opts, nil)
}

// prepare accepts channel terms of service and sets always_yes.
func (c *Conda) prepare(ctx context.Context, exe string, opts UpdateOptions) {
	for _, channel := range condaTosChannels {
		cmd := runner.Command{
			FilePath: exe,
			Args:     []string{"tos", "accept", "--override-channels", "--channel", channel},
			Timeout:  opts.Timeout,
		}
		if res, err := c.runner.Run(ctx, cmd); err != nil || !res.Success {
			c.debugf(c.Name(), "tos accept for %s not applied (older conda?)", channel)
		}
	}

	cmd := runner.Command{
		FilePath: exe,
		Args:     []string{"config", "--set", "always_yes", "true"},
		Timeout:  opts.Timeout,
	}
	if res, err := c.runner.Run(ctx, cmd); err != nil || !res.Success {
		c.warnf(c.Name(), "could not set always_yes, update may prompt")
	}
}

// Info combines the availability probe with a static description.
func (c *Conda) Info(ctx context.Context) Info {
	return Info{
		Name:         c.Name(),
		Description:  "conda, updates all packages in the base environment",
		Availability: c.Test(ctx),
	}
}
