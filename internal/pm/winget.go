package pm

import (
	"context"

	"github.com/harrison/updatectl/internal/logger"
	"github.com/harrison/updatectl/internal/runner"
)

// wingetNoApplicableUpdate (0x8A15002B) is the exit code winget returns when
// no installed package has an applicable upgrade. It is success in practice
// but nonzero on the wire. Only this one code is accepted; other nonzero
// codes from winget are undocumented and stay failures.
const wingetNoApplicableUpdate = -1978335189

// Winget adapts the Windows Package Manager CLI.
type Winget struct {
	base
}

// NewWinget creates the winget adapter.
func NewWinget(r ProcessRunner, log *logger.Logger) *Winget {
	return &Winget{base{runner: r, logger: log}}
}

// Name returns the registry name.
func (w *Winget) Name() string {
	return "winget"
}

// Test probes winget availability.
func (w *Winget) Test(ctx context.Context) runner.Availability {
	return w.runner.Probe(ctx, "winget")
}

// Update upgrades all packages, or lists available upgrades in dry-run mode.
func (w *Winget) Update(ctx context.Context, opts UpdateOptions) Result {
	if opts.DryRun {
		// Bare "winget upgrade" only lists what has an upgrade available.
		return w.runOp(ctx, w.Name(), "winget", []string{"upgrade"}, OpDryRunCheck, opts, w.accept)
	}

	args := append([]string{"upgrade", "--all"}, opts.ExtraArgs...)
	return w.runOp(ctx, w.Name(), "winget", args, OpUpdate, opts, w.accept)
}

// accept treats the documented no-applicable-update code as success.
func (w *Winget) accept(res *runner.ProcessResult) bool {
	return res.Success || res.ExitCode == wingetNoApplicableUpdate
}

// Info combines the availability probe with a static description.
func (w *Winget) Info(ctx context.Context) Info {
	return Info{
		Name:         w.Name(),
		Description:  "Windows Package Manager (winget), updates applications from the Microsoft Store and community repository",
		Availability: w.Test(ctx),
	}
}
