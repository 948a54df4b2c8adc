// Package installer handles first-time setup: locating package-manager
// executables that were installed without touching PATH, registering their
// directories through the PATH guard, and wiring the scheduled task.
package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/harrison/updatectl/internal/logger"
	"github.com/harrison/updatectl/internal/pathguard"
	"github.com/harrison/updatectl/internal/pm"
	"github.com/harrison/updatectl/internal/runner"
)

// discoveryBackupID names the PATH backup taken before discovery edits PATH.
const discoveryBackupID = "installer-discovery"

// Discovery is one manager's discovery outcome.
type Discovery struct {
	Manager   string
	Available bool
	Path      string
	Version   string
	// AddedToPath is set when the executable's directory was registered
	// on the user PATH during this discovery.
	AddedToPath bool
}

// Installer discovers manager executables and maintains the scheduled task.
type Installer struct {
	runner   pm.ProcessRunner
	paths    *pathguard.Manager
	logger   *logger.Logger
	managers []pm.Manager
}

// New creates an installer over the given adapters.
func New(r pm.ProcessRunner, paths *pathguard.Manager, managers []pm.Manager, log *logger.Logger) *Installer {
	return &Installer{runner: r, paths: paths, logger: log, managers: managers}
}

// searchRoots lists directories commonly holding manager executables that
// installers leave off PATH.
func searchRoots() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots,
			filepath.Join(home, "scoop", "shims"),
			filepath.Join(home, "AppData", "Roaming", "npm"),
			filepath.Join(home, "miniconda3", "Scripts"),
			filepath.Join(home, "anaconda3", "Scripts"),
		)
	}
	roots = append(roots,
		`C:\ProgramData\chocolatey\bin`,
		`C:\ProgramData\miniconda3\Scripts`,
		`C:\ProgramData\anaconda3\Scripts`,
		`C:\miniconda3\Scripts`,
		`C:\anaconda3\Scripts`,
	)
	return roots
}

// Discover probes every adapter and, for tools not on PATH, searches the
// known install roots. Found directories are added to the user PATH through
// the PATH guard, behind a backup taken on the first edit.
func (i *Installer) Discover(ctx context.Context) []Discovery {
	var results []Discovery
	backedUp := false

	for _, mgr := range i.managers {
		name := mgr.Name()
		avail := mgr.Test(ctx)
		if avail.Available {
			i.infof(name, "found at %s (version %s)", avail.Path, avail.Version)
			results = append(results, Discovery{Manager: name, Available: true, Path: avail.Path, Version: avail.Version})
			continue
		}

		found := i.searchFor(ctx, name)
		if found == nil {
			i.infof(name, "not installed")
			results = append(results, Discovery{Manager: name})
			continue
		}

		dir := filepath.Dir(found.Path)
		if !backedUp {
			if _, err := i.paths.Backup(discoveryBackupID); err != nil {
				i.errorf(name, "refusing PATH edit, backup failed: %v", err)
				results = append(results, *found)
				continue
			}
			backedUp = true
		}
		if err := i.paths.AddDir(dir, pathguard.ScopeUser, discoveryBackupID); err != nil {
			i.errorf(name, "could not add %s to PATH: %v", dir, err)
		} else {
			found.AddedToPath = true
			i.infof(name, "added %s to user PATH", dir)
		}
		results = append(results, *found)
	}
	return results
}

// searchFor probes the known install roots for one manager's executable.
func (i *Installer) searchFor(ctx context.Context, name string) *Discovery {
	for _, root := range searchRoots() {
		for _, ext := range []string{".exe", ".cmd", ".bat", ".ps1"} {
			candidate := filepath.Join(root, name+ext)
			info, err := os.Stat(candidate)
			if err != nil || info.IsDir() {
				continue
			}
			avail := i.runner.Probe(ctx, candidate)
			if !avail.Available {
				continue
			}
			return &Discovery{Manager: name, Available: true, Path: candidate, Version: avail.Version}
		}
	}
	return nil
}

// taskName identifies the scheduled task in Task Scheduler.
const taskName = "UpdatectlDailyRun"

// schtasksTimeout bounds each schtasks invocation; task registration is
// quick and a hung call should not stall the install.
const schtasksTimeout = 60 * time.Second

// RegisterUpdateTask registers (replacing any existing) a daily scheduled
// task running `updatectl update` as SYSTEM at the highest run level.
func (i *Installer) RegisterUpdateTask(ctx context.Context, startTime string) error {
	exePath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	taskCmd := fmt.Sprintf(`"%s" update`, exePath)

	// Delete first so /CREATE never collides with a stale definition.
	i.runSchtasks(ctx, "/DELETE", "/F", "/TN", taskName)

	res, err := i.runSchtasks(ctx,
		"/CREATE", "/F",
		"/SC", "DAILY",
		"/ST", startTime,
		"/TN", taskName,
		"/TR", taskCmd,
		"/RU", "SYSTEM",
		"/RL", "HIGHEST",
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduled task: %w", err)
	}
	if !res.Success {
		return fmt.Errorf("schtasks exited with code %d: %s", res.ExitCode, res.Stderr)
	}
	i.infof("installer", "registered scheduled task %s (daily at %s)", taskName, startTime)
	return nil
}

// RemoveUpdateTask deletes the scheduled task.
func (i *Installer) RemoveUpdateTask(ctx context.Context) error {
	res, err := i.runSchtasks(ctx, "/DELETE", "/F", "/TN", taskName)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled task: %w", err)
	}
	if !res.Success {
		return fmt.Errorf("schtasks exited with code %d: %s", res.ExitCode, res.Stderr)
	}
	i.infof("installer", "removed scheduled task %s", taskName)
	return nil
}

func (i *Installer) runSchtasks(ctx context.Context, args ...string) (*runner.ProcessResult, error) {
	return i.runner.Run(ctx, runner.Command{
		FilePath: "schtasks",
		Args:     args,
		Timeout:  schtasksTimeout,
	})
}

func (i *Installer) infof(component, format string, args ...any) {
	if i.logger != nil {
		i.logger.Info(component, format, args...)
	}
}

func (i *Installer) errorf(component, format string, args ...any) {
	if i.logger != nil {
		i.logger.Error(component, format, args...)
	}
}
