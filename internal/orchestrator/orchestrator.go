// Package orchestrator drives one update run across the configured package
// managers, sequentially, and aggregates the outcomes.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/updatectl/internal/config"
	"github.com/harrison/updatectl/internal/history"
	"github.com/harrison/updatectl/internal/logger"
	"github.com/harrison/updatectl/internal/pm"
)

// Status classifies one manager's outcome within a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Outcome is one manager's result within a run.
type Outcome struct {
	Manager string
	Status  Status
	// SkipReason explains a skip (tool unavailable, disabled in config).
	SkipReason string
	// Result is zero-valued for skipped managers.
	Result pm.Result
}

// Summary aggregates one run.
type Summary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	DryRun    bool
	Outcomes  []Outcome
	Succeeded int
	Failed    int
	Skipped   int
}

// Failures reports whether any manager failed. Skips are not failures.
func (s Summary) Failures() bool {
	return s.Failed > 0
}

// Recorder persists run summaries. *history.Store implements it.
type Recorder interface {
	RecordRun(run history.Run) error
}

// Options configures one run.
type Options struct {
	DryRun bool
}

// Orchestrator runs updates across a fixed set of adapters.
type Orchestrator struct {
	cfg      *config.Config
	managers []pm.Manager
	logger   *logger.Logger
	recorder Recorder
}

// New creates an orchestrator. recorder may be nil to disable history.
func New(cfg *config.Config, managers []pm.Manager, log *logger.Logger, recorder Recorder) *Orchestrator {
	return &Orchestrator{cfg: cfg, managers: managers, logger: log, recorder: recorder}
}

// Run executes the update sequence. Each manager is probed first; unavailable
// or disabled managers are skipped. One manager failing never stops the rest.
func (o *Orchestrator) Run(ctx context.Context, opts Options) Summary {
	summary := Summary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		DryRun:    opts.DryRun,
	}
	o.infof("orchestrator", "starting run %s (%d managers, dryRun=%v)", summary.RunID, len(o.managers), opts.DryRun)

	for _, mgr := range o.managers {
		summary.Outcomes = append(summary.Outcomes, o.runOne(ctx, mgr, opts))
	}

	for _, out := range summary.Outcomes {
		switch out.Status {
		case StatusSucceeded:
			summary.Succeeded++
		case StatusFailed:
			summary.Failed++
		case StatusSkipped:
			summary.Skipped++
		}
	}
	summary.Duration = time.Since(summary.StartedAt)

	o.infof("orchestrator", "run %s finished: %d succeeded, %d failed, %d skipped in %.1fs",
		summary.RunID, summary.Succeeded, summary.Failed, summary.Skipped, summary.Duration.Seconds())

	o.record(summary)
	return summary
}

func (o *Orchestrator) runOne(ctx context.Context, mgr pm.Manager, opts Options) Outcome {
	name := mgr.Name()

	mc, found := o.cfg.Manager(name)
	if !found {
		o.warnf(name, "no configuration section, using defaults")
	}
	if !mc.Enabled {
		o.infof(name, "disabled in configuration, skipping")
		return Outcome{Manager: name, Status: StatusSkipped, SkipReason: "disabled in configuration"}
	}

	avail := mgr.Test(ctx)
	if !avail.Available {
		o.infof(name, "not available, skipping (%s)", avail.Error)
		return Outcome{Manager: name, Status: StatusSkipped, SkipReason: "executable not found"}
	}
	o.debugf(name, "available at %s (version %s)", avail.Path, avail.Version)

	result := mgr.Update(ctx, o.updateOptions(name, mc, opts))

	outcome := Outcome{Manager: name, Result: result}
	if result.Success {
		outcome.Status = StatusSucceeded
		if o.logger != nil {
			o.logger.Success(name, "%s completed in %.1fs", result.Operation, result.Duration.Seconds())
		}
	} else {
		outcome.Status = StatusFailed
		o.errorf(name, "%s failed (exit code %d): %s", result.Operation, result.ExitCode, result.Error)
	}
	return outcome
}

// updateOptions derives per-manager options from configuration.
func (o *Orchestrator) updateOptions(name string, mc config.ManagerConfig, opts Options) pm.UpdateOptions {
	adv := o.cfg.Advanced
	return pm.UpdateOptions{
		DryRun:     opts.DryRun,
		ExtraArgs:  pm.SplitArgs(mc.Args),
		Timeout:    time.Duration(mc.Timeout) * time.Second,
		MaxRetries: adv.MaxRetries,
		RetryDelay: time.Duration(adv.RetryDelaySeconds) * time.Second,
	}
}

// record persists the summary. Failures are warnings, never fatal.
func (o *Orchestrator) record(summary Summary) {
	if o.recorder == nil {
		return
	}

	run := history.Run{
		ID:        summary.RunID,
		StartedAt: summary.StartedAt,
		Duration:  summary.Duration,
		DryRun:    summary.DryRun,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
	}
	for _, out := range summary.Outcomes {
		res := history.Result{
			PackageManager: out.Manager,
			Status:         string(out.Status),
			Operation:      string(out.Result.Operation),
			ExitCode:       out.Result.ExitCode,
			Duration:       out.Result.Duration,
			Error:          out.Result.Error,
		}
		if out.Status == StatusSkipped {
			res.Error = out.SkipReason
		}
		run.Results = append(run.Results, res)
	}

	if err := o.recorder.RecordRun(run); err != nil {
		o.warnf("orchestrator", "failed to record run history: %v", err)
	}
}

func (o *Orchestrator) debugf(component, format string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(component, format, args...)
	}
}

func (o *Orchestrator) infof(component, format string, args ...any) {
	if o.logger != nil {
		o.logger.Info(component, format, args...)
	}
}

func (o *Orchestrator) warnf(component, format string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(component, format, args...)
	}
}

func (o *Orchestrator) errorf(component, format string, args ...any) {
	if o.logger != nil {
		o.logger.Error(component, format, args...)
	}
}
