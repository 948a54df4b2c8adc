package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/updatectl/internal/config"
	"github.com/harrison/updatectl/internal/history"
	"github.com/harrison/updatectl/internal/pm"
	"github.com/harrison/updatectl/internal/runner"
)

// fakeManager scripts one adapter's behavior and records what it was asked.
type fakeManager struct {
	name      string
	available bool
	result    pm.Result
	gotOpts   *pm.UpdateOptions
	updated   bool
}

func (f *fakeManager) Name() string { return f.name }

func (f *fakeManager) Test(context.Context) runner.Availability {
	if !f.available {
		return runner.Availability{Available: false, Error: "executable not found"}
	}
	return runner.Availability{Available: true, Path: f.name, Version: "1.0"}
}

func (f *fakeManager) Update(_ context.Context, opts pm.UpdateOptions) pm.Result {
	f.updated = true
	f.gotOpts = &opts
	res := f.result
	res.PackageManager = f.name
	return res
}

func (f *fakeManager) Info(ctx context.Context) pm.Info {
	return pm.Info{Name: f.name, Availability: f.Test(ctx)}
}

type fakeRecorder struct {
	runs []history.Run
	err  error
}

func (f *fakeRecorder) RecordRun(run history.Run) error {
	f.runs = append(f.runs, run)
	return f.err
}

func okResult() pm.Result {
	return pm.Result{Operation: pm.OpUpdate, Success: true, Duration: time.Second}
}

func failedResult() pm.Result {
	return pm.Result{Operation: pm.OpUpdate, Success: false, ExitCode: 1, Error: "boom"}
}

func TestAbsentManagerIsSkippedNotFailed(t *testing.T) {
	winget := &fakeManager{name: "winget", available: false}
	o := New(config.DefaultConfig(), []pm.Manager{winget}, nil, nil)

	summary := o.Run(context.Background(), Options{})

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.False(t, summary.Failures())
	assert.False(t, winget.updated, "unavailable manager must not be updated")
	require.Len(t, summary.Outcomes, 1)
	assert.Equal(t, StatusSkipped, summary.Outcomes[0].Status)
	assert.Equal(t, "executable not found", summary.Outcomes[0].SkipReason)
}

func TestOneFailureDoesNotAbortTheRest(t *testing.T) {
	first := &fakeManager{name: "winget", available: true, result: failedResult()}
	second := &fakeManager{name: "choco", available: true, result: okResult()}
	o := New(config.DefaultConfig(), []pm.Manager{first, second}, nil, nil)

	summary := o.Run(context.Background(), Options{})

	assert.True(t, second.updated, "managers after a failure must still run")
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Succeeded)
	assert.True(t, summary.Failures())
}

func TestDisabledManagerIsSkipped(t *testing.T) {
	cfg := config.DefaultConfig()
	mc := cfg.PackageManagers["npm"]
	mc.Enabled = false
	cfg.PackageManagers["npm"] = mc

	npm := &fakeManager{name: "npm", available: true, result: okResult()}
	o := New(cfg, []pm.Manager{npm}, nil, nil)

	summary := o.Run(context.Background(), Options{})

	assert.False(t, npm.updated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, "disabled in configuration", summary.Outcomes[0].SkipReason)
}

func TestUpdateOptionsDerivedFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	winget := &fakeManager{name: "winget", available: true, result: okResult()}
	o := New(cfg, []pm.Manager{winget}, nil, nil)

	o.Run(context.Background(), Options{DryRun: true})

	require.NotNil(t, winget.gotOpts)
	assert.True(t, winget.gotOpts.DryRun)
	assert.Equal(t, []string{"--silent", "--accept-package-agreements", "--accept-source-agreements"}, winget.gotOpts.ExtraArgs)
	assert.Equal(t, 1800*time.Second, winget.gotOpts.Timeout)
	assert.Equal(t, cfg.Advanced.MaxRetries, winget.gotOpts.MaxRetries)
	assert.Equal(t, time.Duration(cfg.Advanced.RetryDelaySeconds)*time.Second, winget.gotOpts.RetryDelay)
}

func TestSummaryRecordedToHistory(t *testing.T) {
	rec := &fakeRecorder{}
	managers := []pm.Manager{
		&fakeManager{name: "winget", available: true, result: okResult()},
		&fakeManager{name: "choco", available: false},
	}
	o := New(config.DefaultConfig(), managers, nil, rec)

	summary := o.Run(context.Background(), Options{DryRun: true})

	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.Equal(t, summary.RunID, run.ID)
	assert.True(t, run.DryRun)
	assert.Equal(t, 1, run.Succeeded)
	assert.Equal(t, 1, run.Skipped)
	require.Len(t, run.Results, 2)
	assert.Equal(t, "skipped", run.Results[1].Status)
	assert.Equal(t, "executable not found", run.Results[1].Error)
}

func TestHistoryFailureIsNotFatal(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	o := New(config.DefaultConfig(), []pm.Manager{
		&fakeManager{name: "winget", available: true, result: okResult()},
	}, nil, rec)

	summary := o.Run(context.Background(), Options{})

	assert.Equal(t, 1, summary.Succeeded)
	assert.False(t, summary.Failures())
}

func TestRunIDsAreUnique(t *testing.T) {
	o := New(config.DefaultConfig(), nil, nil, nil)

	first := o.Run(context.Background(), Options{})
	second := o.Run(context.Background(), Options{})

	assert.NotEmpty(t, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)
}
