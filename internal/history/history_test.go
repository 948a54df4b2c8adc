package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLastRunEmptyDatabase(t *testing.T) {
	store := openTestStore(t)

	run, err := store.LastRun()

	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestRecordAndReadBackRun(t *testing.T) {
	store := openTestStore(t)

	recorded := Run{
		ID:        "run-1",
		StartedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Duration:  95 * time.Second,
		Succeeded: 2,
		Failed:    1,
		Skipped:   3,
		Results: []Result{
			{PackageManager: "winget", Operation: "update", Status: "succeeded", ExitCode: 0, Duration: 60 * time.Second},
			{PackageManager: "choco", Operation: "update", Status: "failed", ExitCode: 1, Duration: 30 * time.Second, Error: "access denied"},
			{PackageManager: "scoop", Operation: "update", Status: "skipped"},
		},
	}
	require.NoError(t, store.RecordRun(recorded))

	got, err := store.LastRun()
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "run-1", got.ID)
	assert.True(t, recorded.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, 95*time.Second, got.Duration)
	assert.False(t, got.DryRun)
	assert.Equal(t, 2, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 3, got.Skipped)
	require.Len(t, got.Results, 3)
	assert.Equal(t, "winget", got.Results[0].PackageManager)
	assert.Equal(t, "access denied", got.Results[1].Error)
	assert.Equal(t, "skipped", got.Results[2].Status)
}

func TestLastRunReturnsNewest(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "middle", "new"} {
		require.NoError(t, store.RecordRun(Run{
			ID:        id,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := store.LastRun()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.ID)
}

func TestRecordRunDryRunFlag(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.RecordRun(Run{
		ID:        "dry",
		StartedAt: time.Now(),
		DryRun:    true,
	}))

	got, err := store.LastRun()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.DryRun)
}
