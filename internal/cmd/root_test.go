package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sandboxDataDir keeps test runs out of the real user config directory.
func sandboxDataDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Setenv("AppData", tmp)
	return tmp
}

// commonArgs routes config and logs into temp directories.
func commonArgs(t *testing.T) []string {
	t.Helper()
	tmp := t.TempDir()
	return []string{
		"--config", filepath.Join(tmp, "config.json"),
		"--log-dir", filepath.Join(tmp, "logs"),
		"--silent",
	}
}

func TestRootCommandHasAllSubcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}

	for _, want := range []string{"update", "status", "configure", "path", "install"} {
		assert.Contains(t, names, want)
	}
}

func TestGlobalFlagDefaults(t *testing.T) {
	root := NewRootCommand()

	level, err := root.PersistentFlags().GetString("log-level")
	require.NoError(t, err)
	assert.Equal(t, "INFO", level)

	silent, err := root.PersistentFlags().GetBool("silent")
	require.NoError(t, err)
	assert.False(t, silent)
}

func TestConfigureShowPrintsEffectiveConfig(t *testing.T) {
	sandboxDataDir(t)

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"configure", "--show"}, commonArgs(t)...))

	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), `"PackageManagers"`)
	assert.Contains(t, out.String(), `"winget"`)
	assert.Contains(t, out.String(), `"Advanced"`)
}

func TestConfigureCreatesMissingConfigFile(t *testing.T) {
	sandboxDataDir(t)
	tmp := t.TempDir()
	configPath := filepath.Join(tmp, "config.json")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"configure", "--config", configPath, "--log-dir", filepath.Join(tmp, "logs"), "--silent"})

	require.NoError(t, root.Execute())
	assert.FileExists(t, configPath)
	assert.Contains(t, out.String(), configPath)
}

func TestUpdateRejectsUnknownManager(t *testing.T) {
	sandboxDataDir(t)

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"update", "--managers", "apt"}, commonArgs(t)...))

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apt")
}

func TestPathRestoreRequiresArgument(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"path", "restore"})

	assert.Error(t, root.Execute())
}

func TestPathBackupsEmptyDirectory(t *testing.T) {
	sandboxDataDir(t)

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"path", "backups"}, commonArgs(t)...))

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "No PATH backups found.")
}
