package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/updatectl/internal/config"
	"github.com/harrison/updatectl/internal/logger"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for updatectl
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "updatectl",
		Short: "Unattended package updates across Windows package managers",
		Long: `Updatectl checks for and applies package updates through the package
managers installed on the machine: winget, Chocolatey, Scoop, npm, pip
and conda.

Each manager is probed before use, missing ones are skipped, and every
PATH change goes through a backup-first guard so a broken update can
always be rolled back.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: <data dir>/config.json)")
	cmd.PersistentFlags().String("log-level", "INFO", "Log level (DEBUG, INFO, WARNING, ERROR)")
	cmd.PersistentFlags().Bool("silent", false, "Suppress console output (file logs still written)")
	cmd.PersistentFlags().String("log-dir", "", "Directory for log files (default: <data dir>/logs)")

	cmd.AddCommand(NewUpdateCommand())
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewConfigureCommand())
	cmd.AddCommand(NewPathCommand())
	cmd.AddCommand(NewInstallCommand())

	return cmd
}

// dataDir returns the per-user application directory, creating it if needed.
func dataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	dir := filepath.Join(base, "updatectl")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// loadConfig resolves the --config flag and loads (creating if missing) the
// configuration file.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		dir, err := dataDir()
		if err != nil {
			return nil, "", err
		}
		path = filepath.Join(dir, "config.json")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

// buildLogger assembles the logger from the global flags: a console sink
// unless --silent, plus plain and JSON-lines file sinks. File sink failures
// degrade to console-only logging rather than aborting the command.
func buildLogger(cmd *cobra.Command, cfg *config.Config) *logger.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	silent, _ := cmd.Flags().GetBool("silent")
	logDir, _ := cmd.Flags().GetString("log-dir")

	var sinks []logger.Sink
	if !silent {
		sinks = append(sinks, logger.NewConsoleSink(os.Stdout))
	}

	if logDir == "" {
		if dir, err := dataDir(); err == nil {
			logDir = filepath.Join(dir, "logs")
		}
	}
	if logDir != "" {
		retention := cfg.Advanced.LogRetentionDays
		if fileSink, err := logger.NewFileSink(logDir, retention); err == nil {
			sinks = append(sinks, fileSink)
		} else if !silent {
			fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
		}
		if jsonSink, err := logger.NewJSONFileSink(logDir, retention); err == nil {
			sinks = append(sinks, jsonSink)
		}
	}

	return logger.New(level, sinks...)
}

// backupDir returns the PATH backup directory under the data dir.
func backupDir() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "path-backups")
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	return path, nil
}
