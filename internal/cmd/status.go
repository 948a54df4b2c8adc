package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/updatectl/internal/history"
	"github.com/harrison/updatectl/internal/pm"
	"github.com/harrison/updatectl/internal/runner"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show package manager availability and the last run",
		Args:  cobra.NoArgs,
		RunE:  statusCommand,
	}
}

// statusCommand implements the status command logic
func statusCommand(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := buildLogger(cmd, cfg)
	defer log.Close()

	run := runner.New(log)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Package managers:\n")
	for _, mgr := range pm.All(run, log) {
		info := mgr.Info(cmd.Context())
		mc, _ := cfg.Manager(info.Name)

		state := "not installed"
		if info.Availability.Available {
			state = fmt.Sprintf("available at %s", info.Availability.Path)
			if v := info.Availability.Version; v != "" {
				state += fmt.Sprintf(" (%s)", v)
			}
		}
		if !mc.Enabled {
			state += ", disabled in config"
		}
		fmt.Fprintf(out, "  %-8s %s\n", info.Name, state)
	}

	printLastRun(cmd)
	return nil
}

// printLastRun shows the most recent run from history, if any. History being
// unreadable is not an error for status.
func printLastRun(cmd *cobra.Command) {
	out := cmd.OutOrStdout()

	dir, err := dataDir()
	if err != nil {
		return
	}
	store, err := history.Open(dir)
	if err != nil {
		fmt.Fprintf(out, "\nRun history unavailable: %v\n", err)
		return
	}
	defer store.Close()

	last, err := store.LastRun()
	if err != nil {
		fmt.Fprintf(out, "\nRun history unavailable: %v\n", err)
		return
	}
	if last == nil {
		fmt.Fprintf(out, "\nNo runs recorded yet.\n")
		return
	}

	mode := "update"
	if last.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(out, "\nLast run (%s) at %s: %d succeeded, %d failed, %d skipped in %s\n",
		mode, last.StartedAt.Local().Format("2006-01-02 15:04:05"),
		last.Succeeded, last.Failed, last.Skipped, last.Duration.Round(time.Second))
	for _, res := range last.Results {
		line := fmt.Sprintf("  %-8s %s", res.PackageManager, res.Status)
		if res.Error != "" {
			line += fmt.Sprintf(" (%s)", res.Error)
		}
		fmt.Fprintln(out, line)
	}
}
