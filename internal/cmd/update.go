package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/updatectl/internal/history"
	"github.com/harrison/updatectl/internal/orchestrator"
	"github.com/harrison/updatectl/internal/pm"
	"github.com/harrison/updatectl/internal/runner"
)

// NewUpdateCommand creates the update command
func NewUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check for and apply updates through all package managers",
		Long: `Run updates sequentially through every enabled package manager.

Managers whose executable cannot be found are skipped. A failure in one
manager never stops the remaining ones; the command exits nonzero only
when at least one manager actually failed.

Examples:
  updatectl update                          # update everything
  updatectl update --dry-run                # only list available updates
  updatectl update --managers winget,npm    # restrict to a subset`,
		Args: cobra.NoArgs,
		RunE: updateCommand,
	}

	cmd.Flags().String("managers", "", "Comma-separated subset of managers to run (default: all)")
	cmd.Flags().Bool("dry-run", false, "List available updates without applying them")

	return cmd
}

// updateCommand implements the update command logic
func updateCommand(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := buildLogger(cmd, cfg)
	defer log.Close()

	run := runner.New(log)

	managers := pm.All(run, log)
	if names, _ := cmd.Flags().GetString("managers"); names != "" {
		managers, err = pm.Select(strings.Split(names, ","), run, log)
		if err != nil {
			return err
		}
	}

	var recorder orchestrator.Recorder
	if dir, err := dataDir(); err == nil {
		if store, err := history.Open(dir); err == nil {
			defer store.Close()
			recorder = store
		} else {
			log.Warn("history", "run history disabled: %v", err)
		}
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	orch := orchestrator.New(cfg, managers, log, recorder)
	summary := orch.Run(cmd.Context(), orchestrator.Options{DryRun: dryRun})

	printSummary(cmd, summary)

	if summary.Failures() {
		return fmt.Errorf("%d package manager(s) failed", summary.Failed)
	}
	return nil
}

func printSummary(cmd *cobra.Command, summary orchestrator.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nUpdate Summary:\n")
	fmt.Fprintf(out, "  Succeeded: %d\n", summary.Succeeded)
	fmt.Fprintf(out, "  Failed: %d\n", summary.Failed)
	fmt.Fprintf(out, "  Skipped: %d\n", summary.Skipped)
	fmt.Fprintf(out, "  Total duration: %s\n", summary.Duration.Round(time.Second))

	for _, o := range summary.Outcomes {
		switch o.Status {
		case orchestrator.StatusSkipped:
			fmt.Fprintf(out, "  - %s: skipped (%s)\n", o.Manager, o.SkipReason)
		case orchestrator.StatusFailed:
			fmt.Fprintf(out, "  - %s: failed, exit code %d: %s\n", o.Manager, o.Result.ExitCode, o.Result.Error)
		}
	}
}
