package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/updatectl/internal/installer"
	"github.com/harrison/updatectl/internal/pm"
	"github.com/harrison/updatectl/internal/runner"
)

// NewInstallCommand creates the install command
func NewInstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Discover package managers and set up scheduled runs",
		Long: `Search the usual install locations for package-manager executables
that were installed without registering themselves on PATH, and add the
directories that are found to the user PATH (behind a backup).

With --schedule a daily scheduled task running "updatectl update" is
registered through Task Scheduler, as SYSTEM at the highest run level.`,
		Args: cobra.NoArgs,
		RunE: installCommand,
	}

	cmd.Flags().Bool("schedule", false, "Register the daily scheduled update task")
	cmd.Flags().String("time", "03:00", "Start time for the scheduled task (HH:MM)")

	return cmd
}

// installCommand implements the install command logic
func installCommand(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := buildLogger(cmd, cfg)
	defer log.Close()

	run := runner.New(log)
	paths, err := newPathManager(cmd, log)
	if err != nil {
		return err
	}

	inst := installer.New(run, paths, pm.All(run, log), log)
	results := inst.Discover(cmd.Context())

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Discovery results:\n")
	for _, d := range results {
		switch {
		case d.Available && d.AddedToPath:
			fmt.Fprintf(out, "  %-8s found at %s, added to PATH\n", d.Manager, d.Path)
		case d.Available:
			fmt.Fprintf(out, "  %-8s found at %s\n", d.Manager, d.Path)
		default:
			fmt.Fprintf(out, "  %-8s not installed\n", d.Manager)
		}
	}

	if schedule, _ := cmd.Flags().GetBool("schedule"); schedule {
		startTime, _ := cmd.Flags().GetString("time")
		if err := inst.RegisterUpdateTask(cmd.Context(), startTime); err != nil {
			return err
		}
		fmt.Fprintf(out, "Scheduled task registered (daily at %s).\n", startTime)
	}
	return nil
}
