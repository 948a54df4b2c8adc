package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/updatectl/internal/logger"
	"github.com/harrison/updatectl/internal/pathguard"
)

// NewPathCommand creates the path command group
func NewPathCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Inspect and restore PATH backups",
		Long: `PATH recovery utilities.

Every PATH modification updatectl makes is preceded by a backup of the
user, machine and process PATH values. These subcommands list those
backups and restore one when a change needs to be rolled back.`,
	}

	cmd.AddCommand(newPathBackupsCommand())
	cmd.AddCommand(newPathRestoreCommand())

	return cmd
}

func newPathBackupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List PATH backups, newest first",
		Args:  cobra.NoArgs,
		RunE:  pathBackupsCommand,
	}
}

func newPathRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <backup-id-or-file>",
		Short: "Restore the user PATH from a backup",
		Long: `Restore the user and process PATH from a backup, identified either by
its backup id (the newest matching file wins) or by an explicit backup
file path.

The current PATH is backed up under the id "emergency" before the
restore, so a restore can itself be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: pathRestoreCommand,
	}

	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	return cmd
}

func newPathManager(cmd *cobra.Command, log *logger.Logger) (*pathguard.Manager, error) {
	dir, err := backupDir()
	if err != nil {
		return nil, err
	}
	return pathguard.NewManager(pathguard.NewSystemStore(), dir, log), nil
}

// pathBackupsCommand implements the path backups subcommand
func pathBackupsCommand(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := buildLogger(cmd, cfg)
	defer log.Close()

	mgr, err := newPathManager(cmd, log)
	if err != nil {
		return err
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(backups) == 0 {
		fmt.Fprintln(out, "No PATH backups found.")
		return nil
	}
	for _, b := range backups {
		fmt.Fprintf(out, "%s  %s  (user PATH %d chars)\n",
			b.Timestamp.Local().Format("2006-01-02 15:04:05"), b.BackupID, len(b.UserPath))
	}
	return nil
}

// pathRestoreCommand implements the path restore subcommand
func pathRestoreCommand(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := buildLogger(cmd, cfg)
	defer log.Close()

	mgr, err := newPathManager(cmd, log)
	if err != nil {
		return err
	}

	target := args[0]
	var backup *pathguard.Backup
	if info, statErr := os.Stat(target); statErr == nil && !info.IsDir() {
		backup, err = pathguard.LoadBackupFile(target)
		if err != nil {
			return fmt.Errorf("failed to read backup file %s: %w", target, err)
		}
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes && !confirm(cmd, fmt.Sprintf("Restore PATH from backup %q? This replaces the current user PATH.", target)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	// Snapshot the current state first so the restore is reversible.
	if _, err := mgr.Backup("emergency"); err != nil {
		return fmt.Errorf("refusing to restore, emergency backup failed: %w", err)
	}

	if backup != nil {
		err = mgr.RestoreFrom(backup)
	} else {
		err = mgr.Restore(target)
	}
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "PATH restored. Open a new terminal to pick up the change.")
	return nil
}

// confirm prompts on the command's input stream and accepts y/yes.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
