package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewConfigureCommand creates the configure command
func NewConfigureCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Create or inspect the configuration file",
		Long: `Ensure the configuration file exists, writing defaults when missing.

Settings present in the file are kept; anything missing is filled from
the defaults. With --show the effective merged configuration is printed.`,
		Args: cobra.NoArgs,
		RunE: configureCommand,
	}

	cmd.Flags().Bool("show", false, "Print the effective configuration as JSON")

	return cmd
}

// configureCommand implements the configure command logic
func configureCommand(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	show, _ := cmd.Flags().GetBool("show")
	if show {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration ready at %s\n", path)
	return nil
}
