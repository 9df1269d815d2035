package commands

import (
	"github.com/spf13/cobra"

	"github.com/unipkg/unipkg/cmd/unipkg/cli"
)

// UpdateOptions holds the configuration for the update command.
type UpdateOptions struct {
	Format string
}

// NewUpdateCommand creates the 'update' subcommand.
func NewUpdateCommand() *cobra.Command {
	opts := &UpdateOptions{}

	cmd := &cobra.Command{
		Use:   "update [PACKAGE...]",
		Short: "Upgrade installed packages to their newest versions",
		Long: `Upgrade the named packages to the newest published version. With no
arguments, every installed package across all providers is checked.

Pinned packages and packages already at the newest version are skipped.

Examples:
  unipkg update
  unipkg update npm:express gem:rails`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "console", "Output format: console or json")

	return cmd
}

func runUpdate(cmd *cobra.Command, packages []string, opts *UpdateOptions) error {
	engine, cleanup, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.BatchUpdate(cmd.Context(), packages)

	if opts.Format == "json" {
		if err := printJSON(cli.Console, result); err != nil {
			return err
		}
		return batchExitError(result)
	}

	renderBatchResult(cli.Console, "updated", result)
	return batchExitError(result)
}
