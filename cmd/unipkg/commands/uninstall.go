package commands

import (
	"github.com/spf13/cobra"

	"github.com/unipkg/unipkg/cmd/unipkg/cli"
)

// UninstallOptions holds the configuration for the uninstall command.
type UninstallOptions struct {
	Force  bool
	Format string
}

// NewUninstallCommand creates the 'uninstall' subcommand.
func NewUninstallCommand() *cobra.Command {
	opts := &UninstallOptions{}

	cmd := &cobra.Command{
		Use:   "uninstall PACKAGE...",
		Short: "Remove one or more installed packages",
		Long: `Remove installed packages across providers in a single batch.
Packages that are not installed are reported as skipped.

Examples:
  unipkg uninstall lodash
  unipkg uninstall npm:express gem:rails
  unipkg uninstall pip:requests --force`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Attempt removal even when the package appears not installed")
	cmd.Flags().StringVar(&opts.Format, "format", "console", "Output format: console or json")

	return cmd
}

func runUninstall(cmd *cobra.Command, packages []string, opts *UninstallOptions) error {
	engine, cleanup, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.BatchUninstall(cmd.Context(), packages, opts.Force)

	if opts.Format == "json" {
		if err := printJSON(cli.Console, result); err != nil {
			return err
		}
		return batchExitError(result)
	}

	renderBatchResult(cli.Console, "removed", result)
	return batchExitError(result)
}
