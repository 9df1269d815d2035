package commands

import (
	"github.com/spf13/cobra"

	"github.com/unipkg/unipkg/cmd/unipkg/cli"
)

// InstallOptions holds the configuration for the install command.
type InstallOptions struct {
	DryRun bool
	Force  bool
	Format string
}

// NewInstallCommand creates the 'install' subcommand.
func NewInstallCommand() *cobra.Command {
	opts := &InstallOptions{}

	cmd := &cobra.Command{
		Use:   "install PACKAGE...",
		Short: "Install one or more packages",
		Long: `Install packages across providers in a single batch. Items run in
parallel with per-item isolation: one failure never aborts the rest.

Each package identifier takes the form [provider:]name[@version]. An
omitted version installs the newest published version.

Examples:
  unipkg install lodash
  unipkg install npm:express pip:requests@2.31.0 gem:rails
  unipkg install left-pad --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate and resolve versions without installing")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Install even when a version is already installed")
	cmd.Flags().StringVar(&opts.Format, "format", "console", "Output format: console or json")

	return cmd
}

func runInstall(cmd *cobra.Command, packages []string, opts *InstallOptions) error {
	engine, cleanup, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result := engine.BatchInstall(cmd.Context(), packages, opts.DryRun, opts.Force)

	if opts.Format == "json" {
		if err := printJSON(cli.Console, result); err != nil {
			return err
		}
		return batchExitError(result)
	}

	verb := "installed"
	if opts.DryRun {
		verb = "validated"
	}
	renderBatchResult(cli.Console, verb, result)
	return batchExitError(result)
}
