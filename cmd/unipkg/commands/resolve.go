package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unipkg/unipkg/cmd/unipkg/cli"
)

// ResolveOptions holds the configuration for the resolve command.
type ResolveOptions struct {
	Format string
}

// NewResolveCommand creates the 'resolve' subcommand.
func NewResolveCommand() *cobra.Command {
	opts := &ResolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve PACKAGE",
		Short: "Resolve a package's full dependency graph",
		Long: `Resolve the transitive dependency graph for a package, detect version
conflicts, and plan an install order.

The package identifier takes the form [provider:]name[@version].

Examples:
  unipkg resolve express
  unipkg resolve pip:requests@2.31.0
  unipkg resolve cargo:serde --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "console", "Output format: console or json")

	return cmd
}

func runResolve(cmd *cobra.Command, packageID string, opts *ResolveOptions) error {
	engine, cleanup, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := engine.ResolveDependencies(cmd.Context(), packageID)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", packageID, err)
	}

	switch opts.Format {
	case "json":
		if err := printJSON(cli.Console, result); err != nil {
			return err
		}
	case "console":
		renderResolution(cli.Console, result)
	default:
		return fmt.Errorf("invalid format %q: use console or json", opts.Format)
	}

	if !result.Success {
		return fmt.Errorf("dependency conflicts could not be resolved for %s", packageID)
	}
	return nil
}
