package commands

import (
	"github.com/spf13/cobra"

	"github.com/unipkg/unipkg/cmd/unipkg/cli"
)

// NewVersionCommand creates the 'version' subcommand.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cli.Console.Println(cli.GetFullVersion())
		},
	}
}
