package cli

import (
	"github.com/spf13/cobra"

	"github.com/unipkg/unipkg/cmd/unipkg/output"
)

var rootCmd = &cobra.Command{
	Use:   "unipkg",
	Short: "Multi-provider package resolution and batch operations",
	Long: `unipkg resolves dependency graphs and runs batch package operations
across npm, pip, cargo, and gem.

Package identifiers take the form [provider:]name[@version], for example
"npm:lodash", "pip:requests@2.31.0", or "left-pad" with a default provider.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Console is the global console for CLI commands.
var Console *output.Console

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	Console = output.DefaultConsole()

	rootCmd.PersistentFlags().String("default-provider", "npm", "Provider for unqualified package names (npm, pip, cargo, gem; empty disables)")
	rootCmd.PersistentFlags().String("verbosity", "normal", "Display verbosity (quiet, normal, detailed)")
	rootCmd.PersistentFlags().Bool("verbose-log", false, "Emit structured engine logs to stderr")
	rootCmd.PersistentFlags().Bool("trace", false, "Emit OpenTelemetry spans to stdout")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
}

// SetupVersion configures version information after variables are set.
func SetupVersion() {
	rootCmd.SetVersionTemplate(GetFullVersion() + "\n")
	rootCmd.Version = GetVersion()
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
