// Package commands implements the unipkg CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unipkg/unipkg/cmd/unipkg/cli"
	"github.com/unipkg/unipkg/cmd/unipkg/output"
	"github.com/unipkg/unipkg/core"
	"github.com/unipkg/unipkg/observability"
)

// buildEngine constructs the engine from the command's persistent flags.
// The returned cleanup flushes tracing when it was enabled.
func buildEngine(cmd *cobra.Command) (*core.Engine, func(), error) {
	defaultProvider, _ := cmd.Flags().GetString("default-provider")
	verbosity, _ := cmd.Flags().GetString("verbosity")
	verboseLog, _ := cmd.Flags().GetBool("verbose-log")
	trace, _ := cmd.Flags().GetBool("trace")
	noColor, _ := cmd.Flags().GetBool("no-color")

	switch verbosity {
	case "quiet":
		cli.Console.SetVerbosity(output.VerbosityQuiet)
	case "normal":
		cli.Console.SetVerbosity(output.VerbosityNormal)
	case "detailed":
		cli.Console.SetVerbosity(output.VerbosityDetailed)
	default:
		return nil, nil, fmt.Errorf("invalid verbosity %q: use quiet, normal, or detailed", verbosity)
	}
	if noColor {
		cli.Console.SetColors(false)
	}

	logger := observability.NewNullLogger()
	if verboseLog {
		logger = observability.NewLogger(os.Stderr, observability.InfoLevel)
	}

	cleanup := func() {}
	if trace {
		cfg := observability.DefaultTracerConfig()
		cfg.ServiceVersion = cli.GetVersion()
		cfg.ExporterType = "stdout"
		tp, err := observability.SetupTracing(cmd.Context(), cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("setup tracing: %w", err)
		}
		cleanup = func() {
			_ = observability.ShutdownTracing(cmd.Context(), tp)
		}
	}

	engine, err := core.NewEngine(core.Config{
		DefaultProvider: defaultProvider,
		Logger:          logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return engine, cleanup, nil
}
