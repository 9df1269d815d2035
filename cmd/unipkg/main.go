package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/unipkg/unipkg/cmd/unipkg/cli"
	"github.com/unipkg/unipkg/cmd/unipkg/commands"
)

// Version information (set via ldflags during build)
var (
	version = "0.0.0-dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date
	cli.BuiltBy = builtBy
	cli.SetupVersion()

	cli.AddCommand(commands.NewVersionCommand())
	cli.AddCommand(commands.NewResolveCommand())
	cli.AddCommand(commands.NewInstallCommand())
	cli.AddCommand(commands.NewUninstallCommand())
	cli.AddCommand(commands.NewUpdateCommand())

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		os.Exit(130) // 128 + SIGINT
	}()

	if err := cli.Execute(); err != nil {
		// SilenceErrors is set on the root command
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
