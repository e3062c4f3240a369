// Package cmd implements the discreteq command line interface
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// RootCommand returns the discreteq command
func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "discreteq",
		Short:        "Tabular Q-learning over discretized observations",
		SilenceUsage: true,
	}
	AddFlags(cmd)

	cmd.AddCommand(
		TrainCommand(),
		EvaluateCommand(),
		FindNearestCommand(),
	)

	return cmd
}

// interruptContext returns a context which is cancelled on an
// interrupt from the os or when the returned function is called
func interruptContext() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	doneCh := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()

	return ctx, func() { close(doneCh) }
}
