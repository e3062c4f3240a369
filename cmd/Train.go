package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/discreteq/experiment"
	"github.com/samuelfneumann/discreteq/utils/progressbar"
)

// TrainCommand returns the command which trains a Q-learning agent
func TrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a Q-learning agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, done := interruptContext()
			defer done()

			return train(ctx, cmd, c)
		},
	}
	addTrainFlags(cmd)

	return cmd
}

// train runs the experiment described by c and saves its results
func train(ctx context.Context, cmd *cobra.Command, c experiment.Config) error {
	if c.SavePath != "" {
		if err := os.MkdirAll(c.SavePath, 0755); err != nil {
			return fmt.Errorf("could not create save path: %w", err)
		}
		if err := c.Save(filepath.Join(c.SavePath, experiment.ConfigFile)); err != nil {
			return err
		}
	}

	exp, agent, err := c.CreateExp()
	if err != nil {
		return err
	}
	exp.SetLogger(log.New(cmd.ErrOrStderr(), "", log.LstdFlags), c.LogEvery)
	if progress {
		bar := progressbar.NewManualProgressBar(50, c.Episodes)
		bar.SetOutput(cmd.OutOrStdout())
		exp.SetProgressBar(bar)
	}

	runErr := exp.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	if c.SavePath != "" {
		if err := exp.Save(); err != nil {
			return err
		}
		table := filepath.Join(c.SavePath, experiment.TableFile)
		if err := agent.Table().Save(table); err != nil {
			return err
		}
	}

	title := "Training finished"
	if runErr != nil {
		title = "Training interrupted"
	}
	printSummary(cmd.OutOrStdout(), title, exp.Lengths(),
		agent.ExplorationRate())
	return nil
}
