package cmd

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/discreteq/agent/tabular/qlearning"
	"github.com/samuelfneumann/discreteq/experiment"
)

// EvaluateCommand returns the command which runs greedy episodes with a
// saved table
func EvaluateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run greedy episodes with a saved table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			table := tablePath
			if table == "" {
				if c.SavePath == "" {
					return errors.New("evaluate requires --table or --save-path")
				}
				table = filepath.Join(c.SavePath, experiment.TableFile)
			}

			env, err := c.CreateEnv()
			if err != nil {
				return err
			}
			agent, err := qlearning.New(env, c.AgentConf, c.Seed)
			if err != nil {
				return err
			}
			if err := agent.Table().Load(table); err != nil {
				return fmt.Errorf("could not load table %v: %w", table, err)
			}
			agent.Eval()

			ctx, done := interruptContext()
			defer done()

			exp := experiment.NewEpisodic(env, agent, evalEpisodes, nil, nil)
			exp.SetLogger(log.New(cmd.ErrOrStderr(), "", log.LstdFlags),
				logEvery)
			if err := exp.Run(ctx); err != nil {
				return err
			}

			printSummary(cmd.OutOrStdout(), "Evaluation finished",
				exp.Lengths(), agent.ExplorationRate())
			return nil
		},
	}
	addEvaluateFlags(cmd)

	return cmd
}
