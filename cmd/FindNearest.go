package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/discreteq/discretize"
)

// FindNearestCommand returns the command which prints the discrete
// state of an observation
func FindNearestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find-nearest OBSERVATION...",
		Short: "Print the discrete state of an observation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			obs := make([]float64, len(args))
			for i, arg := range args {
				if obs[i], err = strconv.ParseFloat(arg, 64); err != nil {
					return fmt.Errorf("observation factor %d: %w", i, err)
				}
			}

			env, err := c.CreateEnv()
			if err != nil {
				return err
			}

			key, err := discretize.Discretize(obs, env.Domains())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	return cmd
}
