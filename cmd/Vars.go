package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/discreteq/agent/tabular/qlearning"
	"github.com/samuelfneumann/discreteq/experiment"
	"github.com/samuelfneumann/discreteq/experiment/checkpointer"
)

var (
	defaults = experiment.DefaultConfig()

	configPath string
	seed       uint64
	savePath   string
	noColor    bool

	episodes         int
	checkpointEvery  int
	checkpointNaming string
	logEvery         int
	mode             string
	progress         bool

	evalEpisodes int
	tablePath    string
)

// AddFlags adds the flags shared by all commands to cmd
func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON experiment config")
	cmd.PersistentFlags().Uint64Var(&seed, "seed", defaults.Seed, "Seed for environment and agent randomness")
	cmd.PersistentFlags().StringVar(&savePath, "save-path", defaults.SavePath, "Path to save results")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")
}

// addTrainFlags adds the flags of the train command to cmd
func addTrainFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&episodes, "episodes", defaults.Episodes, "Number of episodes")
	cmd.Flags().IntVar(&checkpointEvery, "checkpoint-every", defaults.CheckpointEvery, "Episodes between table checkpoints, 0 to disable")
	cmd.Flags().StringVar(&checkpointNaming, "checkpoint-naming", string(defaults.CheckpointNaming), "Checkpoint file naming, one of overwrite, enumerate or time")
	cmd.Flags().IntVar(&logEvery, "log-every", defaults.LogEvery, "Episodes between logged episode lengths, 0 to disable")
	cmd.Flags().StringVar(&mode, "mode", string(defaults.AgentConf.UpdateMode), "Update mode, one of episode or online")
	cmd.Flags().BoolVar(&progress, "progress", false, "Display a progress bar")
}

// addEvaluateFlags adds the flags of the evaluate command to cmd
func addEvaluateFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&evalEpisodes, "episodes", 10, "Number of greedy episodes")
	cmd.Flags().StringVar(&tablePath, "table", "", "Path to a saved table, defaults to the table in the save path")
	cmd.Flags().IntVar(&logEvery, "log-every", 1, "Episodes between logged episode lengths, 0 to disable")
}

// loadConfig returns the experiment config of the --config flag, or
// the config recorded in the --save-path directory, or the default
// config if neither exists, with any explicitly set flags applied on
// top
func loadConfig(cmd *cobra.Command) (experiment.Config, error) {
	set := cmd.Flags().Changed

	// A save path holds the config it was trained with
	path := configPath
	if path == "" && set("save-path") {
		recorded := filepath.Join(savePath, experiment.ConfigFile)
		if _, err := os.Stat(recorded); err == nil {
			path = recorded
		}
	}

	c := experiment.DefaultConfig()
	if path != "" {
		var err error
		if c, err = experiment.LoadConfig(path); err != nil {
			return experiment.Config{}, err
		}
	}

	if set("seed") {
		c.Seed = seed
	}
	if set("save-path") {
		c.SavePath = savePath
	}
	if cmd.Name() == "train" {
		if set("episodes") {
			c.Episodes = episodes
		}
		if set("checkpoint-every") {
			c.CheckpointEvery = checkpointEvery
		}
		if set("log-every") {
			c.LogEvery = logEvery
		}
		if set("mode") {
			c.AgentConf.UpdateMode = qlearning.UpdateMode(mode)
		}
		if set("checkpoint-naming") {
			c.CheckpointNaming = checkpointer.Naming(checkpointNaming)
		}
	}

	if err := c.Validate(); err != nil {
		return experiment.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}
