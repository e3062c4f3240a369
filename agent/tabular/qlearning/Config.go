package qlearning

import (
	"fmt"

	"github.com/samuelfneumann/discreteq/agent/tabular/qtable"
)

// UpdateMode determines when QLearning updates its Table
type UpdateMode string

const (
	// Episode buffers the states and actions of an episode and updates
	// the Table once the episode ends. The reward for the step at time
	// t of an episode of length T is the number of steps remaining,
	// T - t, so that actions which keep the episode alive longer are
	// valued higher.
	Episode UpdateMode = "episode"

	// Online updates the Table after every environmental step using
	// the reward returned by the environment.
	Online UpdateMode = "online"
)

// Config represents a configuration for the QLearning agent
type Config struct {
	LearningRate     float64
	DiscountRate     float64
	ExplorationDecay float64
	UpdateMode       UpdateMode

	// DecayAfter is the number of episodes which must complete before
	// the exploration rate is decayed. Episodes are counted from 0, and
	// decay may only occur after the episode numbered DecayAfter.
	DecayAfter int

	// DecayOnImprovement restricts exploration decay to episodes that
	// last longer than the episode before them
	DecayOnImprovement bool
}

// DefaultConfig returns the default QLearning configuration
func DefaultConfig() Config {
	return Config{
		LearningRate:       qtable.DefaultLearningRate,
		DiscountRate:       qtable.DefaultDiscountRate,
		ExplorationDecay:   qtable.DefaultExplorationDecay,
		UpdateMode:         Episode,
		DecayAfter:         3000,
		DecayOnImprovement: true,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if err := c.tableConfig(0).Validate(); err != nil {
		return err
	}
	if c.UpdateMode != Episode && c.UpdateMode != Online {
		return fmt.Errorf("validate: no such update mode %q", c.UpdateMode)
	}
	if c.DecayAfter < 0 {
		return fmt.Errorf("validate: decay after must be non-negative but "+
			"got %d", c.DecayAfter)
	}
	return nil
}

// tableConfig returns the configuration of the agent's Table
func (c Config) tableConfig(seed uint64) qtable.Config {
	return qtable.Config{
		LearningRate:     c.LearningRate,
		DiscountRate:     c.DiscountRate,
		ExplorationDecay: c.ExplorationDecay,
		Seed:             seed,
	}
}
