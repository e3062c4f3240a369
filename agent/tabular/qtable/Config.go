package qtable

import "fmt"

// Defaults for the Table update rule and exploration schedule
const (
	DefaultLearningRate     float64 = 0.05
	DefaultDiscountRate     float64 = 0.99
	DefaultExplorationDecay float64 = 0.01
)

// Config holds the fixed hyperparameters of a Table
type Config struct {
	LearningRate     float64
	DiscountRate     float64
	ExplorationDecay float64
	Seed             uint64
}

// DefaultConfig returns a Config using the default learning rate,
// discount rate and exploration decay.
func DefaultConfig(seed uint64) Config {
	return Config{
		LearningRate:     DefaultLearningRate,
		DiscountRate:     DefaultDiscountRate,
		ExplorationDecay: DefaultExplorationDecay,
		Seed:             seed,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("validate: learning rate must be in (0, 1] "+
			"but got %v", c.LearningRate)
	}
	if c.DiscountRate < 0 || c.DiscountRate > 1 {
		return fmt.Errorf("validate: discount rate must be in [0, 1] "+
			"but got %v", c.DiscountRate)
	}
	if c.ExplorationDecay < 0 || c.ExplorationDecay > 1 {
		return fmt.Errorf("validate: exploration decay must be in [0, 1] "+
			"but got %v", c.ExplorationDecay)
	}
	return nil
}
