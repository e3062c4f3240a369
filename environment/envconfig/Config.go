// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/discreteq/environment"
	"github.com/samuelfneumann/discreteq/environment/classiccontrol/cartpole"
	ts "github.com/samuelfneumann/discreteq/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Cartpole EnvName = "Cartpole"
)

// TaskName stores the tasks that can be configured with this package.
// Note that not all tasks can be used with all environments. The tasks
// that can be used with each environment are as follows:
//
//	Environment			Task
//	Cartpole			Balance
type TaskName string

// Tasks available for configuration
const (
	Balance TaskName = "Balance"
)

// Config implements a specific configuration of a specific environment
// and specific task. Not all environments can have all tasks.
type Config struct {
	Environment   EnvName
	Task          TaskName
	EpisodeCutoff uint
	Discount      float64

	// StartBound bounds (+/-) each feature of the starting state
	StartBound float64
}

// Default returns the default Cartpole Balance configuration, which
// allows episodes of up to 10,000 steps.
func Default() Config {
	return Config{
		Environment:   Cartpole,
		Task:          Balance,
		EpisodeCutoff: 10_000,
		Discount:      1.0,
		StartBound:    0.05,
	}
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.EpisodeCutoff == 0 {
		return fmt.Errorf("validate: episode cutoff must be positive")
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1] but got %v",
			c.Discount)
	}
	if c.StartBound < 0 {
		return fmt.Errorf("validate: start bound must be non-negative but "+
			"got %v", c.StartBound)
	}
	return nil
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %w", err)
	}

	switch c.Environment {
	case Cartpole:
		return CreateCartpole(c.Task, int(c.EpisodeCutoff), c.StartBound,
			seed, c.Discount)
	}

	return nil, ts.TimeStep{}, fmt.Errorf("create: cannot create "+
		"environment %v, no such environment", c.Environment)
}

// CreateCartpole is a factory for creating the Cartpole environment
// with default physical parameters and default task parameters.
func CreateCartpole(taskName TaskName, cutoff int, startBound float64,
	seed uint64, discount float64) (env.Environment, ts.TimeStep, error) {
	bounds := r1.Interval{Min: -startBound, Max: startBound}
	s := env.NewUniformStarter([]r1.Interval{
		bounds,
		bounds,
		bounds,
		bounds,
	}, seed)

	var task env.Task
	switch taskName {
	case Balance:
		task = cartpole.NewBalance(s, cutoff, cartpole.FailAngle,
			cartpole.FailPosition)

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createCartpole: Cartpole "+
			"environment has no task %v", taskName)
	}

	c, step, err := cartpole.New(task, discount)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createCartpole: %w", err)
	}
	return c, step, nil
}
