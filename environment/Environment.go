// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/discreteq/timestep"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes end. If End returns true, the
// argument TimeStep has been modified to be the last in its episode.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Task implements the reward scheme, starting state distribution, and
// episode termination conditions of some environment
type Task interface {
	Starter
	Ender
	GetReward(state, action, nextState mat.Vector) float64
	AtGoal(state mat.Matrix) bool
	RewardSpec() Spec
}

// Environment implements a simualted environment, which includes a Task to
// complete
type Environment interface {
	Task
	Reset() (timestep.TimeStep, error) // Resets between episodes
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
	LastTimeStep() timestep.TimeStep
}
