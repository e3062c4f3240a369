package cartpole

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/discreteq/environment"
	ts "github.com/samuelfneumann/discreteq/timestep"
)

const (
	// FailAngle is the default pole angle beyond which the pole is
	// considered to have fallen
	FailAngle float64 = 12 * 2 * math.Pi / 360

	// FailPosition is the default cart position beyond which the cart
	// is considered to have left the track
	FailPosition float64 = 2.4
)

// Balance implements the classic control Cartpole Balance task. In this
// Task, the goal of the agent is to balance the pole on the cart in
// an upright position for as long as possible.
//
// The reward is +1 for every timestep, including the one on which the
// pole falls.
//
// Episodes end after a step limit, after the pole has fallen beyond
// some angle threshold θ, or after the cart leaves the track.
type Balance struct {
	env.Starter
	stepLimiter     *env.StepLimit
	positionLimiter *env.IntervalLimit
	failAngle       float64
	failPosition    float64
}

// NewBalance creates and returns a new Balance task
func NewBalance(s env.Starter, episodeSteps int, failAngle,
	failPosition float64) *Balance {
	stepLimiter := env.NewStepLimit(episodeSteps)

	// Position and angle limits in a single Ender
	legal := []r1.Interval{
		{Min: -failPosition, Max: failPosition},
		{Min: -failAngle, Max: failAngle},
	}
	featureIndices := []int{0, 2}
	positionLimiter := env.NewIntervalLimit(legal, featureIndices,
		ts.TerminalStateReached)

	return &Balance{s, stepLimiter, positionLimiter, failAngle, failPosition}
}

// End checks if a TimeStep is the last in an episode. If so, it adjusts
// the TimeStep's StepType to timestep.Last and returns true. Otherwise,
// the function does not adjust the TimeStep and returns false.
func (b *Balance) End(t *ts.TimeStep) bool {
	if end := b.positionLimiter.End(t); end {
		return true
	}
	if end := b.stepLimiter.End(t); end {
		return true
	}
	return false
}

// GetReward returns the reward for an action taken in some state,
// resulting in a transition to the next state nextState.
func (b *Balance) GetReward(_, _, _ mat.Vector) float64 {
	return 1.0
}

// AtGoal returns whether or not the pole is still balanced
func (b *Balance) AtGoal(state mat.Matrix) bool {
	return math.Abs(state.At(2, 0)) <= b.failAngle &&
		math.Abs(state.At(0, 0)) <= b.failPosition
}

// EpisodeSteps returns the step limit of each episode
func (b *Balance) EpisodeSteps() int {
	return b.stepLimiter.Steps()
}

// RewardSpec returns the reward specification for the environment
func (b *Balance) RewardSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{1.0})
	upperBound := mat.NewVecDense(1, []float64{1.0})

	return env.NewSpec(shape, env.Reward, lowerBound, upperBound,
		env.Continuous)
}
