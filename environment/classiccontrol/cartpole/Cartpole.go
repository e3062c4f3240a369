// Package cartpole implements the Cartpole classic control environment
package cartpole

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	env "github.com/samuelfneumann/discreteq/environment"
	ts "github.com/samuelfneumann/discreteq/timestep"
)

const (
	// Physical constants
	Gravity        float64 = 9.8
	CartMass       float64 = 1.0
	PoleMass       float64 = 0.1
	HalfPoleLength float64 = 0.5  // half of pole length
	ForceMag       float64 = 10.0 // Magnification of force applied
	Dt             float64 = 0.02 // seconds between state updates

	// Bounds (+/-) on state variables as reported by ObservationSpec.
	// Cart speed and pole angular velocity are unbounded.
	PositionBounds float64 = 4.8
	AngleBounds    float64 = 24 * 2 * math.Pi / 360

	// Discrete Actions
	MinDiscreteAction int = 0
	MaxDiscreteAction int = 1
	ActionDims        int = 1

	ObservationDims int = 4
)

// Cartpole implements the classic control environment Cartpole. In
// this environment, a pole is attached to a cart, which can move
// horizontally along a frictionless track. Gravity pulls the pole
// downwards so that balancing it in an upright position is difficult.
//
// The state features are continuous and consist of the cart's x
// position and speed, as well as the pole's angle from the positive
// y-axis and the pole's angular velocity. The position and angle are
// bounded by the constants defined in this package. The speed and
// angular velocity are unbounded, and so any agent which discretizes
// observations must choose its own bounds for them.
//
// Actions are discrete, consisting of the direction to apply
// horizontal force to the cart:
//
//	Action	Meaning
//	  0		Push left
//	  1		Push right
//
// Cartpole implements the environment.Environment interface
type Cartpole struct {
	env.Task
	lastStep       ts.TimeStep
	discount       float64
	gravity        float64
	forceMag       float64
	poleMass       float64
	halfPoleLength float64
	cartMass       float64
	dt             float64
	positionBounds r1.Interval
	angleBounds    r1.Interval
}

// New constructs a new Cartpole environment and returns it along with
// the first timestep of the first episode
func New(t env.Task, discount float64) (*Cartpole, ts.TimeStep, error) {
	c := &Cartpole{
		Task:           t,
		discount:       discount,
		gravity:        Gravity,
		forceMag:       ForceMag,
		poleMass:       PoleMass,
		halfPoleLength: HalfPoleLength,
		cartMass:       CartMass,
		dt:             Dt,
		positionBounds: r1.Interval{Min: -PositionBounds, Max: PositionBounds},
		angleBounds:    r1.Interval{Min: -AngleBounds, Max: AngleBounds},
	}

	firstStep, err := c.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}
	return c, firstStep, nil
}

// Reset resets the environment and returns a starting state drawn from
// the environment Starter
func (c *Cartpole) Reset() (ts.TimeStep, error) {
	state := c.Start()
	if err := c.validateState(state); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}

	startStep := ts.New(ts.First, 0, c.discount, state, 0)
	c.lastStep = startStep

	return startStep, nil
}

// ActionSpec returns the action specification of the environment
func (c *Cartpole) ActionSpec() env.Spec {
	shape := mat.NewVecDense(ActionDims, nil)
	lowerBound := mat.NewVecDense(ActionDims,
		[]float64{float64(MinDiscreteAction)})
	upperBound := mat.NewVecDense(ActionDims,
		[]float64{float64(MaxDiscreteAction)})

	return env.NewSpec(shape, env.Action, lowerBound, upperBound,
		env.Discrete)
}

// ObservationSpec returns the observation specification of the
// environment
func (c *Cartpole) ObservationSpec() env.Spec {
	shape := mat.NewVecDense(ObservationDims, nil)

	lower := []float64{c.positionBounds.Min, math.Inf(-1),
		c.angleBounds.Min, math.Inf(-1)}
	lowerBound := mat.NewVecDense(ObservationDims, lower)

	upper := []float64{c.positionBounds.Max, math.Inf(1),
		c.angleBounds.Max, math.Inf(1)}
	upperBound := mat.NewVecDense(ObservationDims, upper)

	return env.NewSpec(shape, env.Observation, lowerBound, upperBound,
		env.Continuous)
}

// DiscountSpec returns the discounting specification of the environment
func (c *Cartpole) DiscountSpec() env.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{c.discount})
	upperBound := mat.NewVecDense(1, []float64{c.discount})

	return env.NewSpec(shape, env.Discount, lowerBound, upperBound,
		env.Continuous)
}

// LastTimeStep returns the last TimeStep that occurred in the
// environment
func (c *Cartpole) LastTimeStep() ts.TimeStep {
	return c.lastStep
}

// Step takes one environmental step given action a and returns the next
// timestep as a timestep.TimeStep and a bool indicating whether or not
// the episode has ended. Legal actions are in the set {0, 1}.
func (c *Cartpole) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	if a.Len() != ActionDims {
		return ts.TimeStep{}, false, fmt.Errorf("step: actions should be "+
			"%d-dimensional but got %d dimensions", ActionDims, a.Len())
	}
	if c.lastStep.Last() {
		return ts.TimeStep{}, false, fmt.Errorf("step: episode has ended, " +
			"environment must be reset")
	}

	action := a.AtVec(0)
	intAction := int(action)
	if float64(intAction) != action || intAction < MinDiscreteAction ||
		intAction > MaxDiscreteAction {
		return ts.TimeStep{}, false, fmt.Errorf("step: illegal action %v "+
			"∉ {0, 1}", action)
	}

	// Convert action (0, 1) to a direction (-1, 1)
	direction := 2*action - 1

	nextState := c.nextState(direction)
	reward := c.GetReward(c.lastStep.Observation, a, nextState)
	nextStep := ts.New(ts.Mid, reward, c.discount, nextState,
		c.lastStep.Number+1)

	// Check if the step ends the episode
	c.End(&nextStep)

	c.lastStep = nextStep
	return nextStep, nextStep.Last(), nil
}

// nextState computes the next state of the environment after pushing
// the cart in direction, using Euler integration.
func (c *Cartpole) nextState(direction float64) *mat.VecDense {
	state := c.lastStep.Observation
	x, xDot := state.AtVec(0), state.AtVec(1)
	th, thDot := state.AtVec(2), state.AtVec(3)

	force := direction * c.forceMag

	// Calculate physical variables to determine next state
	cosTheta := math.Cos(th)
	sinTheta := math.Sin(th)

	totalMass := c.poleMass + c.cartMass
	poleMassLength := c.poleMass * c.halfPoleLength

	temp := (force + poleMassLength*thDot*thDot*sinTheta) / totalMass
	thAcc := (c.gravity*sinTheta - cosTheta*temp) / (c.halfPoleLength *
		(4.0/3.0 - c.poleMass*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassLength*thAcc*cosTheta/totalMass

	x += c.dt * xDot
	xDot += c.dt * xAcc
	th += c.dt * thDot
	thDot += c.dt * thAcc

	return mat.NewVecDense(ObservationDims, []float64{x, xDot, th, thDot})
}

// validateState ensures that a state observation is valid and between
// the physical bounds of the Cartpole environment
func (c *Cartpole) validateState(obs mat.Vector) error {
	if obs.Len() != ObservationDims {
		return fmt.Errorf("state should have %d dimensions but got %d",
			ObservationDims, obs.Len())
	}
	if !within(obs.AtVec(0), c.positionBounds) {
		return fmt.Errorf("position %v is not within bounds %v",
			obs.AtVec(0), c.positionBounds)
	}
	if !within(obs.AtVec(2), c.angleBounds) {
		return fmt.Errorf("angle %v is not within bounds %v", obs.AtVec(2),
			c.angleBounds)
	}
	return nil
}

// within returns whether value lies in the closed interval
func within(value float64, interval r1.Interval) bool {
	return value >= interval.Min && value <= interval.Max
}

func (c *Cartpole) String() string {
	msg := "Cartpole  |  Position: %v  | Speed: %v  |  Angle: %v" +
		"  |  Angular Velocity: %v"

	state := c.lastStep.Observation
	position, speed := state.AtVec(0), state.AtVec(1)
	angle, velocity := state.AtVec(2), state.AtVec(3)

	return fmt.Sprintf(msg, position, speed, angle, velocity)
}
