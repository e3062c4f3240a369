// Package wrappers provides wrappers for environments
package wrappers

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/discreteq/discretize"
	"github.com/samuelfneumann/discreteq/environment"
	ts "github.com/samuelfneumann/discreteq/timestep"
)

// Discretize wraps an environment and returns as observations the
// discrete state of each environmental observation. Each factor of an
// observation is replaced by the nearest value in that factor's
// discretize.Domain, so that every observation returned by a
// Discretize environment is a discretize.Key in vector form.
//
// Discretize itself implements the environment.Environment interface
// and is therefore itself an environment.
type Discretize struct {
	environment.Environment
	domains  []discretize.Domain
	lastStep ts.TimeStep
}

// NewDiscretize creates and returns a new Discretize environment,
// wrapping an existing environment. The wrapped environment is reset
// when wrapped by calling its Reset() method.
//
// Factor i of the observation space is discretized in increments of
// steps[i] over the bounds given by the wrapped environment's
// ObservationSpec. Factors with infinite bounds must be given finite
// substitute bounds through the bounds map, which maps factor indices
// to intervals. Entries of bounds also override finite bounds.
func NewDiscretize(env environment.Environment, steps []float64,
	bounds map[int]r1.Interval) (*Discretize, ts.TimeStep, error) {
	factorBounds := env.ObservationSpec().Bounds()
	for i, b := range bounds {
		if i < 0 || i >= len(factorBounds) {
			return nil, ts.TimeStep{}, fmt.Errorf("newDiscretize: cannot "+
				"bound factor %d of %d-dimensional observations", i,
				len(factorBounds))
		}
		factorBounds[i] = b
	}

	domains, err := discretize.BuildDomains(factorBounds, steps)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newDiscretize: %w", err)
	}

	d := &Discretize{Environment: env, domains: domains}
	step, err := d.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("newDiscretize: %w", err)
	}
	return d, step, nil
}

// Reset resets the environment to some starting state
func (d *Discretize) Reset() (ts.TimeStep, error) {
	step, err := d.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, err
	}
	return d.discretize(step)
}

// Step takes one environmental step given action a and returns the next
// state as a timestep.TimeStep and a bool indicating whether or not the
// episode has ended
func (d *Discretize) Step(a *mat.VecDense) (ts.TimeStep, bool, error) {
	step, last, err := d.Environment.Step(a)
	if err != nil {
		return ts.TimeStep{}, false, err
	}

	step, err = d.discretize(step)
	return step, last, err
}

// discretize replaces the observation of step with its discrete state
func (d *Discretize) discretize(step ts.TimeStep) (ts.TimeStep, error) {
	key, err := discretize.DiscretizeVec(step.Observation, d.domains)
	if err != nil {
		return ts.TimeStep{}, err
	}

	step.Observation = key.Vec()
	d.lastStep = step
	return step, nil
}

// LastTimeStep returns the last TimeStep that occurred in the
// environment, with its observation discretized
func (d *Discretize) LastTimeStep() ts.TimeStep {
	return d.lastStep
}

// Domains returns the Domains used to discretize each factor of
// observations
func (d *Discretize) Domains() []discretize.Domain {
	return d.domains
}

// Key returns the discrete state of a TimeStep returned by the
// Discretize environment
func (d *Discretize) Key(step ts.TimeStep) discretize.Key {
	return append(discretize.Key(nil), step.Observation.RawVector().Data...)
}

// ObservationSpec returns the observation specification of the
// environment
func (d *Discretize) ObservationSpec() environment.Spec {
	length := len(d.domains)
	shape := mat.NewVecDense(length, nil)

	lower := make([]float64, length)
	upper := make([]float64, length)
	for i, domain := range d.domains {
		lower[i] = domain.First()
		upper[i] = domain.Last()
	}

	return environment.NewSpec(shape, environment.Observation,
		mat.NewVecDense(length, lower), mat.NewVecDense(length, upper),
		environment.Discrete)
}

// String returns a string representation of the Discretize environment
func (d *Discretize) String() string {
	return fmt.Sprintf("Discretize: %v", d.Environment)
}
