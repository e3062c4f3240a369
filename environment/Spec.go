package environment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion, an observation, a discount, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action, observation, discount, or reward in
// an environment
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// Bounds returns the bounds of each dimension of the Spec
func (s Spec) Bounds() []r1.Interval {
	bounds := make([]r1.Interval, s.LowerBound.Len())
	for i := range bounds {
		bounds[i] = r1.Interval{Min: s.LowerBound.AtVec(i),
			Max: s.UpperBound.AtVec(i)}
	}
	return bounds
}

// Unbounded returns the indices of dimensions with an infinite bound
func (s Spec) Unbounded() []int {
	var indices []int
	for i, b := range s.Bounds() {
		if math.IsInf(b.Min, 0) || math.IsInf(b.Max, 0) {
			indices = append(indices, i)
		}
	}
	return indices
}

// DiscreteActions returns the actions described by a discrete,
// 1-dimensional action Spec, in increasing order.
func (s Spec) DiscreteActions() ([]int, error) {
	if s.Type != Action {
		return nil, fmt.Errorf("discreteActions: not an action spec")
	}
	if s.Cardinality != Discrete {
		return nil, fmt.Errorf("discreteActions: actions are not discrete")
	}
	if s.Shape.Len() != 1 {
		return nil, fmt.Errorf("discreteActions: actions should be "+
			"1-dimensional but got %d dimensions", s.Shape.Len())
	}

	min, max := int(s.LowerBound.AtVec(0)), int(s.UpperBound.AtVec(0))
	actions := make([]int, 0, max-min+1)
	for a := min; a <= max; a++ {
		actions = append(actions, a)
	}
	return actions, nil
}
