// Package discretize implements the discretization of continuous
// observation spaces into finite sets of representative values.
//
// Each factor (dimension) of an observation is given a Domain, which is
// a strictly increasing sequence of representative values. A continuous
// observation is discretized by replacing each of its factors with the
// nearest representative value in that factor's Domain. The resulting
// Key identifies a discrete state.
package discretize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Domain is a strictly increasing, finite sequence of representative
// values for a single factor of an observation. Domains should not be
// modified after construction.
type Domain []float64

// NewDomain returns the Domain min, min+step, min+2*step, ... over the
// half-open interval [bounds.Min, bounds.Max). Values are computed as
// min + i*step rather than by repeated addition so that values do not
// drift for long domains.
//
// Bounds must be finite. Factors that are naturally unbounded, such as
// velocities, must be given a substitute finite range by the caller.
func NewDomain(bounds r1.Interval, step float64) (Domain, error) {
	return newDomain(0, bounds, step)
}

// newDomain constructs the Domain of factor i
func newDomain(i int, bounds r1.Interval, step float64) (Domain, error) {
	fail := func(reason string) error {
		return &DomainConstructionError{i, bounds, step, reason}
	}

	if math.IsInf(bounds.Min, 0) || math.IsInf(bounds.Max, 0) ||
		math.IsNaN(bounds.Min) || math.IsNaN(bounds.Max) {
		return nil, fail("bounds must be finite")
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fail("step must be positive and finite")
	}
	if bounds.Min >= bounds.Max {
		return nil, fail("empty range")
	}

	n := int(math.Ceil((bounds.Max - bounds.Min) / step))
	domain := make(Domain, 0, n)
	for j := 0; j < n; j++ {
		value := bounds.Min + float64(j)*step
		if value >= bounds.Max {
			break
		}
		domain = append(domain, value)
	}

	if len(domain) == 0 {
		return nil, fail("empty range")
	}
	return domain, nil
}

// BuildDomains constructs one Domain per factor, where factor i spans
// bounds[i] in increments of steps[i].
func BuildDomains(bounds []r1.Interval, steps []float64) ([]Domain, error) {
	if len(bounds) != len(steps) {
		return nil, fmt.Errorf("buildDomains: have %d bounds but %d steps",
			len(bounds), len(steps))
	}

	domains := make([]Domain, len(bounds))
	for i := range bounds {
		domain, err := newDomain(i, bounds[i], steps[i])
		if err != nil {
			return nil, fmt.Errorf("buildDomains: %w", err)
		}
		domains[i] = domain
	}
	return domains, nil
}

// First returns the smallest value in the Domain
func (d Domain) First() float64 {
	return d[0]
}

// Last returns the largest value in the Domain
func (d Domain) Last() float64 {
	return d[len(d)-1]
}

// Sizes returns the number of representative values in each Domain
func Sizes(domains []Domain) []int {
	sizes := make([]int, len(domains))
	for i, d := range domains {
		sizes[i] = len(d)
	}
	return sizes
}
