package discretize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Key is a discrete state: one representative value per factor, each
// drawn from that factor's Domain.
type Key []float64

// Equal returns whether two Keys refer to the same discrete state
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// String returns a canonical representation of the Key which may be
// used to compare or hash Keys.
func (k Key) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range k {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(')')
	return b.String()
}

// Vec returns the Key as a vector
func (k Key) Vec() *mat.VecDense {
	data := make([]float64, len(k))
	copy(data, k)
	return mat.NewVecDense(len(data), data)
}

// FindNearest returns the element of domain closest to target. If two
// elements are equally close, the smaller one is returned. Targets
// beyond either end of the domain return the element at that end. A
// NaN target has no nearest element and returns ErrNaN.
//
// FindNearest performs a binary search and runs in O(log n) time.
func FindNearest(domain Domain, target float64) (float64, error) {
	if len(domain) == 0 {
		return 0, ErrEmptyDomain
	}
	if math.IsNaN(target) {
		return 0, ErrNaN
	}

	if target >= domain.Last() {
		return domain.Last(), nil
	} else if target <= domain.First() {
		return domain.First(), nil
	}

	// Invariant: domain[lo] < target < domain[hi]
	lo, hi := 0, len(domain)-1
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		switch {
		case domain[mid] == target:
			return domain[mid], nil
		case domain[mid] < target:
			lo = mid
		default:
			hi = mid
		}
	}

	return closer(target, domain[lo], domain[hi]), nil
}

// closer returns whichever of lower and upper is closest to target,
// preferring lower on ties.
func closer(target, lower, upper float64) float64 {
	if math.Abs(target-lower) <= math.Abs(target-upper) {
		return lower
	}
	return upper
}

// Discretize maps a continuous observation onto its discrete state
// Key by finding the nearest representative value of each factor.
func Discretize(observation []float64, domains []Domain) (Key, error) {
	if len(observation) != len(domains) {
		return nil, fmt.Errorf("discretize: observation has %d factors "+
			"but there are %d domains", len(observation), len(domains))
	}

	key := make(Key, len(observation))
	for i, factor := range observation {
		nearest, err := FindNearest(domains[i], factor)
		if err != nil {
			return nil, fmt.Errorf("discretize: factor %d: %w", i, err)
		}
		key[i] = nearest
	}
	return key, nil
}

// DiscretizeVec is like Discretize but takes the observation as a
// vector.
func DiscretizeVec(observation mat.Vector, domains []Domain) (Key, error) {
	obs := make([]float64, observation.Len())
	for i := range obs {
		obs[i] = observation.AtVec(i)
	}
	return Discretize(obs, domains)
}
