package discretize

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"
)

// ErrEmptyDomain is returned when a nearest value is requested from a
// Domain with no elements.
var ErrEmptyDomain = errors.New("empty domain")

// ErrNaN is returned when the nearest value to NaN is requested
var ErrNaN = errors.New("target is NaN")

// DomainConstructionError reports that a factor's bounds and step size
// could not produce any representative values.
type DomainConstructionError struct {
	Factor int
	Bounds r1.Interval
	Step   float64
	Reason string
}

// Error satisfies the error interface
func (e *DomainConstructionError) Error() string {
	return fmt.Sprintf("factor %d: cannot build domain over [%v, %v) with "+
		"step %v: %s", e.Factor, e.Bounds.Min, e.Bounds.Max, e.Step, e.Reason)
}

// IsDomainConstruction returns whether err reports a domain that could
// not be constructed.
func IsDomainConstruction(err error) bool {
	var domainErr *DomainConstructionError
	return errors.As(err, &domainErr)
}
