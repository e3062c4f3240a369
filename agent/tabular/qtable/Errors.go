package qtable

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDomain is returned when a Table is constructed with a
	// factor that has no representative values.
	ErrEmptyDomain = errors.New("empty domain")

	// ErrNoActions is returned when a Table is constructed without
	// any actions.
	ErrNoActions = errors.New("no actions")

	// ErrKeyLength is returned when a state key does not have one value
	// per factor of the Table.
	ErrKeyLength = errors.New("key length does not match number of factors")

	// ErrDomainMismatch is returned when a decoded Table was built over
	// different Domains than the Table it is decoded into.
	ErrDomainMismatch = errors.New("domains do not match")
)

// ActionFactor is the Factor reported by an OutOfDomainError when the
// offending value is an action rather than a state factor.
const ActionFactor = -1

// OutOfDomainError reports that a state key or action was not part of
// the domains or actions that a Table was constructed with. This always
// indicates a mismatch between the caller's discretization and the
// Table.
type OutOfDomainError struct {
	Factor int
	Value  interface{}
}

// Error satisfies the error interface
func (e *OutOfDomainError) Error() string {
	if e.Factor == ActionFactor {
		return fmt.Sprintf("action %v not in action set", e.Value)
	}
	return fmt.Sprintf("value %v not in domain of factor %d", e.Value,
		e.Factor)
}

// IsOutOfDomain returns whether err reports a state or action that is
// not representable in a Table.
func IsOutOfDomain(err error) bool {
	var domainErr *OutOfDomainError
	return errors.As(err, &domainErr)
}
