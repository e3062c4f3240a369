// Package qtable implements a dense tabular action-value function over
// discretized states.
//
// A Table stores one value per (discrete state, action) pair in a
// single contiguous buffer. Discrete states are discretize.Keys whose
// values must come from the Domains the Table was constructed with.
// Positions along each factor and the action axis are combined into a
// flat index using a mixed-radix encoding:
//
//	state = pos[0]*stride[0] + ... + pos[n-1]*stride[n-1]
//	cell  = state*len(actions) + action
//
// Values are updated with the one-step Q-learning rule and actions are
// chosen with a decaying ε-greedy exploration policy.
//
// A Table has a single owner. It performs no locking, and concurrent
// calls to ProcessStep on a shared Table race.
package qtable

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/samuelfneumann/discreteq/discretize"
)

// Table implements a dense tabular action-value function with actions
// of type A.
type Table[A comparable] struct {
	domains   []discretize.Domain
	factorIdx []map[float64]int
	strides   []int

	actions   []A
	actionIdx map[A]int

	values []float64

	learningRate     float64
	discountRate     float64
	explorationDecay float64
	explorationRate  float64

	seed uint64
	rng  *rand.Rand
}

// New constructs a new Table over the given Domains and actions. All
// values are initialized to 0 and the exploration rate starts at 1, so
// that actions are initially always selected at random.
//
// The order of actions determines their position on the action axis,
// which is used to break ties between equally valued actions: the
// action appearing first wins.
func New[A comparable](domains []discretize.Domain, actions []A,
	c Config) (*Table[A], error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("new: %w", ErrNoActions)
	}

	factorIdx := make([]map[float64]int, len(domains))
	strides := make([]int, len(domains))
	states := 1
	for i := len(domains) - 1; i >= 0; i-- {
		if len(domains[i]) == 0 {
			return nil, fmt.Errorf("new: factor %d: %w", i, ErrEmptyDomain)
		}

		factorIdx[i] = make(map[float64]int, len(domains[i]))
		for pos, value := range domains[i] {
			if _, ok := factorIdx[i][value]; ok {
				return nil, fmt.Errorf("new: factor %d: duplicate value %v",
					i, value)
			}
			factorIdx[i][value] = pos
		}

		strides[i] = states
		states *= len(domains[i])
	}

	actionIdx := make(map[A]int, len(actions))
	for i, a := range actions {
		if _, ok := actionIdx[a]; ok {
			return nil, fmt.Errorf("new: duplicate action %v", a)
		}
		actionIdx[a] = i
	}

	// Keep our own copies so callers cannot change the index space
	ownDomains := make([]discretize.Domain, len(domains))
	for i := range domains {
		ownDomains[i] = append(discretize.Domain(nil), domains[i]...)
	}
	ownActions := append([]A(nil), actions...)

	return &Table[A]{
		domains:          ownDomains,
		factorIdx:        factorIdx,
		strides:          strides,
		actions:          ownActions,
		actionIdx:        actionIdx,
		values:           make([]float64, states*len(actions)),
		learningRate:     c.LearningRate,
		discountRate:     c.DiscountRate,
		explorationDecay: c.ExplorationDecay,
		explorationRate:  1.0,
		seed:             c.Seed,
		rng:              rand.New(rand.NewSource(c.Seed)),
	}, nil
}

// stateOffset returns the index of the first cell of the row of action
// values for state.
func (t *Table[A]) stateOffset(state discretize.Key) (int, error) {
	if len(state) != len(t.domains) {
		return 0, fmt.Errorf("have %d values but %d factors: %w",
			len(state), len(t.domains), ErrKeyLength)
	}

	index := 0
	for i, value := range state {
		pos, ok := t.factorIdx[i][value]
		if !ok {
			return 0, &OutOfDomainError{Factor: i, Value: value}
		}
		index += pos * t.strides[i]
	}
	return index * len(t.actions), nil
}

// row returns the slice of action values for state. The returned slice
// aliases the Table's values.
func (t *Table[A]) row(state discretize.Key) ([]float64, error) {
	offset, err := t.stateOffset(state)
	if err != nil {
		return nil, err
	}
	return t.values[offset : offset+len(t.actions)], nil
}

// cell returns the flat index of the (state, action) pair
func (t *Table[A]) cell(state discretize.Key, action A) (int, error) {
	offset, err := t.stateOffset(state)
	if err != nil {
		return 0, err
	}

	a, ok := t.actionIdx[action]
	if !ok {
		return 0, &OutOfDomainError{Factor: ActionFactor, Value: action}
	}
	return offset + a, nil
}

// Get returns the value of taking action in state
func (t *Table[A]) Get(state discretize.Key, action A) (float64, error) {
	i, err := t.cell(state, action)
	if err != nil {
		return 0, fmt.Errorf("get: %w", err)
	}
	return t.values[i], nil
}

// ActionValues returns a copy of the values of each action in state,
// in the order the actions were given at construction.
func (t *Table[A]) ActionValues(state discretize.Key) ([]float64, error) {
	row, err := t.row(state)
	if err != nil {
		return nil, fmt.Errorf("actionValues: %w", err)
	}
	return append([]float64(nil), row...), nil
}

// BestAction returns the greedy action in state along with its value.
// Ties are broken in favour of the action given first at construction.
func (t *Table[A]) BestAction(state discretize.Key) (A, float64, error) {
	row, err := t.row(state)
	if err != nil {
		var zero A
		return zero, 0, fmt.Errorf("bestAction: %w", err)
	}

	// MaxIdx returns the first maximal index
	i := floats.MaxIdx(row)
	return t.actions[i], row[i], nil
}

// ProcessStep updates the value of taking action in state, given that
// doing so transitioned to next with the given reward:
//
//	target    = reward + γ * max_a' Q(next, a')
//	Q(s, a) <- (1 - α) * Q(s, a) + α * target
//
// Exactly one cell of the Table is modified.
func (t *Table[A]) ProcessStep(state discretize.Key, action A,
	next discretize.Key, reward float64) error {
	i, err := t.cell(state, action)
	if err != nil {
		return fmt.Errorf("processStep: state: %w", err)
	}

	nextRow, err := t.row(next)
	if err != nil {
		return fmt.Errorf("processStep: next state: %w", err)
	}

	target := reward + t.discountRate*floats.Max(nextRow)
	t.values[i] = (1-t.learningRate)*t.values[i] + t.learningRate*target

	return nil
}

// SelectAction selects an action in state using the ε-greedy policy.
// With probability equal to the exploration rate, an action is chosen
// uniformly at random. Otherwise, the greedy action is chosen.
func (t *Table[A]) SelectAction(state discretize.Key) (A, error) {
	// Validate the state even when exploring so that discretization
	// mismatches surface immediately
	row, err := t.row(state)
	if err != nil {
		var zero A
		return zero, fmt.Errorf("selectAction: %w", err)
	}

	if t.rng.Float64() <= t.explorationRate {
		return t.actions[t.rng.Intn(len(t.actions))], nil
	}
	return t.actions[floats.MaxIdx(row)], nil
}

// DecayExploration decays the exploration rate:
//
//	ε <- ε * (1 - decay)
//
// The exploration rate never increases. When to decay is left to the
// caller.
func (t *Table[A]) DecayExploration() {
	t.explorationRate *= 1 - t.explorationDecay
}

// ExplorationRate returns the current exploration rate
func (t *Table[A]) ExplorationRate() float64 {
	return t.explorationRate
}

// LearningRate returns the learning rate used in updates
func (t *Table[A]) LearningRate() float64 {
	return t.learningRate
}

// DiscountRate returns the discount rate used in updates
func (t *Table[A]) DiscountRate() float64 {
	return t.discountRate
}

// Len returns the number of cells in the Table, which is the number of
// discrete states times the number of actions.
func (t *Table[A]) Len() int {
	return len(t.values)
}

// States returns the number of discrete states the Table can represent
func (t *Table[A]) States() int {
	return len(t.values) / len(t.actions)
}

// Actions returns the actions of the Table in axis order
func (t *Table[A]) Actions() []A {
	return append([]A(nil), t.actions...)
}

// Domains returns the Domains of the Table's state factors
func (t *Table[A]) Domains() []discretize.Domain {
	domains := make([]discretize.Domain, len(t.domains))
	for i := range t.domains {
		domains[i] = append(discretize.Domain(nil), t.domains[i]...)
	}
	return domains
}
