// Package qlearning implements the tabular Q-Learning algorithm over
// discretized observations.
//
// QLearning is the orchestrating side of a qtable.Table: it converts
// environment timesteps into discrete states, feeds transitions to the
// Table, and decides when the Table's exploration rate decays.
package qlearning

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/discreteq/agent/tabular/qtable"
	"github.com/samuelfneumann/discreteq/discretize"
	"github.com/samuelfneumann/discreteq/environment"
	ts "github.com/samuelfneumann/discreteq/timestep"
)

// Discretizer is an environment whose observations are discrete
// states, such as a wrappers.Discretize environment.
type Discretizer interface {
	environment.Environment
	Domains() []discretize.Domain
	Key(ts.TimeStep) discretize.Key
}

// visit is a state and the action taken in it
type visit struct {
	state  discretize.Key
	action int
}

// QLearning implements the Q-Learning algorithm with a tabular
// action-value function
type QLearning struct {
	table  *qtable.Table[int]
	env    Discretizer
	config Config
	eval   bool

	// Current episode
	state   discretize.Key
	visits  []visit
	pending *pendingUpdate

	// Exploration decay bookkeeping
	episode    int
	prevLength int
}

// pendingUpdate is a transition observed but not yet used in an update
type pendingUpdate struct {
	visit
	next   discretize.Key
	reward float64
}

// New creates a new QLearning agent acting in env. The agent's Table
// is built over the environment's discretized Domains and its discrete
// actions.
func New(env Discretizer, c Config, seed uint64) (*QLearning, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	actions, err := env.ActionSpec().DiscreteActions()
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	table, err := qtable.New(env.Domains(), actions, c.tableConfig(seed))
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &QLearning{table: table, env: env, config: c}, nil
}

// Table returns the agent's action-value Table
func (q *QLearning) Table() *qtable.Table[int] {
	return q.table
}

// Episode returns the number of episodes completed
func (q *QLearning) Episode() int {
	return q.episode
}

// ExplorationRate returns the current exploration rate of the agent's
// Table
func (q *QLearning) ExplorationRate() float64 {
	return q.table.ExplorationRate()
}

// Eval sets the agent to evaluation mode, where actions are always
// selected greedily and no updates are performed
func (q *QLearning) Eval() {
	q.eval = true
}

// Train sets the agent to training mode
func (q *QLearning) Train() {
	q.eval = false
}

// IsEval returns whether the agent is in evaluation mode
func (q *QLearning) IsEval() bool {
	return q.eval
}

// SelectAction selects an action in the state of the argument
// TimeStep. In training mode, actions are selected ε-greedily with
// respect to the Table. In evaluation mode, actions are greedy.
func (q *QLearning) SelectAction(t ts.TimeStep) (*mat.VecDense, error) {
	key := q.env.Key(t)

	var action int
	var err error
	if q.eval {
		action, _, err = q.table.BestAction(key)
	} else {
		action, err = q.table.SelectAction(key)
	}
	if err != nil {
		return nil, fmt.Errorf("selectAction: %w", err)
	}
	return mat.NewVecDense(1, []float64{float64(action)}), nil
}

// ObserveFirst records the first timestep in an episode
func (q *QLearning) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: timestep is not first: %v", t)
	}

	q.state = q.env.Key(t)
	q.visits = q.visits[:0]
	q.pending = nil
	return nil
}

// Observe records that taking action in the current state lead to the
// argument TimeStep
func (q *QLearning) Observe(action *mat.VecDense, t ts.TimeStep) error {
	if q.state == nil {
		return fmt.Errorf("observe: no first timestep observed")
	}

	v := visit{q.state, int(action.AtVec(0))}
	next := q.env.Key(t)

	switch q.config.UpdateMode {
	case Episode:
		q.visits = append(q.visits, v)
	case Online:
		q.pending = &pendingUpdate{v, next, t.Reward}
	}

	q.state = next
	return nil
}

// Step performs an update using the most recently observed transition.
// In Episode mode, updates are deferred to EndEpisode and Step does
// nothing.
func (q *QLearning) Step() error {
	if q.eval || q.pending == nil {
		return nil
	}

	p := q.pending
	q.pending = nil
	if err := q.table.ProcessStep(p.state, p.action, p.next, p.reward); err != nil {
		return fmt.Errorf("step: %w", err)
	}
	return nil
}

// EndEpisode performs the updates of an Episode mode agent and decides
// whether to decay the exploration rate.
//
// The exploration rate is decayed once an episode numbered higher than
// the configured DecayAfter ends, provided that the episode lasted
// longer than the one before it when DecayOnImprovement is set.
func (q *QLearning) EndEpisode() error {
	if q.eval {
		return nil
	}

	length := len(q.visits)
	if q.config.UpdateMode == Episode {
		for t, v := range q.visits {
			next := q.state
			if t < length-1 {
				next = q.visits[t+1].state
			}

			reward := float64(length - t)
			if err := q.table.ProcessStep(v.state, v.action, next, reward); err != nil {
				return fmt.Errorf("endEpisode: step %d: %w", t, err)
			}
		}
	} else {
		length = q.env.LastTimeStep().Number
	}

	if q.shouldDecay(length) {
		q.table.DecayExploration()
	}
	q.prevLength = length
	q.episode++

	q.visits = q.visits[:0]
	return nil
}

// shouldDecay returns whether the exploration rate should decay after
// the current episode which lasted length steps
func (q *QLearning) shouldDecay(length int) bool {
	if q.episode <= q.config.DecayAfter {
		return false
	}
	return !q.config.DecayOnImprovement || length > q.prevLength
}
