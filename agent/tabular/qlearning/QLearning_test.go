package qlearning

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/discreteq/discretize"
	"github.com/samuelfneumann/discreteq/environment"
	"github.com/samuelfneumann/discreteq/environment/envconfig"
	"github.com/samuelfneumann/discreteq/environment/wrappers"
	ts "github.com/samuelfneumann/discreteq/timestep"
)

// chain is a 1-dimensional environment with positions {0, 1, 2, 3} and
// actions {0, 1}. Only the methods used by QLearning are implemented.
type chain struct {
	environment.Environment
	last ts.TimeStep
}

func (c *chain) Domains() []discretize.Domain {
	return []discretize.Domain{{0, 1, 2, 3}}
}

func (c *chain) Key(t ts.TimeStep) discretize.Key {
	return discretize.Key{t.Observation.AtVec(0)}
}

func (c *chain) ActionSpec() environment.Spec {
	return environment.NewSpec(mat.NewVecDense(1, nil), environment.Action,
		mat.NewVecDense(1, []float64{0}), mat.NewVecDense(1, []float64{1}),
		environment.Discrete)
}

func (c *chain) LastTimeStep() ts.TimeStep {
	return c.last
}

// step returns a timestep at position pos and records it as the last
func (c *chain) step(t ts.StepType, pos float64, n int) ts.TimeStep {
	c.last = ts.New(t, 1, 1, mat.NewVecDense(1, []float64{pos}), n)
	return c.last
}

// runEpisode moves right from position 0 for length steps
func runEpisode(t *testing.T, q *QLearning, c *chain, length int) {
	t.Helper()
	if err := q.ObserveFirst(c.step(ts.First, 0, 0)); err != nil {
		t.Fatalf("observeFirst: %v", err)
	}

	right := mat.NewVecDense(1, []float64{1})
	for i := 1; i <= length; i++ {
		stepType := ts.Mid
		if i == length {
			stepType = ts.Last
		}
		pos := math.Min(float64(i), 3)
		if err := q.Observe(right, c.step(stepType, pos, i)); err != nil {
			t.Fatalf("observe: %v", err)
		}
		if err := q.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if err := q.EndEpisode(); err != nil {
		t.Fatalf("endEpisode: %v", err)
	}
}

func value(t *testing.T, q *QLearning, state float64, action int) float64 {
	t.Helper()
	v, err := q.Table().Get(discretize.Key{state}, action)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return v
}

func TestEpisodeUpdate(t *testing.T) {
	c := &chain{}
	config := DefaultConfig()
	config.LearningRate = 1
	config.DiscountRate = 0
	q, err := New(c, config, 0)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}

	runEpisode(t, q, c, 2)

	// Rewards are the number of steps remaining in the episode
	if v := value(t, q, 0, 1); v != 2 {
		t.Errorf("Q(0, 1): have %v, want 2", v)
	}
	if v := value(t, q, 1, 1); v != 1 {
		t.Errorf("Q(1, 1): have %v, want 1", v)
	}
	if v := value(t, q, 0, 0); v != 0 {
		t.Errorf("Q(0, 0): have %v, want 0", v)
	}
}

func TestEpisodeUpdateBootstraps(t *testing.T) {
	c := &chain{}
	config := DefaultConfig()
	config.LearningRate = 0.5
	config.DiscountRate = 1
	q, _ := New(c, config, 0)

	runEpisode(t, q, c, 2)

	// Q(0,1) is updated first, bootstrapping off the zero-valued
	// Q(1, .); Q(1,1) bootstraps off the final state 2
	if v := value(t, q, 0, 1); v != 1 {
		t.Errorf("Q(0, 1): have %v, want 1", v)
	}
	if v := value(t, q, 1, 1); v != 0.5 {
		t.Errorf("Q(1, 1): have %v, want 0.5", v)
	}
}

func TestOnlineUpdate(t *testing.T) {
	c := &chain{}
	config := DefaultConfig()
	config.UpdateMode = Online
	config.LearningRate = 1
	config.DiscountRate = 0
	q, _ := New(c, config, 0)

	runEpisode(t, q, c, 3)

	// Environment reward is 1 on every step
	for _, s := range []float64{0, 1, 2} {
		if v := value(t, q, s, 1); v != 1 {
			t.Errorf("Q(%v, 1): have %v, want 1", s, v)
		}
	}
}

func TestExplorationDecay(t *testing.T) {
	c := &chain{}
	config := DefaultConfig()
	config.DecayAfter = 1
	q, _ := New(c, config, 0)
	table := q.Table()

	lengths := []int{2, 2, 3, 1, 1, 2}
	decayed := []bool{false, false, true, false, false, true}

	for i, length := range lengths {
		before := table.ExplorationRate()
		runEpisode(t, q, c, length)
		after := table.ExplorationRate()

		if (after < before) != decayed[i] {
			t.Errorf("episode %d (length %d): rate %v -> %v, want decay %v",
				i, length, before, after, decayed[i])
		}
	}
	if q.Episode() != len(lengths) {
		t.Errorf("episodes: have %d, want %d", q.Episode(), len(lengths))
	}

	config.DecayOnImprovement = false
	config.DecayAfter = 0
	q, _ = New(c, config, 0)
	runEpisode(t, q, c, 3)
	runEpisode(t, q, c, 1)
	want := 1 - config.ExplorationDecay
	if rate := q.Table().ExplorationRate(); math.Abs(rate-want) > 1e-12 {
		t.Errorf("have rate %v, want %v", rate, want)
	}
}

func TestEval(t *testing.T) {
	c := &chain{}
	config := DefaultConfig()
	config.LearningRate = 1
	config.DiscountRate = 0
	q, _ := New(c, config, 0)
	runEpisode(t, q, c, 2)

	q.Eval()
	if !q.IsEval() {
		t.Fatal("agent not in evaluation mode")
	}
	for i := 0; i < 20; i++ {
		a, err := q.SelectAction(c.step(ts.Mid, 0, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.AtVec(0) != 1 {
			t.Fatalf("greedy action: have %v, want 1", a.AtVec(0))
		}
	}

	// No learning in evaluation mode
	runEpisode(t, q, c, 3)
	if v := value(t, q, 2, 1); v != 0 {
		t.Errorf("Q(2, 1) changed during evaluation: %v", v)
	}
	q.Train()
	if q.IsEval() {
		t.Error("agent still in evaluation mode")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	c := DefaultConfig()
	c.UpdateMode = "offline"
	if err := c.Validate(); err == nil {
		t.Error("expected error for unknown update mode")
	}

	c = DefaultConfig()
	c.DiscountRate = 1.5
	if err := c.Validate(); err == nil {
		t.Error("expected error for discount rate")
	}
}

func TestCartpole(t *testing.T) {
	e, _, err := envconfig.Default().Create(9)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	bounds := map[int]r1.Interval{
		1: {Min: -1, Max: 1},
		3: {Min: -50 * math.Pi / 180, Max: 50 * math.Pi / 180},
	}
	steps := []float64{15, 5, math.Pi / 180, 2 * math.Pi / 180}
	d, step, err := wrappers.NewDiscretize(e, steps, bounds)
	if err != nil {
		t.Fatalf("could not wrap environment: %v", err)
	}

	q, err := New(d, DefaultConfig(), 9)
	if err != nil {
		t.Fatalf("could not create agent: %v", err)
	}

	for episode := 0; episode < 5; episode++ {
		if episode > 0 {
			if step, err = d.Reset(); err != nil {
				t.Fatalf("reset: %v", err)
			}
		}
		if err := q.ObserveFirst(step); err != nil {
			t.Fatalf("observeFirst: %v", err)
		}
		for !step.Last() {
			action, err := q.SelectAction(step)
			if err != nil {
				t.Fatalf("selectAction: %v", err)
			}
			if step, _, err = d.Step(action); err != nil {
				t.Fatalf("env step: %v", err)
			}
			if err := q.Observe(action, step); err != nil {
				t.Fatalf("observe: %v", err)
			}
		}
		if err := q.EndEpisode(); err != nil {
			t.Fatalf("endEpisode: %v", err)
		}
	}
}
