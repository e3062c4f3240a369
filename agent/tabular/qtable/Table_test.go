package qtable

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/discreteq/discretize"
)

// newTestTable returns a Table over a single factor {0, 1, 2} with two
// actions.
func newTestTable(t *testing.T, lr, dr float64) *Table[int] {
	t.Helper()
	c := Config{LearningRate: lr, DiscountRate: dr, ExplorationDecay: 0.01,
		Seed: 1}
	table, err := New([]discretize.Domain{{0, 1, 2}}, []int{0, 1}, c)
	if err != nil {
		t.Fatalf("could not create table: %v", err)
	}
	return table
}

func TestNew(t *testing.T) {
	domains := []discretize.Domain{{0, 1, 2}, {-1, 0}, {5, 6, 7, 8}}
	actions := []string{"left", "none", "right"}
	table, err := New(domains, actions, DefaultConfig(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 3*2*4*3 {
		t.Errorf("len: have %d, want %d", table.Len(), 3*2*4*3)
	}
	if table.States() != 24 {
		t.Errorf("states: have %d, want 24", table.States())
	}
	for i, v := range table.values {
		if v != 0 {
			t.Fatalf("cell %d not initialized to 0: %v", i, v)
		}
	}
	if table.ExplorationRate() != 1 {
		t.Errorf("exploration rate: have %v, want 1", table.ExplorationRate())
	}

	// Every cell is reachable through exactly one (state, action) pair
	seen := make(map[int]bool)
	for _, x := range domains[0] {
		for _, y := range domains[1] {
			for _, z := range domains[2] {
				for _, a := range actions {
					i, err := table.cell(discretize.Key{x, y, z}, a)
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if seen[i] {
						t.Fatalf("cell %d reached twice", i)
					}
					seen[i] = true
				}
			}
		}
	}
	if len(seen) != table.Len() {
		t.Errorf("reached %d cells, want %d", len(seen), table.Len())
	}
}

func TestNewErrors(t *testing.T) {
	c := DefaultConfig(0)
	if _, err := New([]discretize.Domain{{0}, {}}, []int{0}, c); !errors.Is(err, ErrEmptyDomain) {
		t.Errorf("expected ErrEmptyDomain, have %v", err)
	}
	if _, err := New([]discretize.Domain{{0}}, []int{}, c); !errors.Is(err, ErrNoActions) {
		t.Errorf("expected ErrNoActions, have %v", err)
	}
	if _, err := New([]discretize.Domain{{0}}, []int{1, 1}, c); err == nil {
		t.Error("expected error for duplicate actions")
	}
	c.LearningRate = 0
	if _, err := New([]discretize.Domain{{0}}, []int{0}, c); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestOutOfDomain(t *testing.T) {
	table := newTestTable(t, 0.5, 1)

	_, err := table.Get(discretize.Key{0.5}, 0)
	var domainErr *OutOfDomainError
	if !errors.As(err, &domainErr) || domainErr.Factor != 0 {
		t.Errorf("expected OutOfDomainError on factor 0, have %v", err)
	}

	_, err = table.Get(discretize.Key{1}, 7)
	if !errors.As(err, &domainErr) || domainErr.Factor != ActionFactor {
		t.Errorf("expected OutOfDomainError on action, have %v", err)
	}

	if _, err = table.Get(discretize.Key{1, 1}, 0); !errors.Is(err, ErrKeyLength) {
		t.Errorf("expected ErrKeyLength, have %v", err)
	}
	if err = table.ProcessStep(discretize.Key{0}, 0, discretize.Key{9}, 1); !IsOutOfDomain(err) {
		t.Errorf("expected OutOfDomainError for next state, have %v", err)
	}
	if _, err = table.SelectAction(discretize.Key{-3}); !IsOutOfDomain(err) {
		t.Errorf("expected OutOfDomainError, have %v", err)
	}
}

func TestProcessStep(t *testing.T) {
	table := newTestTable(t, 0.5, 1.0)

	// value(1, *) = [2, 4]
	row, _ := table.row(discretize.Key{1})
	row[0], row[1] = 2, 4

	before := append([]float64(nil), table.values...)

	err := table.ProcessStep(discretize.Key{0}, 0, discretize.Key{1}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := table.Get(discretize.Key{0}, 0)
	if got != 2.5 {
		t.Errorf("have %v, want 2.5", got)
	}

	changed := 0
	for i := range before {
		if math.Float64bits(before[i]) != math.Float64bits(table.values[i]) {
			changed++
		}
	}
	if changed != 1 {
		t.Errorf("%d cells changed, want 1", changed)
	}
}

func TestProcessStepBellman(t *testing.T) {
	lr, dr := 0.05, 0.99
	table := newTestTable(t, lr, dr)
	copy(table.values, []float64{0.3, -1.2, 4.5, 4.5, -2, 7})

	old, _ := table.Get(discretize.Key{2}, 1)
	want := (1-lr)*old + lr*(-0.75+dr*4.5)

	if err := table.ProcessStep(discretize.Key{2}, 1, discretize.Key{1}, -0.75); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := table.Get(discretize.Key{2}, 1)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("have %v, want %v", got, want)
	}
}

func TestBestAction(t *testing.T) {
	table := newTestTable(t, 0.5, 1)

	for i := 0; i < 10; i++ {
		action, value, err := table.BestAction(discretize.Key{2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if action != 0 || value != 0 {
			t.Fatalf("all-equal values: have (%v, %v), want (0, 0)", action,
				value)
		}
	}

	copy(table.values[2:4], []float64{-1, 3})
	action, value, _ := table.BestAction(discretize.Key{1})
	if action != 1 || value != 3 {
		t.Errorf("have (%v, %v), want (1, 3)", action, value)
	}

	values, _ := table.ActionValues(discretize.Key{1})
	values[0] = 100
	if v, _ := table.Get(discretize.Key{1}, 0); v != -1 {
		t.Error("ActionValues returned a view into the table")
	}
}

func TestSelectAction(t *testing.T) {
	table := newTestTable(t, 0.5, 1)
	copy(table.values[0:2], []float64{0, 1})

	// Always explore at rate 1
	counts := make(map[int]int)
	for i := 0; i < 2000; i++ {
		a, err := table.SelectAction(discretize.Key{0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		counts[a]++
	}
	if counts[0] < 800 || counts[1] < 800 {
		t.Errorf("exploration is not uniform: %v", counts)
	}

	// Never explore at rate 0
	table.explorationRate = 0
	for i := 0; i < 100; i++ {
		if a, _ := table.SelectAction(discretize.Key{0}); a != 1 {
			t.Fatalf("have action %v, want greedy action 1", a)
		}
	}
}

func TestSelectActionSeeded(t *testing.T) {
	first := newTestTable(t, 0.5, 1)
	second := newTestTable(t, 0.5, 1)

	for i := 0; i < 50; i++ {
		a, _ := first.SelectAction(discretize.Key{1})
		b, _ := second.SelectAction(discretize.Key{1})
		if a != b {
			t.Fatalf("step %d: tables with equal seeds diverged", i)
		}
	}
}

func TestDecayExploration(t *testing.T) {
	for _, decay := range []float64{0.01, 0.5, 1} {
		c := Config{LearningRate: 0.1, DiscountRate: 0.9,
			ExplorationDecay: decay}
		table, _ := New([]discretize.Domain{{0}}, []int{0}, c)

		prev := table.ExplorationRate()
		for i := 0; i < 200; i++ {
			table.DecayExploration()
			rate := table.ExplorationRate()
			if rate > prev || rate < 0 || rate > 1 {
				t.Fatalf("decay %v step %d: rate %v after %v", decay, i,
					rate, prev)
			}
			prev = rate
		}
	}

	table := newTestTable(t, 0.5, 1)
	table.DecayExploration()
	if math.Abs(table.ExplorationRate()-0.99) > 1e-12 {
		t.Errorf("have %v, want 0.99", table.ExplorationRate())
	}
}

func TestSaveLoad(t *testing.T) {
	table := newTestTable(t, 0.5, 0.9)
	copy(table.values, []float64{1, 2, 3, 4, 5, 6})
	table.DecayExploration()

	filename := filepath.Join(t.TempDir(), "table.bin")
	if err := table.Save(filename); err != nil {
		t.Fatalf("could not save: %v", err)
	}

	loaded, _ := New([]discretize.Domain{{0, 1, 2}}, []int{0, 1},
		DefaultConfig(3))
	if err := loaded.Load(filename); err != nil {
		t.Fatalf("could not load: %v", err)
	}

	if loaded.Len() != table.Len() {
		t.Fatalf("len: have %d, want %d", loaded.Len(), table.Len())
	}
	for i := range table.values {
		if loaded.values[i] != table.values[i] {
			t.Errorf("cell %d: have %v, want %v", i, loaded.values[i],
				table.values[i])
		}
	}
	if loaded.ExplorationRate() != table.ExplorationRate() {
		t.Errorf("exploration: have %v, want %v", loaded.ExplorationRate(),
			table.ExplorationRate())
	}
	if loaded.DiscountRate() != 0.9 || loaded.LearningRate() != 0.5 {
		t.Error("hyperparameters were not restored")
	}

	wrongActions, _ := New([]discretize.Domain{{0, 1, 2}}, []int{0, 1, 2},
		DefaultConfig(0))
	if err := wrongActions.Load(filename); err == nil {
		t.Error("expected error loading into table with other actions")
	}
}

func TestLoadDomainMismatch(t *testing.T) {
	table := newTestTable(t, 0.5, 0.9)
	filename := filepath.Join(t.TempDir(), "table.bin")
	if err := table.Save(filename); err != nil {
		t.Fatalf("could not save: %v", err)
	}

	tests := []struct {
		name    string
		domains []discretize.Domain
	}{
		{"OtherValues", []discretize.Domain{{0, 2, 4}}},
		{"OtherSize", []discretize.Domain{{0, 1, 2, 3}}},
		{"OtherFactors", []discretize.Domain{{0, 1, 2}, {0, 1}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			receiver, err := New(test.domains, []int{0, 1}, DefaultConfig(0))
			if err != nil {
				t.Fatalf("could not create table: %v", err)
			}
			err = receiver.Load(filename)
			if !errors.Is(err, ErrDomainMismatch) {
				t.Errorf("load: have %v, want %v", err, ErrDomainMismatch)
			}

			// A rejected Table keeps its own index space
			if got := receiver.Domains(); len(got) != len(test.domains) {
				t.Errorf("domains changed on failed load: %v", got)
			}
		})
	}
}

func BenchmarkProcessStep(b *testing.B) {
	domains := []discretize.Domain{{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, {0, 1, 2, 3, 4}}
	table, _ := New(domains, []int{0, 1}, DefaultConfig(0))
	state := discretize.Key{3, 4, 1}
	next := discretize.Key{3, 5, 2}

	for i := 0; i < b.N; i++ {
		table.ProcessStep(state, i%2, next, 1)
	}
}

func TestSaveError(t *testing.T) {
	table := newTestTable(t, 0.5, 0.9)
	filename := filepath.Join(t.TempDir(), "missing", "table.bin")
	if err := table.Save(filename); err == nil {
		t.Error("expected error saving to a missing directory")
	}
}
