package wrappers

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/discreteq/discretize"
	"github.com/samuelfneumann/discreteq/environment/envconfig"
)

// velocityBounds substitutes finite bounds for Cartpole's unbounded
// velocity factors
var velocityBounds = map[int]r1.Interval{
	1: {Min: -1, Max: 1},
	3: {Min: -50 * math.Pi / 180, Max: 50 * math.Pi / 180},
}

var steps = []float64{0.5, 0.25, math.Pi / 180, 2 * math.Pi / 180}

func inDomains(key discretize.Key, domains []discretize.Domain) bool {
	for i, v := range key {
		found := false
		for _, d := range domains[i] {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func TestDiscretize(t *testing.T) {
	c, _, err := envconfig.Default().Create(5)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}

	d, step, err := NewDiscretize(c, steps, velocityBounds)
	if err != nil {
		t.Fatalf("could not wrap environment: %v", err)
	}

	domains := d.Domains()
	if len(domains) != 4 {
		t.Fatalf("have %d domains, want 4", len(domains))
	}
	if len(domains[1]) != 8 {
		t.Errorf("velocity domain: have %d values, want 8", len(domains[1]))
	}

	if !inDomains(d.Key(step), domains) {
		t.Fatalf("first key %v not in domains", d.Key(step))
	}

	done := false
	for i := 0; i < 100 && !done; i++ {
		step, done, err = d.Step(mat.NewVecDense(1, []float64{float64(i % 2)}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !inDomains(d.Key(step), domains) {
			t.Fatalf("key %v not in domains", d.Key(step))
		}
	}

	if !d.Key(d.LastTimeStep()).Equal(d.Key(step)) {
		t.Error("last timestep is not the last discretized step")
	}

	spec := d.ObservationSpec()
	if len(spec.Unbounded()) != 0 {
		t.Errorf("discretized spec has unbounded factors %v",
			spec.Unbounded())
	}
}

func TestDiscretizeErrors(t *testing.T) {
	c, _, err := envconfig.Default().Create(5)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}

	// Unbounded velocities without substitutes
	if _, _, err := NewDiscretize(c, steps, nil); !discretize.IsDomainConstruction(err) {
		t.Errorf("expected DomainConstructionError, have %v", err)
	}

	bad := map[int]r1.Interval{7: {Min: 0, Max: 1}}
	if _, _, err := NewDiscretize(c, steps, bad); err == nil {
		t.Error("expected error for out of range factor")
	}
}
