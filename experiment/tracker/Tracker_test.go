package tracker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/discreteq/timestep"
)

// episode returns the timesteps of an episode of length n with reward
// r on each step
func episode(n int, r float64) []ts.TimeStep {
	obs := mat.NewVecDense(1, nil)
	steps := []ts.TimeStep{ts.New(ts.First, 0, 1, obs, 0)}
	for i := 1; i <= n; i++ {
		stepType := ts.Mid
		if i == n {
			stepType = ts.Last
		}
		steps = append(steps, ts.New(stepType, r, 1, obs, i))
	}
	return steps
}

func TestTrackers(t *testing.T) {
	dir := t.TempDir()
	lengths := NewEpisodeLength(filepath.Join(dir, "lengths.bin"))
	returns := NewReturn(filepath.Join(dir, "returns.bin"))
	chart := NewChart("Cartpole", filepath.Join(dir, "chart.html"))
	trackers := []Tracker{lengths, returns, chart}

	for _, n := range []int{3, 5} {
		for _, step := range episode(n, 2) {
			for _, tr := range trackers {
				tr.Track(step)
			}
		}
	}

	for _, tr := range trackers {
		if err := tr.Save(); err != nil {
			t.Fatalf("could not save: %v", err)
		}
	}

	savedLengths, err := LoadLengths(filepath.Join(dir, "lengths.bin"))
	if err != nil {
		t.Fatalf("could not load lengths: %v", err)
	}
	if len(savedLengths) != 2 || savedLengths[0] != 3 || savedLengths[1] != 5 {
		t.Errorf("lengths: have %v, want [3 5]", savedLengths)
	}

	savedReturns, err := LoadData(filepath.Join(dir, "returns.bin"))
	if err != nil {
		t.Fatalf("could not load returns: %v", err)
	}
	if len(savedReturns) != 2 || savedReturns[0] != 6 || savedReturns[1] != 10 {
		t.Errorf("returns: have %v, want [6 10]", savedReturns)
	}

	html, err := os.ReadFile(filepath.Join(dir, "chart.html"))
	if err != nil {
		t.Fatalf("could not read chart: %v", err)
	}
	if !strings.Contains(string(html), "Cartpole") {
		t.Error("chart does not contain its title")
	}
}

func TestReturnNonSequential(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-sequential timesteps")
		}
	}()

	r := NewReturn("")
	steps := episode(3, 1)
	r.Track(steps[0])
	r.Track(steps[2])
}

func TestSaveErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	trackers := map[string]Tracker{
		"EpisodeLength": NewEpisodeLength(filepath.Join(missing, "l.bin")),
		"Return":        NewReturn(filepath.Join(missing, "r.bin")),
		"Chart":         NewChart("Cartpole", filepath.Join(missing, "c.html")),
	}

	for name, tr := range trackers {
		t.Run(name, func(t *testing.T) {
			for _, step := range episode(2, 1) {
				tr.Track(step)
			}
			if err := tr.Save(); err == nil {
				t.Error("expected error saving to a missing directory")
			}
		})
	}
}
