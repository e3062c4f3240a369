package qtable

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/samuelfneumann/discreteq/discretize"
)

// tableState is the serialized form of a Table. Actions are opaque and
// are not serialized, only their number is.
type tableState struct {
	Domains          []discretize.Domain
	NumActions       int
	Values           []float64
	LearningRate     float64
	DiscountRate     float64
	ExplorationDecay float64
	ExplorationRate  float64
}

// GobEncode implements the gob.GobEncoder interface
func (t *Table[A]) GobEncode() ([]byte, error) {
	state := tableState{
		Domains:          t.domains,
		NumActions:       len(t.actions),
		Values:           t.values,
		LearningRate:     t.learningRate,
		DiscountRate:     t.discountRate,
		ExplorationDecay: t.explorationDecay,
		ExplorationRate:  t.explorationRate,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The receiver must
// have been constructed with New using the same Domains and actions, in
// the same order, as the Table that was encoded. Its values and
// hyperparameters are replaced by the decoded ones.
func (t *Table[A]) GobDecode(data []byte) error {
	var state tableState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	if state.NumActions != len(t.actions) {
		return fmt.Errorf("gobDecode: encoded table has %d actions but "+
			"receiver has %d", state.NumActions, len(t.actions))
	}
	if err := sameDomains(state.Domains, t.domains); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	c := Config{
		LearningRate:     state.LearningRate,
		DiscountRate:     state.DiscountRate,
		ExplorationDecay: state.ExplorationDecay,
		Seed:             t.seed,
	}
	decoded, err := New(state.Domains, t.actions, c)
	if err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	if len(state.Values) != len(decoded.values) {
		return fmt.Errorf("gobDecode: have %d values but domains require %d",
			len(state.Values), len(decoded.values))
	}
	if state.ExplorationRate < 0 || state.ExplorationRate > 1 {
		return fmt.Errorf("gobDecode: exploration rate %v not in [0, 1]",
			state.ExplorationRate)
	}

	copy(decoded.values, state.Values)
	decoded.explorationRate = state.ExplorationRate
	decoded.rng = t.rng

	*t = *decoded
	return nil
}

// sameDomains returns an error wrapping ErrDomainMismatch if decoded
// and domains differ in any value
func sameDomains(decoded, domains []discretize.Domain) error {
	if len(decoded) != len(domains) {
		return fmt.Errorf("have %d factors but receiver has %d: %w",
			len(decoded), len(domains), ErrDomainMismatch)
	}
	for i := range domains {
		if len(decoded[i]) != len(domains[i]) {
			return fmt.Errorf("factor %d has %d values but receiver has %d: %w",
				i, len(decoded[i]), len(domains[i]), ErrDomainMismatch)
		}
		for j := range domains[i] {
			if decoded[i][j] != domains[i][j] {
				return fmt.Errorf("factor %d value %d is %v but receiver "+
					"has %v: %w", i, j, decoded[i][j], domains[i][j],
					ErrDomainMismatch)
			}
		}
	}
	return nil
}

// Save saves the Table to a file
func (t *Table[A]) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create file: %w", err)
	}

	if err := gob.NewEncoder(file).Encode(t); err != nil {
		file.Close()
		return fmt.Errorf("save: could not encode table: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("save: could not close file: %w", err)
	}
	return nil
}

// Load replaces the contents of the Table with those saved in a file
// by Save. The saved Table must have the same Domains and number of
// actions as the receiver.
func (t *Table[A]) Load(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("load: could not open file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(t); err != nil {
		return fmt.Errorf("load: could not decode table: %w", err)
	}
	return nil
}
