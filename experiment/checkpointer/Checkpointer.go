// Package checkpointer implements functionality for periodically saving
// objects to disk during an experiment
package checkpointer

import (
	"encoding/gob"

	ts "github.com/samuelfneumann/discreteq/timestep"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
	Save(filename string) error
}

// Checkpointer checkpoints/saves serializable objects based on
// timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}
