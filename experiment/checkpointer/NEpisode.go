package checkpointer

import (
	"fmt"

	ts "github.com/samuelfneumann/discreteq/timestep"
)

// nEpisode implements checkpointing every N completed episodes
type nEpisode struct {
	interval int
	episodes int
	object   Serializable // Object to save

	// filename returns the string filename of the file to save the object
	// in.
	//
	// If each serialized object should be saved in a separate file with
	// each file having an incremented number as a suffix (e.g.
	// file1.bin, file2.bin, ..., fileK.bin), then simply use the
	// static function FilenameEnumerator, which will return a function
	// that will enumerate filenames.
	//
	// Otherwise, if each serialized object should be saved in a
	// separate file, but the filename does not matter, use the
	// static function FileTimer to generate the required naming
	// function. If the same file should be overwritten on each
	// checkpoint, use the static function FileName.
	filename func() string
}

// NewNEpisode returns a checkpointer that checkpoints every n episodes.
func NewNEpisode(n int, object Serializable,
	filename func() string) (Checkpointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("newNEpisode: interval must be positive "+
			"but got %v", n)
	}
	return &nEpisode{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint counts completed episodes and checkpoints the
// Checkpointer's tracked object by calling its Save() method at the
// end of every n-th episode
func (n *nEpisode) Checkpoint(t ts.TimeStep) error {
	if !t.Last() {
		return nil
	}

	n.episodes++
	if n.episodes%n.interval == 0 {
		if err := n.object.Save(n.filename()); err != nil {
			return fmt.Errorf("checkpoint: episode %v: %w", n.episodes, err)
		}
	}
	return nil
}
