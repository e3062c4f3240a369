package checkpointer

import (
	"fmt"
	"time"
)

// Naming determines how the files of successive checkpoints are named
type Naming string

const (
	// Overwrite saves every checkpoint to the same file
	Overwrite Naming = "overwrite"

	// Enumerate suffixes checkpoint files with the checkpoint count,
	// e.g. checkpoint-1.bin, checkpoint-2.bin, ...
	Enumerate Naming = "enumerate"

	// Time suffixes checkpoint files with the Unix time in nanoseconds
	// at which they are saved
	Time Naming = "time"
)

// Validate ensures that the Naming is known
func (n Naming) Validate() error {
	switch n {
	case Overwrite, Enumerate, Time:
		return nil
	}
	return fmt.Errorf("validate: no such checkpoint naming %q", n)
}

// Filenames returns the function generating checkpoint filenames for
// the Naming, where base is the path of the file without its extension
// ext.
func (n Naming) Filenames(base, ext string) (func() string, error) {
	switch n {
	case Overwrite:
		return FileName(base + ext), nil
	case Enumerate:
		return FilenameEnumerator(base, ext), nil
	case Time:
		return FileTimer(base, ext), nil
	}
	return nil, fmt.Errorf("filenames: no such checkpoint naming %q", n)
}

// FileName returns a function which always returns filename, so that
// each checkpoint overwrites the last.
func FileName(filename string) func() string {
	return func() string {
		return filename
	}
}

// FilenameEnumerator returns a function which returns base-1ext,
// base-2ext, ... on successive calls.
func FilenameEnumerator(base, ext string) func() string {
	count := 0
	return func() string {
		count++
		return fmt.Sprintf("%v-%d%v", base, count, ext)
	}
}

// FileTimer returns a function which suffixes base with the number of
// nanoseconds since January 1, 1970.
func FileTimer(base, ext string) func() string {
	return func() string {
		return fmt.Sprintf("%v-%d%v", base, time.Now().UnixNano(), ext)
	}
}
