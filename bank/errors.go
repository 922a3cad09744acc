// SPDX-License-Identifier: EPL-2.0

package bank

import (
	"errors"
	"fmt"
)

var (
	// ErrFormatUnsupported is returned for sounds the mixer cannot play:
	// anything that is not mono, or a file no decoder understands.
	ErrFormatUnsupported = errors.New("unsupported sound format")

	// ErrIO is returned when a sound cannot be read.
	ErrIO = errors.New("sound i/o error")

	// ErrIndexOutOfRange is returned for a slot index outside the bank.
	ErrIndexOutOfRange = errors.New("sound index out of range")

	// ErrEmptySample is returned when a source decodes to zero frames.
	ErrEmptySample = errors.New("sound has no samples")
)

// LoadError describes a failed Load or LoadFile.
type LoadError struct {
	Index int
	Path  string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("bank: load sound %d from %q: %v", e.Index, e.Path, e.Err)
	}
	return fmt.Sprintf("bank: load sound %d: %v", e.Index, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
