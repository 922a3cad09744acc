// SPDX-License-Identifier: EPL-2.0

package bank

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/formats"
	"github.com/ik5/pcmmix/pcm"
)

// Sample is one loaded sound: mono int16 PCM and the rate it was recorded at.
type Sample struct {
	Data []int16
	Rate int
}

// Bank owns a fixed number of sound slots.
//
// Slots are swapped atomically, so a live Load never tears a read from the
// trigger path. Sample data itself is never modified once stored.
type Bank struct {
	slots    []atomic.Pointer[Sample]
	registry *audio.Registry
	log      *slog.Logger
}

// Option configures a Bank.
type Option func(*Bank)

// WithLogger sets the logger used for load warnings.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bank) { b.log = l }
}

// WithRegistry sets the decoders LoadFile picks from.
func WithRegistry(r *audio.Registry) Option {
	return func(b *Bank) { b.registry = r }
}

// New creates a bank with the given number of empty slots.
func New(slots int, opts ...Option) *Bank {
	b := &Bank{
		slots: make([]atomic.Pointer[Sample], max(slots, 0)),
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	if b.registry == nil {
		b.registry = formats.NewRegistry()
	}
	return b
}

// Len returns the number of slots.
func (b *Bank) Len() int { return len(b.slots) }

// Load decodes src into slot index, replacing whatever was there. The slot
// is emptied before decoding starts, so a failed load leaves it empty.
//
// Only mono sources are accepted. A rate other than pcm.ReferenceRate is
// logged and kept: the mixer never resamples, so such a sound plays at the
// wrong pitch.
//
// src is not closed.
func (b *Bank) Load(index int, src audio.Source) error {
	return b.load(index, "", src)
}

// LoadFile opens path, picks a decoder by its extension and loads it into
// slot index.
func (b *Bank) LoadFile(index int, path string) error {
	if index < 0 || index >= len(b.slots) {
		return &LoadError{Index: index, Path: path, Err: ErrIndexOutOfRange}
	}
	b.slots[index].Store(nil)

	dec, err := b.registry.DecoderFor(path)
	if err != nil {
		return &LoadError{Index: index, Path: path, Err: fmt.Errorf("%w: %w", ErrFormatUnsupported, err)}
	}

	f, err := os.Open(path)
	if err != nil {
		return &LoadError{Index: index, Path: path, Err: fmt.Errorf("%w: %w", ErrIO, err)}
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return &LoadError{Index: index, Path: path, Err: fmt.Errorf("%w: %w", ErrFormatUnsupported, err)}
	}
	defer src.Close()

	return b.load(index, path, src)
}

func (b *Bank) load(index int, path string, src audio.Source) error {
	if index < 0 || index >= len(b.slots) {
		return &LoadError{Index: index, Path: path, Err: ErrIndexOutOfRange}
	}
	b.slots[index].Store(nil)

	if ch := src.Channels(); ch != 1 {
		return &LoadError{
			Index: index,
			Path:  path,
			Err:   fmt.Errorf("%w: %d channels, only mono sounds are supported", ErrFormatUnsupported, ch),
		}
	}

	if rate := src.SampleRate(); rate != pcm.ReferenceRate {
		b.log.Warn("sound is not at the reference rate, it will play at the wrong pitch",
			"index", index,
			"path", path,
			"rate", rate,
			"want", pcm.ReferenceRate,
		)
	}

	data, err := audio.ReadAll(src)
	if err != nil {
		return &LoadError{Index: index, Path: path, Err: fmt.Errorf("%w: %w", ErrIO, err)}
	}
	if len(data) == 0 {
		return &LoadError{Index: index, Path: path, Err: ErrEmptySample}
	}

	b.slots[index].Store(&Sample{Data: data, Rate: src.SampleRate()})
	b.log.Debug("sound loaded", "index", index, "path", path, "frames", len(data))

	return nil
}

// Sound returns the sample data in slot index, or nil when the slot is empty
// or out of range. The returned slice must not be modified.
func (b *Bank) Sound(index int) []int16 {
	if index < 0 || index >= len(b.slots) {
		return nil
	}
	s := b.slots[index].Load()
	if s == nil {
		return nil
	}
	return s.Data
}

// Rate returns the recorded sample rate of slot index, or 0 when empty.
func (b *Bank) Rate(index int) int {
	if index < 0 || index >= len(b.slots) {
		return 0
	}
	s := b.slots[index].Load()
	if s == nil {
		return 0
	}
	return s.Rate
}

// UnloadAll empties every slot. Call it only after the device has been
// halted.
func (b *Bank) UnloadAll() {
	for i := range b.slots {
		b.slots[i].Store(nil)
	}
}

// IsNotExist reports whether err came from a missing sound file.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
