// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"math"
	"sync/atomic"

	"github.com/ik5/pcmmix/pcm"
)

// gainShift is the fixed-point scale of voice gains: 1.0 is 1<<gainShift.
const gainShift = 8

// GainQ8 converts a gain to Q8 fixed point, rounding to the nearest step.
func GainQ8(g float32) int32 {
	return int32(math.Round(float64(g) * (1 << gainShift)))
}

// SoundSource hands out loaded sample data by index. *bank.Bank satisfies it.
type SoundSource interface {
	Len() int
	Sound(index int) []int16
}

// program is the state of a playing voice. data, sound and the gains never
// change after the program is published; pos is only advanced by Mix.
type program struct {
	data  []int16
	sound int
	left  int32
	right int32
	pos   atomic.Int64
}

// Mixer overlays one-shot sounds on a fixed set of voices.
//
// Trigger, Stop and StopAll may be called from any goroutine. Mix and Read
// must only be called from the goroutine that feeds the device; they never
// lock and do not allocate once the scratch buffer has grown to the device
// period.
type Mixer struct {
	sounds SoundSource
	voices []atomic.Pointer[program]

	scratch []pcm.Frame

	triggers    atomic.Uint64
	completions atomic.Uint64
}

// Option configures a Mixer.
type Option func(*Mixer)

// WithBufferFrames preallocates the scratch buffer Read mixes into, so the
// first device callback does not allocate.
func WithBufferFrames(n int) Option {
	return func(m *Mixer) {
		m.scratch = make([]pcm.Frame, n)
	}
}

// New creates a mixer with the given number of voices playing sounds from src.
func New(voices int, src SoundSource, opts ...Option) *Mixer {
	m := &Mixer{
		sounds: src,
		voices: make([]atomic.Pointer[program], max(voices, 0)),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Voices returns the number of voice slots.
func (m *Mixer) Voices() int { return len(m.voices) }

// Trigger starts sound on voice with the given left and right gains,
// cutting off whatever the voice was playing. An out-of-range voice or sound
// is ignored, and an empty sound slot leaves the voice idle.
func (m *Mixer) Trigger(voice, sound int, gainLeft, gainRight float32) {
	if voice < 0 || voice >= len(m.voices) || sound < 0 || sound >= m.sounds.Len() {
		return
	}

	data := m.sounds.Sound(sound)
	v := &m.voices[voice]

	// Stop first. The mix goroutine sees either the old program, no program,
	// or the new one.
	v.Store(nil)

	if len(data) == 0 {
		return
	}

	p := &program{
		data:  data,
		sound: sound,
		left:  GainQ8(gainLeft),
		right: GainQ8(gainRight),
	}
	m.triggers.Add(1)
	v.Store(p)
}

// Stop silences voice immediately.
func (m *Mixer) Stop(voice int) {
	if voice < 0 || voice >= len(m.voices) {
		return
	}
	m.voices[voice].Store(nil)
}

// StopAll silences every voice.
func (m *Mixer) StopAll() {
	for i := range m.voices {
		m.voices[i].Store(nil)
	}
}

// Mix clears out and adds every playing voice into it.
//
// Each voice contributes sample*gain>>8 per channel. Contributions are summed
// with pcm.AddWrap, so loud overlapping voices wrap around instead of
// clipping. A voice that reaches the end of its sound goes idle.
func (m *Mixer) Mix(out []pcm.Frame) {
	pcm.Silence(out)

	for i := range m.voices {
		v := &m.voices[i]
		p := v.Load()
		if p == nil {
			continue
		}

		pos := int(p.pos.Load())
		length := len(p.data)

		for s := range out {
			if pos >= length {
				break
			}
			sample := int32(p.data[pos])
			out[s].L = pcm.AddWrap(out[s].L, int16(sample*p.left>>gainShift))
			out[s].R = pcm.AddWrap(out[s].R, int16(sample*p.right>>gainShift))
			pos++
		}

		p.pos.Store(int64(pos))
		if pos >= length && v.CompareAndSwap(p, nil) {
			m.completions.Add(1)
		}
	}
}

// Read mixes len(p)/pcm.BytesPerFrame frames as S16LE stereo into p. It
// always fills p completely and never fails, which makes the mixer usable
// directly as a device callback.
func (m *Mixer) Read(p []byte) (int, error) {
	frames := len(p) / pcm.BytesPerFrame
	if cap(m.scratch) < frames {
		m.scratch = make([]pcm.Frame, frames)
	}
	buf := m.scratch[:frames]

	m.Mix(buf)
	n := pcm.EncodeFrames(p, buf) * pcm.BytesPerFrame
	clear(p[n:])

	return len(p), nil
}

// State is the lifecycle state of a voice.
type State int

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// VoiceState is a snapshot of one voice.
type VoiceState struct {
	State     State
	Sound     int
	Position  int
	Length    int
	GainLeft  int32
	GainRight int32
}

// Voice returns a snapshot of voice i. An out-of-range index reads as Idle.
func (m *Mixer) Voice(i int) VoiceState {
	if i < 0 || i >= len(m.voices) {
		return VoiceState{}
	}
	p := m.voices[i].Load()
	if p == nil {
		return VoiceState{}
	}
	return VoiceState{
		State:     Playing,
		Sound:     p.sound,
		Position:  int(p.pos.Load()),
		Length:    len(p.data),
		GainLeft:  p.left,
		GainRight: p.right,
	}
}

// Active returns how many voices are playing.
func (m *Mixer) Active() int {
	n := 0
	for i := range m.voices {
		if m.voices[i].Load() != nil {
			n++
		}
	}
	return n
}

// Stats are cumulative counters of a mixer.
type Stats struct {
	Triggers    uint64
	Completions uint64
}

// Stats returns the trigger and completion counters.
func (m *Mixer) Stats() Stats {
	return Stats{
		Triggers:    m.triggers.Load(),
		Completions: m.completions.Load(),
	}
}
