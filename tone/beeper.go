// SPDX-License-Identifier: EPL-2.0

// Package tone generates queued sine beeps.
package tone

import (
	"context"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ik5/pcmmix/pcm"
)

// Amplitude is the peak value of a beep.
const Amplitude = 28000

type beep struct {
	freq float64
	left int
}

// Beeper plays a queue of sine beeps, one after the other, as mono audio at
// pcm.ReferenceRate. It is an audio.Source and, through Read, a stereo
// device callback.
//
// While the queue is empty it produces silence, until Finish is called;
// after that an empty queue is the end of the stream.
type Beeper struct {
	mu       sync.Mutex
	beeps    []beep
	phase    float64
	finished bool
	mono     []int16
}

func NewBeeper() *Beeper {
	return &Beeper{}
}

// Beep queues a tone of freq Hz lasting d.
func (b *Beeper) Beep(freq float64, d time.Duration) {
	n := int(d.Milliseconds()) * pcm.ReferenceRate / 1000
	if n <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.beeps = append(b.beeps, beep{freq: freq, left: n})
}

// Finish marks the queue complete: ReadPCM returns io.EOF once it drains.
func (b *Beeper) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finished = true
}

// Pending returns the number of queued beeps, including the one playing.
func (b *Beeper) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.beeps)
}

// Wait returns once every queued beep has been played or ctx is done.
func (b *Beeper) Wait(ctx context.Context) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for b.Pending() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (b *Beeper) SampleRate() int { return pcm.ReferenceRate }
func (b *Beeper) Channels() int   { return 1 }
func (b *Beeper) Close() error    { return nil }

func (b *Beeper) ReadPCM(dst []int16) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.generate(dst)
	if i < len(dst) {
		if b.finished {
			return i, io.EOF
		}
		clear(dst[i:])
	}
	return len(dst), nil
}

// generate renders queued beeps into dst and returns how many samples it
// wrote. b.mu must be held.
func (b *Beeper) generate(dst []int16) int {
	i := 0
	for i < len(dst) && len(b.beeps) > 0 {
		bo := &b.beeps[0]
		n := min(bo.left, len(dst)-i)
		for range n {
			dst[i] = int16(Amplitude * math.Sin(b.phase*2*math.Pi/pcm.ReferenceRate))
			b.phase += bo.freq
			i++
		}
		bo.left -= n
		if bo.left == 0 {
			b.beeps = b.beeps[1:]
		}
	}
	return i
}

// Read fills p with stereo S16LE, the beep on both channels and silence
// when nothing is queued.
func (b *Beeper) Read(p []byte) (int, error) {
	frames := len(p) / pcm.BytesPerFrame

	b.mu.Lock()
	if cap(b.mono) < frames {
		b.mono = make([]int16, frames)
	}
	mono := b.mono[:frames]
	n := b.generate(mono)
	b.mu.Unlock()

	clear(mono[n:])
	for f, s := range mono {
		o := f * pcm.BytesPerFrame
		p[o] = byte(s)
		p[o+1] = byte(s >> 8)
		p[o+2] = byte(s)
		p[o+3] = byte(s >> 8)
	}
	clear(p[frames*pcm.BytesPerFrame:])

	return len(p), nil
}
