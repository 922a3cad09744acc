// SPDX-License-Identifier: EPL-2.0

package feeder

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ik5/pcmmix/pcm"
	"github.com/ik5/pcmmix/queue"
)

// Policy decides what the feeder does when the queue has no block ready.
type Policy int

const (
	// NonBlocking plays silence for the rest of the buffer.
	NonBlocking Policy = iota

	// Bounded waits up to the configured wait for a block, then plays
	// silence.
	Bounded

	// Blocking waits until a block arrives or the queue is closed. It stalls
	// the device on a slow producer and is kept for compatibility only.
	Blocking
)

func (p Policy) String() string {
	switch p {
	case NonBlocking:
		return "nonblocking"
	case Bounded:
		return "bounded"
	case Blocking:
		return "blocking"
	default:
		return "unknown"
	}
}

// DefaultWait is the wait of the Bounded policy when none is configured.
const DefaultWait = 5 * time.Millisecond

// Feeder copies queued blocks into device buffers, keeping track of a block
// that is only partly played between calls. It is the single consumer of its
// queue.
type Feeder struct {
	q      queue.Queue
	policy Policy
	wait   time.Duration
	volume int

	cur pcm.Block
	off int

	pending      atomic.Int64
	closed       atomic.Bool
	underruns    atomic.Uint64
	silenceBytes atomic.Uint64
}

// Option configures a Feeder.
type Option func(*Feeder)

func WithPolicy(p Policy) Option {
	return func(f *Feeder) { f.policy = p }
}

// WithWait sets how long the Bounded policy waits for a block.
func WithWait(d time.Duration) Option {
	return func(f *Feeder) { f.wait = d }
}

// WithVolume scales the stream by v/pcm.MaxVolume. The default is
// pcm.MaxVolume.
func WithVolume(v int) Option {
	return func(f *Feeder) { f.volume = min(max(v, 0), pcm.MaxVolume) }
}

func New(q queue.Queue, opts ...Option) *Feeder {
	f := &Feeder{
		q:      q,
		policy: NonBlocking,
		wait:   DefaultWait,
		volume: pcm.MaxVolume,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fill clears out and mixes the stream into it.
func (f *Feeder) Fill(out []byte) {
	clear(out)
	f.MixInto(out)
}

// MixInto mixes the stream over whatever out already holds, saturating the
// sum. When the queue runs dry or is closed the rest of out is left as is,
// which is silence after Fill. It never fails.
func (f *Feeder) MixInto(out []byte) {
	for len(out) > 0 {
		if f.off >= len(f.cur) {
			b, err := f.pull()
			if err != nil {
				f.starve(err, len(out))
				return
			}
			f.cur, f.off = b, 0
			f.pending.Store(int64(len(b)))
			continue
		}

		n := min(len(f.cur)-f.off, len(out))
		pcm.MixSaturate(out[:n], f.cur[f.off:f.off+n], f.volume)
		out = out[n:]
		f.off += n
		f.pending.Store(int64(len(f.cur) - f.off))
	}
}

func (f *Feeder) pull() (pcm.Block, error) {
	switch f.policy {
	case Blocking:
		return f.q.Pop(true)
	case Bounded:
		ctx, cancel := context.WithTimeout(context.Background(), f.wait)
		defer cancel()
		return f.q.PopContext(ctx)
	default:
		return f.q.Pop(false)
	}
}

func (f *Feeder) starve(err error, missing int) {
	f.cur, f.off = nil, 0
	f.pending.Store(0)

	if errors.Is(err, queue.ErrClosed) {
		f.closed.Store(true)
	} else {
		f.underruns.Add(1)
	}
	f.silenceBytes.Add(uint64(missing))
}

// Read fills p and reports it full, so the feeder can be handed straight to
// a device as its callback.
func (f *Feeder) Read(p []byte) (int, error) {
	f.Fill(p)
	return len(p), nil
}

// Pending is the number of bytes of the current block not yet played.
func (f *Feeder) Pending() int {
	return int(f.pending.Load())
}

// Done reports whether the queue has been closed and seen by the feeder.
func (f *Feeder) Done() bool {
	return f.closed.Load()
}

// Stats are cumulative counters of a feeder.
type Stats struct {
	Underruns    uint64
	SilenceBytes uint64
}

func (f *Feeder) Stats() Stats {
	return Stats{
		Underruns:    f.underruns.Load(),
		SilenceBytes: f.silenceBytes.Load(),
	}
}
