// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"context"
	"sync/atomic"

	"github.com/ik5/pcmmix/pcm"
)

// Queue hands blocks from one producer goroutine to one consumer.
//
// Close is a one-way shutdown: after it returns every Push and Pop fails with
// ErrClosed, including pops of blocks that were still queued.
type Queue interface {
	// Push appends b. It fails with ErrClosed once the queue is closed.
	Push(b pcm.Block) error

	// Pop removes the next block. When nothing is queued it returns ErrEmpty,
	// or waits for a block if blocking is set.
	Pop(blocking bool) (pcm.Block, error)

	// PopContext waits for the next block until ctx is done, and then
	// returns the context's error.
	PopContext(ctx context.Context) (pcm.Block, error)

	// Close wakes every waiter and fails all later calls. It is idempotent.
	Close()

	// Len is the number of blocks ready to pop.
	Len() int

	// Size is the number of bytes ready to pop.
	Size() int

	Closed() bool

	Stats() Stats
}

// Stats are cumulative counters of a queue.
type Stats struct {
	Pushed uint64
	Popped uint64
}

type counters struct {
	pushed atomic.Uint64
	popped atomic.Uint64
}

func (c *counters) Stats() Stats {
	return Stats{
		Pushed: c.pushed.Load(),
		Popped: c.popped.Load(),
	}
}

var (
	_ Queue = (*FIFO)(nil)
	_ Queue = (*List)(nil)
)
