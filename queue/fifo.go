// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"context"
	"sync"

	"github.com/ik5/pcmmix/pcm"
)

// FIFO is a mutex and condition variable queue, optionally bounded.
//
// The lock is only held while the block slice and counters change; blocks
// are never copied under it.
type FIFO struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	blocks   []pcm.Block
	size     int
	capacity int
	quit     bool

	counters
}

// FIFOOption configures a FIFO.
type FIFOOption func(*FIFO)

// WithCapacity bounds the queue to n blocks. Push waits while the queue is
// full. n <= 0 means unbounded.
func WithCapacity(n int) FIFOOption {
	return func(q *FIFO) { q.capacity = max(n, 0) }
}

func NewFIFO(opts ...FIFOOption) *FIFO {
	q := &FIFO{}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	for _, o := range opts {
		o(q)
	}
	return q
}

func (q *FIFO) full() bool {
	return q.capacity > 0 && len(q.blocks) >= q.capacity
}

func (q *FIFO) append(b pcm.Block) {
	q.blocks = append(q.blocks, b)
	q.size += b.Len()
	q.pushed.Add(1)
	q.notEmpty.Signal()
}

func (q *FIFO) Push(b pcm.Block) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.quit {
			return ErrClosed
		}
		if !q.full() {
			break
		}
		q.notFull.Wait()
	}

	q.append(b)
	return nil
}

// TryPush is Push that fails with ErrFull instead of waiting for room.
func (q *FIFO) TryPush(b pcm.Block) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.quit {
		return ErrClosed
	}
	if q.full() {
		return ErrFull
	}

	q.append(b)
	return nil
}

// take removes the head. q.mu must be held and the queue non-empty.
func (q *FIFO) take() pcm.Block {
	b := q.blocks[0]
	q.blocks[0] = nil
	q.blocks = q.blocks[1:]
	if len(q.blocks) == 0 {
		q.blocks = q.blocks[:0:0]
	}
	q.size -= b.Len()
	q.popped.Add(1)
	q.notFull.Signal()
	return b
}

func (q *FIFO) Pop(blocking bool) (pcm.Block, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.quit {
			return nil, ErrClosed
		}
		if len(q.blocks) > 0 {
			return q.take(), nil
		}
		if !blocking {
			return nil, ErrEmpty
		}
		// Wakeups may be spurious; the loop re-checks everything.
		q.notEmpty.Wait()
	}
}

func (q *FIFO) PopContext(ctx context.Context) (pcm.Block, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.notEmpty.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.quit {
			return nil, ErrClosed
		}
		if len(q.blocks) > 0 {
			return q.take(), nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		q.notEmpty.Wait()
	}
}

func (q *FIFO) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.quit = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

func (q *FIFO) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.blocks)
}

func (q *FIFO) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *FIFO) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.quit
}
