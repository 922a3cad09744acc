// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"context"
	"sync"

	"github.com/ik5/pcmmix/pcm"
)

// List is a pre-buffered queue: blocks stay in the list after they are
// popped and a cursor marks the next one. Rewind replays from the start.
type List struct {
	mu    sync.Mutex
	ready *sync.Cond

	blocks []pcm.Block
	cursor int
	size   int // bytes behind the cursor
	quit   bool

	counters
}

// NewList creates a list holding blocks, cursor at the first one.
func NewList(blocks ...pcm.Block) *List {
	l := &List{blocks: blocks}
	l.ready = sync.NewCond(&l.mu)
	for _, b := range blocks {
		l.size += b.Len()
	}
	l.pushed.Add(uint64(len(blocks)))
	return l
}

func (l *List) Push(b pcm.Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.quit {
		return ErrClosed
	}

	l.blocks = append(l.blocks, b)
	l.size += b.Len()
	l.pushed.Add(1)
	l.ready.Signal()
	return nil
}

// next returns the block under the cursor. l.mu must be held.
func (l *List) next() pcm.Block {
	b := l.blocks[l.cursor]
	l.cursor++
	l.size -= b.Len()
	l.popped.Add(1)
	return b
}

func (l *List) Pop(blocking bool) (pcm.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for {
		if l.quit {
			return nil, ErrClosed
		}
		if l.cursor < len(l.blocks) {
			return l.next(), nil
		}
		if !blocking {
			return nil, ErrEmpty
		}
		l.ready.Wait()
	}
}

func (l *List) PopContext(ctx context.Context) (pcm.Block, error) {
	stop := context.AfterFunc(ctx, func() {
		l.mu.Lock()
		l.ready.Broadcast()
		l.mu.Unlock()
	})
	defer stop()

	l.mu.Lock()
	defer l.mu.Unlock()

	for {
		if l.quit {
			return nil, ErrClosed
		}
		if l.cursor < len(l.blocks) {
			return l.next(), nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.ready.Wait()
	}
}

// Rewind moves the cursor back to the first block.
func (l *List) Rewind() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cursor = 0
	l.size = 0
	for _, b := range l.blocks {
		l.size += b.Len()
	}
	l.ready.Broadcast()
}

// At returns block i regardless of the cursor, or nil when out of range.
func (l *List) At(i int) pcm.Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.blocks) {
		return nil
	}
	return l.blocks[i]
}

// Total is the number of blocks held, popped or not.
func (l *List) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.blocks)
}

func (l *List) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.quit = true
	l.ready.Broadcast()
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.blocks) - l.cursor
}

func (l *List) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

func (l *List) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.quit
}
