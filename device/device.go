// SPDX-License-Identifier: EPL-2.0

package device

import (
	"io"
	"sync"
)

// Device pulls audio from a callback at a fixed rate.
type Device interface {
	// Start begins pulling from the callback.
	Start() error

	// Stop halts the device. When it returns the callback is not running and
	// will not be called again until Start.
	Stop()

	// Close stops the device and releases it.
	Close() error
}

// Gate sits between a device and its callback and guarantees a full buffer
// on every call. After Halt returns the callback is never entered again;
// the device gets silence instead.
type Gate struct {
	mu     sync.Mutex
	cb     io.Reader
	halted bool
}

func NewGate(cb io.Reader) *Gate {
	return &Gate{cb: cb}
}

// Read runs the callback into p. A short read or an error from the callback
// is padded with silence; Read itself always reports len(p), nil.
func (g *Gate) Read(p []byte) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.halted {
		clear(p)
		return len(p), nil
	}

	n, err := g.cb.Read(p)
	if err != nil || n < len(p) {
		clear(p[max(n, 0):])
	}
	return len(p), nil
}

// Halt stops calling the callback. It waits for a running callback to
// return first.
func (g *Gate) Halt() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.halted = true
}

// Resume lets the callback run again.
func (g *Gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.halted = false
}

func (g *Gate) Halted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.halted
}
