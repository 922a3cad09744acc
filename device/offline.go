// SPDX-License-Identifier: EPL-2.0

package device

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/pcmmix/pcm"
)

// Offline is a device without hardware. It pulls fixed-size buffers from
// the callback, either on a ticker after Start or synchronously with Pump,
// and writes them to a sink.
type Offline struct {
	rate   int
	frames int
	gate   *Gate
	sink   io.Writer
	buf    []byte

	mu     sync.Mutex // serializes pulls and guards cancel/done/err
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	pulled atomic.Int64
}

// NewOffline creates a device pulling bufferFrames stereo frames per period
// at rate. A nil sink discards the audio.
func NewOffline(rate, bufferFrames int, cb io.Reader, sink io.Writer) *Offline {
	if sink == nil {
		sink = io.Discard
	}
	bufferFrames = max(bufferFrames, 1)
	return &Offline{
		rate:   rate,
		frames: bufferFrames,
		gate:   NewGate(cb),
		sink:   sink,
		buf:    make([]byte, bufferFrames*pcm.BytesPerFrame),
	}
}

// Period is the wall time one buffer covers.
func (d *Offline) Period() time.Duration {
	if d.rate <= 0 {
		return 0
	}
	return time.Duration(d.frames) * time.Second / time.Duration(d.rate)
}

// Pump pulls n buffers right away and writes them to the sink.
func (d *Offline) Pump(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for range n {
		if err := d.pull(); err != nil {
			return err
		}
	}
	return nil
}

// pull reads one period into the sink. d.mu must be held.
func (d *Offline) pull() error {
	_, _ = d.gate.Read(d.buf)
	if _, err := d.sink.Write(d.buf); err != nil {
		return fmt.Errorf("device: write sink: %w", err)
	}
	d.pulled.Add(int64(d.frames))
	return nil
}

// Frames is the number of frames pulled so far.
func (d *Offline) Frames() int64 { return d.pulled.Load() }

func (d *Offline) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		return nil
	}
	if d.Period() <= 0 {
		return fmt.Errorf("device: invalid rate %d", d.rate)
	}

	d.gate.Resume()
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	go d.run(ctx, d.done)

	return nil
}

func (d *Offline) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.Period())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.mu.Lock()
			if ctx.Err() != nil {
				d.mu.Unlock()
				return
			}
			err := d.pull()
			if err != nil && d.err == nil {
				d.err = err
			}
			d.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Stop halts the ticker and waits for it to exit.
func (d *Offline) Stop() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()

	d.gate.Halt()
	if cancel != nil {
		cancel()
		<-done
	}
}

// Close stops the device and returns the first sink error seen while
// running, if any.
func (d *Offline) Close() error {
	d.Stop()

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Err returns the first sink error seen while running.
func (d *Offline) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
