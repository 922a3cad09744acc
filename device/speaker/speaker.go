// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package speaker

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/pcmmix/device"
	"github.com/ik5/pcmmix/pcm"
)

// Device plays a callback through the system audio output as stereo S16LE.
type Device struct {
	ctx    *oto.Context
	player *oto.Player
	gate   *device.Gate

	mu      sync.Mutex
	started bool
}

// New opens the audio output at rate, pulling from cb. bufferFrames sets the
// device period; 0 lets the driver pick.
//
// Only one output can be open per process.
func New(rate, bufferFrames int, cb io.Reader) (*Device, error) {
	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: pcm.Channels,
		Format:       oto.FormatSignedInt16LE,
	}
	if bufferFrames > 0 && rate > 0 {
		op.BufferSize = time.Duration(bufferFrames) * time.Second / time.Duration(rate)
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("speaker: open output: %w", err)
	}
	<-ready

	gate := device.NewGate(cb)
	return &Device{
		ctx:    ctx,
		player: ctx.NewPlayer(gate),
		gate:   gate,
	}, nil
}

func (d *Device) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return nil
	}
	if err := d.ctx.Err(); err != nil {
		return fmt.Errorf("speaker: %w", err)
	}

	d.gate.Resume()
	d.player.Play()
	d.started = true
	return nil
}

// Stop pauses the player. The gate is halted first, so the callback has
// returned for good once Stop does.
func (d *Device) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gate.Halt()
	if d.started {
		d.player.Pause()
		d.started = false
	}
}

func (d *Device) Close() error {
	d.Stop()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player == nil {
		return nil
	}
	err := d.player.Close()
	d.player = nil
	if err != nil {
		return fmt.Errorf("speaker: close player: %w", err)
	}
	return nil
}
