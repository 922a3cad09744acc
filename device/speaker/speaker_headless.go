// SPDX-License-Identifier: EPL-2.0

//go:build headless

package speaker

import (
	"io"

	"github.com/ik5/pcmmix/device"
)

// Device is an offline stand-in for builds without audio output. It pulls
// the callback on a real-time ticker and discards the audio.
type Device struct {
	*device.Offline
}

func New(rate, bufferFrames int, cb io.Reader) (*Device, error) {
	if bufferFrames <= 0 {
		bufferFrames = 1024
	}
	return &Device{Offline: device.NewOffline(rate, bufferFrames, cb, io.Discard)}, nil
}
