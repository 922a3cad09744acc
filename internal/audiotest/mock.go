// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// MockSource is a test helper that generates 16-bit audio for testing.
// It implements the audio.Source interface (without importing it to avoid cycles).
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int // Total frames to generate
	generated   int // Frames generated so far
	waveform    func(frame int, channel int) int16

	// MaxFrames caps the frames returned by a single ReadPCM call when > 0.
	// Use it to simulate a decoder that produces irregular chunks.
	MaxFrames int

	// FailAfter makes ReadPCM return Err once this many frames have been
	// produced. Zero disables failure injection.
	FailAfter int
	Err       error

	Closed bool
}

// NewMockSource creates a new mock audio source.
// totalFrames is the number of frames to generate before io.EOF.
// waveform returns the sample value for a frame index and channel.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) int16) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalFrames, 0)
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value int16) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) int16 {
		return value
	})
}

// NewRampSource creates a mock source whose samples equal frame index + channel
// offset, which makes ordering errors easy to spot.
func NewRampSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, channel int) int16 {
		return int16(frame*channels + channel)
	})
}

// NewSineSource creates a mock source that generates a sine wave at amplitude.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64, amplitude int16) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, channel int) int16 {
		t := float64(frame) / float64(sampleRate)
		return int16(float64(amplitude) * math.Sin(2*math.Pi*frequency*t))
	})
}

// NewFailingSource creates a source that yields failAfter frames of value and
// then returns err.
func NewFailingSource(sampleRate, channels, failAfter int, value int16, err error) *MockSource {
	m := NewConstantSource(sampleRate, channels, math.MaxInt32, value)
	m.FailAfter = failAfter
	m.Err = err
	return m
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

// Reset resets the generated frame counter to allow re-reading
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadPCM(dst []int16) (int, error) {
	if m.FailAfter > 0 && m.generated >= m.FailAfter {
		return 0, m.Err
	}
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalFrames-m.generated)
	if m.MaxFrames > 0 {
		frames = min(frames, m.MaxFrames)
	}
	if m.FailAfter > 0 {
		frames = min(frames, m.FailAfter-m.generated)
	}

	for f := range frames {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}
	m.generated += frames

	if m.generated >= m.totalFrames {
		return frames * m.channels, io.EOF
	}
	return frames * m.channels, nil
}
