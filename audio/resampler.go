// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/pcmmix/pcm"
)

// Resampler streams from src to a target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// Includes basic anti-aliasing filtering when downsampling.
//
// The sample bank never resamples; this is only used by the streaming
// producer to bring decoded media to the device rate.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // srcRate / dstRate - how many source frames per output frame
	channels int

	// Window of 4 frames for cubic interpolation:
	// win[0] = t-1, win[1] = t0, win[2] = t+1, win[3] = t+2
	win  [4][]float32
	real [4]bool
	pos  float64 // fractional position between win[1] and win[2]

	primed bool
	done   bool

	// Buffered input from src
	in     []int16
	inPos  int
	inLen  int
	srcEOF bool

	// One-pole low-pass state, used when downsampling
	filterState []float32
	useFilter   bool
	filterAlpha float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		in:          make([]int16, 1024*channels),
		useFilter:   ratio > 1.0,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.win {
		r.win[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// fetch reads the next source frame into dst. ok is false once src is exhausted.
func (r *Resampler) fetch(dst []float32) (bool, error) {
	empty := 0
	for r.inLen-r.inPos < r.channels {
		if r.srcEOF {
			return false, nil
		}

		n, err := r.src.ReadPCM(r.in)
		r.inPos = 0
		r.inLen = n - n%r.channels

		if errors.Is(err, io.EOF) {
			r.srcEOF = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}

		if n == 0 && err == nil {
			empty++
			if empty >= maxEmptyReads {
				return false, io.ErrNoProgress
			}
		}
	}

	for c := range r.channels {
		v := float32(r.in[r.inPos+c])
		if r.useFilter {
			// One-pole low-pass: y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			v = r.filterAlpha*v + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = v
		}
		dst[c] = v
	}
	r.inPos += r.channels

	return true, nil
}

// shift moves the window one frame forward, duplicating the last frame once
// the source runs dry.
func (r *Resampler) shift() error {
	first := r.win[0]
	copy(r.win[:], r.win[1:])
	copy(r.real[:], r.real[1:])
	r.win[3] = first

	ok, err := r.fetch(r.win[3])
	if err != nil {
		return err
	}
	r.real[3] = ok
	if !ok {
		copy(r.win[3], r.win[2])
	}
	return nil
}

func (r *Resampler) prime() error {
	r.primed = true

	// Seed filter with the first frame to avoid warm-up transients
	filter := r.useFilter
	r.useFilter = false
	ok, err := r.fetch(r.win[1])
	r.useFilter = filter
	if err != nil || !ok {
		r.done = true
		return err
	}
	copy(r.filterState, r.win[1])
	r.real[1] = true
	copy(r.win[0], r.win[1])

	for i := 2; i < 4; i++ {
		ok, err := r.fetch(r.win[i])
		if err != nil {
			return err
		}
		r.real[i] = ok
		if !ok {
			copy(r.win[i], r.win[i-1])
		}
	}
	return nil
}

// ReadPCM produces dst samples at the target rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadPCM(dst []int16) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.ratio == 1.0 {
		return r.src.ReadPCM(dst)
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}
	if r.done {
		return 0, io.EOF
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.real[1] {
			r.done = true
			break
		}

		alpha := float32(r.pos)
		for c := range r.channels {
			v := catmullRom(r.win[0][c], r.win[1][c], r.win[2][c], r.win[3][c], alpha)
			dst[written*r.channels+c] = pcm.Round(v)
		}

		written++
		r.pos += r.ratio
	}

	if r.done {
		if written == 0 {
			return 0, io.EOF
		}
		return written * r.channels, io.EOF
	}
	return written * r.channels, nil
}
