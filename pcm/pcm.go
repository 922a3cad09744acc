// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"encoding/binary"
	"math"
)

const (
	// ReferenceRate is the sample rate every loaded sound is expected to use.
	ReferenceRate = 44100

	// Channels is the channel count of the device format.
	Channels = 2

	// BytesPerSample is the size of one S16LE sample.
	BytesPerSample = 2

	// BytesPerFrame is the size of one interleaved stereo S16LE frame.
	BytesPerFrame = Channels * BytesPerSample

	// MaxVolume is the full-scale volume used by MixSaturate.
	MaxVolume = 128
)

// Frame is one stereo sample instant.
type Frame struct {
	L int16
	R int16
}

// Silence zeroes every frame in buf.
func Silence(buf []Frame) {
	clear(buf)
}

// EncodeFrames writes src as interleaved S16LE into dst and returns the
// number of frames written. It stops at whichever slice is shorter.
func EncodeFrames(dst []byte, src []Frame) int {
	n := min(len(dst)/BytesPerFrame, len(src))
	for i := range n {
		o := i * BytesPerFrame
		binary.LittleEndian.PutUint16(dst[o:], uint16(src[i].L))
		binary.LittleEndian.PutUint16(dst[o+2:], uint16(src[i].R))
	}
	return n
}

// DecodeFrames reads interleaved S16LE stereo from src into dst and returns
// the number of frames decoded.
func DecodeFrames(dst []Frame, src []byte) int {
	n := min(len(src)/BytesPerFrame, len(dst))
	for i := range n {
		o := i * BytesPerFrame
		dst[i].L = int16(binary.LittleEndian.Uint16(src[o:]))
		dst[i].R = int16(binary.LittleEndian.Uint16(src[o+2:]))
	}
	return n
}

// AddWrap adds b to a with two's complement wraparound. It is the combine
// policy of the voice mixer.
func AddWrap(a, b int16) int16 {
	return a + b
}

// AddClamp adds b to a and saturates at the int16 limits. It is the combine
// policy of the stream feeder.
func AddClamp(a, b int16) int16 {
	return clamp16(int32(a) + int32(b))
}

// MixSaturate mixes S16LE samples from src into dst, scaling src by
// volume/MaxVolume and saturating the sum. Only min(len(dst), len(src))
// bytes are touched; a trailing odd byte is ignored.
func MixSaturate(dst, src []byte, volume int) {
	if volume <= 0 {
		return
	}
	if volume > MaxVolume {
		volume = MaxVolume
	}

	n := min(len(dst), len(src)) &^ 1
	for i := 0; i < n; i += BytesPerSample {
		s := int32(int16(binary.LittleEndian.Uint16(src[i:])))
		if volume != MaxVolume {
			s = s * int32(volume) / MaxVolume
		}
		d := int32(int16(binary.LittleEndian.Uint16(dst[i:])))
		binary.LittleEndian.PutUint16(dst[i:], uint16(clamp16(d+s)))
	}
}

func clamp16(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
