// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
	"testing"

	"github.com/ik5/pcmmix/internal/audiotest"
)

func readAllFrames(t *testing.T, src Source) []int16 {
	t.Helper()

	out, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return out
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	resampler := NewResampler(audiotest.NewSilentSource(48000, 2, 1000), 44100)

	if resampler.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", resampler.SampleRate())
	}
	if resampler.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", resampler.Channels())
	}
}

func TestResampler_SameRate(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(44100, 1, 100)
	got := readAllFrames(t, NewResampler(src, 44100))

	if len(got) != 100 {
		t.Fatalf("got %d samples, want 100", len(got))
	}
	for i, v := range got {
		if v != int16(i) {
			t.Fatalf("sample %d = %d, want %d", i, v, i)
		}
	}
}

func TestResampler_FrameCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		srcRate  int
		dstRate  int
		channels int
		frames   int
	}{
		{name: "48k to 44.1k stereo", srcRate: 48000, dstRate: 44100, channels: 2, frames: 48000},
		{name: "22.05k to 44.1k mono", srcRate: 22050, dstRate: 44100, channels: 1, frames: 22050},
		{name: "8k to 44.1k stereo", srcRate: 8000, dstRate: 44100, channels: 2, frames: 8000},
		{name: "44.1k to 8k mono", srcRate: 44100, dstRate: 8000, channels: 1, frames: 44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSineSource(tt.srcRate, tt.channels, tt.frames, 440, 8000)
			got := readAllFrames(t, NewResampler(src, tt.dstRate))

			frames := len(got) / tt.channels
			want := tt.frames * tt.dstRate / tt.srcRate
			if math.Abs(float64(frames-want)) > 2 {
				t.Errorf("got %d frames, want ≈%d", frames, want)
			}
			if len(got)%tt.channels != 0 {
				t.Errorf("got %d samples, not a multiple of %d channels", len(got), tt.channels)
			}
		})
	}
}

func TestResampler_ConstantPreserved(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(22050, 2, 2000, 1000)
	got := readAllFrames(t, NewResampler(src, 44100))

	for i, v := range got {
		if v < 995 || v > 1005 {
			t.Fatalf("sample %d = %d, want ≈1000", i, v)
		}
	}
}

func TestResampler_IrregularSourceChunks(t *testing.T) {
	t.Parallel()

	a := audiotest.NewSineSource(48000, 2, 4800, 440, 8000)
	b := audiotest.NewSineSource(48000, 2, 4800, 440, 8000)
	b.MaxFrames = 7

	whole := readAllFrames(t, NewResampler(a, 44100))
	chunked := readAllFrames(t, NewResampler(b, 44100))

	if len(whole) != len(chunked) {
		t.Fatalf("len = %d vs %d", len(whole), len(chunked))
	}
	for i := range whole {
		if whole[i] != chunked[i] {
			t.Fatalf("sample %d differs: %d vs %d", i, whole[i], chunked[i])
		}
	}
}

func TestResampler_Empty(t *testing.T) {
	t.Parallel()

	resampler := NewResampler(audiotest.NewSilentSource(48000, 2, 0), 44100)

	n, err := resampler.ReadPCM(make([]int16, 64))
	if n != 0 || err != io.EOF {
		t.Errorf("ReadPCM() = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestResampler_InvalidDst(t *testing.T) {
	t.Parallel()

	resampler := NewResampler(audiotest.NewSilentSource(48000, 2, 10), 44100)

	if _, err := resampler.ReadPCM(make([]int16, 3)); err != ErrInvalidDstSize {
		t.Errorf("ReadPCM() error = %v, want ErrInvalidDstSize", err)
	}
}

func BenchmarkResampler_48kTo44k(b *testing.B) {
	buf := make([]int16, 4096)

	b.ReportAllocs()

	for b.Loop() {
		src := audiotest.NewSineSource(48000, 2, 4800, 440, 8000)
		r := NewResampler(src, 44100)
		for {
			_, err := r.ReadPCM(buf)
			if err != nil {
				break
			}
		}
	}
}

func TestCatmullRom(t *testing.T) {
	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		t              float32
		want           float32
	}{
		{"start is y1", 0, 1, 2, 3, 0, 1},
		{"end is y2", 0, 1, 2, 3, 1, 2},
		{"line midpoint", 0, 1, 2, 3, 0.5, 1.5},
		{"flat", 5, 5, 5, 5, 0.3, 5},
		{"peak overshoots", 0, 1, 1, 0, 0.5, 1.125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := catmullRom(tt.y0, tt.y1, tt.y2, tt.y3, tt.t)
			if d := got - tt.want; d > 1e-4 || d < -1e-4 {
				t.Errorf("catmullRom = %v, want %v", got, tt.want)
			}
		})
	}
}
