// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/ik5/pcmmix/pcm"
)

// sounds is an in-memory SoundSource.
type sounds [][]int16

func (s sounds) Len() int { return len(s) }

func (s sounds) Sound(i int) []int16 {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

func constant(n int, v int16) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestGainQ8(t *testing.T) {
	t.Parallel()

	tests := []struct {
		gain float32
		want int32
	}{
		{0, 0},
		{1.0, 256},
		{0.5, 128},
		{0.6, 154},
		{0.3, 77},
		{0.2, 51},
		{0.1, 26},
		{2.0, 512},
		{-1.0, -256},
	}

	for _, tt := range tests {
		if got := GainQ8(tt.gain); got != tt.want {
			t.Errorf("GainQ8(%v) = %d, want %d", tt.gain, got, tt.want)
		}
	}
}

func TestMixer_Scenario(t *testing.T) {
	t.Parallel()

	m := New(4, sounds{constant(4, 1000)})
	m.Trigger(0, 0, 0.5, 1.0)

	out := make([]pcm.Frame, 8)
	m.Mix(out)

	wantL := []int16{500, 500, 500, 500, 0, 0, 0, 0}
	wantR := []int16{1000, 1000, 1000, 1000, 0, 0, 0, 0}
	for i := range out {
		if out[i].L != wantL[i] || out[i].R != wantR[i] {
			t.Errorf("frame %d = %+v, want {L:%d R:%d}", i, out[i], wantL[i], wantR[i])
		}
	}

	if st := m.Voice(0); st.State != Idle {
		t.Errorf("voice 0 state = %v, want idle", st.State)
	}
}

func TestMixer_UnityGainReproducesSample(t *testing.T) {
	t.Parallel()

	sample := []int16{0, 1, -1, 32767, -32768, 1234, -4321}

	for _, mixLen := range []int{len(sample), len(sample) + 1, 64} {
		m := New(2, sounds{sample})
		m.Trigger(1, 0, 1, 1)

		out := make([]pcm.Frame, mixLen)
		m.Mix(out)

		for i := range out {
			want := int16(0)
			if i < len(sample) {
				want = sample[i]
			}
			if out[i].L != want || out[i].R != want {
				t.Errorf("mix %d: frame %d = %+v, want %d", mixLen, i, out[i], want)
			}
		}
	}
}

func TestMixer_AcrossCalls(t *testing.T) {
	t.Parallel()

	sample := make([]int16, 10)
	for i := range sample {
		sample[i] = int16(i + 1)
	}

	m := New(1, sounds{sample})
	m.Trigger(0, 0, 1, 1)

	out := make([]pcm.Frame, 4)
	var got []int16
	for range 4 {
		m.Mix(out)
		for _, f := range out {
			got = append(got, f.L)
		}
		st := m.Voice(0)
		if st.State == Playing && st.Position > st.Length {
			t.Fatalf("position %d past length %d", st.Position, st.Length)
		}
	}

	for i := range got {
		want := int16(0)
		if i < len(sample) {
			want = sample[i]
		}
		if got[i] != want {
			t.Errorf("frame %d = %d, want %d", i, got[i], want)
		}
	}
}

func TestMixer_Additive(t *testing.T) {
	t.Parallel()

	sample := []int16{100, -200, 300, -400, 500}
	m := New(2, sounds{sample})
	m.Trigger(0, 0, 1, 0.5)
	m.Trigger(1, 0, 0.25, 1)

	out := make([]pcm.Frame, len(sample))
	m.Mix(out)

	for i, s := range sample {
		wantL := int16(int32(s)*256>>8) + int16(int32(s)*64>>8)
		wantR := int16(int32(s)*128>>8) + int16(int32(s)*256>>8)
		if out[i].L != wantL || out[i].R != wantR {
			t.Errorf("frame %d = %+v, want {L:%d R:%d}", i, out[i], wantL, wantR)
		}
	}
}

func TestMixer_WrapsOnOverflow(t *testing.T) {
	t.Parallel()

	m := New(2, sounds{constant(1, 30000)})
	m.Trigger(0, 0, 1, 1)
	m.Trigger(1, 0, 1, 1)

	out := make([]pcm.Frame, 1)
	m.Mix(out)

	// 60000 does not fit an int16 and wraps to 60000-65536.
	if out[0].L != -5536 || out[0].R != -5536 {
		t.Errorf("frame = %+v, want wrapped -5536", out[0])
	}
}

func TestMixer_NegativeSamplesShiftDown(t *testing.T) {
	t.Parallel()

	m := New(1, sounds{{-1001}})
	m.Trigger(0, 0, 0.5, 0.5)

	out := make([]pcm.Frame, 1)
	m.Mix(out)

	// -1001*128 = -128128, arithmetic shift by 8 floors to -501.
	if out[0].L != -501 {
		t.Errorf("L = %d, want -501", out[0].L)
	}
}

func TestMixer_Trigger_Ignored(t *testing.T) {
	t.Parallel()

	m := New(2, sounds{constant(8, 1)})
	m.Trigger(0, 0, 1, 1)

	m.Trigger(2, 0, 1, 1)
	m.Trigger(-1, 0, 1, 1)
	m.Trigger(0, 1, 1, 1)
	m.Trigger(0, -1, 1, 1)

	if st := m.Voice(0); st.State != Playing || st.Sound != 0 {
		t.Errorf("voice 0 = %+v, want still playing sound 0", st)
	}
	if m.Active() != 1 {
		t.Errorf("Active() = %d, want 1", m.Active())
	}
	if got := m.Stats().Triggers; got != 1 {
		t.Errorf("Triggers = %d, want 1", got)
	}
}

func TestMixer_Trigger_EmptySlotStops(t *testing.T) {
	t.Parallel()

	m := New(1, sounds{constant(8, 1), nil})
	m.Trigger(0, 0, 1, 1)
	m.Trigger(0, 1, 1, 1)

	if m.Voice(0).State != Idle {
		t.Error("voice kept playing after being retriggered on an empty slot")
	}
}

func TestMixer_Retrigger(t *testing.T) {
	t.Parallel()

	m := New(1, sounds{{1, 2, 3, 4}, {9, 9}})
	m.Trigger(0, 0, 1, 1)

	out := make([]pcm.Frame, 2)
	m.Mix(out)
	if st := m.Voice(0); st.Position != 2 {
		t.Fatalf("position = %d, want 2", st.Position)
	}

	m.Trigger(0, 1, 0.5, 1)
	st := m.Voice(0)
	if st.State != Playing || st.Sound != 1 || st.Position != 0 || st.Length != 2 {
		t.Errorf("after retrigger = %+v", st)
	}
	if st.GainLeft != 128 || st.GainRight != 256 {
		t.Errorf("gains = %d/%d, want 128/256", st.GainLeft, st.GainRight)
	}

	m.Mix(out)
	if out[0].L != 4 || out[0].R != 9 {
		t.Errorf("frame = %+v, want {L:4 R:9}", out[0])
	}
}

func TestMixer_Stop(t *testing.T) {
	t.Parallel()

	m := New(3, sounds{constant(100, 5)})
	for v := range 3 {
		m.Trigger(v, 0, 1, 1)
	}

	m.Stop(1)
	m.Stop(7)
	if m.Active() != 2 {
		t.Errorf("Active() = %d, want 2", m.Active())
	}

	m.StopAll()
	if m.Active() != 0 {
		t.Errorf("Active() = %d, want 0", m.Active())
	}

	out := make([]pcm.Frame, 4)
	out[0] = pcm.Frame{L: 1, R: 1}
	m.Mix(out)
	for i, f := range out {
		if f != (pcm.Frame{}) {
			t.Errorf("frame %d = %+v, want silence", i, f)
		}
	}
}

func TestMixer_Stats(t *testing.T) {
	t.Parallel()

	m := New(2, sounds{constant(2, 1)})
	m.Trigger(0, 0, 1, 1)
	m.Trigger(1, 0, 1, 1)
	m.Trigger(1, 0, 1, 1)

	m.Mix(make([]pcm.Frame, 4))

	got := m.Stats()
	if got.Triggers != 3 || got.Completions != 2 {
		t.Errorf("Stats() = %+v, want 3 triggers and 2 completions", got)
	}
}

func TestMixer_Read(t *testing.T) {
	t.Parallel()

	m := New(1, sounds{{1000, -1000}})
	m.Trigger(0, 0, 0.5, 1)

	p := make([]byte, 3*pcm.BytesPerFrame+1)
	for i := range p {
		p[i] = 0xff
	}

	n, err := m.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("Read() = (%d, %v), want (%d, nil)", n, err, len(p))
	}

	want := []int16{500, 1000, -500, -1000, 0, 0}
	for i, w := range want {
		if got := int16(binary.LittleEndian.Uint16(p[i*2:])); got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
	if p[len(p)-1] != 0 {
		t.Errorf("trailing byte = %#x, want 0", p[len(p)-1])
	}
}

func TestMixer_NoAllocs(t *testing.T) {
	m := New(4, sounds{constant(1<<20, 100)}, WithBufferFrames(1024))
	for v := range 4 {
		m.Trigger(v, 0, 0.5, 0.5)
	}

	frames := make([]pcm.Frame, 1024)
	if allocs := testing.AllocsPerRun(100, func() { m.Mix(frames) }); allocs != 0 {
		t.Errorf("Mix allocates %v times per run", allocs)
	}

	p := make([]byte, 1024*pcm.BytesPerFrame)
	if allocs := testing.AllocsPerRun(100, func() { _, _ = m.Read(p) }); allocs != 0 {
		t.Errorf("Read allocates %v times per run", allocs)
	}
}

func TestMixer_ConcurrentTrigger(t *testing.T) {
	t.Parallel()

	m := New(4, sounds{constant(64, 10), constant(16, 20)})

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			m.Trigger(i%4, i%2, 1, 1)
			_ = m.Voice(i % 4)
		}
	}()

	out := make([]pcm.Frame, 32)
	for range 2000 {
		m.Mix(out)
		for v := range m.Voices() {
			st := m.Voice(v)
			if st.State == Playing && st.Position > st.Length {
				t.Errorf("voice %d position %d past length %d", v, st.Position, st.Length)
			}
		}
	}

	close(stop)
	wg.Wait()
}

func BenchmarkMixer_Mix(b *testing.B) {
	m := New(8, sounds{constant(1<<22, 1000)})
	frames := make([]pcm.Frame, 1024)

	b.ReportAllocs()
	for b.Loop() {
		for v := range 8 {
			if m.Voice(v).State == Idle {
				m.Trigger(v, 0, 0.7, 0.3)
			}
		}
		m.Mix(frames)
	}
}
