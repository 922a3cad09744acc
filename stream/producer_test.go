// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ik5/pcmmix/internal/audiotest"
	"github.com/ik5/pcmmix/pcm"
	"github.com/ik5/pcmmix/queue"
)

var quiet = WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func drain(t *testing.T, q queue.Queue) []int16 {
	t.Helper()

	var out []int16
	for {
		b, err := q.Pop(false)
		if err != nil {
			return out
		}
		for i := range b.Samples() {
			out = append(out, b.Sample(i))
		}
	}
}

func TestProducer_Stereo(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(44100, 2, 10)
	q := queue.NewFIFO()
	p := NewProducer(src, q, WithBlockFrames(4), quiet)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if q.Closed() {
		t.Error("queue closed at EOF without WithCloseOnEOF")
	}
	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3 blocks of at most 4 frames", q.Len())
	}

	got := drain(t, q)
	if len(got) != 20 {
		t.Fatalf("got %d samples, want 20", len(got))
	}
	for i, s := range got {
		if s != int16(i) {
			t.Fatalf("sample %d = %d, want %d", i, s, i)
		}
	}
	if p.Stats().Blocks != 3 {
		t.Errorf("Blocks = %d, want 3", p.Stats().Blocks)
	}
}

func TestProducer_MonoIsWidened(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(44100, 1, 5, 1234)
	q := queue.NewFIFO()

	if err := NewProducer(src, q, quiet).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := drain(t, q)
	if len(got) != 10 {
		t.Fatalf("got %d samples, want 10", len(got))
	}
	for i, s := range got {
		if s != 1234 {
			t.Errorf("sample %d = %d, want 1234", i, s)
		}
	}
}

func TestProducer_Resamples(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(22050, 2, 2205, 1000)
	q := queue.NewFIFO()

	if err := NewProducer(src, q, WithRate(44100), quiet).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := drain(t, q)
	frames := len(got) / 2
	if frames < 4400 || frames > 4420 {
		t.Errorf("got %d frames, want about 4410", frames)
	}
	for i, s := range got {
		if s != 1000 {
			t.Fatalf("sample %d = %d, want the constant 1000", i, s)
		}
	}
}

func TestProducer_CloseOnEOF(t *testing.T) {
	t.Parallel()

	q := queue.NewFIFO()
	p := NewProducer(audiotest.NewSilentSource(44100, 2, 8), q, WithCloseOnEOF(true), quiet)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !q.Closed() {
		t.Error("queue still open")
	}
}

func TestProducer_DecodeErrorClosesQueue(t *testing.T) {
	t.Parallel()

	errCodec := errors.New("corrupt frame")
	q := queue.NewFIFO()
	p := NewProducer(audiotest.NewFailingSource(44100, 2, 16, 1, errCodec), q, WithBlockFrames(8), quiet)

	err := p.Run(context.Background())
	if !errors.Is(err, errCodec) {
		t.Fatalf("Run() error = %v, want the decode error", err)
	}
	if !q.Closed() {
		t.Error("queue open after a decode error")
	}
	if _, err := q.Pop(false); !errors.Is(err, queue.ErrClosed) {
		t.Errorf("Pop() error = %v, want ErrClosed", err)
	}
	if got := p.Stats(); got.DecodeErrors != 1 || got.Blocks != 2 {
		t.Errorf("Stats() = %+v, want 2 blocks and 1 decode error", got)
	}
}

func TestProducer_InvalidSource(t *testing.T) {
	t.Parallel()

	q := queue.NewFIFO()
	err := NewProducer(audiotest.NewSilentSource(0, 2, 8), q, quiet).Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil for a zero sample rate")
	}
	if !q.Closed() {
		t.Error("queue open after an invalid source")
	}
}

func TestProducer_CancelUnblocksFullQueue(t *testing.T) {
	t.Parallel()

	q := queue.NewFIFO(queue.WithCapacity(1))
	src := audiotest.NewConstantSource(44100, 2, 1<<20, 1)
	p := NewProducer(src, q, WithBlockFrames(16), quiet)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
	if !q.Closed() {
		t.Error("queue open after cancel")
	}
}

func TestProducer_ConsumerCloses(t *testing.T) {
	t.Parallel()

	q := queue.NewFIFO()
	q.Close()

	err := NewProducer(audiotest.NewConstantSource(44100, 2, 100, 1), q, quiet).Run(context.Background())
	if err != nil {
		t.Errorf("Run() error = %v, want nil when the consumer shut down", err)
	}
}

func TestPrebuffer(t *testing.T) {
	t.Parallel()

	l, err := Prebuffer(audiotest.NewRampSource(44100, 2, 100), WithBlockFrames(25), quiet)
	if err != nil {
		t.Fatalf("Prebuffer() error = %v", err)
	}
	if l.Total() != 4 || l.Size() != 100*pcm.BytesPerFrame {
		t.Errorf("Total/Size = %d/%d, want 4/%d", l.Total(), l.Size(), 100*pcm.BytesPerFrame)
	}

	first := drain(t, l)
	l.Rewind()
	second := drain(t, l)
	if len(first) != 200 || len(second) != 200 {
		t.Errorf("replay lengths = %d/%d, want 200", len(first), len(second))
	}
}

func TestPrebuffer_Error(t *testing.T) {
	t.Parallel()

	_, err := Prebuffer(audiotest.NewFailingSource(44100, 2, 4, 0, io.ErrUnexpectedEOF), quiet)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Prebuffer() error = %v, want io.ErrUnexpectedEOF", err)
	}
}
