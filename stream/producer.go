// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/pcm"
	"github.com/ik5/pcmmix/queue"
)

// DefaultBlockFrames is the size of a pushed block when none is configured.
const DefaultBlockFrames = 1024

// Producer decodes a source into blocks of device-format audio and pushes
// them into a queue.
type Producer struct {
	src         audio.Source
	q           queue.Queue
	rate        int
	blockFrames int
	closeOnEOF  bool
	log         *slog.Logger

	blocks       atomic.Uint64
	decodeErrors atomic.Uint64
}

// Option configures a Producer.
type Option func(*Producer)

// WithRate sets the device rate the source is converted to. The default is
// pcm.ReferenceRate.
func WithRate(rate int) Option {
	return func(p *Producer) { p.rate = rate }
}

// WithBlockFrames sets the number of frames per pushed block.
func WithBlockFrames(n int) Option {
	return func(p *Producer) { p.blockFrames = n }
}

// WithCloseOnEOF makes Run close the queue once the source is exhausted.
// Blocks not yet popped at that moment are dropped, so only use it when the
// tail of the stream does not matter.
func WithCloseOnEOF(v bool) Option {
	return func(p *Producer) { p.closeOnEOF = v }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Producer) { p.log = l }
}

// NewProducer creates a producer reading src into q.
func NewProducer(src audio.Source, q queue.Queue, opts ...Option) *Producer {
	p := &Producer{
		src:         src,
		q:           q,
		rate:        pcm.ReferenceRate,
		blockFrames: DefaultBlockFrames,
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	if p.blockFrames <= 0 {
		p.blockFrames = DefaultBlockFrames
	}
	return p
}

// Run pushes blocks until the source ends, ctx is done or the queue is
// closed by someone else.
//
// A decode error closes the queue, so the consumer only ever sees it as the
// end of the stream, and is returned for the caller to report. Cancelling
// ctx closes the queue as well.
func (p *Producer) Run(ctx context.Context) error {
	if p.src.SampleRate() <= 0 || p.src.Channels() <= 0 {
		p.q.Close()
		return fmt.Errorf("stream: %w", audio.ErrInvalidFormat)
	}

	stop := context.AfterFunc(ctx, p.q.Close)
	defer stop()

	var src audio.Source = p.src
	if src.SampleRate() != p.rate {
		src = audio.NewResampler(src, p.rate)
	}
	src = audio.NewChannelMapper(src, pcm.Channels)

	buf := make([]int16, p.blockFrames*pcm.Channels)
	empty := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := src.ReadPCM(buf)
		if n > 0 {
			empty = 0
			if perr := p.q.Push(pcm.NewBlock(buf[:n])); perr != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.log.Debug("queue closed by consumer, stopping producer")
				return nil
			}
			p.blocks.Add(1)
		}

		switch {
		case errors.Is(err, io.EOF):
			p.log.Debug("stream finished", "blocks", p.blocks.Load())
			if p.closeOnEOF {
				p.q.Close()
			}
			return nil
		case err != nil:
			p.decodeErrors.Add(1)
			p.q.Close()
			return fmt.Errorf("stream: decode: %w", err)
		case n == 0:
			empty++
			if empty >= maxEmptyReads {
				p.decodeErrors.Add(1)
				p.q.Close()
				return fmt.Errorf("stream: decode: %w", io.ErrNoProgress)
			}
		}
	}
}

// maxEmptyReads bounds how many (0, nil) reads Run tolerates in a row.
const maxEmptyReads = 100

// Stats are cumulative counters of a producer.
type Stats struct {
	Blocks       uint64
	DecodeErrors uint64
}

func (p *Producer) Stats() Stats {
	return Stats{
		Blocks:       p.blocks.Load(),
		DecodeErrors: p.decodeErrors.Load(),
	}
}

// Prebuffer decodes all of src up front into a List, ready to be replayed.
// The list stays open so more blocks may be appended.
func Prebuffer(src audio.Source, opts ...Option) (*queue.List, error) {
	l := queue.NewList()
	if err := NewProducer(src, l, opts...).Run(context.Background()); err != nil {
		return nil, err
	}
	return l, nil
}
