// SPDX-License-Identifier: EPL-2.0

// Package observe wires the runtime counters of the mixer, the block queue,
// the stream producer and the feeder into OpenTelemetry.
//
// The audio components keep their counters in atomics and expose them as
// Stats snapshots. Nothing here runs on the audio callback: every instrument
// is observable and is read only when a reader collects. [InitProvider]
// installs a Prometheus exporter so the values can be scraped from /metrics;
// tests should use [NewMetrics] with a [sdkmetric.ManualReader] backed
// provider instead.
package observe

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ik5/pcmmix/feeder"
	"github.com/ik5/pcmmix/mixer"
	"github.com/ik5/pcmmix/queue"
	"github.com/ik5/pcmmix/stream"
)

// meterName is the instrumentation scope name used for all pcmmix metrics.
const meterName = "github.com/ik5/pcmmix"

// MixerStats is the part of *mixer.Mixer read by [Metrics.ObserveMixer].
type MixerStats interface {
	Stats() mixer.Stats
	Active() int
}

// QueueStats is the part of a queue.Queue read by [Metrics.ObserveQueue].
type QueueStats interface {
	Stats() queue.Stats
	Len() int
	Size() int
}

// FeederStats is the part of *feeder.Feeder read by [Metrics.ObserveFeeder].
type FeederStats interface {
	Stats() feeder.Stats
	Pending() int
}

// ProducerStats is the part of *stream.Producer read by
// [Metrics.ObserveProducer].
type ProducerStats interface {
	Stats() stream.Stats
}

// Metrics registers observable instruments over component counters.
// It is safe for concurrent use.
type Metrics struct {
	meter metric.Meter

	mu   sync.Mutex
	regs []metric.Registration
}

// NewMetrics creates a [Metrics] using the given [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) *Metrics {
	return &Metrics{meter: mp.Meter(meterName)}
}

func (m *Metrics) keep(reg metric.Registration) {
	m.mu.Lock()
	m.regs = append(m.regs, reg)
	m.mu.Unlock()
}

// ObserveMixer exports trigger and completion counts and the number of
// playing voices.
func (m *Metrics) ObserveMixer(mx MixerStats) error {
	triggers, err := m.meter.Int64ObservableCounter("pcmmix.voice.triggers",
		metric.WithDescription("Total sounds started on a voice."),
	)
	if err != nil {
		return err
	}
	completions, err := m.meter.Int64ObservableCounter("pcmmix.voice.completions",
		metric.WithDescription("Total sounds that played to their end."),
	)
	if err != nil {
		return err
	}
	active, err := m.meter.Int64ObservableGauge("pcmmix.voice.active",
		metric.WithDescription("Voices currently playing."),
	)
	if err != nil {
		return err
	}

	reg, err := m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := mx.Stats()
		o.ObserveInt64(triggers, int64(s.Triggers))
		o.ObserveInt64(completions, int64(s.Completions))
		o.ObserveInt64(active, int64(mx.Active()))
		return nil
	}, triggers, completions, active)
	if err != nil {
		return err
	}
	m.keep(reg)
	return nil
}

// ObserveQueue exports push and pop counts and the current depth of q.
// name is attached as the "queue" attribute.
func (m *Metrics) ObserveQueue(name string, q QueueStats) error {
	pushed, err := m.meter.Int64ObservableCounter("pcmmix.queue.pushed",
		metric.WithDescription("Total blocks pushed."),
	)
	if err != nil {
		return err
	}
	popped, err := m.meter.Int64ObservableCounter("pcmmix.queue.popped",
		metric.WithDescription("Total blocks popped."),
	)
	if err != nil {
		return err
	}
	depth, err := m.meter.Int64ObservableGauge("pcmmix.queue.depth",
		metric.WithDescription("Blocks waiting in the queue."),
	)
	if err != nil {
		return err
	}
	size, err := m.meter.Int64ObservableGauge("pcmmix.queue.size",
		metric.WithDescription("Bytes waiting in the queue."),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	attrs := metric.WithAttributes(attribute.String("queue", name))
	reg, err := m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := q.Stats()
		o.ObserveInt64(pushed, int64(s.Pushed), attrs)
		o.ObserveInt64(popped, int64(s.Popped), attrs)
		o.ObserveInt64(depth, int64(q.Len()), attrs)
		o.ObserveInt64(size, int64(q.Size()), attrs)
		return nil
	}, pushed, popped, depth, size)
	if err != nil {
		return err
	}
	m.keep(reg)
	return nil
}

// ObserveFeeder exports underruns, silence played and the bytes left in the
// block being drained.
func (m *Metrics) ObserveFeeder(f FeederStats) error {
	underruns, err := m.meter.Int64ObservableCounter("pcmmix.feeder.underruns",
		metric.WithDescription("Callbacks that found no block ready."),
	)
	if err != nil {
		return err
	}
	silence, err := m.meter.Int64ObservableCounter("pcmmix.feeder.silence",
		metric.WithDescription("Bytes of silence played on underrun or after close."),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}
	pending, err := m.meter.Int64ObservableGauge("pcmmix.feeder.pending",
		metric.WithDescription("Bytes left in the current block."),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	reg, err := m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := f.Stats()
		o.ObserveInt64(underruns, int64(s.Underruns))
		o.ObserveInt64(silence, int64(s.SilenceBytes))
		o.ObserveInt64(pending, int64(f.Pending()))
		return nil
	}, underruns, silence, pending)
	if err != nil {
		return err
	}
	m.keep(reg)
	return nil
}

// ObserveProducer exports the blocks produced and decode failures.
func (m *Metrics) ObserveProducer(p ProducerStats) error {
	blocks, err := m.meter.Int64ObservableCounter("pcmmix.stream.blocks",
		metric.WithDescription("Total blocks produced from the decoded stream."),
	)
	if err != nil {
		return err
	}
	decodeErrors, err := m.meter.Int64ObservableCounter("pcmmix.stream.decode_errors",
		metric.WithDescription("Decode failures that ended a stream."),
	)
	if err != nil {
		return err
	}

	reg, err := m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := p.Stats()
		o.ObserveInt64(blocks, int64(s.Blocks))
		o.ObserveInt64(decodeErrors, int64(s.DecodeErrors))
		return nil
	}, blocks, decodeErrors)
	if err != nil {
		return err
	}
	m.keep(reg)
	return nil
}

// Close unregisters every callback. The components can be released after it
// returns.
func (m *Metrics) Close() error {
	m.mu.Lock()
	regs := m.regs
	m.regs = nil
	m.mu.Unlock()

	var errs []error
	for _, r := range regs {
		if err := r.Unregister(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
