// SPDX-License-Identifier: EPL-2.0

// Command streamplay decodes a media file into the block queue and plays it
// through the stream feeder.
//
// Usage:
//
//	streamplay [flags] file.{wav,aiff,mp3,ogg}
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/device"
	"github.com/ik5/pcmmix/device/speaker"
	"github.com/ik5/pcmmix/feeder"
	"github.com/ik5/pcmmix/formats"
	"github.com/ik5/pcmmix/internal/app"
	"github.com/ik5/pcmmix/internal/config"
	"github.com/ik5/pcmmix/internal/observe"
	"github.com/ik5/pcmmix/queue"
	"github.com/ik5/pcmmix/stream"
)

// drainPoll is how often playback is checked for the end of the stream.
const drainPoll = 20 * time.Millisecond

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file; empty uses the defaults")
	output := flag.String("output", "", "render offline to this WAV file instead of the speaker")
	policy := flag.String("policy", "", "underrun policy: nonblocking, bounded or blocking")
	backend := flag.String("queue", "", "queue backend: fifo or list (decode everything first)")
	volume := flag.Int("volume", 0, "stream volume 1-128")
	loop := flag.Bool("loop", false, "replay until interrupted; needs the list backend")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "streamplay: %v\n", err)
		return 1
	}
	if *output != "" {
		cfg.Device.Backend = config.BackendOffline
		cfg.Device.Output = *output
	}
	if *policy != "" {
		cfg.Stream.Policy = config.Policy(*policy)
	}
	if *backend != "" {
		cfg.Stream.Queue.Backend = config.QueueBackend(*backend)
	}
	if *volume > 0 {
		cfg.Stream.Volume = *volume
	}
	if flag.NArg() > 0 {
		cfg.Stream.Path = flag.Arg(0)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "streamplay: %v\n", err)
		return 1
	}
	if cfg.Stream.Path == "" {
		fmt.Fprintln(os.Stderr, "usage: streamplay [flags] file")
		flag.PrintDefaults()
		return 2
	}
	if *loop && cfg.Stream.Queue.Backend != config.QueueList {
		fmt.Fprintln(os.Stderr, "streamplay: -loop needs -queue list")
		return 2
	}

	logger := observe.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	// ── Decoder ───────────────────────────────────────────────────────────────
	src, closeSrc, err := openSource(cfg.Stream.Path)
	if err != nil {
		slog.Error("couldn't open stream", "path", cfg.Stream.Path, "err", err)
		return 1
	}
	defer closeSrc()

	slog.Info("stream opened",
		"path", cfg.Stream.Path,
		"rate", src.SampleRate(),
		"channels", src.Channels(),
	)

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()
	if cfg.Device.Duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Device.Duration)
		defer cancel()
	}

	// ── Queue ─────────────────────────────────────────────────────────────────
	opts := []stream.Option{
		stream.WithRate(cfg.Device.SampleRate),
		stream.WithBlockFrames(cfg.Stream.BlockFrames),
		stream.WithLogger(logger),
	}

	var (
		q        queue.Queue
		list     *queue.List
		producer *stream.Producer
	)
	switch cfg.Stream.Queue.Backend {
	case config.QueueList:
		list, err = stream.Prebuffer(src, opts...)
		if err != nil {
			slog.Error("couldn't decode stream", "err", err)
			return 1
		}
		slog.Debug("stream prebuffered", "blocks", list.Total())
		q = list
	default:
		fifo := queue.NewFIFO(queue.WithCapacity(cfg.Stream.Queue.Capacity))
		producer = stream.NewProducer(src, fifo, opts...)
		q = fifo
	}

	f := feeder.New(q,
		feeder.WithPolicy(feederPolicy(cfg.Stream.Policy)),
		feeder.WithWait(cfg.Stream.Wait()),
		feeder.WithVolume(cfg.Stream.Volume),
	)

	g, gctx := errgroup.WithContext(ctx)

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.MetricsAddr != "" {
		metrics, shutdown, err := app.StartMetrics(gctx, g, cfg.MetricsAddr, "streamplay")
		if err != nil {
			slog.Error("failed to start metrics", "err", err)
			return 1
		}
		defer shutdown()

		errs := []error{metrics.ObserveQueue("stream", q), metrics.ObserveFeeder(f)}
		if producer != nil {
			errs = append(errs, metrics.ObserveProducer(producer))
		}
		if err := errors.Join(errs...); err != nil {
			slog.Error("failed to register metrics", "err", err)
			return 1
		}
	}

	// ── Device ────────────────────────────────────────────────────────────────
	dev, err := app.OpenDevice(cfg.Device, f, openSpeaker)
	if err != nil {
		slog.Error("couldn't open audio device", "backend", cfg.Device.Backend, "err", err)
		return 1
	}
	if err := dev.Start(); err != nil {
		_ = dev.Close()
		slog.Error("couldn't start audio device", "err", err)
		return 1
	}

	produced := make(chan struct{})
	if producer != nil {
		g.Go(func() error {
			defer close(produced)
			err := producer.Run(gctx)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		})
	} else {
		close(produced)
	}

	g.Go(func() error {
		err := drain(gctx, produced, q, f, list, *loop)
		// Playback is over; let the metrics server go.
		cancel()
		return err
	})

	runErr := g.Wait()

	// A blocking feeder may be parked in Pop; closing first releases it.
	q.Close()
	dev.Stop()
	closeErr := dev.Close()

	st := f.Stats()
	slog.Info("playback finished", "underruns", st.Underruns, "silence_bytes", st.SilenceBytes)

	if err := errors.Join(runErr, closeErr); err != nil {
		slog.Error("streamplay stopped with error", "err", err)
		return 1
	}
	return 0
}

// drain waits until the producer is done and the feeder has played every
// queued byte. With loop set the list is rewound instead.
func drain(ctx context.Context, produced <-chan struct{}, q queue.Queue, f *feeder.Feeder, list *queue.List, loop bool) error {
	select {
	case <-ctx.Done():
		return nil
	case <-produced:
	}

	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if f.Done() {
			return nil
		}
		if q.Len() > 0 || f.Pending() > 0 {
			continue
		}
		if loop && list != nil {
			list.Rewind()
			continue
		}
		q.Close()
		return nil
	}
}

func openSource(path string) (audio.Source, func(), error) {
	dec, err := formats.NewRegistry().DecoderFor(path)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	src, err := dec.Decode(file)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return src, func() {
		_ = src.Close()
		_ = file.Close()
	}, nil
}

func feederPolicy(p config.Policy) feeder.Policy {
	switch p {
	case config.PolicyBounded:
		return feeder.Bounded
	case config.PolicyBlocking:
		return feeder.Blocking
	default:
		return feeder.NonBlocking
	}
}

func openSpeaker(rate, bufferFrames int, cb io.Reader) (device.Device, error) {
	d, err := speaker.New(rate, bufferFrames, cb)
	if err != nil {
		return nil, err
	}
	return d, nil
}
