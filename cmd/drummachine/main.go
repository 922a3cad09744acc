// SPDX-License-Identifier: EPL-2.0

// Command drummachine loads four drum samples into the voice mixer and
// plays a looping 808 beat on them until interrupted.
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
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/pcmmix/bank"
	"github.com/ik5/pcmmix/device"
	"github.com/ik5/pcmmix/device/speaker"
	"github.com/ik5/pcmmix/internal/app"
	"github.com/ik5/pcmmix/internal/config"
	"github.com/ik5/pcmmix/internal/observe"
	"github.com/ik5/pcmmix/mixer"
	"github.com/ik5/pcmmix/sequencer"
)

// defaultSamples are loaded from -sounds when the config lists no sounds.
var defaultSamples = []string{
	"808-bassdrum.wav",
	"808-clap.wav",
	"808-cowbell.wav",
	"808-hihat.wav",
}

// startDelay lets the device settle before the first step.
const startDelay = 200 * time.Millisecond

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file; empty uses the defaults")
	soundsDir := flag.String("sounds", ".", "directory holding the 808 samples when the config lists no sounds")
	output := flag.String("output", "", "render offline to this WAV file instead of the speaker")
	duration := flag.Duration("duration", 0, "stop after this long; 0 plays until interrupted")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "drummachine: %v\n", err)
		return 1
	}
	if *output != "" {
		cfg.Device.Backend = config.BackendOffline
		cfg.Device.Output = *output
	}
	if *duration > 0 {
		cfg.Device.Duration = *duration
	}
	if len(cfg.Sounds) == 0 {
		for i, name := range defaultSamples {
			cfg.Sounds = append(cfg.Sounds, config.SoundConfig{Index: i, Path: filepath.Join(*soundsDir, name)})
		}
	}

	logger := observe.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	// ── Sounds ────────────────────────────────────────────────────────────────
	b := bank.New(cfg.BankSize(), bank.WithLogger(logger))
	defer b.UnloadAll()

	for _, s := range cfg.Sounds {
		if err := b.LoadFile(s.Index, s.Path); err != nil {
			slog.Error("couldn't load sound", "index", s.Index, "path", s.Path, "err", err)
			return 1
		}
	}

	tracks, err := cfg.Sequencer.Build()
	if err != nil {
		slog.Error("invalid sequencer tracks", "err", err)
		return 1
	}

	mx := mixer.New(cfg.Mixer.Voices, b, mixer.WithBufferFrames(cfg.Device.BufferFrames))
	seq := sequencer.New(mx, tracks...)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.Device.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Device.Duration)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.MetricsAddr != "" {
		metrics, shutdown, err := app.StartMetrics(gctx, g, cfg.MetricsAddr, "drummachine")
		if err != nil {
			slog.Error("failed to start metrics", "err", err)
			return 1
		}
		defer shutdown()
		if err := metrics.ObserveMixer(mx); err != nil {
			slog.Error("failed to register mixer metrics", "err", err)
			return 1
		}
	}

	// ── Device ────────────────────────────────────────────────────────────────
	dev, err := app.OpenDevice(cfg.Device, mx, openSpeaker)
	if err != nil {
		slog.Error("couldn't open audio device", "backend", cfg.Device.Backend, "err", err)
		return 1
	}
	if err := dev.Start(); err != nil {
		_ = dev.Close()
		slog.Error("couldn't start audio device", "err", err)
		return 1
	}

	slog.Info("drum machine running",
		"backend", cfg.Device.Backend,
		"rate", cfg.Device.SampleRate,
		"voices", cfg.Mixer.Voices,
		"step", cfg.Sequencer.StepInterval(),
	)

	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case <-time.After(startDelay):
		}
		return seq.Run(gctx, cfg.Sequencer.StepInterval())
	})

	runErr := g.Wait()

	// The callback must be gone before the sounds are released.
	dev.Stop()
	mx.StopAll()
	closeErr := dev.Close()

	if err := errors.Join(runErr, closeErr); err != nil {
		slog.Error("drum machine stopped with error", "err", err)
		return 1
	}

	st := mx.Stats()
	slog.Info("goodbye", "triggers", st.Triggers, "completions", st.Completions)
	return 0
}

func openSpeaker(rate, bufferFrames int, cb io.Reader) (device.Device, error) {
	d, err := speaker.New(rate, bufferFrames, cb)
	if err != nil {
		return nil, err
	}
	return d, nil
}
