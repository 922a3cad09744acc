// SPDX-License-Identifier: EPL-2.0

// Command beep plays a sine tone and exits once it has been played.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ik5/pcmmix/device"
	"github.com/ik5/pcmmix/device/speaker"
	"github.com/ik5/pcmmix/internal/app"
	"github.com/ik5/pcmmix/internal/config"
	"github.com/ik5/pcmmix/internal/observe"
	"github.com/ik5/pcmmix/pcm"
	"github.com/ik5/pcmmix/tone"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file; empty uses the defaults")
	freq := flag.Float64("freq", 440, "tone frequency in Hz")
	length := flag.Duration("length", 10*time.Second, "tone length")
	output := flag.String("output", "", "render offline to this WAV file instead of the speaker")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "beep: %v\n", err)
		return 1
	}
	if *output != "" {
		cfg.Device.Backend = config.BackendOffline
		cfg.Device.Output = *output
	}
	// The beeper renders at the reference rate only.
	cfg.Device.SampleRate = pcm.ReferenceRate

	slog.SetDefault(observe.NewLogger(os.Stderr, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := tone.NewBeeper()
	b.Beep(*freq, *length)
	b.Finish()

	dev, err := app.OpenDevice(cfg.Device, b, openSpeaker)
	if err != nil {
		slog.Error("couldn't open audio device", "err", err)
		return 1
	}
	if err := dev.Start(); err != nil {
		_ = dev.Close()
		slog.Error("couldn't start audio device", "err", err)
		return 1
	}

	slog.Info("beeping", "freq", *freq, "length", *length)
	waitErr := b.Wait(ctx)

	dev.Stop()
	if err := dev.Close(); err != nil {
		slog.Error("couldn't close audio device", "err", err)
		return 1
	}
	if waitErr != nil {
		slog.Info("interrupted")
	}
	return 0
}

func openSpeaker(rate, bufferFrames int, cb io.Reader) (device.Device, error) {
	d, err := speaker.New(rate, bufferFrames, cb)
	if err != nil {
		return nil, err
	}
	return d, nil
}
