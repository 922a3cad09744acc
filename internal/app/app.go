// SPDX-License-Identifier: EPL-2.0

// Package app holds the wiring shared by the pcmmix commands: loading the
// configuration, opening the output device and serving metrics.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/pcmmix"
	"github.com/ik5/pcmmix/device"
	"github.com/ik5/pcmmix/internal/config"
	"github.com/ik5/pcmmix/internal/observe"
)

// SpeakerFunc opens the system audio output.
type SpeakerFunc func(rate, bufferFrames int, cb io.Reader) (device.Device, error)

// ErrNoSpeaker is returned by OpenDevice for the speaker backend when no
// SpeakerFunc is given.
var ErrNoSpeaker = errors.New("app: speaker backend not available")

// OpenDevice opens the backend named by cfg, pulling audio from cb.
//
// The offline backend runs on a real-time ticker. When cfg.Output is set it
// records to that WAV file, which is finished by Close.
func OpenDevice(cfg config.DeviceConfig, cb io.Reader, openSpeaker SpeakerFunc) (device.Device, error) {
	switch cfg.Backend {
	case config.BackendOffline:
		if cfg.Output == "" {
			return device.NewOffline(cfg.SampleRate, cfg.BufferFrames, cb, nil), nil
		}

		f, err := os.Create(cfg.Output)
		if err != nil {
			return nil, fmt.Errorf("app: create output: %w", err)
		}
		w := pcmmix.NewWAVWriter(f, cfg.SampleRate)
		return &recorder{
			Offline: device.NewOffline(cfg.SampleRate, cfg.BufferFrames, cb, w),
			wav:     w,
			file:    f,
		}, nil

	default:
		if openSpeaker == nil {
			return nil, ErrNoSpeaker
		}
		d, err := openSpeaker(cfg.SampleRate, cfg.BufferFrames, cb)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		return d, nil
	}
}

// recorder is an offline device writing to a WAV file.
type recorder struct {
	*device.Offline
	wav  *pcmmix.WAVWriter
	file *os.File
}

func (r *recorder) Close() error {
	return errors.Join(r.Offline.Close(), r.wav.Close(), r.file.Close())
}

const shutdownTimeout = 5 * time.Second

// ServeMetrics serves the Prometheus /metrics endpoint on ln until ctx is
// done, then shuts the server down. It returns nil after a clean shutdown.
func ServeMetrics(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return fmt.Errorf("app: metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: metrics shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("app: metrics server: %w", err)
	}
	return nil
}

// LoadConfig loads the YAML file at path, or returns the defaults when path
// is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Defaults(), nil
	}
	cfg, err := config.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %q not found", path)
	}
	return cfg, err
}

// StartMetrics installs the Prometheus backed meter provider and serves it
// on addr as a member of g. The returned func releases both.
func StartMetrics(ctx context.Context, g *errgroup.Group, addr, service string) (*observe.Metrics, func(), error) {
	mp, shutdownProvider, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: service})
	if err != nil {
		return nil, nil, err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		_ = shutdownProvider(context.Background())
		return nil, nil, fmt.Errorf("app: listen on %s: %w", addr, err)
	}
	g.Go(func() error { return ServeMetrics(ctx, ln) })
	slog.Info("metrics listening", "addr", ln.Addr().String())

	metrics := observe.NewMetrics(mp)
	shutdown := func() {
		_ = metrics.Close()
		_ = shutdownProvider(context.Background())
	}
	return metrics, shutdown, nil
}
