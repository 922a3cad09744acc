// SPDX-License-Identifier: EPL-2.0

package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ik5/pcmmix/audio"
	"github.com/ik5/pcmmix/device"
	"github.com/ik5/pcmmix/formats/wav"
	"github.com/ik5/pcmmix/internal/config"
)

type constant struct{ v byte }

func (c constant) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = c.v
	}
	return len(p), nil
}

func TestOpenDevice_OfflineDiscard(t *testing.T) {
	dev, err := OpenDevice(config.DeviceConfig{
		SampleRate:   44100,
		BufferFrames: 64,
		Backend:      config.BackendOffline,
	}, constant{}, nil)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	if _, ok := dev.(*device.Offline); !ok {
		t.Fatalf("device is %T, want *device.Offline", dev)
	}
	if err := dev.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestOpenDevice_OfflineRecord(t *testing.T) {
	out := filepath.Join(t.TempDir(), "rec.wav")
	dev, err := OpenDevice(config.DeviceConfig{
		SampleRate:   22050,
		BufferFrames: 32,
		Backend:      config.BackendOffline,
		Output:       out,
	}, constant{v: 1}, nil)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}

	rec, ok := dev.(*recorder)
	if !ok {
		t.Fatalf("device is %T, want *recorder", dev)
	}
	if err := rec.Pump(3); err != nil {
		t.Fatalf("Pump: %v", err)
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if src.SampleRate() != 22050 || src.Channels() != 2 {
		t.Errorf("format = %d Hz x %d, want 22050 Hz x 2", src.SampleRate(), src.Channels())
	}

	samples, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	// 3 periods of 32 stereo frames
	if len(samples) != 3*32*2 {
		t.Fatalf("got %d samples, want %d", len(samples), 3*32*2)
	}
	for i, s := range samples {
		if s != 0x0101 {
			t.Fatalf("sample %d = %#x, want 0x0101", i, s)
		}
	}
}

func TestOpenDevice_BadOutput(t *testing.T) {
	_, err := OpenDevice(config.DeviceConfig{
		SampleRate:   44100,
		BufferFrames: 64,
		Backend:      config.BackendOffline,
		Output:       filepath.Join(t.TempDir(), "missing", "rec.wav"),
	}, constant{}, nil)
	if err == nil {
		t.Fatal("expected error for unwritable output, got nil")
	}
}

func TestOpenDevice_Speaker(t *testing.T) {
	cfg := config.DeviceConfig{SampleRate: 44100, BufferFrames: 64, Backend: config.BackendSpeaker}

	if _, err := OpenDevice(cfg, constant{}, nil); !errors.Is(err, ErrNoSpeaker) {
		t.Errorf("err = %v, want ErrNoSpeaker", err)
	}

	var gotRate, gotFrames int
	open := func(rate, frames int, cb io.Reader) (device.Device, error) {
		gotRate, gotFrames = rate, frames
		return device.NewOffline(rate, frames, cb, nil), nil
	}
	dev, err := OpenDevice(cfg, constant{}, open)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	defer dev.Close()
	if gotRate != 44100 || gotFrames != 64 {
		t.Errorf("speaker opened with %d Hz, %d frames", gotRate, gotFrames)
	}
}

func TestServeMetrics(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeMetrics(ctx, ln) }()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/metrics")
	if err != nil {
		cancel()
		t.Fatalf("GET /metrics: %v", err)
	}
	var body bytes.Buffer
	_, _ = io.Copy(&body, resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body.String(), "go_goroutines") {
		t.Errorf("body does not look like Prometheus output: %.200s", body.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ServeMetrics: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ServeMetrics did not return after cancel")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\"): %v", err)
	}
	if cfg.Mixer.Voices != 4 {
		t.Errorf("Mixer.Voices = %d, want the default 4", cfg.Mixer.Voices)
	}

	_, err = LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not found", err)
	}
}
