// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ik5/pcmmix/pcm"
	"github.com/ik5/pcmmix/sequencer"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and
// validates the result. An empty document yields the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns a validated configuration with every default applied.
func Defaults() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero field that has a default.
func ApplyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = LogInfo
	}
	if cfg.Device.SampleRate == 0 {
		cfg.Device.SampleRate = pcm.ReferenceRate
	}
	if cfg.Device.BufferFrames == 0 {
		cfg.Device.BufferFrames = 1024
	}
	if cfg.Device.Backend == "" {
		cfg.Device.Backend = BackendSpeaker
	}
	if cfg.Mixer.Voices == 0 {
		cfg.Mixer.Voices = 4
	}
	if cfg.Sequencer.StepMS == 0 {
		cfg.Sequencer.StepMS = int(sequencer.DefaultStepInterval.Milliseconds())
	}
	if cfg.Stream.BlockFrames == 0 {
		cfg.Stream.BlockFrames = 1024
	}
	if cfg.Stream.Queue.Backend == "" {
		cfg.Stream.Queue.Backend = QueueFIFO
	}
	if cfg.Stream.Policy == "" {
		cfg.Stream.Policy = PolicyNonBlocking
	}
	if cfg.Stream.WaitMS == 0 {
		cfg.Stream.WaitMS = 5
	}
	if cfg.Stream.Volume == 0 {
		cfg.Stream.Volume = pcm.MaxVolume
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	// Device
	if cfg.Device.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("device.sample_rate %d must be positive", cfg.Device.SampleRate))
	}
	if cfg.Device.BufferFrames <= 0 {
		errs = append(errs, fmt.Errorf("device.buffer_frames %d must be positive", cfg.Device.BufferFrames))
	}
	if !cfg.Device.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("device.backend %q is invalid; valid values: speaker, offline", cfg.Device.Backend))
	}
	if cfg.Device.Duration < 0 {
		errs = append(errs, fmt.Errorf("device.duration %v must not be negative", cfg.Device.Duration))
	}

	if cfg.Mixer.Voices <= 0 {
		errs = append(errs, fmt.Errorf("mixer.voices %d must be positive", cfg.Mixer.Voices))
	}

	// Sounds
	seen := make(map[int]int, len(cfg.Sounds))
	for i, s := range cfg.Sounds {
		prefix := fmt.Sprintf("sounds[%d]", i)
		if s.Index < 0 {
			errs = append(errs, fmt.Errorf("%s.index %d must not be negative", prefix, s.Index))
		}
		if prev, ok := seen[s.Index]; ok {
			errs = append(errs, fmt.Errorf("%s.index %d is a duplicate of sounds[%d]", prefix, s.Index, prev))
		}
		seen[s.Index] = i
		if s.Path == "" {
			errs = append(errs, fmt.Errorf("%s.path is required", prefix))
		}
	}

	// Sequencer
	if cfg.Sequencer.StepMS < 0 {
		errs = append(errs, fmt.Errorf("sequencer.step_ms %d must be positive", cfg.Sequencer.StepMS))
	}
	for i, t := range cfg.Sequencer.Tracks {
		prefix := fmt.Sprintf("sequencer.tracks[%d]", i)
		if t.Voice < 0 || t.Voice >= cfg.Mixer.Voices {
			errs = append(errs, fmt.Errorf("%s.voice %d is out of range [0, %d)", prefix, t.Voice, cfg.Mixer.Voices))
		}
		if _, ok := seen[t.Sound]; !ok && len(cfg.Sounds) > 0 {
			errs = append(errs, fmt.Errorf("%s.sound %d is not loaded by any sounds entry", prefix, t.Sound))
		}
		if _, err := sequencer.ParsePattern(t.Pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s.pattern: %w", prefix, err))
		}
	}

	// Stream
	if cfg.Stream.BlockFrames < 0 {
		errs = append(errs, fmt.Errorf("stream.block_frames %d must be positive", cfg.Stream.BlockFrames))
	}
	if !cfg.Stream.Queue.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("stream.queue.backend %q is invalid; valid values: fifo, list", cfg.Stream.Queue.Backend))
	}
	if cfg.Stream.Queue.Capacity < 0 {
		errs = append(errs, fmt.Errorf("stream.queue.capacity %d must not be negative", cfg.Stream.Queue.Capacity))
	}
	if !cfg.Stream.Policy.IsValid() {
		errs = append(errs, fmt.Errorf("stream.policy %q is invalid; valid values: nonblocking, bounded, blocking", cfg.Stream.Policy))
	}
	if cfg.Stream.WaitMS < 0 {
		errs = append(errs, fmt.Errorf("stream.wait_ms %d must not be negative", cfg.Stream.WaitMS))
	}
	if cfg.Stream.Volume < 0 || cfg.Stream.Volume > pcm.MaxVolume {
		errs = append(errs, fmt.Errorf("stream.volume %d is out of range [0, %d]", cfg.Stream.Volume, pcm.MaxVolume))
	}

	return errors.Join(errs...)
}
