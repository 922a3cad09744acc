// SPDX-License-Identifier: EPL-2.0

// Package config provides the configuration schema and loader for the
// pcmmix commands.
package config

import (
	"fmt"
	"time"

	"github.com/ik5/pcmmix/sequencer"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Backend selects the audio device.
type Backend string

const (
	// BackendSpeaker plays through the system audio output.
	BackendSpeaker Backend = "speaker"

	// BackendOffline renders without hardware, to a WAV file when
	// device.output is set.
	BackendOffline Backend = "offline"
)

func (b Backend) IsValid() bool {
	return b == BackendSpeaker || b == BackendOffline
}

// QueueBackend selects the block queue implementation.
type QueueBackend string

const (
	QueueFIFO QueueBackend = "fifo"
	QueueList QueueBackend = "list"
)

func (q QueueBackend) IsValid() bool {
	return q == QueueFIFO || q == QueueList
}

// Policy is the underrun behaviour of the stream feeder.
type Policy string

const (
	PolicyNonBlocking Policy = "nonblocking"
	PolicyBounded     Policy = "bounded"
	PolicyBlocking    Policy = "blocking"
)

func (p Policy) IsValid() bool {
	switch p {
	case PolicyNonBlocking, PolicyBounded, PolicyBlocking:
		return true
	}
	return false
}

// Config is the root configuration structure.
type Config struct {
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the listen address of the Prometheus /metrics endpoint.
	// Empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`

	Device    DeviceConfig    `yaml:"device"`
	Mixer     MixerConfig     `yaml:"mixer"`
	Sounds    []SoundConfig   `yaml:"sounds"`
	Sequencer SequencerConfig `yaml:"sequencer"`
	Stream    StreamConfig    `yaml:"stream"`
}

type DeviceConfig struct {
	SampleRate   int     `yaml:"sample_rate"`
	BufferFrames int     `yaml:"buffer_frames"`
	Backend      Backend `yaml:"backend"`

	// Output is the WAV file the offline backend renders to.
	Output string `yaml:"output"`

	// Duration bounds a run. Zero runs until interrupted.
	Duration time.Duration `yaml:"duration"`
}

type MixerConfig struct {
	Voices int `yaml:"voices"`
}

// SoundConfig loads the file at Path into bank slot Index.
type SoundConfig struct {
	Index int    `yaml:"index"`
	Path  string `yaml:"path"`
}

type GainConfig struct {
	Left  float32 `yaml:"left"`
	Right float32 `yaml:"right"`
}

type TrackConfig struct {
	Voice   int        `yaml:"voice"`
	Sound   int        `yaml:"sound"`
	Pattern string     `yaml:"pattern"`
	Accent  GainConfig `yaml:"accent"`
	Soft    GainConfig `yaml:"soft"`
}

type SequencerConfig struct {
	// StepMS is the length of one step in milliseconds.
	StepMS int `yaml:"step_ms"`

	// Tracks replaces the built-in beat when set.
	Tracks []TrackConfig `yaml:"tracks"`
}

// StepInterval returns StepMS as a duration.
func (s SequencerConfig) StepInterval() time.Duration {
	return time.Duration(s.StepMS) * time.Millisecond
}

type QueueConfig struct {
	Backend QueueBackend `yaml:"backend"`

	// Capacity bounds a fifo queue in blocks. Zero is unbounded.
	Capacity int `yaml:"capacity"`
}

type StreamConfig struct {
	Path        string      `yaml:"path"`
	BlockFrames int         `yaml:"block_frames"`
	Queue       QueueConfig `yaml:"queue"`
	Policy      Policy      `yaml:"policy"`

	// WaitMS is the wait of the bounded policy in milliseconds.
	WaitMS int `yaml:"wait_ms"`

	// Volume is 0 to 128.
	Volume int `yaml:"volume"`
}

// Wait returns WaitMS as a duration.
func (s StreamConfig) Wait() time.Duration {
	return time.Duration(s.WaitMS) * time.Millisecond
}

// BankSize is the number of bank slots the configured sounds need.
func (c *Config) BankSize() int {
	n := 0
	for _, s := range c.Sounds {
		n = max(n, s.Index+1)
	}
	return n
}

// Build converts the configured tracks into sequencer tracks. With no
// tracks configured it returns the built-in beat.
func (s SequencerConfig) Build() ([]sequencer.Track, error) {
	if len(s.Tracks) == 0 {
		return sequencer.DefaultTracks(), nil
	}

	tracks := make([]sequencer.Track, 0, len(s.Tracks))
	for i, t := range s.Tracks {
		p, err := sequencer.ParsePattern(t.Pattern)
		if err != nil {
			return nil, fmt.Errorf("sequencer.tracks[%d]: %w", i, err)
		}
		tracks = append(tracks, sequencer.Track{
			Voice:   t.Voice,
			Sound:   t.Sound,
			Pattern: p,
			Accent:  sequencer.Gain{Left: t.Accent.Left, Right: t.Accent.Right},
			Soft:    sequencer.Gain{Left: t.Soft.Left, Right: t.Soft.Right},
		})
	}
	return tracks, nil
}
