// SPDX-License-Identifier: MIT

// Package config defines the immutable pipeline configuration. A Config is
// built once at startup (defaults, optional YAML file, env overrides, CLI
// flags), validated, and then threaded through every component constructor.
// Changing any value requires rebuilding the pipeline.
package config

import (
	"fmt"

	"visualizer/pkg/bitint"
)

// Defaults match the Pi target: 44.1kHz stereo capture, 1024-sample reads,
// 2048-point FFT, 30 frames per second.
const (
	DefaultSampleRate    = 44100.0
	DefaultChunkSize     = 1024
	DefaultChannels      = 2
	DefaultFFTSize       = 2048
	DefaultBarCount      = 32
	DefaultFrameRate     = 30
	DefaultSmoothing     = 0.6
	DefaultHistoryDepth  = 64
	DefaultBufferSamples = 4096 // 4 chunks of pending audio
	DefaultDeviceID      = MinDeviceID
	DefaultMode          = "bars"
	DefaultWSAddr        = ":8080"
	DefaultLogLevel      = "info"

	// MinDeviceID (-1) selects the system default input device.
	MinDeviceID = -1

	MinSampleRate = 8000.0
	MaxSampleRate = 192000.0
	MinFrameRate  = 1
	MaxFrameRate  = 120
)

// ManualScales is the set of selectable fixed gain multipliers. A zero
// Scale means adaptive normalization instead.
var ManualScales = []float64{0.5, 1, 2, 5, 10}

// Config holds all settings consumed by the pipeline and its collaborators.
type Config struct {
	// Audio input.
	SampleRate    float64 `yaml:"sample_rate"`    // Capture rate in Hz (44100 or 48000).
	ChunkSize     int     `yaml:"chunk_size"`     // Samples per channel per audio read.
	Channels      int     `yaml:"channels"`       // Fixed at 2 (stereo).
	DeviceID      int     `yaml:"input_device"`   // PortAudio device index, -1 for default.
	InputFile     string  `yaml:"input_file"`     // WAV file to play instead of live capture.
	BufferSamples int     `yaml:"buffer_samples"` // Hand-off ring size; must be a multiple of ChunkSize.

	// Analysis.
	FFTSize      int     `yaml:"fft_size"`      // Power of two, >= ChunkSize.
	BarCount     int     `yaml:"bar_count"`     // Display bars per channel, <= FFTSize/2.
	Smoothing    float64 `yaml:"smoothing"`     // EMA coefficient in (0, 1]; 1 disables smoothing.
	HistoryDepth int     `yaml:"history_depth"` // Spectrogram columns retained.

	// Display.
	FrameRate int     `yaml:"frame_rate"` // Target output frames per second.
	Mode      string  `yaml:"mode"`       // bars | curve | spectrogram | scope.
	Scale     float64 `yaml:"scale"`      // 0 for auto, else one of ManualScales.

	// Surroundings.
	WSAddr   string `yaml:"ws_addr"`   // Listen address for the frame stream.
	LogLevel string `yaml:"log_level"` // debug | info | warn | error.
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		SampleRate:    DefaultSampleRate,
		ChunkSize:     DefaultChunkSize,
		Channels:      DefaultChannels,
		DeviceID:      DefaultDeviceID,
		BufferSamples: DefaultBufferSamples,
		FFTSize:       DefaultFFTSize,
		BarCount:      DefaultBarCount,
		Smoothing:     DefaultSmoothing,
		HistoryDepth:  DefaultHistoryDepth,
		FrameRate:     DefaultFrameRate,
		Mode:          DefaultMode,
		Scale:         0,
		WSAddr:        DefaultWSAddr,
		LogLevel:      DefaultLogLevel,
	}
}

// BufferChunks returns the hand-off ring capacity in whole chunks.
func (c *Config) BufferChunks() int {
	return c.BufferSamples / c.ChunkSize
}

// IsManualScale reports whether v is zero (auto) or a member of ManualScales.
func IsManualScale(v float64) bool {
	for _, s := range ManualScales {
		if v == s {
			return true
		}
	}
	return false
}

// Validate fails fast on build-time misconfiguration. This is the only error
// class that aborts startup; everything at runtime degrades instead.
func (c *Config) Validate() error {
	if c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate {
		return fmt.Errorf("sample_rate %.0f outside [%.0f, %.0f]", c.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Channels != 2 {
		return fmt.Errorf("channels must be 2 (stereo), got %d", c.Channels)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if !bitint.IsPowerOfTwo(c.FFTSize) {
		return fmt.Errorf("fft_size must be a power of 2, got %d", c.FFTSize)
	}
	if c.FFTSize < c.ChunkSize {
		return fmt.Errorf("fft_size %d smaller than chunk_size %d", c.FFTSize, c.ChunkSize)
	}
	if c.BarCount < 1 || c.BarCount > c.FFTSize/2 {
		return fmt.Errorf("bar_count %d outside [1, fft_size/2=%d]", c.BarCount, c.FFTSize/2)
	}
	if c.Smoothing <= 0 || c.Smoothing > 1 {
		return fmt.Errorf("smoothing %.3f outside (0, 1]", c.Smoothing)
	}
	if c.HistoryDepth < 1 {
		return fmt.Errorf("history_depth must be positive, got %d", c.HistoryDepth)
	}
	if c.BufferSamples < c.ChunkSize || c.BufferSamples%c.ChunkSize != 0 {
		return fmt.Errorf("buffer_samples %d must be a positive multiple of chunk_size %d", c.BufferSamples, c.ChunkSize)
	}
	if c.FrameRate < MinFrameRate || c.FrameRate > MaxFrameRate {
		return fmt.Errorf("frame_rate %d outside [%d, %d]", c.FrameRate, MinFrameRate, MaxFrameRate)
	}
	if c.Scale != 0 && !IsManualScale(c.Scale) {
		return fmt.Errorf("scale %.2f not in %v (or 0 for auto)", c.Scale, ManualScales)
	}
	switch c.Mode {
	case "bars", "curve", "spectrogram", "scope":
	default:
		return fmt.Errorf("mode %q must be one of bars, curve, spectrogram, scope", c.Mode)
	}
	return nil
}
