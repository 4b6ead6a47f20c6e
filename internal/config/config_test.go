// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Fatalf("default configuration should validate, got: %v", err)
	}
}

func TestValidateRejectsMisconfiguration(t *testing.T) {
	tests := []struct {
		desc   string
		mutate func(*Config)
	}{
		{"fft not power of two", func(c *Config) { c.FFTSize = 1000 }},
		{"fft smaller than chunk", func(c *Config) { c.FFTSize = 512; c.ChunkSize = 1024 }},
		{"mono input", func(c *Config) { c.Channels = 1 }},
		{"zero bars", func(c *Config) { c.BarCount = 0 }},
		{"bars exceed usable bins", func(c *Config) { c.BarCount = c.FFTSize }},
		{"smoothing zero", func(c *Config) { c.Smoothing = 0 }},
		{"smoothing above one", func(c *Config) { c.Smoothing = 1.5 }},
		{"zero history depth", func(c *Config) { c.HistoryDepth = 0 }},
		{"buffer not chunk multiple", func(c *Config) { c.BufferSamples = 5000 }},
		{"buffer smaller than chunk", func(c *Config) { c.BufferSamples = 512 }},
		{"frame rate too high", func(c *Config) { c.FrameRate = 500 }},
		{"scale outside enumeration", func(c *Config) { c.Scale = 3 }},
		{"unknown mode", func(c *Config) { c.Mode = "lasers" }},
		{"sample rate too low", func(c *Config) { c.SampleRate = 4000 }},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tt.desc)
			}
		})
	}
}

func TestManualScaleEnumeration(t *testing.T) {
	for _, s := range ManualScales {
		if !IsManualScale(s) {
			t.Errorf("IsManualScale(%v) = false, expected true", s)
		}
	}
	for _, s := range []float64{0, 0.25, 3, -1} {
		if IsManualScale(s) {
			t.Errorf("IsManualScale(%v) = true, expected false", s)
		}
	}
}

func TestBufferChunks(t *testing.T) {
	cfg := New()
	cfg.ChunkSize = 1024
	cfg.BufferSamples = 4096
	if got := cfg.BufferChunks(); got != 4 {
		t.Errorf("BufferChunks() = %d, expected 4", got)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("sample_rate: 48000\nchunk_size: 512\nfft_size: 1024\nbar_count: 24\nframe_rate: 60\nsmoothing: 0.5\nbuffer_samples: 2048\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %.0f, expected 48000", cfg.SampleRate)
	}
	if cfg.ChunkSize != 512 || cfg.FFTSize != 1024 {
		t.Errorf("ChunkSize/FFTSize = %d/%d, expected 512/1024", cfg.ChunkSize, cfg.FFTSize)
	}
	if cfg.BarCount != 24 || cfg.FrameRate != 60 {
		t.Errorf("BarCount/FrameRate = %d/%d, expected 24/60", cfg.BarCount, cfg.FrameRate)
	}
	// Unspecified fields keep their defaults.
	if cfg.HistoryDepth != DefaultHistoryDepth {
		t.Errorf("HistoryDepth = %d, expected default %d", cfg.HistoryDepth, DefaultHistoryDepth)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("fft_size: 999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid fft_size in config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VIS_WS_ADDR", ":9999")
	t.Setenv("VIS_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WSAddr != ":9999" {
		t.Errorf("WSAddr = %q, expected :9999", cfg.WSAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, expected debug", cfg.LogLevel)
	}
}
