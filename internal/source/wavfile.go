// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/transforms"
	"github.com/go-audio/wav"

	"visualizer/internal/config"
	applog "visualizer/internal/log"
	"visualizer/internal/pipeline"
)

// FileSource plays a WAV file through the pipeline at real-time pace, one
// chunk per tick of a sample-clock ticker. The whole file is decoded and
// peak-normalized up front so levels stay consistent across chunks, then
// the playback goroutine deinterleaves a chunk at a time. Playback loops
// when the file runs out.
type FileSource struct {
	cfg    *config.Config
	buffer *pipeline.SampleBuffer

	// planes holds the decoded file, one plane per channel, already
	// mapped to the configured channel count.
	planes [][]float64

	done chan struct{}
	quit chan struct{}
}

var _ Source = (*FileSource)(nil)

// NewFileSource decodes cfg.InputFile into memory. Mono files are
// duplicated to both channels; files with more channels than configured
// use the first cfg.Channels of them.
func NewFileSource(cfg *config.Config, buffer *pipeline.SampleBuffer) (*FileSource, error) {
	f, err := os.Open(cfg.InputFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", cfg.InputFile)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", cfg.InputFile, err)
	}
	if len(buf.Data) == 0 {
		return nil, fmt.Errorf("empty WAV file: %s", cfg.InputFile)
	}

	fb := buf.AsFloatBuffer()
	transforms.NormalizeMax(fb)

	fileChannels := fb.Format.NumChannels
	if fileChannels < 1 {
		return nil, fmt.Errorf("WAV file reports %d channels", fileChannels)
	}
	frames := len(fb.Data) / fileChannels

	planes := make([][]float64, cfg.Channels)
	for c := range planes {
		planes[c] = make([]float64, frames)
		src := c
		if src >= fileChannels {
			src = fileChannels - 1 // mono to stereo duplication
		}
		for i := 0; i < frames; i++ {
			planes[c][i] = fb.Data[i*fileChannels+src]
		}
	}

	if rate := fb.Format.SampleRate; float64(rate) != cfg.SampleRate {
		applog.Warnf("source: file rate %d Hz differs from configured %.0f Hz, playback pace follows config",
			rate, cfg.SampleRate)
	}
	applog.Infof("source: loaded %s (%d frames, %d channels)", cfg.InputFile, frames, fileChannels)

	return &FileSource{
		cfg:    cfg,
		buffer: buffer,
		planes: planes,
	}, nil
}

// Start launches the playback goroutine.
func (s *FileSource) Start() error {
	s.done = make(chan struct{})
	s.quit = make(chan struct{})
	go s.run()
	return nil
}

// Stop halts playback and waits for the goroutine to exit.
func (s *FileSource) Stop() error {
	if s.quit == nil {
		return nil
	}
	close(s.quit)
	<-s.done
	s.quit = nil
	return nil
}

// Frames reports the decoded file length in sample frames.
func (s *FileSource) Frames() int {
	return len(s.planes[0])
}

func (s *FileSource) run() {
	defer close(s.done)

	interval := time.Duration(float64(s.cfg.ChunkSize) / s.cfg.SampleRate * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var seq uint64
	pos := 0
	frames := len(s.planes[0])

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
		}

		seq++
		chunk := pipeline.NewChunk(seq, s.cfg.SampleRate, s.cfg.Channels, s.cfg.ChunkSize)
		for i := 0; i < s.cfg.ChunkSize; i++ {
			idx := (pos + i) % frames
			for c := range chunk.Samples {
				chunk.Samples[c][i] = s.planes[c][idx]
			}
		}
		pos = (pos + s.cfg.ChunkSize) % frames

		s.buffer.Push(chunk)
	}
}
