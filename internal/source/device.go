// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"

	"visualizer/internal/config"
	applog "visualizer/internal/log"
	"visualizer/internal/pipeline"
)

// Initialize sets up the PortAudio subsystem. Must be called before any
// device operation and paired with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate shuts down the PortAudio subsystem. Defer this right after
// Initialize.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// InputDevice resolves a device ID to PortAudio device info. An ID of
// config.MinDeviceID (-1) selects the system default input device.
func InputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == config.MinDeviceID {
		return portaudio.DefaultInputDevice()
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	return devices[deviceID], nil
}

// ListDevices prints every audio device with its direction, channel
// counts, default sample rate and latency range.
func ListDevices() error {
	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailable Audio Devices\n\n")
	for i, device := range devices {
		direction := ""
		switch {
		case device.MaxInputChannels > 0 && device.MaxOutputChannels > 0:
			direction = "Input/Output"
		case device.MaxInputChannels > 0:
			direction = "Input"
		case device.MaxOutputChannels > 0:
			direction = "Output"
		}

		fmt.Printf("[%d] %s (%s)\n", i, device.Name, direction)
		fmt.Printf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		fmt.Printf("    Latency: Low=%.2fms, High=%.2fms\n",
			device.DefaultLowInputLatency.Seconds()*1000,
			device.DefaultHighInputLatency.Seconds()*1000)
		fmt.Println()
	}
	return nil
}

// DeviceSource captures live stereo audio through PortAudio and pushes one
// chunk per callback into the hand-off ring. The callback runs on the
// driver's real-time thread: it only deinterleaves into a fresh chunk and
// pushes, which holds the ring lock for an index update.
type DeviceSource struct {
	cfg     *config.Config
	buffer  *pipeline.SampleBuffer
	device  *portaudio.DeviceInfo
	latency time.Duration
	stream  *portaudio.Stream
	seq     uint64
}

var _ Source = (*DeviceSource)(nil)

// NewDeviceSource resolves the configured input device. Initialize must
// have been called.
func NewDeviceSource(cfg *config.Config, buffer *pipeline.SampleBuffer) (*DeviceSource, error) {
	device, err := InputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	s := &DeviceSource{
		cfg:     cfg,
		buffer:  buffer,
		device:  device,
		latency: device.DefaultLowInputLatency,
	}
	applog.Infof("source: using input device %q (%.0f Hz default)", device.Name, device.DefaultSampleRate)
	return s, nil
}

// Start opens and starts the input stream.
func (s *DeviceSource) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   s.device,
			Channels: s.cfg.Channels,
			Latency:  s.latency,
		},
		SampleRate:      s.cfg.SampleRate,
		FramesPerBuffer: s.cfg.ChunkSize,
	}

	stream, err := portaudio.OpenStream(params, s.capture)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	s.stream = stream

	if err := s.stream.Start(); err != nil {
		s.stream.Close()
		s.stream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}
	return nil
}

// Stop stops and closes the input stream.
func (s *DeviceSource) Stop() error {
	if s.stream == nil {
		return nil
	}
	if err := s.stream.Stop(); err != nil {
		return err
	}
	if err := s.stream.Close(); err != nil {
		return err
	}
	s.stream = nil
	return nil
}

// capture is the PortAudio input callback. Frames arrive interleaved as
// float32 already in [-1, 1]; they are split into channel planes and
// pushed. Chunks are immutable once pushed, so each callback fills a new
// one rather than reusing the previous.
func (s *DeviceSource) capture(in []float32) {
	s.seq++
	chunk := pipeline.NewChunk(s.seq, s.cfg.SampleRate, s.cfg.Channels, s.cfg.ChunkSize)

	channels := s.cfg.Channels
	for i := 0; i < s.cfg.ChunkSize; i++ {
		base := i * channels
		if base+channels > len(in) {
			break
		}
		for c := 0; c < channels; c++ {
			chunk.Samples[c][i] = float64(in[base+c])
		}
	}

	s.buffer.Push(chunk)
}
