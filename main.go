// SPDX-License-Identifier: MIT
package main

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"visualizer/cmd"
	"visualizer/internal/config"
	applog "visualizer/internal/log"
	"visualizer/internal/pipeline"
	"visualizer/internal/source"
	"visualizer/internal/transport"
)

// main runs in three phases:
//
// 1. Startup (cold path): parse arguments, load configuration, initialize
//    PortAudio, build the pipeline.
//
// 2. Frame loop (hot path): the source pushes chunks from its own timing
//    domain; a ticker drives Tick at the configured frame rate and ships
//    each frame over the transport.
//
// 3. Shutdown (cold path): stop the source, drain, close the transport,
//    report drop counters.
func main() {
	// Two OS threads suffice: one for the audio callback, one for the
	// frame loop and I/O.
	runtime.GOMAXPROCS(2)

	cfg, command, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("startup: %v", err)
	}

	if command == "list" {
		if err := source.Initialize(); err != nil {
			applog.Fatalf("startup: %v", err)
		}
		defer source.Terminate()
		if err := source.ListDevices(); err != nil {
			applog.Fatalf("startup: %v", err)
		}
		return
	}
	if cfg == nil {
		// Help or version output already handled.
		return
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	if err := run(cfg); err != nil {
		applog.Fatalf("%v", err)
	}
}

func run(cfg *config.Config) error {
	buffer := pipeline.NewSampleBuffer(cfg.BufferChunks(), cfg.Channels, cfg.ChunkSize)
	orch, err := pipeline.NewOrchestrator(cfg, buffer)
	if err != nil {
		return err
	}

	var src source.Source
	if cfg.InputFile != "" {
		src, err = source.NewFileSource(cfg, buffer)
		if err != nil {
			return err
		}
	} else {
		if err := source.Initialize(); err != nil {
			return err
		}
		defer source.Terminate()
		src, err = source.NewDeviceSource(cfg, buffer)
		if err != nil {
			return err
		}
	}

	trans := transport.NewWebSocketTransport(cfg.WSAddr, orch)
	defer trans.Close()

	if err := src.Start(); err != nil {
		return err
	}
	applog.Infof("pipeline: running at %d fps, mode %s", cfg.FrameRate, cfg.Mode)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.FrameRate))
	defer ticker.Stop()

	for {
		select {
		case <-done:
			if err := src.Stop(); err != nil {
				applog.Errorf("shutdown: stopping source: %v", err)
			}
			c := orch.Counters()
			applog.Infof("shutdown: drops=%d underruns=%d rejects=%d reused=%d",
				c.Drops, c.Underruns, c.Rejects, c.Reused)
			return nil
		case <-ticker.C:
			frame := orch.Tick()
			if frame == nil {
				continue
			}
			if err := trans.Send(frame); err != nil {
				applog.Warnf("transport: %v", err)
			}
		}
	}
}
