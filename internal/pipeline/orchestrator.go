// SPDX-License-Identifier: MIT
package pipeline

import (
	"sync"
	"sync/atomic"

	"visualizer/internal/config"
	applog "visualizer/internal/log"
)

// TickState tracks how far the current display tick progressed. There is no
// error state: any failure mid-tick degrades to re-emitting the previous
// frame, counted but never raised to the render loop.
type TickState int

const (
	StateIdle TickState = iota
	StateChunkAvailable
	StateAnalyzed
	StateNormalized
	StateSmoothed
	StateFrameReady
)

// Counters is a snapshot of the pipeline's diagnostic counters. None of
// these conditions halt rendering; they exist for logging and telemetry.
type Counters struct {
	Drops     uint64 // chunks overwritten unread in the hand-off ring
	Underruns uint64 // ticks that found the ring empty
	Rejects   uint64 // malformed chunks refused at the ring boundary
	Reused    uint64 // frames re-emitted unchanged
}

// Orchestrator composes the pipeline components into one frame per display
// tick. It pulls at most one chunk per tick from the SampleBuffer, routes
// it through analysis or trigger alignment depending on the active mode,
// and reuses the previous frame when no chunk is available rather than
// stalling the render loop.
//
// Tick must be called from a single goroutine. Mode and scale changes may
// arrive from other goroutines as discrete commands; they are staged and
// applied at the start of the next tick, keeping all state mutation on the
// tick thread.
type Orchestrator struct {
	buffer   *SampleBuffer
	analyzer *SpectrumAnalyzer
	binner   *FrequencyBinner
	trigger  *TriggerDetector
	history  *SpectrogramHistory

	normSpec *Normalizer // spectrum follower
	normWave *Normalizer // waveform follower

	// One smoother per spectral mode so switching modes does not bleed
	// one mode's feedback into another. Scope traces are not smoothed;
	// blending successive waveforms would smear the trace.
	smoothers map[Mode]*Smoother

	mode   atomic.Int32
	state  TickState
	silent *Chunk

	cmdMu        sync.Mutex
	pendingScale *float64

	frame  uint64
	out    FrameData
	ready  bool
	reused atomic.Uint64
}

// NewOrchestrator builds the full pipeline from a validated configuration.
func NewOrchestrator(cfg *config.Config, buffer *SampleBuffer) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		buffer:   buffer,
		analyzer: NewSpectrumAnalyzer(cfg.Channels, cfg.ChunkSize, cfg.FFTSize),
		binner:   NewFrequencyBinner(cfg.Channels, cfg.BarCount, cfg.FFTSize, cfg.SampleRate),
		trigger:  NewTriggerDetector(0, cfg.Channels, cfg.ChunkSize),
		history:  NewSpectrogramHistory(cfg.HistoryDepth, cfg.Channels, cfg.BarCount),
		normSpec: NewNormalizer(peakFloor),
		normWave: NewNormalizer(0.01),
		smoothers: map[Mode]*Smoother{
			ModeBars:        NewSmoother(cfg.Smoothing, cfg.Channels, cfg.BarCount),
			ModeCurve:       NewSmoother(cfg.Smoothing, cfg.Channels, cfg.BarCount),
			ModeSpectrogram: NewSmoother(cfg.Smoothing, cfg.Channels, cfg.BarCount),
		},
		silent: NewChunk(0, cfg.SampleRate, cfg.Channels, cfg.ChunkSize),
	}
	o.mode.Store(int32(mode))

	if cfg.Scale != 0 {
		o.normSpec.SetManual(cfg.Scale)
		o.normWave.SetManual(cfg.Scale)
	}

	applog.Infof("pipeline: ready (chunk=%d fft=%d bars=%d depth=%d mode=%s)",
		cfg.ChunkSize, cfg.FFTSize, cfg.BarCount, cfg.HistoryDepth, mode)
	return o, nil
}

// SetMode switches the visualization mode; takes effect on the next tick.
func (o *Orchestrator) SetMode(m Mode) {
	o.mode.Store(int32(m))
}

// Mode returns the active visualization mode.
func (o *Orchestrator) Mode() Mode {
	return Mode(o.mode.Load())
}

// SetScale stages a normalization command for the next tick: 0 selects
// adaptive normalization, any value from the configured enumeration selects
// that fixed multiplier. Other values are refused.
func (o *Orchestrator) SetScale(v float64) bool {
	if v != 0 && !config.IsManualScale(v) {
		return false
	}
	o.cmdMu.Lock()
	s := v
	o.pendingScale = &s
	o.cmdMu.Unlock()
	return true
}

// State returns how far the most recent tick progressed.
func (o *Orchestrator) State() TickState { return o.state }

// Counters returns a snapshot of the diagnostic counters.
func (o *Orchestrator) Counters() Counters {
	return Counters{
		Drops:     o.buffer.Drops(),
		Underruns: o.buffer.Underruns(),
		Rejects:   o.buffer.Rejects(),
		Reused:    o.reused.Load(),
	}
}

// Tick produces one frame. It never blocks and never returns nil: when the
// ring is empty (underrun, or a stopped source) the previous frame is
// re-emitted unchanged, so the renderer always has something to draw.
func (o *Orchestrator) Tick() *FrameData {
	o.state = StateIdle
	o.applyPendingCommands()
	mode := o.Mode()

	chunk, ok := o.buffer.Pop()
	if !ok {
		if o.ready {
			o.reused.Add(1)
			return &o.out
		}
		// Nothing produced yet: emit a silent frame of the right shape.
		chunk = o.silent
	}
	o.state = StateChunkAvailable

	o.frame++
	o.out.Frame = o.frame
	o.out.Chunk = chunk.Seq
	o.out.Mode = mode
	o.out.Name = mode.String()
	o.out.Bars = nil
	o.out.Waveform = nil
	o.out.Columns = nil

	if mode.SpectralMode() {
		o.tickSpectral(mode, chunk)
	} else {
		o.tickScope(chunk)
	}

	o.state = StateFrameReady
	o.ready = true
	return &o.out
}

func (o *Orchestrator) tickSpectral(mode Mode, chunk *Chunk) {
	spectra := o.analyzer.Analyze(chunk)
	bars := o.binner.Bin(spectra)
	o.state = StateAnalyzed

	bars = o.normSpec.Apply(bars)
	o.state = StateNormalized

	bars = o.smoothers[mode].Smooth(bars)
	o.state = StateSmoothed

	o.out.NormMode = o.normSpec.Mode().String()
	o.out.Scale = o.normSpec.Scale()

	if mode == ModeSpectrogram {
		o.history.Push(o.frame, bars)
		o.out.Columns = o.history.Snapshot()
	} else {
		o.out.Bars = bars
	}
}

func (o *Orchestrator) tickScope(chunk *Chunk) {
	wave := o.trigger.Align(chunk.Samples)
	o.state = StateAnalyzed

	wave = o.normWave.Apply(wave)
	o.state = StateNormalized
	o.state = StateSmoothed // scope traces skip smoothing

	o.out.NormMode = o.normWave.Mode().String()
	o.out.Scale = o.normWave.Scale()
	o.out.Waveform = wave
}

func (o *Orchestrator) applyPendingCommands() {
	o.cmdMu.Lock()
	pending := o.pendingScale
	o.pendingScale = nil
	o.cmdMu.Unlock()

	if pending == nil {
		return
	}
	if *pending == 0 {
		o.normSpec.SetAuto()
		o.normWave.SetAuto()
		applog.Debugf("pipeline: normalization set to auto")
		return
	}
	o.normSpec.SetManual(*pending)
	o.normWave.SetManual(*pending)
	applog.Debugf("pipeline: normalization set to manual %.1fx", *pending)
}
