// SPDX-License-Identifier: MIT
package pipeline

import "fmt"

// Mode is the closed set of visualization modes. The orchestrator switches
// on the tag to select the analysis path; there is no dynamic dispatch on
// frame shapes.
type Mode int32

const (
	ModeBars Mode = iota
	ModeCurve
	ModeSpectrogram
	ModeScope
)

func (m Mode) String() string {
	switch m {
	case ModeBars:
		return "bars"
	case ModeCurve:
		return "curve"
	case ModeSpectrogram:
		return "spectrogram"
	case ModeScope:
		return "scope"
	default:
		return "unknown"
	}
}

// SpectralMode reports whether the mode consumes binned spectrum data
// rather than the raw waveform.
func (m Mode) SpectralMode() bool {
	return m != ModeScope
}

// ParseMode converts a mode name to its tag.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "bars":
		return ModeBars, nil
	case "curve", "line":
		return ModeCurve, nil
	case "spectrogram":
		return ModeSpectrogram, nil
	case "scope", "oscilloscope", "wave":
		return ModeScope, nil
	default:
		return ModeBars, fmt.Errorf("unknown mode %q", s)
	}
}

// FrameData is one display frame handed to the renderer. Exactly one of the
// payload fields is populated, selected by Mode: Bars for bars/curve,
// Columns for spectrogram, Waveform for scope. The renderer must treat the
// payload as read-only; the pipeline reuses the underlying buffers.
type FrameData struct {
	Mode  Mode   `json:"-"`
	Name  string `json:"mode"`
	Frame uint64 `json:"frame"` // display frame index
	Chunk uint64 `json:"chunk"` // sequence number of the source chunk

	Bars     [][]float64         `json:"bars,omitempty"`
	Waveform [][]float64         `json:"waveform,omitempty"`
	Columns  []SpectrogramColumn `json:"columns,omitempty"`

	NormMode string  `json:"norm_mode"`
	Scale    float64 `json:"scale"`
}
