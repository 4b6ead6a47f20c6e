// SPDX-License-Identifier: MIT
package pipeline

import "math"

// NormMode selects between adaptive and fixed gain.
type NormMode int

const (
	NormAuto NormMode = iota
	NormManual
)

func (m NormMode) String() string {
	if m == NormManual {
		return "manual"
	}
	return "auto"
}

// Peak follower tuning. Attack is instant; release decays the tracked peak
// geometrically toward the current frame so transients never clip but quiet
// passages recover over a couple of seconds at 30fps.
const (
	peakDecay = 0.995
	peakFloor = 1e-4
)

// Normalizer scales frame values into a bounded display range. In manual
// mode every value is multiplied by a fixed factor from the configured
// enumeration. In auto mode a peak follower tracks the recent maximum and
// the scale is its reciprocal, floored before division so silence can never
// produce a non-finite value.
//
// Each data stream (spectrum bars, oscilloscope waveform) owns its own
// Normalizer; the follower state is mutated once per frame by the
// orchestrator's single thread.
type Normalizer struct {
	mode   NormMode
	manual float64
	floor  float64

	tracked float64 // followed peak, auto mode only
}

// NewNormalizer creates an auto-mode normalizer with the given silence
// floor. The floor bounds the scale to 1/floor on silent input.
func NewNormalizer(floor float64) *Normalizer {
	if floor <= 0 {
		floor = peakFloor
	}
	return &Normalizer{mode: NormAuto, manual: 1, floor: floor, tracked: floor}
}

// SetManual switches to manual mode with the given multiplier.
func (n *Normalizer) SetManual(factor float64) {
	n.mode = NormManual
	n.manual = factor
}

// SetAuto switches back to adaptive normalization. The follower resumes
// from its previous peak rather than re-converging from scratch.
func (n *Normalizer) SetAuto() {
	n.mode = NormAuto
}

// Mode returns the current normalization mode.
func (n *Normalizer) Mode() NormMode { return n.mode }

// Scale returns the factor that the next Apply would use, for on-screen
// display alongside the frame.
func (n *Normalizer) Scale() float64 {
	if n.mode == NormManual {
		return n.manual
	}
	return 1 / math.Max(n.tracked, n.floor)
}

// Apply scales all channel planes in place and returns them. In auto mode
// the follower snaps up to a louder frame immediately and decays slowly
// otherwise, held above both the floor and half the current peak so the
// display neither flickers nor blows up when the signal fades.
func (n *Normalizer) Apply(values [][]float64) [][]float64 {
	if n.mode == NormManual {
		for _, plane := range values {
			for i := range plane {
				plane[i] *= n.manual
			}
		}
		return values
	}

	peak := 0.0
	for _, plane := range values {
		for _, v := range plane {
			a := math.Abs(v)
			if a > peak {
				peak = a
			}
		}
	}

	if peak > n.tracked {
		n.tracked = peak
	} else {
		n.tracked = math.Max(n.tracked*peakDecay, math.Max(peak*0.5, n.floor))
	}

	scale := 1 / math.Max(n.tracked, n.floor)
	for _, plane := range values {
		for i := range plane {
			plane[i] *= scale
		}
	}
	return values
}
