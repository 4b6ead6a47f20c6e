// SPDX-License-Identifier: MIT
package pipeline

// TriggerDetector stabilizes the oscilloscope trace by starting it at a
// rising zero crossing of the reference channel. The search is bounded to
// the first half of the chunk so a full display width remains after the
// trigger point; if no crossing is found there (silence, DC offset) the
// trace starts at the buffer head unchanged. Detection is stateless across
// frames, trading perfect inter-frame phase stability for simplicity.
type TriggerDetector struct {
	refChannel int
	aligned    [][]float64 // workspace
}

// NewTriggerDetector aligns on the given reference channel (typically 0,
// the left channel).
func NewTriggerDetector(refChannel, channels, chunkSize int) *TriggerDetector {
	aligned := make([][]float64, channels)
	for c := range aligned {
		aligned[c] = make([]float64, chunkSize)
	}
	return &TriggerDetector{refChannel: refChannel, aligned: aligned}
}

// Align rotates all channel planes so they start at the trigger point,
// wrapping the head of the buffer onto the tail to keep the full display
// width. The returned planes are workspace owned by the detector, valid
// until the next call.
func (t *TriggerDetector) Align(samples [][]float64) [][]float64 {
	idx := t.findTrigger(samples[t.refChannel])
	for c, plane := range samples {
		out := t.aligned[c]
		n := copy(out, plane[idx:])
		copy(out[n:], plane[:idx])
	}
	return t.aligned
}

// findTrigger scans the first half of the reference channel for a
// negative-to-non-negative transition and returns the index of the first
// sample at or above zero. Returns 0 when no crossing exists in the window.
func (t *TriggerDetector) findTrigger(ref []float64) int {
	half := len(ref) / 2
	for i := 0; i+1 < len(ref) && i < half; i++ {
		if ref[i] < 0 && ref[i+1] >= 0 {
			return i + 1
		}
	}
	return 0
}
