// SPDX-License-Identifier: MIT
package pipeline

// Smoother applies a per-element exponential moving average across frames:
//
//	out[i] = alpha*cur[i] + (1-alpha)*prev[i]
//
// where prev is the smoother's own last output, not raw history. alpha=1 is
// a passthrough; smaller alpha trades responsiveness for visual stability.
// The convex combination cannot overshoot the input range for any alpha in
// (0, 1].
//
// Each visualization mode owns its own Smoother so switching modes does not
// bleed one mode's history into another.
type Smoother struct {
	alpha  float64
	prev   [][]float64
	primed bool
}

// NewSmoother allocates feedback buffers for the given shape.
func NewSmoother(alpha float64, channels, size int) *Smoother {
	prev := make([][]float64, channels)
	for c := range prev {
		prev[c] = make([]float64, size)
	}
	return &Smoother{alpha: alpha, prev: prev}
}

// Smooth blends the current planes with the feedback state in place and
// returns them. The first call passes the input through unchanged and
// primes the feedback, avoiding a visible ramp from zero.
func (s *Smoother) Smooth(cur [][]float64) [][]float64 {
	if !s.primed {
		for c, plane := range cur {
			copy(s.prev[c], plane)
		}
		s.primed = true
		return cur
	}

	a := s.alpha
	for c, plane := range cur {
		prev := s.prev[c]
		for i, v := range plane {
			v = a*v + (1-a)*prev[i]
			plane[i] = v
			prev[i] = v
		}
	}
	return cur
}

// Reset clears the feedback so the next frame passes through unchanged.
func (s *Smoother) Reset() {
	s.primed = false
}
