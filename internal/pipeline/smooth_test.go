// SPDX-License-Identifier: MIT
package pipeline

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
)

func TestSmootherPassthroughAtAlphaOne(t *testing.T) {
	s := NewSmoother(1, 1, 4)

	s.Smooth([][]float64{{0.1, 0.2, 0.3, 0.4}})
	out := s.Smooth([][]float64{{0.9, 0.8, 0.7, 0.6}})

	want := []float64{0.9, 0.8, 0.7, 0.6}
	for i, v := range out[0] {
		if v != want[i] {
			t.Errorf("index %d: %g, expected %g (alpha=1 must not smooth)", i, v, want[i])
		}
	}
}

func TestSmootherFirstFramePassesThrough(t *testing.T) {
	s := NewSmoother(0.3, 1, 3)
	out := s.Smooth([][]float64{{0.5, 0.6, 0.7}})

	want := []float64{0.5, 0.6, 0.7}
	for i, v := range out[0] {
		if v != want[i] {
			t.Errorf("index %d: first frame %g, expected %g unchanged", i, v, want[i])
		}
	}
}

func TestSmootherNoOvershoot(t *testing.T) {
	// For any alpha in (0,1] and bounded input, output must stay within
	// [min(input), max(input)] over the whole sequence.
	for _, alpha := range []float64{0.01, 0.1, 0.5, 0.9, 1.0} {
		t.Run(fmt.Sprintf("alpha=%.2f", alpha), func(t *testing.T) {
			s := NewSmoother(alpha, 1, 8)
			rng := rand.New(rand.NewSource(42))

			lo, hi := 0.2, 0.8
			for frame := 0; frame < 500; frame++ {
				in := make([]float64, 8)
				for i := range in {
					in[i] = lo + rng.Float64()*(hi-lo)
				}
				out := s.Smooth([][]float64{in})
				for i, v := range out[0] {
					if v < lo-1e-12 || v > hi+1e-12 {
						t.Fatalf("frame %d index %d: %g outside [%g, %g]", frame, i, v, lo, hi)
					}
				}
			}
		})
	}
}

func TestSmootherConvergesToConstant(t *testing.T) {
	s := NewSmoother(0.3, 1, 1)

	s.Smooth([][]float64{{0.0}})
	var last float64
	for iter := 0; iter < 100; iter++ {
		last = s.Smooth([][]float64{{1.0}})[0][0]
	}
	if math.Abs(last-1.0) > 1e-6 {
		t.Errorf("after 100 constant frames: %g, expected ~1.0", last)
	}
}

func TestSmootherStableNearAlphaExtremes(t *testing.T) {
	// Alternating input must stay bounded and not oscillate beyond the
	// input range for alpha near 0 and near 1.
	for _, alpha := range []float64{1e-6, 1 - 1e-6} {
		s := NewSmoother(alpha, 1, 1)
		for frame := 0; frame < 1000; frame++ {
			v := 0.0
			if frame%2 == 0 {
				v = 1.0
			}
			out := s.Smooth([][]float64{{v}})[0][0]
			if out < -1e-9 || out > 1+1e-9 {
				t.Fatalf("alpha=%g frame %d: %g outside [0, 1]", alpha, frame, out)
			}
		}
	}
}

func TestSmootherResetReprimes(t *testing.T) {
	s := NewSmoother(0.2, 1, 2)
	s.Smooth([][]float64{{1.0, 1.0}})
	s.Smooth([][]float64{{0.0, 0.0}})

	s.Reset()
	out := s.Smooth([][]float64{{0.4, 0.5}})
	if out[0][0] != 0.4 || out[0][1] != 0.5 {
		t.Errorf("after Reset: %v, expected input passed through", out[0])
	}
}

func TestSmoothHotPathZeroAllocs(t *testing.T) {
	s := NewSmoother(0.5, testChannels, 32)
	planes := [][]float64{make([]float64, 32), make([]float64, 32)}

	s.Smooth(planes) // prime
	allocs := testing.AllocsPerRun(100, func() {
		s.Smooth(planes)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations in Smooth hot path, got %.1f", allocs)
	}
}
