// SPDX-License-Identifier: MIT
package pipeline

import "math"

// Audible range covered by the bars. The upper edge is clamped to Nyquist
// for low sample rates.
const (
	binnerMinHz = 20.0
	binnerMaxHz = 20000.0
)

// FrequencyBinner maps the linear FFT bins onto a fixed number of
// logarithmically spaced display bars. Bar edges are computed once per
// configuration; each call then runs in O(bins).
//
// Every bar receives a value on every call: a bar's value is the average of
// the linear bins whose center frequency falls inside its [low, high) range,
// and a bar too narrow to contain any bin (possible at small FFT sizes)
// borrows the single nearest bin instead of being left undefined.
type FrequencyBinner struct {
	barCount int
	lo, hi   []int       // per-bar linear bin range [lo, hi)
	edges    []float64   // barCount+1 edge frequencies, for labeling
	bars     [][]float64 // workspace, one plane per channel
}

// NewFrequencyBinner precomputes the bar-to-bin mapping for the given
// analyzer shape.
func NewFrequencyBinner(channels, barCount, fftSize int, sampleRate float64) *FrequencyBinner {
	nyquist := sampleRate / 2
	maxHz := math.Min(binnerMaxHz, nyquist)
	binHz := sampleRate / float64(fftSize)
	bins := fftSize/2 + 1

	edges := make([]float64, barCount+1)
	ratio := maxHz / binnerMinHz
	for b := range edges {
		edges[b] = binnerMinHz * math.Pow(ratio, float64(b)/float64(barCount))
	}

	lo := make([]int, barCount)
	hi := make([]int, barCount)
	for b := 0; b < barCount; b++ {
		// First bin at or above the low edge, first bin at or above the
		// high edge; [lo, hi) then covers exactly the bins whose center
		// falls inside the bar.
		l := int(math.Ceil(edges[b] / binHz))
		h := int(math.Ceil(edges[b+1] / binHz))
		if l < 0 {
			l = 0
		}
		if h > bins {
			h = bins
		}
		if l >= h {
			// Empty bar: borrow the bin nearest the bar's center frequency.
			center := math.Sqrt(edges[b] * edges[b+1])
			n := int(math.Round(center / binHz))
			if n < 0 {
				n = 0
			}
			if n > bins-1 {
				n = bins - 1
			}
			l, h = n, n+1
		}
		lo[b], hi[b] = l, h
	}

	bars := make([][]float64, channels)
	for c := range bars {
		bars[c] = make([]float64, barCount)
	}

	return &FrequencyBinner{barCount: barCount, lo: lo, hi: hi, edges: edges, bars: bars}
}

// Bin aggregates per-channel magnitude spectra into per-channel bar values.
// The returned planes are workspace owned by the binner, valid until the
// next call. Output values are finite and non-negative whenever the input
// magnitudes are.
func (fb *FrequencyBinner) Bin(spectra [][]float64) [][]float64 {
	for ch, mags := range spectra {
		out := fb.bars[ch]
		for b := 0; b < fb.barCount; b++ {
			sum := 0.0
			for i := fb.lo[b]; i < fb.hi[b]; i++ {
				sum += mags[i]
			}
			out[b] = sum / float64(fb.hi[b]-fb.lo[b])
		}
	}
	return fb.bars
}

// BarRange returns the [low, high) frequency range in Hz covered by bar b.
func (fb *FrequencyBinner) BarRange(b int) (float64, float64) {
	if b < 0 || b >= fb.barCount {
		return 0, 0
	}
	return fb.edges[b], fb.edges[b+1]
}

// BarFor returns the index of the bar whose range contains freq, or -1 when
// freq lies outside the covered range.
func (fb *FrequencyBinner) BarFor(freq float64) int {
	for b := 0; b < fb.barCount; b++ {
		if freq >= fb.edges[b] && freq < fb.edges[b+1] {
			return b
		}
	}
	return -1
}
