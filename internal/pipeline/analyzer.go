// SPDX-License-Identifier: MIT
package pipeline

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// SpectrumAnalyzer computes a per-channel magnitude spectrum from one chunk.
// A Hann window of chunk length is applied before the transform; when the
// FFT size exceeds the chunk size the windowed signal is zero-padded.
// Successive chunks are analyzed independently, without overlap.
//
// Magnitudes are normalized by the window's coherent gain (sum of the
// coefficients), so a full-scale sine produces a peak near 1.0 regardless
// of chunk size or FFT size. That keeps downstream scale factors stable
// across configuration changes.
//
// The operation order is fixed, so identical input and configuration yield
// bit-identical output.
type SpectrumAnalyzer struct {
	chunkSize int
	fftSize   int
	fft       *fourier.FFT
	coeffs    []float64 // Hann window, chunkSize long
	gain      float64   // sum of window coefficients

	// Workspace, reused every call.
	input    []float64
	output   []complex128
	spectrum [][]float64
}

// NewSpectrumAnalyzer pre-computes the window and allocates all workspace.
// Shape constraints (power-of-two FFT, fftSize >= chunkSize) are enforced by
// config validation before construction.
func NewSpectrumAnalyzer(channels, chunkSize, fftSize int) *SpectrumAnalyzer {
	coeffs := make([]float64, chunkSize)
	for i := range coeffs {
		coeffs[i] = 1
	}
	window.Hann(coeffs)

	gain := 0.0
	for _, w := range coeffs {
		gain += w
	}

	bins := fftSize/2 + 1
	spectrum := make([][]float64, channels)
	for c := range spectrum {
		spectrum[c] = make([]float64, bins)
	}

	return &SpectrumAnalyzer{
		chunkSize: chunkSize,
		fftSize:   fftSize,
		fft:       fourier.NewFFT(fftSize),
		coeffs:    coeffs,
		gain:      gain,
		input:     make([]float64, fftSize),
		output:    make([]complex128, bins),
		spectrum:  spectrum,
	}
}

// Bins returns the number of magnitude bins per channel (fftSize/2 + 1).
func (a *SpectrumAnalyzer) Bins() int { return a.fftSize/2 + 1 }

// Analyze transforms each channel of the chunk and returns the per-channel
// magnitude spectra. The returned slices are workspace owned by the
// analyzer and are valid until the next call.
func (a *SpectrumAnalyzer) Analyze(c *Chunk) [][]float64 {
	for ch, plane := range c.Samples {
		for i := 0; i < a.fftSize; i++ {
			if i < a.chunkSize {
				a.input[i] = plane[i] * a.coeffs[i]
			} else {
				a.input[i] = 0
			}
		}

		a.fft.Coefficients(a.output, a.input)

		// Single-sided amplitude: interior bins carry energy from both
		// halves of the transform, DC and Nyquist do not.
		mags := a.spectrum[ch]
		n := len(a.output)
		for i, v := range a.output {
			m := cmplx.Abs(v) / a.gain
			if i > 0 && i < n-1 {
				m *= 2
			}
			mags[i] = m
		}
	}
	return a.spectrum
}

// BinFrequency returns the center frequency in Hz of linear bin i at the
// given sample rate.
func (a *SpectrumAnalyzer) BinFrequency(i int, sampleRate float64) float64 {
	if i < 0 || i >= a.Bins() {
		return 0
	}
	return float64(i) * sampleRate / float64(a.fftSize)
}
