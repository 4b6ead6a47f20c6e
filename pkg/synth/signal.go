// SPDX-License-Identifier: MIT

// Package synth generates deterministic test signals for the analysis
// pipeline. Samples are float64 in [-1, 1].
package synth

import "math"

// Sine returns n samples of a pure sine wave at the given frequency and
// sample rate, scaled to 90% of full range to leave headroom.
func Sine(n int, sampleRate, frequency float64) []float64 {
	buf := make([]float64, n)
	for i := range buf {
		t := float64(i) / sampleRate
		buf[i] = math.Sin(2*math.Pi*frequency*t) * 0.9
	}
	return buf
}

// SineWithOffset returns a sine wave with a DC offset added, clamped to
// [-1, 1]. Useful for exercising trigger behavior on biased input.
func SineWithOffset(n int, sampleRate, frequency, offset float64) []float64 {
	buf := Sine(n, sampleRate, frequency)
	for i := range buf {
		v := buf[i]*0.5 + offset
		buf[i] = math.Max(-1, math.Min(1, v))
	}
	return buf
}

// ComplexWave returns n samples of a 440Hz fundamental plus two harmonics,
// a richer signal than a pure tone for spectrum tests.
func ComplexWave(n int, sampleRate float64) []float64 {
	buf := make([]float64, n)
	for i := range buf {
		t := float64(i) / sampleRate
		buf[i] = math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
	}
	return buf
}

// Stereo duplicates a mono signal into two channel planes.
func Stereo(mono []float64) [][]float64 {
	right := make([]float64, len(mono))
	copy(right, mono)
	return [][]float64{mono, right}
}

// Silence returns channels planes of n zero samples each.
func Silence(channels, n int) [][]float64 {
	planes := make([][]float64, channels)
	for c := range planes {
		planes[c] = make([]float64, n)
	}
	return planes
}

// PeakIndex returns the index of the largest value in values[start:end+1].
// Bounds are clamped to the slice.
func PeakIndex(values []float64, start, end int) int {
	if len(values) == 0 {
		return 0
	}
	if start < 0 {
		start = 0
	}
	if end >= len(values) {
		end = len(values) - 1
	}
	peak := start
	for i := start + 1; i <= end; i++ {
		if values[i] > values[peak] {
			peak = i
		}
	}
	return peak
}
