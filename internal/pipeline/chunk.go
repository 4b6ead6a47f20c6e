// SPDX-License-Identifier: MIT

/*
Package pipeline turns a stream of stereo sample chunks into display frames:
bars, a smoothed curve, a scrolling spectrogram, or a triggered oscilloscope
trace.

The capture source and the display loop run at independent rates. Their only
meeting point is the SampleBuffer, a bounded overwrite-oldest ring; every
other component runs single-threaded inside the display tick, driven by the
Orchestrator. Buffers are pre-allocated at construction so the per-tick path
performs no allocations.
*/
package pipeline

// Chunk is one fixed-length block of audio delivered by a capture source.
// Samples holds one plane per channel, each ChunkSize long, normalized to
// [-1, 1]. A Chunk is immutable once pushed; Seq is strictly increasing per
// source and a gap signals dropped data upstream.
type Chunk struct {
	Seq        uint64
	SampleRate float64
	Samples    [][]float64
}

// NewChunk allocates an empty chunk with the given shape.
func NewChunk(seq uint64, sampleRate float64, channels, size int) *Chunk {
	planes := make([][]float64, channels)
	for c := range planes {
		planes[c] = make([]float64, size)
	}
	return &Chunk{Seq: seq, SampleRate: sampleRate, Samples: planes}
}

// wellFormed reports whether the chunk matches the configured shape.
func (c *Chunk) wellFormed(channels, size int) bool {
	if c == nil || len(c.Samples) != channels {
		return false
	}
	for _, plane := range c.Samples {
		if len(plane) != size {
			return false
		}
	}
	return true
}
