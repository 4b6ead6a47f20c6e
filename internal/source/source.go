// SPDX-License-Identifier: MIT

// Package source provides the audio capture collaborators that feed the
// pipeline's hand-off ring: live input through PortAudio and WAV file
// playback. Sources run in their own timing domain and never wait on the
// consumer; a full ring simply drops the oldest pending chunk.
package source

// Source is an audio producer that pushes fixed-size chunks into the
// pipeline until stopped.
type Source interface {
	// Start begins producing chunks. It returns once production is
	// running; capture happens on the source's own thread or callback.
	Start() error

	// Stop ends production. The pipeline tolerates the hand-off ring
	// going permanently empty, so Stop needs no coordination with the
	// consumer.
	Stop() error
}
