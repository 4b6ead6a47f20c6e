// SPDX-License-Identifier: MIT
package pipeline

import (
	"sync"
	"sync/atomic"
)

// SampleBuffer is the bounded hand-off between the capture thread and the
// display tick. Push never blocks: when the ring is full the oldest unread
// chunk is dropped, trading completeness for predictable latency, since
// stale audio is useless for a live display. Pop never blocks either; an
// empty ring is reported to the caller, whose policy is to reuse the
// previous frame.
//
// The mutex guards only O(1) index updates. Chunks are stored by reference,
// never copied under the lock, so the capture callback cannot stall on a
// slow consumer.
type SampleBuffer struct {
	mu    sync.Mutex
	slots []*Chunk
	head  int // index of oldest unread chunk
	count int

	channels  int
	chunkSize int
	lastSeq   uint64

	drops     atomic.Uint64
	underruns atomic.Uint64
	rejects   atomic.Uint64
}

// NewSampleBuffer creates a ring holding up to capacity chunks of the given
// shape. Capacity is expected to be small (a few chunks).
func NewSampleBuffer(capacity, channels, chunkSize int) *SampleBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &SampleBuffer{
		slots:     make([]*Chunk, capacity),
		channels:  channels,
		chunkSize: chunkSize,
	}
}

// Push enqueues a chunk from the capture source. Malformed chunks (wrong
// channel count or plane length) and stale sequence numbers are rejected at
// this boundary and counted; the tick that would have consumed them sees an
// underrun instead. Returns false when the chunk was rejected.
func (b *SampleBuffer) Push(c *Chunk) bool {
	if !c.wellFormed(b.channels, b.chunkSize) {
		b.rejects.Add(1)
		return false
	}

	b.mu.Lock()
	if c.Seq <= b.lastSeq && b.lastSeq != 0 {
		b.mu.Unlock()
		b.rejects.Add(1)
		return false
	}
	b.lastSeq = c.Seq

	if b.count == len(b.slots) {
		// Full: overwrite policy, drop the oldest unread chunk.
		b.head = (b.head + 1) % len(b.slots)
		b.count--
		b.drops.Add(1)
	}
	tail := (b.head + b.count) % len(b.slots)
	b.slots[tail] = c
	b.count++
	b.mu.Unlock()
	return true
}

// Pop removes and returns the oldest retained chunk, so a draining consumer
// sees the surviving chunks in sequence order. Returns nil, false when the
// ring is empty (underrun); this is a normal condition, not an error.
func (b *SampleBuffer) Pop() (*Chunk, bool) {
	b.mu.Lock()
	if b.count == 0 {
		b.mu.Unlock()
		b.underruns.Add(1)
		return nil, false
	}
	c := b.slots[b.head]
	b.slots[b.head] = nil
	b.head = (b.head + 1) % len(b.slots)
	b.count--
	b.mu.Unlock()
	return c, true
}

// Len returns the number of unread chunks.
func (b *SampleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Drops returns how many chunks were overwritten before being read.
func (b *SampleBuffer) Drops() uint64 { return b.drops.Load() }

// Underruns returns how many pops found the ring empty.
func (b *SampleBuffer) Underruns() uint64 { return b.underruns.Load() }

// Rejects returns how many chunks failed shape or sequence validation.
func (b *SampleBuffer) Rejects() uint64 { return b.rejects.Load() }
