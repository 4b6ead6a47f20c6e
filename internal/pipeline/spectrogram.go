// SPDX-License-Identifier: MIT
package pipeline

// SpectrogramColumn is one spectrum frame tagged with the display frame
// index that produced it.
type SpectrogramColumn struct {
	Frame uint64      `json:"frame"`
	Bars  [][]float64 `json:"bars"`
}

// SpectrogramHistory is a fixed-depth rolling window of the most recent
// spectrum columns. It is backed by a ring indexed by write position modulo
// depth, so a push costs O(barCount) regardless of depth. The ring is
// pre-filled with silence columns, keeping the window length exactly depth
// from the first frame on.
type SpectrogramHistory struct {
	depth    int
	columns  []SpectrogramColumn
	write    int // next slot to overwrite, also the oldest column
	snapshot []SpectrogramColumn
}

// NewSpectrogramHistory allocates all depth columns up front; pushes reuse
// the slot storage.
func NewSpectrogramHistory(depth, channels, barCount int) *SpectrogramHistory {
	columns := make([]SpectrogramColumn, depth)
	for i := range columns {
		bars := make([][]float64, channels)
		for c := range bars {
			bars[c] = make([]float64, barCount)
		}
		columns[i] = SpectrogramColumn{Bars: bars}
	}
	return &SpectrogramHistory{
		depth:    depth,
		columns:  columns,
		snapshot: make([]SpectrogramColumn, depth),
	}
}

// Depth returns the fixed window length.
func (h *SpectrogramHistory) Depth() int { return h.depth }

// Push copies the newest bar planes into the oldest slot, evicting it.
func (h *SpectrogramHistory) Push(frame uint64, bars [][]float64) {
	col := &h.columns[h.write]
	col.Frame = frame
	for c, plane := range bars {
		copy(col.Bars[c], plane)
	}
	h.write = (h.write + 1) % h.depth
}

// Snapshot returns the window ordered oldest first, hiding the ring's
// wrap-around. The returned slice and its columns are owned by the history
// and valid until the next Push; the renderer must not mutate them.
func (h *SpectrogramHistory) Snapshot() []SpectrogramColumn {
	for i := 0; i < h.depth; i++ {
		h.snapshot[i] = h.columns[(h.write+i)%h.depth]
	}
	return h.snapshot
}
