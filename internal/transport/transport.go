// SPDX-License-Identifier: MIT

// Package transport streams rendered frames to display clients and feeds
// their control messages back into the pipeline.
package transport

import "visualizer/internal/pipeline"

// Transport delivers rendered frames to connected clients.
// Implementations must be safe to call from the frame loop goroutine and
// must never block it: a slow client loses frames, not the pipeline.
type Transport interface {
	Send(frame *pipeline.FrameData) error
	Close() error
}

// Controller receives client control messages. The pipeline orchestrator
// satisfies this.
type Controller interface {
	SetMode(mode pipeline.Mode)
	SetScale(scale float64) bool
}
