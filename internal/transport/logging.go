// SPDX-License-Identifier: MIT
package transport

import (
	applog "visualizer/internal/log"
	"visualizer/internal/pipeline"
)

// LoggingTransport summarizes each frame on the debug log instead of
// shipping it anywhere. Useful for running the pipeline headless.
type LoggingTransport struct{}

var _ Transport = (*LoggingTransport)(nil)

func NewLoggingTransport() *LoggingTransport {
	applog.Infof("transport: using logging transport")
	return &LoggingTransport{}
}

// Send logs a one-line frame summary.
func (lt *LoggingTransport) Send(frame *pipeline.FrameData) error {
	peak := 0.0
	for _, plane := range frame.Bars {
		for _, v := range plane {
			if v > peak {
				peak = v
			}
		}
	}
	applog.Debugf("frame %d: mode=%s chunk=%d peak=%.3f scale=%.2f",
		frame.Frame, frame.Name, frame.Chunk, peak, frame.Scale)
	return nil
}

// Close is a no-op.
func (lt *LoggingTransport) Close() error {
	return nil
}
