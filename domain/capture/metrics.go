package capture

import "time"

// CaptureStats summarises shooter behaviour for instrumentation.
type CaptureStats struct {
	Captures         uint64
	Failures         uint64
	Rejected         uint64
	AvgCapture       time.Duration
	AvgCaptureMicros float64
	LastCapture      time.Time
	LastCaptureAge   time.Duration
}
