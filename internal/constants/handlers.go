package constants

import "time"

// Status page constants
const (
	// ReadHeaderTimeout bounds how long the status server waits for request headers
	ReadHeaderTimeout = 10 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the status server
	ShutdownTimeout = 5 * time.Second

	// StaleFrameAfter is when the status page reports the camera as stalled
	StaleFrameAfter = 5 * time.Second
)
