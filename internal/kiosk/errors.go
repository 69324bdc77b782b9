package kiosk

import "errors"

// ErrCaptureFailed wraps frame-source failures. It terminates the loop.
var ErrCaptureFailed = errors.New("frame capture failed")
