package kiosk

import (
	"context"
	"image"
	"time"

	"github.com/kozaktomas/cubescout/internal/presence"
)

// Frame is one captured video frame. The orchestrator closes every frame it pulls.
type Frame interface {
	Bounds() image.Rectangle
	Close() error
}

// Capture supplies frames. An error is fatal for the loop.
type Capture interface {
	NextFrame(ctx context.Context) (Frame, error)
}

// Detector finds face regions in a frame. An empty result is a normal outcome.
type Detector interface {
	FindFaces(frame Frame) ([]image.Rectangle, error)
}

// Recognizer identifies the face inside region. Implementations crop and
// normalize the region themselves.
type Recognizer interface {
	Predict(frame Frame, region image.Rectangle) (Prediction, error)
}

// Annotator draws a box and label for a region onto the frame.
type Annotator interface {
	Annotate(frame Frame, region image.Rectangle, label string) error
}

// Presenter shows a fully annotated frame.
type Presenter interface {
	Present(frame Frame) error
}

// Notifier delivers an arrival notification. Delivery is fire-and-forget.
type Notifier interface {
	Notify(title, body string) error
}

// SampleSink persists face crops. It is optional and unrelated to presence tracking.
type SampleSink interface {
	Save(frame Frame, region image.Rectangle) error
}

// ExitSignal is polled at the top of every loop iteration.
type ExitSignal interface {
	ExitRequested() bool
}

// Names resolves an identity to its display name.
type Names interface {
	Name(id presence.Identity) (string, bool)
}

// Clock supplies the time used to compute the delta between ticks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the monotonic wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
