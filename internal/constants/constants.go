// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Display constants
const (
	// EscapeKey is the key code that closes the kiosk window
	EscapeKey = 27

	// WaitKeyMillis is how long the window waits for a key press after each frame
	WaitKeyMillis = 10

	// LabelFontScale is the Hershey font scale used for face labels
	LabelFontScale = 2.0

	// BoxThickness is the stroke width of face boxes
	BoxThickness = 3

	// LabelThickness is the stroke width of face labels
	LabelThickness = 2

	// LabelOffset is the gap between a face box and its label
	LabelOffset = 10

	// WindowTitle is the name of the OpenCV window
	WindowTitle = "cubescout"
)

// Processing constants
const (
	// SampleExtension is the file extension of saved face crops
	SampleExtension = ".jpg"

	// PreviewJPEGQuality is the JPEG quality used for the status page frame
	PreviewJPEGQuality = 80
)
