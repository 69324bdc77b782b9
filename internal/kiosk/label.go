package kiosk

import (
	"fmt"
	"math"
)

// DistanceScale is the recognizer distance that maps to 0% confidence.
// It matches the LBPH histogram distance range; another recognizer needs its own scale.
const DistanceScale = 255.0

// ConfidencePercent converts a recognizer distance into a 0-100 score.
func ConfidencePercent(distance float64) int {
	pct := 100 - int(math.Floor(distance/DistanceScale*100))
	return max(0, min(100, pct))
}

// Label is the annotation text for a recognized face, e.g. "Alice:87%".
func Label(name string, distance float64) string {
	return fmt.Sprintf("%s:%d%%", name, ConfidencePercent(distance))
}
