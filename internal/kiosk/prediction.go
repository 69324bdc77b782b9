package kiosk

import (
	"fmt"

	"github.com/kozaktomas/cubescout/internal/presence"
)

// Prediction is the recognizer outcome for one region: either Matched with an
// identity, or Unmatched. Distance is the recognizer's non-negative distance metric.
type Prediction struct {
	identity presence.Identity
	matched  bool
	Distance float64
}

// Matched returns a prediction for a recognized identity.
func Matched(id presence.Identity, distance float64) Prediction {
	return Prediction{identity: id, matched: true, Distance: distance}
}

// Unmatched returns a prediction for a face the recognizer could not place.
func Unmatched(distance float64) Prediction {
	return Prediction{Distance: distance}
}

// Identity returns the matched identity and true, or false for an unmatched prediction.
func (p Prediction) Identity() (presence.Identity, bool) {
	return p.identity, p.matched
}

func (p Prediction) String() string {
	if !p.matched {
		return fmt.Sprintf("unmatched(%.1f)", p.Distance)
	}
	return fmt.Sprintf("matched(%s, %.1f)", p.identity, p.Distance)
}

// Classify builds a prediction from a raw recognizer label. Negative labels are
// the recognizer's own "no match". A positive threshold additionally rejects
// any distance above it.
func Classify(label int, distance, threshold float64) Prediction {
	if label < 0 || (threshold > 0 && distance > threshold) {
		return Unmatched(distance)
	}
	return Matched(presence.Identity(label), distance)
}
