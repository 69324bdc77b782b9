// Package preview keeps the most recent annotated frame as a JPEG for the
// status page.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/cubescout/internal/constants"
)

// Snapshot is one encoded frame.
type Snapshot struct {
	JPEG       []byte
	Width      int
	Height     int
	CapturedAt time.Time
}

// Fit scales width x height down to fit within maxSize while keeping the aspect
// ratio. Images that already fit are returned unchanged.
func Fit(width, height, maxSize int) (int, int) {
	if width <= maxSize && height <= maxSize {
		return width, height
	}
	if width > height {
		return maxSize, max(1, int(float64(height)*float64(maxSize)/float64(width)))
	}
	return max(1, int(float64(width)*float64(maxSize)/float64(height))), maxSize
}

// Encode downscales img to fit within maxSize and encodes it as JPEG.
func Encode(img image.Image, maxSize int) ([]byte, image.Rectangle, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, image.Rectangle{}, errors.New("empty image")
	}

	var src image.Image = img
	width, height := Fit(bounds.Dx(), bounds.Dy(), maxSize)
	if width != bounds.Dx() || height != bounds.Dy() {
		resized := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.BiLinear.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		src = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: constants.PreviewJPEGQuality}); err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("failed to encode preview: %w", err)
	}
	return buf.Bytes(), image.Rect(0, 0, width, height), nil
}

// Store holds the latest snapshot. It is written by the frame loop and read by
// HTTP handlers.
type Store struct {
	mu      sync.RWMutex
	maxSize int
	latest  *Snapshot
	now     func() time.Time
}

// NewStore creates a store that downscales frames to maxSize.
func NewStore(maxSize int) *Store {
	return &Store{maxSize: maxSize, now: time.Now}
}

// Publish encodes img and replaces the latest snapshot.
func (s *Store) Publish(img image.Image) error {
	data, rect, err := Encode(img, s.maxSize)
	if err != nil {
		return err
	}

	snap := &Snapshot{
		JPEG:       data,
		Width:      rect.Dx(),
		Height:     rect.Dy(),
		CapturedAt: s.now(),
	}

	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
	return nil
}

// Latest returns the most recent snapshot, if any frame was published.
func (s *Store) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Snapshot{}, false
	}
	return *s.latest, true
}
