package vision

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"golang.org/x/time/rate"

	"github.com/kozaktomas/cubescout/internal/config"
	"github.com/kozaktomas/cubescout/internal/constants"
	"github.com/kozaktomas/cubescout/internal/kiosk"
)

// SampleWriter saves colour face crops, resized to a square, for building a
// training set. Writes beyond the configured rate are dropped.
type SampleWriter struct {
	dir     string
	size    image.Point
	runID   string
	counter atomic.Uint64
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewSampleWriter(cfg config.SamplesConfig, logger *zap.Logger) (*SampleWriter, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create samples directory: %w", err)
	}

	return &SampleWriter{
		dir:     cfg.Dir,
		size:    image.Pt(cfg.Size, cfg.Size),
		runID:   uuid.NewString()[:8],
		limiter: rate.NewLimiter(rate.Every(time.Duration(float64(time.Second)/cfg.PerSecond)), 1),
		logger:  logger,
	}, nil
}

func (s *SampleWriter) Save(f kiosk.Frame, region image.Rectangle) error {
	if !s.limiter.Allow() {
		return nil
	}

	mat, err := matOf(f)
	if err != nil {
		return err
	}

	crop := mat.Region(region)
	defer crop.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(crop, &resized, s.size, 0, 0, gocv.InterpolationCubic)

	n := s.counter.Add(1) - 1
	path := filepath.Join(s.dir, fmt.Sprintf("sample-%s-%d%s", s.runID, n, constants.SampleExtension))
	if !gocv.IMWrite(path, resized) {
		return fmt.Errorf("failed to write sample %s", path)
	}

	s.logger.Debug("Saved face sample", zap.String("path", path))
	return nil
}
