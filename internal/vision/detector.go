package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/kozaktomas/cubescout/internal/config"
	"github.com/kozaktomas/cubescout/internal/kiosk"
	"github.com/kozaktomas/cubescout/internal/presence"
)

// cascadeScaleImage is CASCADE_SCALE_IMAGE.
const cascadeScaleImage = 2

// Detector finds faces with a Haar cascade.
type Detector struct {
	cascade gocv.CascadeClassifier
	cfg     config.DetectorConfig
}

// NewDetector loads the cascade XML at path.
func NewDetector(path string, cfg config.DetectorConfig) (*Detector, error) {
	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(path) {
		cascade.Close()
		return nil, fmt.Errorf("%w: failed to load face cascade %s", presence.ErrConfiguration, path)
	}
	return &Detector{cascade: cascade, cfg: cfg}, nil
}

func (d *Detector) FindFaces(f kiosk.Frame) ([]image.Rectangle, error) {
	mat, err := matOf(f)
	if err != nil {
		return nil, err
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(*mat, &gray, gocv.ColorBGRToGray)

	minSize := image.Pt(d.cfg.MinSize, d.cfg.MinSize)
	return d.cascade.DetectMultiScaleWithParams(gray, d.cfg.ScaleFactor, d.cfg.MinNeighbors,
		cascadeScaleImage, minSize, image.Pt(0, 0)), nil
}

func (d *Detector) Close() error {
	return d.cascade.Close()
}
