package vision

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	"github.com/kozaktomas/cubescout/internal/config"
	"github.com/kozaktomas/cubescout/internal/kiosk"
	"github.com/kozaktomas/cubescout/internal/presence"
	"github.com/kozaktomas/cubescout/internal/registry"
)

// Recognizer predicts identities with an LBPH face model.
type Recognizer struct {
	mu        sync.Mutex
	model     *contrib.LBPHFaceRecognizer
	faceSize  image.Point
	threshold float64
}

// TrainRecognizer loads every manifest image in grayscale and trains an LBPH
// model on them. Unreadable images are skipped. Faces are later resized to the
// dimensions of the first readable image.
//
// When cfg.ModelPath points to an existing file the model is loaded from it
// instead of training; a fresh model is saved there after training.
func TrainRecognizer(m *registry.Manifest, cfg config.RecognizerConfig, logger *zap.Logger) (*Recognizer, error) {
	images, labels, err := loadTrainingImages(m, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		for i := range images {
			images[i].Close()
		}
	}()

	r := &Recognizer{
		model:     contrib.NewLBPHFaceRecognizer(),
		faceSize:  image.Pt(images[0].Cols(), images[0].Rows()),
		threshold: cfg.Threshold,
	}
	if cfg.Threshold > 0 {
		r.model.SetThreshold(float32(cfg.Threshold))
	}

	if cfg.ModelPath != "" {
		if _, err := os.Stat(cfg.ModelPath); err == nil {
			r.model.LoadFile(cfg.ModelPath)
			logger.Info("Loaded face model", zap.String("path", cfg.ModelPath))
			return r, nil
		}
	}

	fmt.Println("Training face recognizer...")
	r.model.Train(images, labels)

	if cfg.ModelPath != "" {
		r.model.SaveFile(cfg.ModelPath)
		logger.Info("Saved face model", zap.String("path", cfg.ModelPath))
	}

	logger.Info("Face recognizer ready",
		zap.Int("images", len(images)),
		zap.Stringer("face_size", r.faceSize),
	)
	return r, nil
}

func loadTrainingImages(m *registry.Manifest, logger *zap.Logger) ([]gocv.Mat, []int, error) {
	bar := progressbar.NewOptions(len(m.Entries),
		progressbar.OptionSetDescription("Loading training data"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var (
		images []gocv.Mat
		labels []int
		size   image.Point
	)
	for _, entry := range m.Entries {
		_ = bar.Add(1)

		img := gocv.IMRead(entry.Path, gocv.IMReadGrayScale)
		if img.Empty() {
			img.Close()
			logger.Warn("Skipping unreadable training image", zap.String("path", entry.Path))
			continue
		}

		if len(images) == 0 {
			size = image.Pt(img.Cols(), img.Rows())
		} else if img.Cols() != size.X || img.Rows() != size.Y {
			resized := gocv.NewMat()
			gocv.Resize(img, &resized, size, 0, 0, gocv.InterpolationCubic)
			img.Close()
			img = resized
		}

		images = append(images, img)
		labels = append(labels, int(entry.Label))
	}
	_ = bar.Finish()
	fmt.Println()

	if len(images) == 0 {
		return nil, nil, fmt.Errorf("%w: no readable training images", presence.ErrConfiguration)
	}
	return images, labels, nil
}

func (r *Recognizer) Predict(f kiosk.Frame, region image.Rectangle) (kiosk.Prediction, error) {
	mat, err := matOf(f)
	if err != nil {
		return kiosk.Prediction{}, err
	}
	if region.Empty() {
		return kiosk.Prediction{}, errors.New("empty face region")
	}

	face := grayFace(*mat, region, r.faceSize)
	defer face.Close()

	r.mu.Lock()
	resp := r.model.PredictExtendedResponse(face)
	r.mu.Unlock()

	return kiosk.Classify(int(resp.Label), float64(resp.Confidence), r.threshold), nil
}
