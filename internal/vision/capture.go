package vision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/kozaktomas/cubescout/internal/kiosk"
)

// Capture reads frames from a webcam or a video file.
type Capture struct {
	source string
	vc     *gocv.VideoCapture
}

// OpenCapture opens source. Existing files are read as video; a number is a
// camera device index; anything else (e.g. a stream URL) is passed to OpenCV as is.
func OpenCapture(source string) (*Capture, error) {
	var (
		vc  *gocv.VideoCapture
		err error
	)
	if _, statErr := os.Stat(source); statErr == nil {
		vc, err = gocv.VideoCaptureFile(source)
	} else if id, convErr := strconv.Atoi(source); convErr == nil {
		vc, err = gocv.VideoCaptureDevice(id)
	} else {
		vc, err = gocv.VideoCaptureFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open capture %q: %w", source, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("capture %q is not available", source)
	}
	return &Capture{source: source, vc: vc}, nil
}

// NextFrame blocks until the next frame is read. End of stream is an error.
func (c *Capture) NextFrame(ctx context.Context) (kiosk.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat := gocv.NewMat()
	if ok := c.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, errors.New("no frame read from " + c.source)
	}
	return &Frame{mat: mat}, nil
}

func (c *Capture) Close() error {
	return c.vc.Close()
}
