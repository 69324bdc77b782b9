// Package vision implements the kiosk collaborators on top of OpenCV.
package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/kozaktomas/cubescout/internal/kiosk"
)

// Frame is a BGR frame owned by the frame loop.
type Frame struct {
	mat gocv.Mat
}

func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.mat.Cols(), f.mat.Rows())
}

func (f *Frame) Close() error {
	return f.mat.Close()
}

// matOf unwraps a frame produced by Capture.
func matOf(f kiosk.Frame) (*gocv.Mat, error) {
	vf, ok := f.(*Frame)
	if !ok {
		return nil, fmt.Errorf("unsupported frame type %T", f)
	}
	return &vf.mat, nil
}

// grayFace crops region out of src, converts it to grayscale and resizes it to size.
func grayFace(src gocv.Mat, region image.Rectangle, size image.Point) gocv.Mat {
	crop := src.Region(region)
	defer crop.Close()

	gray := gocv.NewMat()
	if crop.Channels() == 1 {
		crop.CopyTo(&gray)
	} else {
		gocv.CvtColor(crop, &gray, gocv.ColorBGRToGray)
	}
	if size.X == 0 || (gray.Cols() == size.X && gray.Rows() == size.Y) {
		return gray
	}

	resized := gocv.NewMat()
	gocv.Resize(gray, &resized, size, 0, 0, gocv.InterpolationCubic)
	gray.Close()
	return resized
}
