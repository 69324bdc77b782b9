package vision

import (
	"image"
	"image/color"
	"sync/atomic"

	"gocv.io/x/gocv"

	"github.com/kozaktomas/cubescout/internal/constants"
	"github.com/kozaktomas/cubescout/internal/kiosk"
)

var (
	boxColor   = color.RGBA{G: 255, A: 255}
	labelColor = color.RGBA{R: 255, G: 120, A: 255}
)

// Overlay draws face boxes and labels onto frames.
type Overlay struct{}

func (Overlay) Annotate(f kiosk.Frame, region image.Rectangle, label string) error {
	mat, err := matOf(f)
	if err != nil {
		return err
	}

	gocv.Rectangle(mat, region, boxColor, constants.BoxThickness)
	if label == "" {
		return nil
	}
	org := image.Pt(region.Min.X-constants.LabelOffset, region.Min.Y-constants.LabelOffset)
	gocv.PutText(mat, label, org, gocv.FontHersheyPlain, constants.LabelFontScale, labelColor, constants.LabelThickness)
	return nil
}

// Window shows frames in an OpenCV window and turns the ESC key into an exit request.
type Window struct {
	w    *gocv.Window
	exit atomic.Bool
}

func NewWindow(title string) *Window {
	return &Window{w: gocv.NewWindow(title)}
}

// Present shows the frame and polls the keyboard.
func (w *Window) Present(f kiosk.Frame) error {
	mat, err := matOf(f)
	if err != nil {
		return err
	}

	w.w.IMShow(*mat)
	if w.w.WaitKey(constants.WaitKeyMillis) == constants.EscapeKey {
		w.exit.Store(true)
	}
	return nil
}

func (w *Window) ExitRequested() bool {
	return w.exit.Load()
}

func (w *Window) Close() error {
	return w.w.Close()
}

// Publisher is where PreviewPresenter sends decoded frames.
type Publisher interface {
	Publish(img image.Image) error
}

// PreviewPresenter hands annotated frames to the status page.
type PreviewPresenter struct {
	store Publisher
}

func NewPreviewPresenter(store Publisher) *PreviewPresenter {
	return &PreviewPresenter{store: store}
}

func (p *PreviewPresenter) Present(f kiosk.Frame) error {
	mat, err := matOf(f)
	if err != nil {
		return err
	}

	img, err := mat.ToImage()
	if err != nil {
		return err
	}
	return p.store.Publish(img)
}
