package kiosk

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/kozaktomas/cubescout/internal/presence"
)

var testBounds = image.Rect(0, 0, 640, 480)

type fakeFrame struct {
	bounds image.Rectangle
	closed *int
}

func (f fakeFrame) Bounds() image.Rectangle { return f.bounds }

func (f fakeFrame) Close() error {
	if f.closed != nil {
		*f.closed++
	}
	return nil
}

type fakeCapture struct {
	frames int
	closed int
	err    error
}

func (c *fakeCapture) NextFrame(context.Context) (Frame, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.frames++
	return fakeFrame{bounds: testBounds, closed: &c.closed}, nil
}

// fakeDetector returns the same regions for every frame unless err is set.
type fakeDetector struct {
	regions []image.Rectangle
	err     error
}

func (d *fakeDetector) FindFaces(Frame) ([]image.Rectangle, error) {
	return d.regions, d.err
}

// fakeRecognizer maps a region's top-left corner to a prediction.
type fakeRecognizer struct {
	byCorner map[image.Point]Prediction
	err      error
	calls    int
}

func (r *fakeRecognizer) Predict(_ Frame, region image.Rectangle) (Prediction, error) {
	r.calls++
	if r.err != nil {
		return Prediction{}, r.err
	}
	p, ok := r.byCorner[region.Min]
	if !ok {
		return Unmatched(400), nil
	}
	return p, nil
}

type annotation struct {
	region image.Rectangle
	label  string
}

type fakeAnnotator struct {
	got []annotation
}

func (a *fakeAnnotator) Annotate(_ Frame, region image.Rectangle, label string) error {
	a.got = append(a.got, annotation{region: region, label: label})
	return nil
}

type fakePresenter struct {
	presented int
	err       error
}

func (p *fakePresenter) Present(Frame) error {
	p.presented++
	return p.err
}

type notification struct {
	title, body string
}

type fakeNotifier struct {
	sent []notification
	err  error
}

func (n *fakeNotifier) Notify(title, body string) error {
	n.sent = append(n.sent, notification{title: title, body: body})
	return n.err
}

type fakeSamples struct {
	saved int
}

func (s *fakeSamples) Save(Frame, image.Rectangle) error {
	s.saved++
	return errors.New("disk full")
}

// exitAfter requests exit once it has been polled more than n times.
type exitAfter struct {
	n     int
	polls int
}

func (e *exitAfter) ExitRequested() bool {
	e.polls++
	return e.polls > e.n
}

type fakeNames map[presence.Identity]string

func (n fakeNames) Name(id presence.Identity) (string, bool) {
	name, ok := n[id]
	return name, ok
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
