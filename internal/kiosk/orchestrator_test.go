package kiosk

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozaktomas/cubescout/internal/presence"
)

var (
	aliceRegion = image.Rect(100, 100, 200, 200)
	bobRegion   = image.Rect(300, 100, 400, 200)
)

type harness struct {
	clock      *fakeClock
	capture    *fakeCapture
	detector   *fakeDetector
	recognizer *fakeRecognizer
	annotator  *fakeAnnotator
	presenter  *fakePresenter
	notifier   *fakeNotifier
	ledger     *presence.Ledger
	orch       *Orchestrator
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ledger, err := presence.NewLedger([]presence.Identity{1, 2}, presence.DefaultStreakTimeout)
	require.NoError(t, err)

	h := &harness{
		clock:    newFakeClock(),
		capture:  &fakeCapture{},
		detector: &fakeDetector{regions: []image.Rectangle{aliceRegion}},
		recognizer: &fakeRecognizer{byCorner: map[image.Point]Prediction{
			aliceRegion.Min: Matched(1, 51),
			bobRegion.Min:   Matched(2, 0),
		}},
		annotator: &fakeAnnotator{},
		presenter: &fakePresenter{},
		notifier:  &fakeNotifier{},
		ledger:    ledger,
	}

	h.orch, err = New(Options{
		Capture:    h.capture,
		Detector:   h.detector,
		Recognizer: h.recognizer,
		Annotator:  h.annotator,
		Presenters: []Presenter{h.presenter},
		Notifier:   h.notifier,
		Clock:      h.clock,
		Ledger:     ledger,
		Names:      fakeNames{1: "Alice", 2: "Bob"},
		Policy:     presence.DefaultPolicy(),
	})
	require.NoError(t, err)
	return h
}

func (h *harness) tick(t *testing.T, dt time.Duration) TickResult {
	t.Helper()
	h.clock.Advance(dt)
	res, err := h.orch.Tick(context.Background())
	require.NoError(t, err)
	return res
}

// trace runs one tick per delta and renders the state of identity 1 after each.
func (h *harness) trace(t *testing.T, deltas []time.Duration) []byte {
	t.Helper()
	var b strings.Builder
	for i, dt := range deltas {
		res := h.tick(t, dt)
		s, ok := h.ledger.State(1)
		require.True(t, ok)
		fmt.Fprintf(&b, "tick=%02d dt=%s regions=%d count=%d notified=%t\n",
			i+1, res.Delta, res.Regions, s.Count, len(res.Notified) > 0)
	}
	return []byte(b.String())
}

func repeat(dt time.Duration, n int) []time.Duration {
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = dt
	}
	return out
}

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	ledger, err := presence.NewLedger([]presence.Identity{1}, time.Second)
	require.NoError(t, err)

	_, err = New(Options{Ledger: ledger})
	assert.Error(t, err)

	_, err = New(Options{
		Capture:    &fakeCapture{},
		Detector:   &fakeDetector{},
		Recognizer: &fakeRecognizer{},
		Notifier:   &fakeNotifier{},
		Ledger:     ledger,
		Names:      fakeNames{},
		Policy:     presence.Policy{StreakTimeout: 0},
	})
	assert.ErrorIs(t, err, presence.ErrConfiguration)
}

func TestTick_SteadyArrivalTrace(t *testing.T) {
	h := newHarness(t)

	got := h.trace(t, repeat(100*time.Millisecond, 13))

	newGoldie(t).Assert(t, "steady_arrival", got)
	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, notification{title: "Alice", body: DefaultNotifyMessage}, h.notifier.sent[0])
}

func TestTick_InterruptedStreakTrace(t *testing.T) {
	h := newHarness(t)

	deltas := append(repeat(100*time.Millisecond, 5), 2500*time.Millisecond)
	deltas = append(deltas, repeat(100*time.Millisecond, 2)...)
	got := h.trace(t, deltas)

	newGoldie(t).Assert(t, "interrupted_streak", got)
	assert.Empty(t, h.notifier.sent)
}

func TestTick_CooldownSuppressesRepeat(t *testing.T) {
	h := newHarness(t)

	var notifiedAt []int
	for i := 1; i <= 200; i++ {
		if res := h.tick(t, 100*time.Millisecond); len(res.Notified) > 0 {
			notifiedAt = append(notifiedAt, i)
		}
	}

	// First after the 11th consecutive sighting, second once 15s have strictly elapsed.
	assert.Equal(t, []int{11, 162}, notifiedAt)
	assert.Len(t, h.notifier.sent, 2)
}

func TestTick_StreakSurvivesGapAtTimeout(t *testing.T) {
	h := newHarness(t)

	h.tick(t, 100*time.Millisecond)
	h.detector.regions = nil
	h.tick(t, 2*time.Second)
	h.detector.regions = []image.Rectangle{aliceRegion}
	h.tick(t, 0)

	s, _ := h.ledger.State(1)
	assert.Equal(t, 2, s.Count)
}

func TestTick_IdentitiesTrackedIndependently(t *testing.T) {
	h := newHarness(t)
	h.detector.regions = []image.Rectangle{aliceRegion, bobRegion}

	for range 5 {
		h.tick(t, 100*time.Millisecond)
	}
	h.detector.regions = []image.Rectangle{bobRegion}
	for range 6 {
		h.tick(t, 100*time.Millisecond)
	}

	alice, _ := h.ledger.State(1)
	bob, _ := h.ledger.State(2)
	assert.Equal(t, 5, alice.Count)
	assert.Equal(t, 11, bob.Count)
	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, "Bob", h.notifier.sent[0].title)
}

func TestTick_AnnotatesLabels(t *testing.T) {
	h := newHarness(t)
	unknown := image.Rect(500, 300, 560, 360)
	h.detector.regions = []image.Rectangle{aliceRegion, unknown}

	res := h.tick(t, 100*time.Millisecond)

	assert.Equal(t, 2, res.Regions)
	assert.Equal(t, []presence.Identity{1}, res.Recognized)
	assert.Equal(t, 1, res.Unmatched)
	assert.Equal(t, []annotation{
		{region: aliceRegion, label: "Alice:80%"},
		{region: unknown, label: ""},
	}, h.annotator.got)
	assert.Equal(t, 1, h.presenter.presented)
}

func TestTick_UnmatchedLeavesLedgerUntouched(t *testing.T) {
	h := newHarness(t)
	h.recognizer.byCorner = nil

	for range 20 {
		res := h.tick(t, 100*time.Millisecond)
		assert.Equal(t, 1, res.Unmatched)
	}

	s, _ := h.ledger.State(1)
	assert.Equal(t, 0, s.Count)
	assert.Empty(t, h.notifier.sent)
}

func TestTick_NoFacesStillPresents(t *testing.T) {
	h := newHarness(t)
	h.detector.regions = nil

	res := h.tick(t, 40*time.Millisecond)

	assert.Equal(t, 0, res.Regions)
	assert.Equal(t, 0, h.recognizer.calls)
	assert.Equal(t, 1, h.presenter.presented)
	assert.Equal(t, 1, h.capture.closed)
}

func TestTick_DetectorErrorTreatedAsEmpty(t *testing.T) {
	h := newHarness(t)
	h.detector.err = errors.New("cascade exploded")

	res := h.tick(t, 100*time.Millisecond)

	assert.Equal(t, 0, res.Regions)
	assert.Equal(t, 0, h.recognizer.calls)
	assert.Equal(t, 1, h.presenter.presented)
}

func TestTick_RecognizerErrorSkipsRegion(t *testing.T) {
	h := newHarness(t)
	h.recognizer.err = errors.New("model not trained")

	res := h.tick(t, 100*time.Millisecond)

	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Recognized)
	assert.Empty(t, h.annotator.got)
	assert.Equal(t, 1, h.presenter.presented)
}

func TestTick_RegionClippedToFrame(t *testing.T) {
	h := newHarness(t)
	h.detector.regions = []image.Rectangle{
		image.Rect(600, 400, 700, 500),
		image.Rect(1000, 1000, 1100, 1100),
	}

	res := h.tick(t, 100*time.Millisecond)

	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Unmatched)
	require.Len(t, h.annotator.got, 1)
	assert.Equal(t, image.Rect(600, 400, 640, 480), h.annotator.got[0].region)
}

func TestTick_UnknownIdentityIsFatal(t *testing.T) {
	h := newHarness(t)
	h.recognizer.byCorner[aliceRegion.Min] = Matched(99, 10)

	h.clock.Advance(100 * time.Millisecond)
	_, err := h.orch.Tick(context.Background())

	assert.ErrorIs(t, err, presence.ErrUnknownIdentity)
	assert.Equal(t, 1, h.capture.closed)
}

func TestTick_CaptureFailure(t *testing.T) {
	h := newHarness(t)
	h.capture.err = errors.New("device unplugged")

	_, err := h.orch.Tick(context.Background())

	assert.ErrorIs(t, err, ErrCaptureFailed)
	assert.ErrorContains(t, err, "device unplugged")
	assert.Equal(t, 0, h.presenter.presented)
}

func TestTick_NotifierErrorStillStartsCooldown(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("no notification daemon")

	var notified int
	for range 20 {
		notified += len(h.tick(t, 100*time.Millisecond).Notified)
	}

	assert.Equal(t, 1, notified)
	s, _ := h.ledger.State(1)
	assert.Equal(t, 900*time.Millisecond, s.SinceNotify)
}

func TestTick_SampleErrorsIgnored(t *testing.T) {
	h := newHarness(t)
	samples := &fakeSamples{}
	h.orch.samples = samples
	h.detector.regions = []image.Rectangle{aliceRegion, bobRegion}

	res := h.tick(t, 100*time.Millisecond)

	assert.Equal(t, 2, samples.saved)
	assert.Len(t, res.Recognized, 2)
}

func TestTick_PresenterErrorIgnored(t *testing.T) {
	h := newHarness(t)
	h.presenter.err = errors.New("window closed")

	_, err := h.orch.Tick(context.Background())
	assert.NoError(t, err)
}

func TestRun_ExitSignal(t *testing.T) {
	h := newHarness(t)
	h.orch.exit = &exitAfter{n: 3}

	err := h.orch.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, h.capture.frames)
	assert.Equal(t, uint64(3), h.orch.Stats().Ticks)
}

func TestRun_ContextCancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, h.orch.Run(ctx))
	assert.Equal(t, 0, h.capture.frames)
}

func TestRun_StopsOnCaptureFailure(t *testing.T) {
	h := newHarness(t)
	h.capture.err = errors.New("eof")

	err := h.orch.Run(context.Background())
	assert.ErrorIs(t, err, ErrCaptureFailed)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	h.detector.regions = []image.Rectangle{aliceRegion, image.Rect(500, 300, 560, 360)}

	for range 12 {
		h.tick(t, 100*time.Millisecond)
	}

	s := h.orch.Stats()
	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, uint64(12), s.Ticks)
	assert.Equal(t, uint64(24), s.Regions)
	assert.Equal(t, uint64(12), s.Recognized)
	assert.Equal(t, uint64(12), s.Unmatched)
	assert.Equal(t, uint64(1), s.Notifications)
	assert.Equal(t, s.StartedAt.Add(1200*time.Millisecond), s.LastTickAt)
}
