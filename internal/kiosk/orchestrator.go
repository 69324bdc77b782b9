package kiosk

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kozaktomas/cubescout/internal/presence"
)

// DefaultNotifyMessage is the notification body that follows the person's name.
const DefaultNotifyMessage = "is entering the cubicle"

// Options wires the orchestrator to its collaborators.
type Options struct {
	Capture    Capture
	Detector   Detector
	Recognizer Recognizer
	Annotator  Annotator
	Presenters []Presenter
	Notifier   Notifier

	// Samples, Exit and Clock are optional.
	Samples SampleSink
	Exit    ExitSignal
	Clock   Clock

	Ledger        *presence.Ledger
	Names         Names
	Policy        presence.Policy
	NotifyMessage string

	Logger *zap.Logger
}

// TickResult describes what happened during one tick.
type TickResult struct {
	Delta      time.Duration
	Regions    int
	Recognized []presence.Identity
	Unmatched  int
	Skipped    int
	Notified   []presence.Identity
}

// Orchestrator runs the frame loop.
type Orchestrator struct {
	capture    Capture
	detector   Detector
	recognizer Recognizer
	annotator  Annotator
	presenters []Presenter
	notifier   Notifier
	samples    SampleSink
	exit       ExitSignal
	clock      Clock

	ledger        *presence.Ledger
	names         Names
	policy        presence.Policy
	notifyMessage string

	logger *zap.Logger
	stats  statsRecorder
	last   time.Time
}

// New validates the options and creates an orchestrator. The delta of the first
// tick is measured from the moment New returns.
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Capture == nil:
		return nil, errors.New("capture is required")
	case opts.Detector == nil:
		return nil, errors.New("detector is required")
	case opts.Recognizer == nil:
		return nil, errors.New("recognizer is required")
	case opts.Notifier == nil:
		return nil, errors.New("notifier is required")
	case opts.Ledger == nil:
		return nil, errors.New("ledger is required")
	case opts.Names == nil:
		return nil, errors.New("names are required")
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		capture:       opts.Capture,
		detector:      opts.Detector,
		recognizer:    opts.Recognizer,
		annotator:     opts.Annotator,
		presenters:    opts.Presenters,
		notifier:      opts.Notifier,
		samples:       opts.Samples,
		exit:          opts.Exit,
		clock:         opts.Clock,
		ledger:        opts.Ledger,
		names:         opts.Names,
		policy:        opts.Policy,
		notifyMessage: opts.NotifyMessage,
		logger:        opts.Logger,
	}
	if o.clock == nil {
		o.clock = SystemClock{}
	}
	if o.notifyMessage == "" {
		o.notifyMessage = DefaultNotifyMessage
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	o.last = o.clock.Now()
	o.stats.stats = Stats{RunID: uuid.NewString(), StartedAt: o.last}
	return o, nil
}

// Run loops until ctx is cancelled, the exit signal fires, or a tick fails.
// Cancellation and the exit signal end the loop without an error.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("Starting frame loop", zap.String("run_id", o.stats.snapshot().RunID))

	for {
		if ctx.Err() != nil {
			o.logger.Info("Frame loop cancelled")
			return nil
		}
		if o.exit != nil && o.exit.ExitRequested() {
			o.logger.Info("Exit requested by operator")
			return nil
		}

		if _, err := o.Tick(ctx); err != nil {
			return err
		}
	}
}

// Tick processes exactly one frame.
func (o *Orchestrator) Tick(ctx context.Context) (TickResult, error) {
	now := o.clock.Now()
	dt := max(now.Sub(o.last), 0)
	o.last = now

	res := TickResult{Delta: dt}
	o.ledger.AdvanceAll(dt)

	frame, err := o.capture.NextFrame(ctx)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	defer func() {
		if cerr := frame.Close(); cerr != nil {
			o.logger.Debug("Failed to release frame", zap.Error(cerr))
		}
	}()

	regions, err := o.detector.FindFaces(frame)
	if err != nil {
		o.logger.Warn("Face detection failed, treating frame as empty", zap.Error(err))
		regions = nil
	}
	res.Regions = len(regions)

	for i, region := range regions {
		if err := o.handleRegion(frame, region, &res); err != nil {
			if errors.Is(err, presence.ErrUnknownIdentity) {
				return res, err
			}
			res.Skipped++
			o.logger.Warn("Skipping face region",
				zap.Int("region", i),
				zap.Stringer("rect", region),
				zap.Error(err),
			)
		}
	}

	for _, p := range o.presenters {
		if err := p.Present(frame); err != nil {
			o.logger.Warn("Failed to present frame", zap.Error(err))
		}
	}

	o.stats.record(now, res)
	return res, nil
}

// handleRegion recognizes one region and applies the notification policy.
// Only presence.ErrUnknownIdentity is fatal; other errors skip the region.
func (o *Orchestrator) handleRegion(frame Frame, region image.Rectangle, res *TickResult) error {
	region = region.Intersect(frame.Bounds())
	if region.Empty() {
		return errors.New("region outside frame")
	}

	pred, err := o.recognizer.Predict(frame, region)
	if err != nil {
		return fmt.Errorf("recognition failed: %w", err)
	}

	if o.samples != nil {
		if err := o.samples.Save(frame, region); err != nil {
			o.logger.Warn("Failed to save face sample", zap.Error(err))
		}
	}

	id, ok := pred.Identity()
	if !ok {
		res.Unmatched++
		o.annotate(frame, region, "")
		return nil
	}

	snapshot, err := o.ledger.RecordSighting(id)
	if err != nil {
		return err
	}
	res.Recognized = append(res.Recognized, id)

	name, ok := o.names.Name(id)
	if !ok {
		return fmt.Errorf("%w: %s has no display name", presence.ErrUnknownIdentity, id)
	}

	o.logger.Debug("Face recognized",
		zap.String("name", name),
		zap.Stringer("identity", id),
		zap.Float64("distance", pred.Distance),
		zap.Int("count", snapshot.Count),
	)

	if o.policy.ShouldNotify(snapshot) {
		if err := o.notifier.Notify(name, o.notifyMessage); err != nil {
			o.logger.Warn("Failed to deliver notification", zap.String("name", name), zap.Error(err))
		}
		if err := o.ledger.RecordNotification(id); err != nil {
			return err
		}
		res.Notified = append(res.Notified, id)
		o.logger.Info("Arrival notified", zap.String("name", name), zap.Int("count", snapshot.Count))
	}

	o.annotate(frame, region, Label(name, pred.Distance))
	return nil
}

func (o *Orchestrator) annotate(frame Frame, region image.Rectangle, label string) {
	if o.annotator == nil {
		return
	}
	if err := o.annotator.Annotate(frame, region, label); err != nil {
		o.logger.Warn("Failed to annotate region", zap.Error(err))
	}
}

// Stats returns a copy of the cumulative counters.
func (o *Orchestrator) Stats() Stats {
	return o.stats.snapshot()
}
