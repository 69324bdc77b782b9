package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kozaktomas/cubescout/internal/config"
	"github.com/kozaktomas/cubescout/internal/constants"
	"github.com/kozaktomas/cubescout/internal/kiosk"
	"github.com/kozaktomas/cubescout/internal/logger"
	"github.com/kozaktomas/cubescout/internal/notify"
	"github.com/kozaktomas/cubescout/internal/presence"
	"github.com/kozaktomas/cubescout/internal/preview"
	"github.com/kozaktomas/cubescout/internal/registry"
	"github.com/kozaktomas/cubescout/internal/vision"
	"github.com/kozaktomas/cubescout/internal/web"
)

var watchCmd = &cobra.Command{
	Use:   "watch <face-cascade> <manifest> <device>",
	Short: "Watch a camera and announce arrivals",
	Long: `Watch a camera and announce recognized people.

  <face-cascade>  Haar cascade XML used for face detection
  <manifest>      training manifest, one "path;label" line per image
  <device>        camera index (e.g. 0) or a video file

Press ESC in the window or Ctrl+C to stop.`,
	Args: cobra.ExactArgs(3),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolP("samples", "s", false, "Save face crops to SAMPLES_DIR")
	watchCmd.Flags().Bool("headless", false, "Do not open a window (stop with Ctrl+C)")
	watchCmd.Flags().Int("port", 0, "Serve the status page on this port (overrides WEB_PORT)")
	watchCmd.Flags().Float64("threshold", 0, "Recognizer distance threshold (overrides RECOGNIZER_THRESHOLD)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if threshold := mustGetFloat64(cmd, "threshold"); threshold > 0 {
		cfg.Recognizer.Threshold = threshold
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cascadePath, manifestPath, device := args[0], args[1], args[2]

	manifest, err := registry.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	if manifest.Skipped > 0 {
		log.Warn("Skipped malformed manifest lines", zap.Int("skipped", manifest.Skipped))
	}
	reg, err := registry.FromManifest(manifest)
	if err != nil {
		return err
	}

	ledger, err := presence.NewLedger(reg.Identities(), cfg.Notify.StreakTimeout)
	if err != nil {
		return err
	}

	recognizer, err := vision.TrainRecognizer(manifest, cfg.Recognizer, log)
	if err != nil {
		return err
	}

	detector, err := vision.NewDetector(cascadePath, cfg.Detector)
	if err != nil {
		return err
	}
	defer detector.Close()

	notifier, err := notify.New(cfg.Notify.Backend, log)
	if err != nil {
		return err
	}

	fmt.Println("Initializing video capture...")
	capture, err := vision.OpenCapture(device)
	if err != nil {
		return err
	}
	defer capture.Close()

	opts := kiosk.Options{
		Capture:       capture,
		Detector:      detector,
		Recognizer:    recognizer,
		Annotator:     vision.Overlay{},
		Notifier:      notifier,
		Ledger:        ledger,
		Names:         reg,
		Policy:        cfg.Notify.Policy(),
		NotifyMessage: cfg.Notify.Message,
		Logger:        log,
	}

	if !mustGetBool(cmd, "headless") {
		window := vision.NewWindow(constants.WindowTitle)
		defer window.Close()
		opts.Presenters = append(opts.Presenters, window)
		opts.Exit = window
	}

	var store *preview.Store
	if cfg.Web.Enabled() {
		store = preview.NewStore(cfg.Preview.MaxSize)
		opts.Presenters = append(opts.Presenters, vision.NewPreviewPresenter(store))
	}

	if mustGetBool(cmd, "samples") {
		samples, err := vision.NewSampleWriter(cfg.Samples, log)
		if err != nil {
			return err
		}
		opts.Samples = samples
	}

	orchestrator, err := kiosk.New(opts)
	if err != nil {
		return err
	}

	// Set up context with signal handling for graceful cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal...")
		cancel()
	}()

	if cfg.Web.Enabled() {
		server := web.NewServer(cfg.Web, web.Sources{
			Ledger: ledger,
			Names:  reg,
			Stats:  orchestrator,
			Frames: store,
		}, log)
		go func() {
			if err := server.Start(); err != nil {
				log.Error("Status page stopped", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer shutdownCancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Warn("Error during status page shutdown", zap.Error(err))
			}
		}()
		fmt.Printf("Status page on http://%s\n", cfg.Web.Addr())
	}

	fmt.Printf("Watching %d people from %s\n", reg.Len(), device)
	err = orchestrator.Run(ctx)
	printStats(orchestrator.Stats())

	if errors.Is(err, kiosk.ErrCaptureFailed) {
		return fmt.Errorf("video stopped: %w", err)
	}
	return err
}

func printStats(s kiosk.Stats) {
	fmt.Println()
	fmt.Printf("Run %s\n", s.RunID)
	fmt.Printf("  Frames:        %d\n", s.Ticks)
	fmt.Printf("  Faces:         %d\n", s.Regions)
	fmt.Printf("  Recognized:    %d\n", s.Recognized)
	fmt.Printf("  Unmatched:     %d\n", s.Unmatched)
	fmt.Printf("  Skipped:       %d\n", s.Skipped)
	fmt.Printf("  Notifications: %d\n", s.Notifications)
}
