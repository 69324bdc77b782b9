// Package notify delivers arrival notifications.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/kozaktomas/cubescout/internal/config"
	"github.com/kozaktomas/cubescout/internal/presence"
)

// Desktop shows a desktop notification through the platform notification service.
type Desktop struct {
	notify func(title, message string) error
}

func NewDesktop() *Desktop {
	return &Desktop{notify: func(title, message string) error {
		return beeep.Notify(title, message, "")
	}}
}

func (d *Desktop) Notify(title, body string) error {
	if err := d.notify(title, body); err != nil {
		return fmt.Errorf("desktop notification failed: %w", err)
	}
	return nil
}

// Log writes notifications to the logger instead of the desktop. Used on
// headless machines.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Notify(title, body string) error {
	l.logger.Info("Arrival", zap.String("title", title), zap.String("body", body))
	return nil
}

// Notifier is satisfied by every backend in this package.
type Notifier interface {
	Notify(title, body string) error
}

// New returns the notifier for the configured backend.
func New(backend string, logger *zap.Logger) (Notifier, error) {
	switch backend {
	case config.BackendDesktop:
		return NewDesktop(), nil
	case config.BackendLog:
		return NewLog(logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown notify backend %q", presence.ErrConfiguration, backend)
	}
}
