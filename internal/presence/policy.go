package presence

import (
	"fmt"
	"time"
)

// Default policy thresholds. Both comparisons are exclusive.
const (
	DefaultNotifyCooldown    = 15 * time.Second
	DefaultConfirmationCount = 10
	DefaultStreakTimeout     = 2 * time.Second
)

// Policy decides when a sighting becomes an arrival notification.
type Policy struct {
	// NotifyCooldown is the minimum time after a notification before another may fire.
	NotifyCooldown time.Duration
	// ConfirmationCount is the streak length that must be exceeded before notifying.
	ConfirmationCount int
	// StreakTimeout is the absence that breaks a streak.
	StreakTimeout time.Duration
}

// DefaultPolicy returns the policy with the documented defaults.
func DefaultPolicy() Policy {
	return Policy{
		NotifyCooldown:    DefaultNotifyCooldown,
		ConfirmationCount: DefaultConfirmationCount,
		StreakTimeout:     DefaultStreakTimeout,
	}
}

// ShouldNotify reports whether the snapshot qualifies for a notification.
func (p Policy) ShouldNotify(s Snapshot) bool {
	return s.SinceNotify > p.NotifyCooldown && s.Count > p.ConfirmationCount
}

// Validate checks the thresholds are usable.
func (p Policy) Validate() error {
	if p.NotifyCooldown < 0 {
		return fmt.Errorf("%w: notify cooldown must not be negative, got %s", ErrConfiguration, p.NotifyCooldown)
	}
	if p.ConfirmationCount < 0 {
		return fmt.Errorf("%w: confirmation count must not be negative, got %d", ErrConfiguration, p.ConfirmationCount)
	}
	if p.StreakTimeout <= 0 {
		return fmt.Errorf("%w: streak timeout must be positive, got %s", ErrConfiguration, p.StreakTimeout)
	}
	return nil
}
