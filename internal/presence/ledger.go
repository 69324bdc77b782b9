package presence

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"
)

// Ledger tracks one SightingState per registered identity.
//
// All mutations go through AdvanceAll, RecordSighting and RecordNotification. The
// frame loop is the only writer; the mutex exists so the status page can read
// States() while a tick is in progress.
type Ledger struct {
	mu            sync.Mutex
	states        map[Identity]*SightingState
	streakTimeout time.Duration
}

// NewLedger creates a ledger with sentinel timers and zero counts for every identity.
func NewLedger(identities []Identity, streakTimeout time.Duration) (*Ledger, error) {
	if len(identities) == 0 {
		return nil, fmt.Errorf("%w: identity set is empty", ErrConfiguration)
	}
	if streakTimeout <= 0 {
		return nil, fmt.Errorf("%w: streak timeout must be positive, got %s", ErrConfiguration, streakTimeout)
	}

	states := make(map[Identity]*SightingState, len(identities))
	for _, id := range identities {
		states[id] = &SightingState{
			SinceSighting: Never,
			SinceNotify:   Never,
		}
	}

	return &Ledger{
		states:        states,
		streakTimeout: streakTimeout,
	}, nil
}

// AdvanceAll adds dt to every timer. Identities whose time since sighting now
// exceeds the streak timeout lose their streak.
func (l *Ledger) AdvanceAll(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.states {
		s.SinceSighting = addSaturating(s.SinceSighting, dt)
		s.SinceNotify = addSaturating(s.SinceNotify, dt)
		if s.SinceSighting > l.streakTimeout {
			s.Count = 0
		}
	}
}

// RecordSighting extends the identity's streak and resets its sighting timer.
func (l *Ledger) RecordSighting(id Identity) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.states[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownIdentity, id)
	}

	s.Count++
	s.SinceSighting = 0

	return Snapshot{
		Identity:    id,
		Count:       s.Count,
		SinceNotify: s.SinceNotify,
	}, nil
}

// RecordNotification resets the identity's notification timer.
func (l *Ledger) RecordNotification(id Identity) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.states[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIdentity, id)
	}
	s.SinceNotify = 0
	return nil
}

// State returns a copy of the identity's state.
func (l *Ledger) State(id Identity) (SightingState, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.states[id]
	if !ok {
		return SightingState{}, false
	}
	return *s, true
}

// States returns copies of all states ordered by identity.
func (l *Ledger) States() []IdentityState {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]IdentityState, 0, len(l.states))
	for id, s := range l.states {
		out = append(out, IdentityState{Identity: id, SightingState: *s})
	}
	slices.SortFunc(out, func(a, b IdentityState) int {
		return cmp.Compare(a.Identity, b.Identity)
	})
	return out
}

// StreakTimeout returns the absence after which a streak is broken.
func (l *Ledger) StreakTimeout() time.Duration {
	return l.streakTimeout
}

// Len returns the number of tracked identities.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.states)
}

func addSaturating(d, dt time.Duration) time.Duration {
	if d > math.MaxInt64-dt {
		return math.MaxInt64
	}
	return d + dt
}
