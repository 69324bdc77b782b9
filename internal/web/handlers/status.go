package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kozaktomas/cubescout/internal/constants"
	"github.com/kozaktomas/cubescout/internal/kiosk"
	"github.com/kozaktomas/cubescout/internal/presence"
	"github.com/kozaktomas/cubescout/internal/preview"
)

// Ledger is the read side of the presence ledger.
type Ledger interface {
	States() []presence.IdentityState
	StreakTimeout() time.Duration
}

// Names resolves display names.
type Names interface {
	Name(id presence.Identity) (string, bool)
}

// StatsSource reports loop counters.
type StatsSource interface {
	Stats() kiosk.Stats
}

// FrameSource returns the latest annotated frame.
type FrameSource interface {
	Latest() (preview.Snapshot, bool)
}

// StatusHandler serves the read-only kiosk status API.
type StatusHandler struct {
	ledger Ledger
	names  Names
	stats  StatsSource
	frames FrameSource
	now    func() time.Time
}

func NewStatusHandler(ledger Ledger, names Names, stats StatsSource, frames FrameSource) *StatusHandler {
	return &StatusHandler{
		ledger: ledger,
		names:  names,
		stats:  stats,
		frames: frames,
		now:    time.Now,
	}
}

// PresenceEntry is one row of the presence board. Timers are omitted for
// identities that have never been seen or notified.
type PresenceEntry struct {
	Identity        presence.Identity `json:"identity"`
	Name            string            `json:"name"`
	Present         bool              `json:"present"`
	Count           int               `json:"count"`
	SinceSightingMs *int64            `json:"since_sighting_ms"`
	SinceNotifyMs   *int64            `json:"since_notify_ms"`
}

func millis(d time.Duration) *int64 {
	if d >= presence.Never {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}

// Presence lists every registered identity with its current streak.
func (h *StatusHandler) Presence(w http.ResponseWriter, r *http.Request) {
	timeout := h.ledger.StreakTimeout()
	states := h.ledger.States()

	entries := make([]PresenceEntry, 0, len(states))
	for _, s := range states {
		name, ok := h.names.Name(s.Identity)
		if !ok {
			name = s.Identity.String()
		}
		entries = append(entries, PresenceEntry{
			Identity:        s.Identity,
			Name:            name,
			Present:         s.Count > 0 && s.SinceSighting <= timeout,
			Count:           s.Count,
			SinceSightingMs: millis(s.SinceSighting),
			SinceNotifyMs:   millis(s.SinceNotify),
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"identities":        entries,
		"streak_timeout_ms": timeout.Milliseconds(),
	})
}

// Stats returns the loop counters.
func (h *StatusHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stats.Stats())
}

// Frame returns the latest annotated frame as JPEG.
func (h *StatusHandler) Frame(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.frames.Latest()
	if !ok {
		respondError(w, http.StatusNotFound, "no frame captured yet")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(snap.JPEG)))
	w.Header().Set("Last-Modified", snap.CapturedAt.UTC().Format(http.TimeFormat))
	if h.now().Sub(snap.CapturedAt) > constants.StaleFrameAfter {
		w.Header().Set("X-Frame-Stale", "true")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(snap.JPEG)
}
