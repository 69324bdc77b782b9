package kiosk

import (
	"sync"
	"time"
)

// Stats are cumulative counters for one run of the loop.
type Stats struct {
	RunID         string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	LastTickAt    time.Time `json:"last_tick_at"`
	Ticks         uint64    `json:"ticks"`
	Regions       uint64    `json:"regions"`
	Recognized    uint64    `json:"recognized"`
	Unmatched     uint64    `json:"unmatched"`
	Skipped       uint64    `json:"skipped"`
	Notifications uint64    `json:"notifications"`
}

type statsRecorder struct {
	mu    sync.Mutex
	stats Stats
}

func (r *statsRecorder) record(at time.Time, res TickResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.LastTickAt = at
	r.stats.Ticks++
	r.stats.Regions += uint64(res.Regions)
	r.stats.Recognized += uint64(len(res.Recognized))
	r.stats.Unmatched += uint64(res.Unmatched)
	r.stats.Skipped += uint64(res.Skipped)
	r.stats.Notifications += uint64(len(res.Notified))
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
