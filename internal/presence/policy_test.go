package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldNotify(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name     string
		snapshot Snapshot
		want     bool
	}{
		{
			name:     "both thresholds exceeded",
			snapshot: Snapshot{Count: 11, SinceNotify: 16 * time.Second},
			want:     true,
		},
		{
			name:     "never notified with long streak",
			snapshot: Snapshot{Count: 11, SinceNotify: Never},
			want:     true,
		},
		{
			name:     "count at boundary",
			snapshot: Snapshot{Count: 10, SinceNotify: Never},
			want:     false,
		},
		{
			name:     "cooldown at boundary",
			snapshot: Snapshot{Count: 50, SinceNotify: 15 * time.Second},
			want:     false,
		},
		{
			name:     "both at boundary",
			snapshot: Snapshot{Count: 10, SinceNotify: 15 * time.Second},
			want:     false,
		},
		{
			name:     "cooldown active",
			snapshot: Snapshot{Count: 100, SinceNotify: time.Second},
			want:     false,
		},
		{
			name:     "short streak",
			snapshot: Snapshot{Count: 1, SinceNotify: Never},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ShouldNotify(tt.snapshot))
		})
	}
}

func TestShouldNotify_CustomThresholds(t *testing.T) {
	p := Policy{NotifyCooldown: time.Second, ConfirmationCount: 2, StreakTimeout: time.Second}

	assert.True(t, p.ShouldNotify(Snapshot{Count: 3, SinceNotify: 1001 * time.Millisecond}))
	assert.False(t, p.ShouldNotify(Snapshot{Count: 2, SinceNotify: time.Hour}))
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.NotifyCooldown = -time.Second
	assert.ErrorIs(t, p.Validate(), ErrConfiguration)

	p = DefaultPolicy()
	p.ConfirmationCount = -1
	assert.ErrorIs(t, p.Validate(), ErrConfiguration)

	p = DefaultPolicy()
	p.StreakTimeout = 0
	assert.ErrorIs(t, p.Validate(), ErrConfiguration)
}
