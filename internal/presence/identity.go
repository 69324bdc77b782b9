package presence

import (
	"strconv"
	"time"
)

// Identity is the numeric training label of a registered person.
type Identity int

func (id Identity) String() string {
	return strconv.Itoa(int(id))
}

// Never is the sentinel timer value for an identity that has not been observed yet.
const Never = 9999999 * time.Second

// SightingState is the per-identity presence state owned by the Ledger.
type SightingState struct {
	SinceSighting time.Duration
	SinceNotify   time.Duration
	Count         int
}

// Snapshot is the post-sighting view handed to the notification policy.
type Snapshot struct {
	Identity    Identity
	Count       int
	SinceNotify time.Duration
}

// IdentityState pairs an identity with a copy of its state.
type IdentityState struct {
	Identity Identity
	SightingState
}
