package presence

import "errors"

// ErrConfiguration marks startup failures: empty manifests, empty identity sets,
// invalid tunables. The process exits before entering the frame loop.
var ErrConfiguration = errors.New("configuration error")

// ErrUnknownIdentity is returned when the ledger is asked to update an identity that
// is not in the registry. It indicates a wiring bug between recognizer and registry.
var ErrUnknownIdentity = errors.New("unknown identity")
