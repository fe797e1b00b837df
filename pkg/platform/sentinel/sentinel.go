package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped) and
// services translate them into coded domain errors:
//   - ErrNotFound: no record for the requested key
//   - ErrAlreadyUsed: a unique key (email, user+course pair) is already taken
//   - ErrInvalidState: the write would break a record invariant (progress range)
//   - ErrUnavailable: backing service unreachable
//
// For request validation failures use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
