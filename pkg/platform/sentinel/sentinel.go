package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about stored records, not rule violations:
//   - ErrNotFound: record does not exist in the store
//   - ErrConflict: a uniqueness constraint rejected the write (the
//     authoritative duplicate signal for at-most-one invariants under
//     concurrent creation)
//   - ErrInvalidState: record is in the wrong state for the requested mutation
//   - ErrUnavailable: backing resource temporarily unreachable
//
// For permission and validation failures use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
