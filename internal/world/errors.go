package world

import "errors"

// Sentinel errors shared across the engines. Callers classify failures
// with errors.Is; everything else is treated as a storage fault.
var (
	// ErrNotFound reports a missing target, region, or bet. Propagated to
	// the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument reports an out-of-range stake, timeframe, or enum
	// value. Rejected before any mutation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientFavor reports a business-rule rejection: the player
	// cannot afford the action. No mutation is performed.
	ErrInsufficientFavor = errors.New("insufficient divine favor")
)
