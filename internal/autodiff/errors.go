package autodiff

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrInvalidArgument reports an absent or stale node handle, a nil tape or
	// an operation kind that cannot be used where it was given.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrTapeLocked reports a push onto a compiled tape.
	ErrTapeLocked = errors.New("tape is locked")

	// ErrOutOfBounds reports a tape index outside [0, Len()).
	ErrOutOfBounds = errors.New("index out of bounds")

	// ErrCycleDetected reports a node reachable from itself, which only
	// Remake can produce.
	ErrCycleDetected = errors.New("cycle detected")
)

func invalidNode(op, role string, n Node) error {
	return fmt.Errorf("autodiff: %s: %w: %s node %v is absent or released", op, ErrInvalidArgument, role, n)
}
