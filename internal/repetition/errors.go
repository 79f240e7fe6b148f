package repetition

import "errors"

var (
	// ErrNotFound is returned when no schedule item or reviewable item matches an identifier.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a user already has the item scheduled.
	ErrAlreadyExists = errors.New("already scheduled")
	// ErrInvalidState is returned when a stored schedule item violates an invariant.
	ErrInvalidState = errors.New("invalid schedule state")
	// ErrUnauthorized is returned when a schedule item belongs to another user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is returned for malformed identifiers or contradictory review input.
	ErrInvalidArgument = errors.New("invalid argument")
)
