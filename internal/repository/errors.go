// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. Seat
// contention in particular is an expected, frequent outcome: ErrSeatTaken
// signals that another buyer already holds or bought the seat, and is
// never treated as a system failure.
package repository

import "errors"

// ErrSeatTaken is returned when a hold cannot be created because an
// unexpired HELD or a CONFIRMED reservation already exists for the
// same (event, seat code). Handlers should translate this into an
// HTTP 409 response with a "taken" status, not an error page.
var ErrSeatTaken = errors.New("seat taken")

// ErrHoldNotFound is returned when a confirm refers to a reservation
// that does not exist in HELD state. Release treats the same
// condition as a no-op instead.
var ErrHoldNotFound = errors.New("hold not found")

// ErrHoldExpired is returned when a confirm arrives after the hold's
// TTL has passed. The purchase attempt has failed; callers must
// restart from seat selection rather than retry the stale hold.
var ErrHoldExpired = errors.New("hold expired")

// ErrSectionNotFound is returned when an event has no section with
// the requested name. Handlers should translate this into a 400
// validation failure.
var ErrSectionNotFound = errors.New("section not found")
