// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrConflict signals that an operation
// cannot proceed due to existing dependent records (e.g. deleting
// a room that still has bookings).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a room that still has non-cancelled bookings. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrHomeNotFound is returned when a home does not exist or is not
// visible to the caller.
var ErrHomeNotFound = errors.New("home not found")

// ErrRoomNotFound is returned when a room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound is returned when a booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrRoomFull is returned when a booking targets a room whose beds
// are exhausted (is_completed = true).
var ErrRoomFull = errors.New("room has no free beds")

// ErrInvalidDateRange is returned when a booking window fails the
// end-after-start or 1..30 day duration rules.
var ErrInvalidDateRange = errors.New("invalid date range")
