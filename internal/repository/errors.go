// Package repository defines data access for the study-space tables.
// Sentinel errors declared here are shared across repositories so that
// handlers can translate failure modes into HTTP responses: ErrForbidden
// maps to 403, ErrSeatUnavailable to 400 (the seat exists but is not
// vacant), and the per-entity not-found sentinels to 404.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they are not allowed to touch.
var ErrForbidden = errors.New("forbidden")

// ErrSeatUnavailable is returned when an occupy is attempted on a seat
// that is not vacant.
var ErrSeatUnavailable = errors.New("seat not available")
