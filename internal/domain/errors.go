package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist. An unresolvable region label also yields
// ErrNotFound: a label that maps to no region can never have a trip.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing province, rating out of range, photo index
// out of bounds).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrPersistence is returned when the key-value store fails to read or
// write the trip collection. The in-memory state is left unchanged.
// Handlers should map this to HTTP 500.
var ErrPersistence = errors.New("persistence failure")
