// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service/transport layers.
var (
	// ErrNotFound indicates the requested entity (or remote content) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated indicates missing or unverifiable caller identity.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidArgument indicates a request that fails validation (e.g. negative point).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrForbidden indicates access to a book the caller has not purchased.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyPurchased indicates a repeated purchase rejected by the duplicate policy.
	ErrAlreadyPurchased = errors.New("already purchased")

	// ErrUpstream indicates a failure of the external content service.
	ErrUpstream = errors.New("upstream error")

	// ErrStorage wraps persistence failures.
	ErrStorage = errors.New("storage error")
)
