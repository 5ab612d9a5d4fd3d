// Package common defines shared constants, helpers and sentinel errors used
// across client and server layers of sigrelay. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors. Expired entries are reported as not found.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")
	ErrorForbidden  = errors.New("forbidden")

	// Bearer gate errors. A malformed header is a client mistake and is kept
	// distinct from a well-formed credential that matches no live session.
	ErrorBadRequest      = errors.New("bad request")
	ErrorUnauthenticated = errors.New("unauthenticated")

	// Key and signature errors.
	ErrInvalidKey          = errors.New("invalid key")
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrorSignatureMismatch = errors.New("signature mismatch")
	ErrKeyMismatch         = errors.New("private key does not match public key")
	ErrAlreadySigned       = errors.New("event already signed")

	// ErrEntropyFailure means the system random source failed. Key generation
	// cannot proceed and the operation must not be retried.
	ErrEntropyFailure = errors.New("entropy source failure")
)
