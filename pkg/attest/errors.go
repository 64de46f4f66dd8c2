package attest

import "errors"

var (
	// ErrNotFound is returned when a schema id is unknown to the service.
	ErrNotFound = errors.New("attest: not found")
	// ErrInvalidRequest is returned when the service rejects a payload.
	ErrInvalidRequest = errors.New("attest: invalid request")
	// ErrUnauthorized is returned when the request signature is rejected.
	ErrUnauthorized = errors.New("attest: unauthorized")
)
