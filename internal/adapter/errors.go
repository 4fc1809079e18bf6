package adapter

import (
	"errors"
	"fmt"
)

// ErrConnectivity is the parent of every error returned by [RemoteAuthority].
// The reconciler treats it as "offline, retry on the next cycle".
var ErrConnectivity = errors.New("remote authority unreachable")

// Status-specific errors. Each one wraps ErrConnectivity.
var (
	ErrBadRequest          = fmt.Errorf("%w: bad request", ErrConnectivity)
	ErrNotFound            = fmt.Errorf("%w: not found", ErrConnectivity)
	ErrInternalServerError = fmt.Errorf("%w: internal server error", ErrConnectivity)
	ErrBadGateway          = fmt.Errorf("%w: bad gateway", ErrConnectivity)
	ErrServiceUnavailable  = fmt.Errorf("%w: service unavailable", ErrConnectivity)
	ErrUnexpectedStatus    = fmt.Errorf("%w: unexpected status", ErrConnectivity)

	// ErrInvalidResponse is returned when a 2xx body cannot be decoded.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response", ErrConnectivity)
)
