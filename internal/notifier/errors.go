package notifier

import "errors"

var (
	// ErrInvalidEvent is returned when publishing an unknown event type.
	ErrInvalidEvent = errors.New("invalid event type")

	// ErrEndpointClosed is returned when publishing through a closed endpoint.
	ErrEndpointClosed = errors.New("endpoint is closed")
)
