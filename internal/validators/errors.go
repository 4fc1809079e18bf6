package validators

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	// ErrInvalidNote is the parent of every note validation failure.
	ErrInvalidNote = errors.New("invalid note")

	ErrMalformedNote     = fmt.Errorf("%w: malformed json", ErrInvalidNote)
	ErrEmptyID           = fmt.Errorf("%w: id is required", ErrInvalidNote)
	ErrInvalidTimestamps = fmt.Errorf("%w: timestamps must be non-negative", ErrInvalidNote)
	ErrInvalidDeletedAt  = fmt.Errorf("%w: deletedAt set on an active note", ErrInvalidNote)
	ErrNotAnArray        = errors.New("payload is not a json array")
)
