package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-note-keeper/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldID targets the client-generated note identifier.
	FieldID = "id"

	// FieldTimestamps targets createdAt and updatedAt.
	FieldTimestamps = "timestamps"

	// FieldDeletedAt targets the consistency of deleted and deletedAt.
	FieldDeletedAt = "deleted_at"
)

var allNoteFields = []string{FieldID, FieldTimestamps, FieldDeletedAt}

// NoteValidator checks structural invariants of [models.Note].
type NoteValidator struct{}

func NewNoteValidator() Validator {
	return &NoteValidator{}
}

func (v *NoteValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Note:
		return v.validateNote(ctx, value, fields...)
	case *models.Note:
		if value == nil {
			return fmt.Errorf("%w: nil note", ErrInvalidNote)
		}
		return v.validateNote(ctx, *value, fields...)
	case []models.Note:
		for i, n := range value {
			if err := v.validateNote(ctx, n, fields...); err != nil {
				return fmt.Errorf("note #%d: %w", i, err)
			}
		}
		return nil
	default:
		return ErrUnsupportedType
	}
}

func (v *NoteValidator) validateNote(_ context.Context, note models.Note, fields ...string) error {
	if len(fields) == 0 {
		fields = allNoteFields
	}

	for _, field := range fields {
		switch field {
		case FieldID:
			if strings.TrimSpace(note.ID) == "" {
				return ErrEmptyID
			}
		case FieldTimestamps:
			if note.CreatedAt < 0 || note.UpdatedAt < 0 {
				return ErrInvalidTimestamps
			}
			if note.DeletedAt != nil && *note.DeletedAt < 0 {
				return ErrInvalidTimestamps
			}
		case FieldDeletedAt:
			if !note.Deleted && note.DeletedAt != nil {
				return ErrInvalidDeletedAt
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}

	return nil
}
