package validators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/models"
)

var noteValidator = NewNoteValidator()

// Invalid describes one entry of a batch that failed to parse or validate.
type Invalid struct {
	// Index is the entry position in the batch.
	Index int

	// ID is the entry id when it could be decoded.
	ID string

	// Reason wraps ErrInvalidNote.
	Reason error
}

func (i Invalid) Error() string {
	if i.ID == "" {
		return fmt.Sprintf("entry #%d: %v", i.Index, i.Reason)
	}
	return fmt.Sprintf("entry #%d (%s): %v", i.Index, i.ID, i.Reason)
}

func (i Invalid) Unwrap() error {
	return i.Reason
}

// ParseNote decodes one note, validates it and applies field defaults.
// Active notes carrying a deletedAt are normalized rather than rejected;
// every other failure wraps ErrInvalidNote.
func ParseNote(data []byte) (models.Note, error) {
	var note models.Note
	if err := json.Unmarshal(data, &note); err != nil {
		return models.Note{}, fmt.Errorf("%w: %v", ErrMalformedNote, err)
	}

	if err := noteValidator.Validate(context.Background(), note, FieldID, FieldTimestamps); err != nil {
		return models.Note{}, err
	}

	note.Synced = false
	note.Normalize()
	return note, nil
}

// ParseNotes decodes a JSON array of notes entry by entry. The valid subset
// is returned together with a description of every rejected entry. The
// error is non-nil only when data is not an array at all.
func ParseNotes(data []byte) ([]models.Note, []Invalid, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotAnArray, err)
	}

	notes := make([]models.Note, 0, len(raw))
	var invalid []Invalid
	for i, entry := range raw {
		note, err := ParseNote(entry)
		if err != nil {
			invalid = append(invalid, Invalid{Index: i, ID: peekID(entry), Reason: err})
			continue
		}
		notes = append(notes, note)
	}

	return notes, invalid, nil
}

func peekID(entry []byte) string {
	var probe struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(entry, &probe); err != nil {
		return ""
	}
	if id, ok := probe.ID.(string); ok {
		return id
	}
	return ""
}
