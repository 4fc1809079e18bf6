package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/validators"
	"github.com/MKhiriev/go-note-keeper/models"
)

const (
	upsertAttempts   = 3
	upsertRetryDelay = 20 * time.Millisecond
)

type noteRepository struct {
	*DB
}

// NewNoteRepository returns the SQL authority repository for a migrated DB
// (sqlite or postgres).
func NewNoteRepository(db *DB) NoteRepository {
	return &noteRepository{db}
}

func (r *noteRepository) List(ctx context.Context) ([]models.Note, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectAllNotesQuery(r.statements())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		r.logDBError(ctx, err, "noteRepository.List", "error querying notes")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		var id, payload string
		if err = rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		note, parseErr := decodeStoredNote(id, payload)
		if parseErr != nil {
			log.Warn().Err(parseErr).Str("func", "noteRepository.List").Str("note_id", id).Msg("skipping corrupt stored note")
			continue
		}
		notes = append(notes, note)
	}

	if err = rows.Err(); err != nil {
		r.logDBError(ctx, err, "noteRepository.List", "error iterating notes")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return notes, nil
}

// UpsertIfNewer runs the conditional upsert again, after a short pause, when
// it fails with an error the driver classifies as retryable.
func (r *noteRepository) UpsertIfNewer(ctx context.Context, note models.Note) (models.Note, bool, error) {
	for attempt := 1; ; attempt++ {
		stored, written, err := r.upsertIfNewer(ctx, note)
		if err == nil || attempt == upsertAttempts || r.classify(err) != Retryable {
			return stored, written, err
		}

		logger.FromContext(ctx).Debug().Err(err).Str("func", "noteRepository.UpsertIfNewer").
			Str("note_id", note.ID).Int("attempt", attempt).Msg("retrying conditional upsert")

		select {
		case <-ctx.Done():
			return models.Note{}, false, errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * upsertRetryDelay):
		}
	}
}

func (r *noteRepository) upsertIfNewer(ctx context.Context, note models.Note) (models.Note, bool, error) {
	log := logger.FromContext(ctx)

	note.Synced = false
	payload, err := json.Marshal(note)
	if err != nil {
		return models.Note{}, false, fmt.Errorf("%w: %w", ErrEncodingNote, err)
	}

	upsertQuery, upsertArgs, err := buildUpsertNoteIfNewerQuery(r.statements(), note.ID, payload, note.UpdatedAt, note.Deleted)
	if err != nil {
		return models.Note{}, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	// begin transaction
	tx, err := r.BeginTx(ctx, nil)
	if err != nil {
		r.logDBError(ctx, err, "noteRepository.UpsertIfNewer", "error during opening transaction")
		return models.Note{}, false, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, upsertQuery, upsertArgs...)
	if err != nil {
		r.logDBError(ctx, err, "noteRepository.UpsertIfNewer", "error executing conditional upsert")
		return models.Note{}, false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return models.Note{}, false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if rowsAffected > 0 {
		if err = tx.Commit(); err != nil {
			r.logDBError(ctx, err, "noteRepository.UpsertIfNewer", "error committing upsert")
			return models.Note{}, false, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
		}
		return note, true, nil
	}

	// an equal or newer copy is stored: read it inside the same transaction
	selectQuery, selectArgs, err := buildSelectNoteQuery(r.statements(), note.ID)
	if err != nil {
		return models.Note{}, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var id, storedPayload string
	if err = tx.QueryRowContext(ctx, selectQuery, selectArgs...).Scan(&id, &storedPayload); err != nil {
		r.logDBError(ctx, err, "noteRepository.UpsertIfNewer", "error reading stored note")
		return models.Note{}, false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if err = tx.Commit(); err != nil {
		return models.Note{}, false, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	stored, err := decodeStoredNote(id, storedPayload)
	if err != nil {
		log.Error().Err(err).Str("func", "noteRepository.UpsertIfNewer").Str("note_id", id).Msg("stored note is corrupt")
		return models.Note{}, false, err
	}

	return stored, false, nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	query, args, err := buildDeleteNoteQuery(r.statements(), id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.ExecContext(ctx, query, args...); err != nil {
		r.logDBError(ctx, err, "noteRepository.Delete", "error deleting note")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *noteRepository) logDBError(ctx context.Context, err error, fn, msg string) {
	if errors.Is(err, context.Canceled) {
		return
	}

	event := logger.FromContext(ctx).Err(err).Str("func", fn).Stringer("classification", r.classify(err))
	if code := postgresError(err); code != "" {
		event = event.Str("pg_code", code)
	}
	event.Msg(msg)
}

func decodeStoredNote(id, payload string) (models.Note, error) {
	note, err := validators.ParseNote([]byte(payload))
	if err != nil {
		return models.Note{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	if note.ID != id {
		return models.Note{}, fmt.Errorf("%w: payload id %q does not match key %q", ErrCorruptRecord, note.ID, id)
	}
	return note, nil
}
