package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/validators"
	"github.com/MKhiriev/go-note-keeper/models"
)

// sqliteLocalStore keeps one row per note: the wire JSON payload plus the
// local-only synced flag. updated_at is denormalized for inspection.
type sqliteLocalStore struct {
	*DB
}

// NewSQLiteLocalStore returns a LocalStore on top of a migrated sqlite DB.
func NewSQLiteLocalStore(db *DB) LocalStore {
	return &sqliteLocalStore{db}
}

func (s *sqliteLocalStore) GetAll(ctx context.Context) ([]models.Note, error) {
	query, args, err := buildSelectAllLocalNotesQuery(s.statements())
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrStorage, ErrBuildingSQLQuery, err)
	}

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Err(err).Str("func", "sqliteLocalStore.GetAll").Msg("error querying local notes")
		return nil, fmt.Errorf("%w: %w: %w", ErrStorage, ErrExecutingQuery, err)
	}
	defer rows.Close()

	notes := make([]models.Note, 0)
	for rows.Next() {
		note, err := s.scanNote(rows)
		if errors.Is(err, ErrCorruptRecord) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStorage, err)
		}
		notes = append(notes, note)
	}

	if err = rows.Err(); err != nil {
		s.logger.Err(err).Str("func", "sqliteLocalStore.GetAll").Msg("error iterating local notes")
		return nil, fmt.Errorf("%w: %w: %w", ErrStorage, ErrScanningRows, err)
	}

	return notes, nil
}

func (s *sqliteLocalStore) Get(ctx context.Context, id string) (models.Note, error) {
	query, args, err := buildSelectLocalNoteQuery(s.statements(), id)
	if err != nil {
		return models.Note{}, fmt.Errorf("%w: %w: %w", ErrStorage, ErrBuildingSQLQuery, err)
	}

	note, err := s.scanNote(s.QueryRowContext(ctx, query, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, ErrCorruptRecord):
		return models.Note{}, ErrNoteNotFound
	case err != nil:
		s.logger.Err(err).Str("func", "sqliteLocalStore.Get").Str("note_id", id).Msg("error reading local note")
		return models.Note{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return note, nil
}

func (s *sqliteLocalStore) Put(ctx context.Context, note models.Note) error {
	if note.ID == "" {
		return fmt.Errorf("%w: %w", ErrStorage, validators.ErrEmptyID)
	}

	payload, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorage, ErrEncodingNote, err)
	}

	query, args, err := buildUpsertLocalNoteQuery(s.statements(), note.ID, payload, note.UpdatedAt, note.Synced)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorage, ErrBuildingSQLQuery, err)
	}

	if _, err = s.ExecContext(ctx, query, args...); err != nil {
		s.logger.Err(err).Str("func", "sqliteLocalStore.Put").Str("note_id", note.ID).Msg("error saving local note")
		return fmt.Errorf("%w: %w: %w", ErrStorage, ErrExecutingStatement, err)
	}

	return nil
}

func (s *sqliteLocalStore) PutIfNewer(ctx context.Context, note models.Note) (bool, error) {
	if note.ID == "" {
		return false, fmt.Errorf("%w: %w", ErrStorage, validators.ErrEmptyID)
	}

	payload, err := json.Marshal(note)
	if err != nil {
		return false, fmt.Errorf("%w: %w: %w", ErrStorage, ErrEncodingNote, err)
	}

	query, args, err := buildUpsertLocalNoteIfNewerQuery(s.statements(), note.ID, payload, note.UpdatedAt, note.Synced)
	if err != nil {
		return false, fmt.Errorf("%w: %w: %w", ErrStorage, ErrBuildingSQLQuery, err)
	}

	return s.execConditional(ctx, "sqliteLocalStore.PutIfNewer", note.ID, query, args...)
}

func (s *sqliteLocalStore) CompareAndPut(ctx context.Context, note models.Note, expectedUpdatedAt int64) (bool, error) {
	if note.ID == "" {
		return false, fmt.Errorf("%w: %w", ErrStorage, validators.ErrEmptyID)
	}

	payload, err := json.Marshal(note)
	if err != nil {
		return false, fmt.Errorf("%w: %w: %w", ErrStorage, ErrEncodingNote, err)
	}

	query, args, err := buildCompareAndPutLocalNoteQuery(s.statements(), note.ID, payload, note.UpdatedAt, note.Synced, expectedUpdatedAt)
	if err != nil {
		return false, fmt.Errorf("%w: %w: %w", ErrStorage, ErrBuildingSQLQuery, err)
	}

	return s.execConditional(ctx, "sqliteLocalStore.CompareAndPut", note.ID, query, args...)
}

// execConditional runs a write guarded by a WHERE clause and reports whether
// a row was changed.
func (s *sqliteLocalStore) execConditional(ctx context.Context, fn, id, query string, args ...any) (bool, error) {
	res, err := s.ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.Err(err).Str("func", fn).Str("note_id", id).Msg("error saving local note")
		return false, fmt.Errorf("%w: %w: %w", ErrStorage, ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w: %w", ErrStorage, ErrExecutingStatement, err)
	}
	return affected > 0, nil
}

func (s *sqliteLocalStore) PutMany(ctx context.Context, notes ...models.Note) error {
	for _, note := range notes {
		if err := s.Put(ctx, note); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteLocalStore) Delete(ctx context.Context, id string) error {
	query, args, err := buildDeleteLocalNoteQuery(s.statements(), id)
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorage, ErrBuildingSQLQuery, err)
	}

	if _, err = s.ExecContext(ctx, query, args...); err != nil {
		s.logger.Err(err).Str("func", "sqliteLocalStore.Delete").Str("note_id", id).Msg("error deleting local note")
		return fmt.Errorf("%w: %w: %w", ErrStorage, ErrExecutingStatement, err)
	}

	return nil
}

func (s *sqliteLocalStore) Clear(ctx context.Context) error {
	query, args, err := buildClearLocalNotesQuery(s.statements())
	if err != nil {
		return fmt.Errorf("%w: %w: %w", ErrStorage, ErrBuildingSQLQuery, err)
	}

	if _, err = s.ExecContext(ctx, query, args...); err != nil {
		s.logger.Err(err).Str("func", "sqliteLocalStore.Clear").Msg("error clearing local notes")
		return fmt.Errorf("%w: %w: %w", ErrStorage, ErrExecutingStatement, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanNote reads one row. Rows whose payload does not parse, or parses to a
// different id, are logged and reported as ErrCorruptRecord.
func (s *sqliteLocalStore) scanNote(row rowScanner) (models.Note, error) {
	var (
		id      string
		payload string
		synced  bool
	)
	if err := row.Scan(&id, &payload, &synced); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Note{}, err
		}
		return models.Note{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	note, err := validators.ParseNote([]byte(payload))
	if err == nil && note.ID != id {
		err = fmt.Errorf("payload id %q does not match key", note.ID)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("func", "sqliteLocalStore.scanNote").Str("note_id", id).Msg("skipping corrupt local note")
		return models.Note{}, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	note.Synced = synced
	return note, nil
}
