package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	localNotesTable = "local_notes"
	notesTable      = "notes"

	upsertLocalNoteSuffix = `ON CONFLICT (id) DO UPDATE SET
		payload = excluded.payload,
		updated_at = excluded.updated_at,
		synced = excluded.synced`

	// another process sharing the file may have written a newer copy since
	// the caller read it; that copy wins
	upsertLocalNoteIfNewerSuffix = upsertLocalNoteSuffix + `
		WHERE local_notes.updated_at < excluded.updated_at`

	// the WHERE clause makes the write conditional: an equal or newer stored
	// copy is left untouched and no row is reported as affected
	upsertNoteIfNewerSuffix = `ON CONFLICT (id) DO UPDATE SET
		payload = excluded.payload,
		updated_at = excluded.updated_at,
		deleted = excluded.deleted
		WHERE notes.updated_at < excluded.updated_at`
)

// ── local store ───────────────────────────────────────────────────────────────

func buildSelectAllLocalNotesQuery(sb sq.StatementBuilderType) (string, []any, error) {
	return sb.Select("id", "payload", "synced").
		From(localNotesTable).
		ToSql()
}

func buildSelectLocalNoteQuery(sb sq.StatementBuilderType, id string) (string, []any, error) {
	return sb.Select("id", "payload", "synced").
		From(localNotesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildUpsertLocalNoteQuery(sb sq.StatementBuilderType, id string, payload []byte, updatedAt int64, synced bool) (string, []any, error) {
	return sb.Insert(localNotesTable).
		Columns("id", "payload", "updated_at", "synced").
		Values(id, string(payload), updatedAt, synced).
		Suffix(upsertLocalNoteSuffix).
		ToSql()
}

func buildUpsertLocalNoteIfNewerQuery(sb sq.StatementBuilderType, id string, payload []byte, updatedAt int64, synced bool) (string, []any, error) {
	return sb.Insert(localNotesTable).
		Columns("id", "payload", "updated_at", "synced").
		Values(id, string(payload), updatedAt, synced).
		Suffix(upsertLocalNoteIfNewerSuffix).
		ToSql()
}

func buildCompareAndPutLocalNoteQuery(sb sq.StatementBuilderType, id string, payload []byte, updatedAt int64, synced bool, expectedUpdatedAt int64) (string, []any, error) {
	return sb.Update(localNotesTable).
		Set("payload", string(payload)).
		Set("updated_at", updatedAt).
		Set("synced", synced).
		Where(sq.Eq{"id": id, "updated_at": expectedUpdatedAt}).
		ToSql()
}

func buildDeleteLocalNoteQuery(sb sq.StatementBuilderType, id string) (string, []any, error) {
	return sb.Delete(localNotesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildClearLocalNotesQuery(sb sq.StatementBuilderType) (string, []any, error) {
	return sb.Delete(localNotesTable).ToSql()
}

// ── authority repository ──────────────────────────────────────────────────────

func buildSelectAllNotesQuery(sb sq.StatementBuilderType) (string, []any, error) {
	return sb.Select("id", "payload").
		From(notesTable).
		OrderBy("id").
		ToSql()
}

func buildSelectNoteQuery(sb sq.StatementBuilderType, id string) (string, []any, error) {
	return sb.Select("id", "payload").
		From(notesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildUpsertNoteIfNewerQuery(sb sq.StatementBuilderType, id string, payload []byte, updatedAt int64, deleted bool) (string, []any, error) {
	return sb.Insert(notesTable).
		Columns("id", "payload", "updated_at", "deleted").
		Values(id, string(payload), updatedAt, deleted).
		Suffix(upsertNoteIfNewerSuffix).
		ToSql()
}

func buildDeleteNoteQuery(sb sq.StatementBuilderType, id string) (string, []any, error) {
	return sb.Delete(notesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
}
