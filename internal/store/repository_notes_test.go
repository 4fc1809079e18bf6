package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-note-keeper/internal/config"
)

func TestNoteRepository_LastWriterWins(t *testing.T) {
	repo := NewNoteRepository(newAuthoritySQLiteDB(t))
	ctx := context.Background()

	stored, written, err := repo.UpsertIfNewer(ctx, note("a", 300, "B1"))
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, "B1", stored.Title)

	// older write is rejected and the stored copy returned
	stored, written, err = repo.UpsertIfNewer(ctx, note("a", 280, "B2"))
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, "B1", stored.Title)
	assert.Equal(t, int64(300), stored.UpdatedAt)

	// ties keep the first write
	stored, written, err = repo.UpsertIfNewer(ctx, note("a", 300, "B3"))
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, "B1", stored.Title)

	// strictly newer wins
	newer := note("a", 301, "B4")
	newer.Deleted = true
	at := int64(301)
	newer.DeletedAt = &at
	stored, written, err = repo.UpsertIfNewer(ctx, newer)
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, newer, stored)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, newer, all[0])
}

func TestNoteRepository_Idempotent(t *testing.T) {
	repo := NewNoteRepository(newAuthoritySQLiteDB(t))
	ctx := context.Background()
	n := note("a", 10, "same")

	_, written, err := repo.UpsertIfNewer(ctx, n)
	require.NoError(t, err)
	assert.True(t, written)

	stored, written, err := repo.UpsertIfNewer(ctx, n)
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, n, stored)
}

func TestNoteRepository_OrderIndependence(t *testing.T) {
	w1 := note("x", 100, "first")
	w2 := note("x", 200, "second")

	for name, order := range map[string][]int{"w1 then w2": {0, 1}, "w2 then w1": {1, 0}} {
		t.Run(name, func(t *testing.T) {
			repo := NewNoteRepository(newAuthoritySQLiteDB(t))
			ctx := context.Background()
			writes := []struct {
				id    string
				at    int64
				title string
			}{{w1.ID, w1.UpdatedAt, w1.Title}, {w2.ID, w2.UpdatedAt, w2.Title}}

			for _, i := range order {
				_, _, err := repo.UpsertIfNewer(ctx, note(writes[i].id, writes[i].at, writes[i].title))
				require.NoError(t, err)
			}

			all, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, "second", all[0].Title)
		})
	}
}

func TestNoteRepository_Delete(t *testing.T) {
	repo := NewNoteRepository(newAuthoritySQLiteDB(t))
	ctx := context.Background()

	_, _, err := repo.UpsertIfNewer(ctx, note("a", 1, "A"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "a"))
	require.NoError(t, repo.Delete(ctx, "a"))
	require.NoError(t, repo.Delete(ctx, "never-existed"))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNoteRepository_ListSkipsCorrupt(t *testing.T) {
	db := newAuthoritySQLiteDB(t)
	repo := NewNoteRepository(db)
	ctx := context.Background()

	_, _, err := repo.UpsertIfNewer(ctx, note("a", 1, "A"))
	require.NoError(t, err)
	rawExec(t, db.DB, `INSERT INTO notes (id, payload, updated_at, deleted) VALUES (?, ?, ?, ?)`, "b", "garbage", 1, false)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].ID)
}

func TestNoteRepository_UpsertIfNewer_Mocked(t *testing.T) {
	upsertSQL := regexp.QuoteMeta(`INSERT INTO notes (id,payload,updated_at,deleted) VALUES ($1,$2,$3,$4) ON CONFLICT (id) DO UPDATE SET`)
	selectSQL := regexp.QuoteMeta(`SELECT id, payload FROM notes WHERE id = $1`)

	t.Run("rejected reads stored copy in the same transaction", func(t *testing.T) {
		db, mock := newMockDB(t, config.DriverPostgres)
		mock.ExpectBegin()
		mock.ExpectExec(upsertSQL).WithArgs("a", sqlmock.AnyArg(), int64(5), false).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(selectSQL).WithArgs("a").
			WillReturnRows(sqlmock.NewRows([]string{"id", "payload"}).AddRow("a", `{"id":"a","title":"stored","updatedAt":9}`))
		mock.ExpectCommit()

		stored, written, err := NewNoteRepository(db).UpsertIfNewer(context.Background(), note("a", 5, "mine"))
		require.NoError(t, err)
		assert.False(t, written)
		assert.Equal(t, "stored", stored.Title)
		assert.Equal(t, int64(9), stored.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("accepted commits", func(t *testing.T) {
		db, mock := newMockDB(t, config.DriverPostgres)
		mock.ExpectBegin()
		mock.ExpectExec(upsertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		stored, written, err := NewNoteRepository(db).UpsertIfNewer(context.Background(), note("a", 5, "mine"))
		require.NoError(t, err)
		assert.True(t, written)
		assert.Equal(t, "mine", stored.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-retryable exec failure rolls back", func(t *testing.T) {
		db, mock := newMockDB(t, config.DriverPostgres)
		pgErr := &pgconn.PgError{Code: pgerrcode.CheckViolation}
		mock.ExpectBegin()
		mock.ExpectExec(upsertSQL).WillReturnError(pgErr)
		mock.ExpectRollback()

		_, _, err := NewNoteRepository(db).UpsertIfNewer(context.Background(), note("a", 5, "mine"))
		assert.ErrorIs(t, err, ErrExecutingStatement)
		var target *pgconn.PgError
		assert.True(t, errors.As(err, &target))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("serialization failure is retried", func(t *testing.T) {
		db, mock := newMockDB(t, config.DriverPostgres)
		mock.ExpectBegin()
		mock.ExpectExec(upsertSQL).WillReturnError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectExec(upsertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		stored, written, err := NewNoteRepository(db).UpsertIfNewer(context.Background(), note("a", 5, "mine"))
		require.NoError(t, err)
		assert.True(t, written)
		assert.Equal(t, "mine", stored.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retryable failure gives up after the last attempt", func(t *testing.T) {
		db, mock := newMockDB(t, config.DriverPostgres)
		for range upsertAttempts {
			mock.ExpectBegin()
			mock.ExpectExec(upsertSQL).WillReturnError(&pgconn.PgError{Code: pgerrcode.DeadlockDetected})
			mock.ExpectRollback()
		}

		_, _, err := NewNoteRepository(db).UpsertIfNewer(context.Background(), note("a", 5, "mine"))
		assert.ErrorIs(t, err, ErrExecutingStatement)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sqlite busy is retried", func(t *testing.T) {
		db, mock := newMockDB(t, config.DriverSQLite)
		mock.ExpectBegin().WillReturnError(sqlite3.Error{Code: sqlite3.ErrBusy})
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notes")).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		_, written, err := NewNoteRepository(db).UpsertIfNewer(context.Background(), note("a", 5, "mine"))
		require.NoError(t, err)
		assert.True(t, written)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock := newMockDB(t, config.DriverPostgres)
		mock.ExpectBegin().WillReturnError(errors.New("conn refused"))

		_, _, err := NewNoteRepository(db).UpsertIfNewer(context.Background(), note("a", 5, "mine"))
		assert.ErrorIs(t, err, ErrBeginningTransaction)
	})
}

func TestNoteRepository_ListQueryError(t *testing.T) {
	db, mock := newMockDB(t, config.DriverPostgres)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, payload FROM notes ORDER BY id`)).WillReturnError(errors.New("boom"))

	_, err := NewNoteRepository(db).List(context.Background())
	assert.ErrorIs(t, err, ErrExecutingQuery)
	assert.NoError(t, mock.ExpectationsWereMet())
}
