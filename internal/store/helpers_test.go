package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
)

func newMockDB(t *testing.T, driver string) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storeDB := &DB{
		DB:     db,
		driver: driver,
		logger: logger.Nop(),
	}
	if driver == config.DriverPostgres {
		storeDB.errorClassificator = NewPostgresErrorClassifier()
	} else {
		storeDB.errorClassificator = NewSQLiteErrorClassifier()
	}
	return storeDB, mock
}

func newSQLiteDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewConnectSQLite(context.Background(), filepath.Join(t.TempDir(), "notes.db"), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newLocalSQLiteDB(t *testing.T) *DB {
	t.Helper()
	db := newSQLiteDB(t)
	require.NoError(t, db.MigrateLocal(context.Background()))
	return db
}

func newAuthoritySQLiteDB(t *testing.T) *DB {
	t.Helper()
	db := newSQLiteDB(t)
	require.NoError(t, db.MigrateAuthority(context.Background()))
	return db
}

func rawExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	_, err := db.Exec(query, args...)
	require.NoError(t, err)
}

func note(id string, updatedAt int64, title string) models.Note {
	return models.Note{
		ID:        id,
		Title:     title,
		Content:   "body",
		Category:  models.DefaultCategory,
		Tags:      []string{},
		CreatedAt: 1,
		UpdatedAt: updatedAt,
	}
}

func nopLogger() *logger.Logger {
	return logger.Nop()
}
