package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/migrations"
)

// DB wraps a connection pool with its dialect-specific query builder and
// error classifier.
type DB struct {
	*sql.DB
	driver             string
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// statements returns a squirrel builder using the placeholder format of
// the connected driver.
func (db *DB) statements() sq.StatementBuilderType {
	if db.driver == config.DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// MigrateLocal applies the client local store migrations.
func (db *DB) MigrateLocal(ctx context.Context) error {
	return migrations.MigrateLocal(ctx, db.DB)
}

// MigrateAuthority applies the authority notes migrations.
func (db *DB) MigrateAuthority(ctx context.Context) error {
	return migrations.MigrateAuthority(ctx, db.DB, db.driver)
}

func (db *DB) classify(err error) ErrorClassification {
	if db.errorClassificator == nil {
		return NonRetryable
	}
	return db.errorClassificator.Classify(err)
}
