// Package migrations embeds the goose SQL migrations of the client local
// store and of the authority repository.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed local/*.sql authority/*.sql
var embedMigrations embed.FS

// Dialects accepted by MigrateAuthority.
const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"
)

// MigrateLocal brings the client local store schema up to date.
func MigrateLocal(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, goose.DialectSQLite3, "local")
}

// MigrateAuthority brings the authority notes schema up to date.
func MigrateAuthority(ctx context.Context, db *sql.DB, dialect string) error {
	switch dialect {
	case DialectSQLite:
		return migrate(ctx, db, goose.DialectSQLite3, "authority")
	case DialectPostgres:
		return migrate(ctx, db, goose.DialectPostgres, "authority")
	default:
		return fmt.Errorf("migration error: unsupported dialect %q", dialect)
	}
}

func migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect, dir string) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	fsys, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return fmt.Errorf("migration error opening %s migrations: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("migration error creating provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
