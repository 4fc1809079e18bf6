package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
)

// memoryDSN selects the in-process LocalStore.
const memoryDSN = ":memory:"

// ClientStorages groups the client-side storage into a single value that
// can be passed to the service layer.
type ClientStorages struct {
	// LocalStore is the durable per-device note cache.
	LocalStore LocalStore

	db *DB
}

// NewClientStorages initialises the client storage layer:
//  1. ":memory:" selects the in-process store, anything else is an sqlite
//     file created on demand and migrated.
//  2. A legacy JSON store configured in cfg.LegacyPath is imported once.
//     Import failures are logged and do not prevent start-up.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, log *logger.Logger) (*ClientStorages, error) {
	log.Info().Msg("creating new storages...")

	storages := &ClientStorages{}
	if cfg.DSN == memoryDSN {
		storages.LocalStore = NewMemoryLocalStore()
	} else {
		db, err := NewConnectSQLite(ctx, cfg.DSN, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection error: %w", err)
		}

		if err = db.MigrateLocal(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}

		storages.db = db
		storages.LocalStore = NewSQLiteLocalStore(db)
	}

	if cfg.LegacyPath != "" {
		if _, err := MigrateLegacy(ctx, cfg.LegacyPath, storages.LocalStore, log); err != nil {
			log.Warn().Err(err).Str("path", cfg.LegacyPath).Msg("legacy store was not migrated")
		}
	}

	return storages, nil
}

// Close releases the database connection, if any.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Storages groups the authority server repositories.
type Storages struct {
	NoteRepository NoteRepository

	db *DB
}

// NewStorages connects to the configured driver, applies migrations and
// builds the repositories.
func NewStorages(ctx context.Context, cfg config.ServerDB, log *logger.Logger) (*Storages, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg.DSN, log)
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg.DSN, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s connection error: %w", cfg.Driver, err)
	}

	if err = db.MigrateAuthority(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("migration failed: %w", err), db.Close())
	}

	return &Storages{
		NoteRepository: NewNoteRepository(db),
		db:             db,
	}, nil
}

// Close releases the database connection.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
