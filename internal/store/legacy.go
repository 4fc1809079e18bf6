package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/validators"
)

// MigrateLegacy imports the legacy JSON store at path (a single array of
// notes) into local, then removes the file. It returns the number of notes
// written.
//
// Entries are upserted one by one. Invalid entries are skipped and logged,
// and a local copy that is equal or newer than the legacy one is kept. A
// missing file is a no-op. On a store failure the file is left in place and
// the import is retried on the next start; the puts are idempotent.
func MigrateLegacy(ctx context.Context, path string, local LocalStore, log *logger.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error reading legacy store: %w", err)
	}

	notes, invalid, err := validators.ParseNotes(data)
	if err != nil {
		return 0, fmt.Errorf("error decoding legacy store: %w", err)
	}

	for _, inv := range invalid {
		log.Warn().Err(inv).Str("func", "MigrateLegacy").Msg("skipping invalid legacy note")
	}

	migrated := 0
	for _, note := range notes {
		// legacy entries were never acknowledged under the new scheme
		note.Synced = false
		written, err := local.PutIfNewer(ctx, note)
		if err != nil {
			return migrated, err
		}
		if written {
			migrated++
		}
	}

	if err = os.Remove(path); err != nil {
		return migrated, fmt.Errorf("error removing legacy store: %w", err)
	}

	log.Info().Str("func", "MigrateLegacy").
		Int("migrated", migrated).
		Int("invalid", len(invalid)).
		Msg("legacy store migrated")

	return migrated, nil
}
