package service

import (
	"context"

	"github.com/MKhiriev/go-note-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// AuthorityService is the server-side note collection with last-writer-wins
// arbitration.
type AuthorityService interface {
	// List returns every stored note, trashed ones included.
	List(ctx context.Context) ([]models.Note, error)

	// Upsert stores note when its UpdatedAt is strictly greater than the
	// stored copy's. Otherwise the stored copy is returned with
	// [models.UpsertRejected].
	Upsert(ctx context.Context, note models.Note) (models.UpsertResult, error)

	// Delete permanently removes the note. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
