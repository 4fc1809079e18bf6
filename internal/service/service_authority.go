package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

type authorityService struct {
	noteRepository store.NoteRepository

	logger *logger.Logger
}

func NewAuthorityService(noteRepository store.NoteRepository, logger *logger.Logger) AuthorityService {
	return &authorityService{
		noteRepository: noteRepository,
		logger:         logger,
	}
}

func (a *authorityService) List(ctx context.Context) ([]models.Note, error) {
	return a.noteRepository.List(ctx)
}

func (a *authorityService) Upsert(ctx context.Context, note models.Note) (models.UpsertResult, error) {
	stored, written, err := a.noteRepository.UpsertIfNewer(ctx, note)
	if err != nil {
		return models.UpsertResult{}, fmt.Errorf("error upserting note: %w", err)
	}

	if !written {
		logger.FromContext(ctx).Info().Str("func", "authorityService.Upsert").
			Str("note_id", note.ID).
			Int64("incoming_updated_at", note.UpdatedAt).
			Int64("stored_updated_at", stored.UpdatedAt).
			Msg("stale write rejected")
		return models.UpsertResult{Status: models.UpsertRejected, Note: stored}, nil
	}

	return models.UpsertResult{Status: models.UpsertAccepted, Note: stored}, nil
}

func (a *authorityService) Delete(ctx context.Context, id string) error {
	return a.noteRepository.Delete(ctx, id)
}
