package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-note-keeper/internal/validators"
	"github.com/MKhiriev/go-note-keeper/models"
)

// AuthorityServiceWrapper defines middleware composition for AuthorityService.
// Implementations wrap an existing AuthorityService to add behavior such as
// logging or validating.
type AuthorityServiceWrapper interface {
	Wrap(AuthorityService) AuthorityService // returns a decorated AuthorityService applying additional behavior
}

type AuthorityValidationService struct {
	inner     AuthorityService
	validator validators.Validator
}

func NewAuthorityValidationService() AuthorityServiceWrapper {
	return &AuthorityValidationService{
		validator: validators.NewNoteValidator(),
	}
}

func (v *AuthorityValidationService) List(ctx context.Context) ([]models.Note, error) {
	return v.inner.List(ctx)
}

func (v *AuthorityValidationService) Upsert(ctx context.Context, note models.Note) (models.UpsertResult, error) {
	if err := v.validator.Validate(ctx, note); err != nil {
		return models.UpsertResult{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	// bookkeeping fields are never trusted from the wire
	note.Synced = false
	note.Normalize()

	return v.inner.Upsert(ctx, note)
}

func (v *AuthorityValidationService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, validators.ErrEmptyID)
	}

	return v.inner.Delete(ctx, id)
}

func (v *AuthorityValidationService) Wrap(wrapped AuthorityService) AuthorityService {
	v.inner = wrapped
	return v
}
