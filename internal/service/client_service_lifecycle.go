package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

type lifecycle struct {
	local      store.LocalStore
	reconciler Reconciler
	ids        IDGenerator
	clock      Clock

	logger *logger.Logger
}

// NewLifecycle returns a Lifecycle that persists through reconciler and
// reads from local. Pushes and hard deletes run in the background.
func NewLifecycle(local store.LocalStore, reconciler Reconciler, ids IDGenerator, clock Clock, log *logger.Logger) Lifecycle {
	if clock == nil {
		clock = time.Now
	}

	return &lifecycle{
		local:      local,
		reconciler: reconciler,
		ids:        ids,
		clock:      clock,
		logger:     log,
	}
}

func (l *lifecycle) Create(ctx context.Context, draft models.NoteDraft) (models.Note, error) {
	note := models.Note{
		ID:       l.ids.Generate(),
		Title:    cmp.Or(draft.Title, models.DefaultTitle),
		Content:  cmp.Or(draft.Content, models.DefaultContent),
		Category: draft.Category,
		Tags:     draft.Tags,
		IsPinned: draft.IsPinned,
	}

	saved, err := l.reconciler.Save(ctx, note)
	if err != nil {
		return models.Note{}, fmt.Errorf("error creating note: %w", err)
	}

	l.logger.Debug().Str("func", "lifecycle.Create").Str("note_id", saved.ID).Msg("note created")
	l.reconciler.PushAsync(ctx, saved.ID)
	return saved, nil
}

func (l *lifecycle) Update(ctx context.Context, id string, update models.NoteUpdate) (models.Note, error) {
	note, err := l.local.Get(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	if note.Deleted {
		return models.Note{}, fmt.Errorf("%w: note %s is in the trash", ErrInvalidTransition, id)
	}
	if update.IsEmpty() {
		return note, nil
	}

	update.Apply(&note)
	return l.persist(ctx, note)
}

func (l *lifecycle) Trash(ctx context.Context, id string) (models.Note, error) {
	note, err := l.local.Get(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	if note.State() != models.NoteActive {
		return models.Note{}, fmt.Errorf("%w: cannot trash a %s note", ErrInvalidTransition, note.State())
	}

	deletedAt := l.clock().UnixMilli()
	note.Deleted = true
	note.DeletedAt = &deletedAt
	return l.persist(ctx, note)
}

func (l *lifecycle) Restore(ctx context.Context, id string) (models.Note, error) {
	note, err := l.local.Get(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	if note.State() != models.NoteTrashed {
		return models.Note{}, fmt.Errorf("%w: cannot restore a %s note", ErrInvalidTransition, note.State())
	}

	note.Deleted = false
	note.DeletedAt = nil
	return l.persist(ctx, note)
}

func (l *lifecycle) Purge(ctx context.Context, id string) error {
	note, err := l.local.Get(ctx, id)
	if err != nil {
		return err
	}
	if note.State() != models.NoteTrashed {
		return fmt.Errorf("%w: only trashed notes can be purged", ErrInvalidTransition)
	}

	return l.reconciler.Remove(ctx, id)
}

func (l *lifecycle) EmptyTrash(ctx context.Context) (int, error) {
	trash, err := l.ListTrash(ctx)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, n := range trash {
		if err = l.reconciler.Remove(ctx, n.ID); err != nil {
			return purged, err
		}
		purged++
	}

	return purged, nil
}

func (l *lifecycle) Get(ctx context.Context, id string) (models.Note, error) {
	return l.local.Get(ctx, id)
}

func (l *lifecycle) ListActive(ctx context.Context) ([]models.Note, error) {
	return l.list(ctx, models.NoteActive)
}

func (l *lifecycle) ListTrash(ctx context.Context) ([]models.Note, error) {
	return l.list(ctx, models.NoteTrashed)
}

func (l *lifecycle) Categories(ctx context.Context) ([]string, error) {
	active, err := l.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(active))
	for _, n := range active {
		categories = append(categories, n.Category)
	}
	slices.Sort(categories)
	return slices.Compact(categories), nil
}

func (l *lifecycle) Tags(ctx context.Context) ([]string, error) {
	active, err := l.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, n := range active {
		tags = append(tags, n.Tags...)
	}
	return models.NormalizeTags(tags), nil
}

func (l *lifecycle) persist(ctx context.Context, note models.Note) (models.Note, error) {
	saved, err := l.reconciler.Save(ctx, note)
	if err != nil {
		return models.Note{}, err
	}
	l.reconciler.PushAsync(ctx, saved.ID)
	return saved, nil
}

func (l *lifecycle) list(ctx context.Context, state models.NoteState) ([]models.Note, error) {
	all, err := l.local.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}

	notes := slices.DeleteFunc(all, func(n models.Note) bool {
		return n.State() != state
	})
	slices.SortFunc(notes, displayOrder)
	return notes, nil
}

// displayOrder puts pinned notes first, then the most recently updated.
func displayOrder(a, b models.Note) int {
	if a.IsPinned != b.IsPinned {
		if a.IsPinned {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(b.UpdatedAt, a.UpdatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
