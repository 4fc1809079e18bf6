package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-note-keeper/internal/validators"
	"github.com/MKhiriev/go-note-keeper/models"
)

// memoryLocalStore is a LocalStore living in process memory. Notes are
// deep-copied on the way in and out.
type memoryLocalStore struct {
	mu    sync.RWMutex
	notes map[string]models.Note
}

// NewMemoryLocalStore returns an empty in-memory LocalStore.
func NewMemoryLocalStore() LocalStore {
	return &memoryLocalStore{notes: make(map[string]models.Note)}
}

func (m *memoryLocalStore) GetAll(ctx context.Context) ([]models.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	notes := make([]models.Note, 0, len(m.notes))
	for _, n := range m.notes {
		notes = append(notes, n.Clone())
	}
	return notes, nil
}

func (m *memoryLocalStore) Get(ctx context.Context, id string) (models.Note, error) {
	if err := ctx.Err(); err != nil {
		return models.Note{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.notes[id]
	if !ok {
		return models.Note{}, ErrNoteNotFound
	}
	return n.Clone(), nil
}

func (m *memoryLocalStore) Put(ctx context.Context, note models.Note) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if note.ID == "" {
		return fmt.Errorf("%w: %w", ErrStorage, validators.ErrEmptyID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.notes[note.ID] = note.Clone()
	return nil
}

func (m *memoryLocalStore) PutIfNewer(ctx context.Context, note models.Note) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if note.ID == "" {
		return false, fmt.Errorf("%w: %w", ErrStorage, validators.ErrEmptyID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if stored, ok := m.notes[note.ID]; ok && stored.UpdatedAt >= note.UpdatedAt {
		return false, nil
	}
	m.notes[note.ID] = note.Clone()
	return true, nil
}

func (m *memoryLocalStore) CompareAndPut(ctx context.Context, note models.Note, expectedUpdatedAt int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if note.ID == "" {
		return false, fmt.Errorf("%w: %w", ErrStorage, validators.ErrEmptyID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if stored, ok := m.notes[note.ID]; !ok || stored.UpdatedAt != expectedUpdatedAt {
		return false, nil
	}
	m.notes[note.ID] = note.Clone()
	return true, nil
}

func (m *memoryLocalStore) PutMany(ctx context.Context, notes ...models.Note) error {
	for _, note := range notes {
		if err := m.Put(ctx, note); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryLocalStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.notes, id)
	return nil
}

func (m *memoryLocalStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.notes)
	return nil
}
