package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

// fakeAuthority — in-memory authority with the same LWW rule as the server.
type fakeAuthority struct {
	mu      sync.Mutex
	notes   map[string]models.Note
	offline atomic.Bool

	// beforeUpsert runs after the write was decided, before the response is returned.
	beforeUpsert func(note models.Note)
	deleted      []string
}

func newFakeAuthority() *fakeAuthority {
	return &fakeAuthority{notes: make(map[string]models.Note)}
}

func (a *fakeAuthority) FetchAll(_ context.Context) ([]models.Note, error) {
	if a.offline.Load() {
		return nil, fmt.Errorf("%w: dial tcp: connection refused", adapter.ErrConnectivity)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.Note, 0, len(a.notes))
	for _, n := range a.notes {
		out = append(out, n.Clone())
	}
	return out, nil
}

func (a *fakeAuthority) Upsert(_ context.Context, note models.Note) (models.UpsertResult, error) {
	if a.offline.Load() {
		return models.UpsertResult{}, fmt.Errorf("%w: dial tcp: connection refused", adapter.ErrConnectivity)
	}

	a.mu.Lock()
	stored, ok := a.notes[note.ID]
	var res models.UpsertResult
	if ok && note.UpdatedAt <= stored.UpdatedAt {
		res = models.UpsertResult{Status: models.UpsertRejected, Note: stored.Clone()}
	} else {
		note.Synced = false
		a.notes[note.ID] = note.Clone()
		res = models.UpsertResult{Status: models.UpsertAccepted, Note: note.Clone()}
	}
	hook := a.beforeUpsert
	a.mu.Unlock()

	if hook != nil {
		hook(note)
	}
	return res, nil
}

func (a *fakeAuthority) HardDelete(_ context.Context, id string) error {
	if a.offline.Load() {
		return fmt.Errorf("%w: dial tcp: connection refused", adapter.ErrConnectivity)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.notes, id)
	a.deleted = append(a.deleted, id)
	return nil
}

func (a *fakeAuthority) get(id string) (models.Note, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.notes[id]
	return n, ok
}

func (a *fakeAuthority) put(n models.Note) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notes[n.ID] = n.Clone()
}

// hookStore вызывает хуки перед условной записью, чтобы вклиниться
// записью другой вкладки. before* срабатывают один раз, every* каждый раз.
type hookStore struct {
	store.LocalStore

	mu                  sync.Mutex
	beforePutIfNewer    func()
	beforeCompareAndPut func()
	everyPutIfNewer     func()
}

func (h *hookStore) PutIfNewer(ctx context.Context, note models.Note) (bool, error) {
	h.mu.Lock()
	hook := h.beforePutIfNewer
	h.beforePutIfNewer = nil
	every := h.everyPutIfNewer
	h.mu.Unlock()

	if hook != nil {
		hook()
	}
	if every != nil {
		every()
	}
	return h.LocalStore.PutIfNewer(ctx, note)
}

func (h *hookStore) CompareAndPut(ctx context.Context, note models.Note, expectedUpdatedAt int64) (bool, error) {
	h.mu.Lock()
	hook := h.beforeCompareAndPut
	h.beforeCompareAndPut = nil
	h.mu.Unlock()

	if hook != nil {
		hook()
	}
	return h.LocalStore.CompareAndPut(ctx, note, expectedUpdatedAt)
}

// recordingPublisher запоминает опубликованные события.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recordingPublisher) Publish(evt models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// manualClock — часы, которые двигаются только вручную.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(ms int64) *manualClock {
	return &manualClock{now: time.UnixMilli(ms)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.UnixMilli(ms)
}

type sequenceIDs struct {
	n atomic.Int64
}

func (s *sequenceIDs) Generate() string {
	return fmt.Sprintf("note-%d", s.n.Add(1))
}

func note(id string, updatedAt int64, title string) models.Note {
	return models.Note{
		ID:        id,
		Title:     title,
		Content:   "body of " + id,
		Category:  models.DefaultCategory,
		Tags:      []string{},
		CreatedAt: 1,
		UpdatedAt: updatedAt,
	}
}
