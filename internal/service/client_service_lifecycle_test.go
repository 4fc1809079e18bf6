package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

type lifecycleFixture struct {
	*device
	authority *fakeAuthority
	lc        Lifecycle
}

func newLifecycleFixture(startMs int64) *lifecycleFixture {
	authority := newFakeAuthority()
	d := newDevice(authority, startMs)
	return &lifecycleFixture{
		device:    d,
		authority: authority,
		lc:        NewLifecycle(d.local, d.rec, &sequenceIDs{}, d.clock.Now, logger.Nop()),
	}
}

func ptr[T any](v T) *T { return &v }

func TestLifecycle_Create(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(100)

	n, err := f.lc.Create(ctx, models.NoteDraft{})
	require.NoError(t, err)

	assert.Equal(t, "note-1", n.ID)
	assert.Equal(t, models.DefaultTitle, n.Title)
	assert.Equal(t, models.DefaultContent, n.Content)
	assert.Equal(t, models.DefaultCategory, n.Category)
	assert.False(t, n.Deleted)
	assert.False(t, n.Synced)
	assert.Equal(t, int64(100), n.CreatedAt)
	assert.Equal(t, int64(100), n.UpdatedAt)

	f.rec.Wait()

	remote, ok := f.authority.get("note-1")
	require.True(t, ok)
	assert.Equal(t, models.DefaultTitle, remote.Title)

	local, err := f.lc.Get(ctx, "note-1")
	require.NoError(t, err)
	assert.True(t, local.Synced)
}

func TestLifecycle_CreateOfflineStillSucceeds(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(100)
	f.authority.offline.Store(true)

	n, err := f.lc.Create(ctx, models.NoteDraft{Title: "Groceries", Tags: []string{"home"}})
	require.NoError(t, err)
	f.rec.Wait()

	got, err := f.lc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Title)
	assert.False(t, got.Synced)
}

func TestLifecycle_Update(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(100)

	n, err := f.lc.Create(ctx, models.NoteDraft{Title: "X"})
	require.NoError(t, err)
	f.rec.Wait()

	f.clock.Set(200)
	updated, err := f.lc.Update(ctx, n.ID, models.NoteUpdate{
		Title: ptr("Y"),
		Tags:  ptr([]string{"work", "work", " "}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Y", updated.Title)
	assert.Equal(t, []string{"work"}, updated.Tags)
	assert.Equal(t, int64(200), updated.UpdatedAt)
	assert.Equal(t, n.Content, updated.Content)

	f.rec.Wait()
	remote, _ := f.authority.get(n.ID)
	assert.Equal(t, "Y", remote.Title)

	// пустое обновление ничего не меняет
	same, err := f.lc.Update(ctx, n.ID, models.NoteUpdate{})
	require.NoError(t, err)
	assert.Equal(t, int64(200), same.UpdatedAt)
}

func TestLifecycle_UpdateUnknownAndTrashed(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(100)

	_, err := f.lc.Update(ctx, "nope", models.NoteUpdate{Title: ptr("x")})
	assert.ErrorIs(t, err, store.ErrNoteNotFound)

	n, err := f.lc.Create(ctx, models.NoteDraft{})
	require.NoError(t, err)
	_, err = f.lc.Trash(ctx, n.ID)
	require.NoError(t, err)

	_, err = f.lc.Update(ctx, n.ID, models.NoteUpdate{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	f.rec.Wait()
}

func TestLifecycle_TrashRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(100)

	orig, err := f.lc.Create(ctx, models.NoteDraft{Title: "T", Category: "Work", Tags: []string{"a"}, IsPinned: true})
	require.NoError(t, err)

	f.clock.Set(150)
	trashed, err := f.lc.Trash(ctx, orig.ID)
	require.NoError(t, err)
	assert.True(t, trashed.Deleted)
	require.NotNil(t, trashed.DeletedAt)
	assert.Equal(t, int64(150), *trashed.DeletedAt)
	assert.Greater(t, trashed.UpdatedAt, orig.UpdatedAt)

	active, err := f.lc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	trash, err := f.lc.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 1)

	f.clock.Set(160)
	restored, err := f.lc.Restore(ctx, orig.ID)
	require.NoError(t, err)
	assert.Greater(t, restored.UpdatedAt, trashed.UpdatedAt)

	// всё, кроме updatedAt и служебных флагов, совпадает с исходным состоянием
	want := orig
	want.UpdatedAt = restored.UpdatedAt
	want.Synced = restored.Synced
	assert.Equal(t, want, restored)

	f.rec.Wait()
	remote, _ := f.authority.get(orig.ID)
	assert.False(t, remote.Deleted)
}

func TestLifecycle_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(100)

	n, err := f.lc.Create(ctx, models.NoteDraft{})
	require.NoError(t, err)

	_, err = f.lc.Restore(ctx, n.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = f.lc.Purge(ctx, n.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.lc.Trash(ctx, n.ID)
	require.NoError(t, err)
	_, err = f.lc.Trash(ctx, n.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.lc.Trash(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
	f.rec.Wait()
}

func TestLifecycle_PurgeIsLocalFirst(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(100)

	n, err := f.lc.Create(ctx, models.NoteDraft{})
	require.NoError(t, err)
	_, err = f.lc.Trash(ctx, n.ID)
	require.NoError(t, err)
	f.rec.Wait()

	f.authority.offline.Store(true)
	require.NoError(t, f.lc.Purge(ctx, n.ID))

	_, err = f.lc.Get(ctx, n.ID)
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
	f.rec.Wait()

	// удаление на сервере не прошло: следующий pull возвращает заметку
	f.authority.offline.Store(false)
	report, err := f.rec.Pull(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{n.ID}, report.Adopted)
}

func TestLifecycle_EmptyTrash(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(100)

	c, err := f.lc.Create(ctx, models.NoteDraft{Title: "C"})
	require.NoError(t, err)
	keep, err := f.lc.Create(ctx, models.NoteDraft{Title: "keep"})
	require.NoError(t, err)
	_, err = f.lc.Trash(ctx, c.ID)
	require.NoError(t, err)
	f.rec.Wait()

	purged, err := f.lc.EmptyTrash(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	f.rec.Wait()

	all, err := f.local.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)

	assert.Equal(t, []string{c.ID}, f.authority.deleted)
	_, ok := f.authority.get(c.ID)
	assert.False(t, ok)
}

func TestLifecycle_ListOrderAndLabels(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture(100)
	f.authority.offline.Store(true)

	old, err := f.lc.Create(ctx, models.NoteDraft{Title: "old", Category: "Work", Tags: []string{"b"}})
	require.NoError(t, err)
	f.clock.Set(200)
	pinned, err := f.lc.Create(ctx, models.NoteDraft{Title: "pinned", IsPinned: true, Tags: []string{"a"}})
	require.NoError(t, err)
	f.clock.Set(300)
	recent, err := f.lc.Create(ctx, models.NoteDraft{Title: "recent", Category: "Work", Tags: []string{"a", "c"}})
	require.NoError(t, err)
	f.clock.Set(400)
	gone, err := f.lc.Create(ctx, models.NoteDraft{Title: "gone", Category: "Trash only", Tags: []string{"z"}})
	require.NoError(t, err)
	_, err = f.lc.Trash(ctx, gone.ID)
	require.NoError(t, err)

	active, err := f.lc.ListActive(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(active))
	for _, n := range active {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{pinned.ID, recent.ID, old.ID}, ids)

	categories, err := f.lc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultCategory, "Work"}, categories)

	tags, err := f.lc.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tags)
	f.rec.Wait()
}
