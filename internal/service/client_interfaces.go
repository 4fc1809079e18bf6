package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-note-keeper/models"
)

// Publisher broadcasts change hints to the other tabs of the profile.
// It is satisfied by *notifier.Endpoint.
type Publisher interface {
	Publish(evt models.Event) error
}

// IDGenerator produces new note identifiers.
type IDGenerator interface {
	Generate() string
}

// Clock returns the current time. time.Now is used when nil.
type Clock func() time.Time

// Reconciler keeps the local store and the remote authority converging.
//
// Local writes never wait for the network: Save persists immediately and
// pushes happen afterwards. Connectivity failures leave notes pending for
// the next cycle and are never returned as errors from Push or PushPending;
// only local storage errors are.
type Reconciler interface {
	// Save stamps UpdatedAt, marks the note unsynced, persists it and
	// publishes a local-update event. The stamped note is returned.
	Save(ctx context.Context, note models.Note) (models.Note, error)

	// Push sends the current local copy of id to the authority and applies
	// the verdict.
	Push(ctx context.Context, id string) (models.PushResult, error)

	// PushAsync runs Push in the background. See Wait.
	PushAsync(ctx context.Context, id string)

	// Remove deletes the note locally, publishes note-deleted and requests
	// a best-effort hard delete from the authority in the background.
	Remove(ctx context.Context, id string) error

	// Wait blocks until every background push and delete has finished.
	Wait()

	// PushPending pushes every unsynced note.
	PushPending(ctx context.Context) (models.PushReport, error)

	// Pull adopts every remote note that is absent locally or strictly
	// newer than the local copy. Local-only notes are never removed.
	Pull(ctx context.Context) (models.PullReport, error)

	// Replace discards the local store and re-downloads the authority's
	// full set. It returns the number of notes stored.
	Replace(ctx context.Context) (int, error)

	// SyncCycle pushes pending notes, then pulls.
	SyncCycle(ctx context.Context, trigger models.SyncTrigger) (models.CycleReport, error)

	// Status reports the coarse synchronization state.
	Status(ctx context.Context) (models.SyncStatus, error)
}

// Lifecycle implements the user-facing note transitions:
// active -> trashed -> active, and trashed -> purged.
type Lifecycle interface {
	Create(ctx context.Context, draft models.NoteDraft) (models.Note, error)
	Update(ctx context.Context, id string, update models.NoteUpdate) (models.Note, error)
	Trash(ctx context.Context, id string) (models.Note, error)
	Restore(ctx context.Context, id string) (models.Note, error)
	Purge(ctx context.Context, id string) error

	// EmptyTrash purges every trashed note and returns how many were purged.
	EmptyTrash(ctx context.Context) (int, error)

	Get(ctx context.Context, id string) (models.Note, error)

	// ListActive and ListTrash return notes in display order: pinned first,
	// then most recently updated.
	ListActive(ctx context.Context) ([]models.Note, error)
	ListTrash(ctx context.Context) ([]models.Note, error)

	// Categories and Tags list the distinct labels of active notes.
	Categories(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
}

// Cycler runs one full synchronization cycle.
type Cycler interface {
	SyncCycle(ctx context.Context, trigger models.SyncTrigger) (models.CycleReport, error)
}

// SyncJob schedules sync cycles on a timer and on demand.
type SyncJob interface {
	// Start launches the background loop. Any running loop is stopped
	// first. It syncs every interval, or every retry interval while the
	// authority is unreachable.
	Start(ctx context.Context, interval time.Duration)

	// Trigger requests a cycle as soon as possible. Triggers that arrive
	// while one is already pending are coalesced.
	Trigger(reason models.SyncTrigger)

	// Stop cancels the loop and blocks until it has exited.
	Stop()
}
