// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-note-keeper/internal/adapter"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

const (
	// DefaultPushConcurrency bounds the number of in-flight pushes of one
	// PushPending run.
	DefaultPushConcurrency = 4

	// DefaultPushTimeout bounds one background push or hard delete.
	DefaultPushTimeout = 30 * time.Second

	saveAttempts = 5
)

// ReconcilerOptions tunes a Reconciler. Zero values select the defaults.
type ReconcilerOptions struct {
	PushConcurrency int
	PushTimeout     time.Duration
	Clock           Clock
}

type reconciler struct {
	local     store.LocalStore
	remote    adapter.RemoteAuthority
	publisher Publisher

	clock           Clock
	pushConcurrency int
	pushTimeout     time.Duration

	// applyMu serializes read-compare-write sequences of this process. Other
	// processes sharing the store are handled by the conditional writes
	// PutIfNewer and CompareAndPut. It is never held across a network call.
	applyMu sync.Mutex
	bg      sync.WaitGroup

	statusMu   sync.Mutex
	syncing    int
	lastErr    error
	lastSyncAt time.Time

	logger *logger.Logger
}

// NewReconciler wires a Reconciler. publisher may be nil when no other tab
// needs to be told about changes.
func NewReconciler(
	local store.LocalStore,
	remote adapter.RemoteAuthority,
	publisher Publisher,
	opts ReconcilerOptions,
	log *logger.Logger,
) Reconciler {
	if opts.PushConcurrency <= 0 {
		opts.PushConcurrency = DefaultPushConcurrency
	}
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = DefaultPushTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &reconciler{
		local:           local,
		remote:          remote,
		publisher:       publisher,
		clock:           opts.Clock,
		pushConcurrency: opts.PushConcurrency,
		pushTimeout:     opts.PushTimeout,
		logger:          log,
	}
}

func (r *reconciler) Save(ctx context.Context, note models.Note) (models.Note, error) {
	r.applyMu.Lock()
	defer r.applyMu.Unlock()

	for range saveAttempts {
		saved, err := r.stamp(ctx, note)
		if err != nil {
			return models.Note{}, err
		}

		written, err := r.local.PutIfNewer(ctx, saved)
		if err != nil {
			return models.Note{}, fmt.Errorf("error saving note locally: %w", err)
		}
		if written {
			r.publish(ctx, models.Event{Type: models.EventLocalUpdate, ID: saved.ID})
			return saved, nil
		}

		// another process stored a copy at or past our stamp; stamp again past it
		r.logger.Debug().Str("func", "reconciler.Save").Str("note_id", note.ID).
			Int64("stamp", saved.UpdatedAt).Msg("local copy changed under the save, retrying")
	}

	return models.Note{}, fmt.Errorf("%w: note %s", ErrWriteContention, note.ID)
}

// stamp prepares note for a local write: updatedAt is max(now, previous+1).
func (r *reconciler) stamp(ctx context.Context, note models.Note) (models.Note, error) {
	stamp := r.clock().UnixMilli()
	prev, err := r.local.Get(ctx, note.ID)
	switch {
	case err == nil:
		// a single writer never goes backwards, even if the wall clock does
		if stamp <= prev.UpdatedAt {
			stamp = prev.UpdatedAt + 1
		}
	case !errors.Is(err, store.ErrNoteNotFound):
		return models.Note{}, fmt.Errorf("error reading note before save: %w", err)
	}

	saved := note.Clone()
	saved.UpdatedAt = stamp
	if saved.CreatedAt == 0 {
		saved.CreatedAt = stamp
	}
	saved.Synced = false
	saved.Normalize()
	return saved, nil
}

func (r *reconciler) Push(ctx context.Context, id string) (models.PushResult, error) {
	log := r.logger.WithNoteID(id)

	snapshot, err := r.local.Get(ctx, id)
	if errors.Is(err, store.ErrNoteNotFound) {
		return models.PushResult{ID: id, Outcome: models.PushSkipped}, nil
	}
	if err != nil {
		return models.PushResult{}, fmt.Errorf("error reading note for push: %w", err)
	}
	if snapshot.Synced {
		return models.PushResult{ID: id, Outcome: models.PushSkipped, Note: snapshot}, nil
	}

	resolved, err := r.remote.Upsert(ctx, snapshot)
	if err != nil {
		log.Warn().Err(err).Str("func", "reconciler.Push").Msg("push failed, note stays pending")
		r.recordFailure(err)
		return models.PushResult{ID: id, Outcome: models.PushOffline, Note: snapshot, Err: err}, nil
	}

	result := models.PushResult{ID: id}
	switch resolved.Status {
	case models.UpsertAccepted:
		accepted := snapshot.Clone()
		accepted.Synced = true
		result.Outcome = models.PushAccepted
		result.Note = accepted
	default:
		adopted := resolved.Note.Clone()
		adopted.Synced = true
		adopted.Normalize()
		result.Outcome = models.PushRejected
		result.Note = adopted
	}

	r.applyMu.Lock()
	defer r.applyMu.Unlock()

	// the call may have taken a while, and other tabs write to the same
	// store: the verdict applies only to the copy that was sent
	written, err := r.local.CompareAndPut(ctx, result.Note, snapshot.UpdatedAt)
	if err != nil {
		return models.PushResult{}, fmt.Errorf("error storing push result: %w", err)
	}
	if !written {
		current, err := r.local.Get(ctx, id)
		if errors.Is(err, store.ErrNoteNotFound) {
			log.Debug().Str("func", "reconciler.Push").Msg("note was purged while the push was in flight")
			return models.PushResult{ID: id, Outcome: models.PushSuperseded}, nil
		}
		if err != nil {
			return models.PushResult{}, fmt.Errorf("error re-reading note after push: %w", err)
		}
		log.Debug().Str("func", "reconciler.Push").
			Int64("sent", snapshot.UpdatedAt).
			Int64("current", current.UpdatedAt).
			Msg("note changed while the push was in flight")
		return models.PushResult{ID: id, Outcome: models.PushSuperseded, Note: current}, nil
	}

	if result.Outcome == models.PushRejected {
		log.Info().Str("func", "reconciler.Push").
			Int64("local_updated_at", snapshot.UpdatedAt).
			Int64("remote_updated_at", result.Note.UpdatedAt).
			Msg("conflict: authority holds an equal or newer copy, local edit replaced")
	}

	r.recordSuccess()
	r.publish(ctx, models.Event{Type: models.EventSyncSuccess, ID: id})
	return result, nil
}

func (r *reconciler) PushAsync(ctx context.Context, id string) {
	ctx = context.WithoutCancel(ctx)

	r.bg.Add(1)
	go func() {
		defer r.bg.Done()

		pushCtx, cancel := context.WithTimeout(ctx, r.pushTimeout)
		defer cancel()

		if _, err := r.Push(pushCtx, id); err != nil {
			r.logger.Error().Err(err).Str("func", "reconciler.PushAsync").Str("note_id", id).Msg("background push failed")
		}
	}()
}

func (r *reconciler) Remove(ctx context.Context, id string) error {
	r.applyMu.Lock()
	err := r.local.Delete(ctx, id)
	r.applyMu.Unlock()
	if err != nil {
		return fmt.Errorf("error deleting note locally: %w", err)
	}

	r.publish(ctx, models.Event{Type: models.EventNoteDeleted, ID: id})

	ctx = context.WithoutCancel(ctx)
	r.bg.Add(1)
	go func() {
		defer r.bg.Done()

		deleteCtx, cancel := context.WithTimeout(ctx, r.pushTimeout)
		defer cancel()

		if err := r.remote.HardDelete(deleteCtx, id); err != nil {
			// the note may come back on a later pull
			r.logger.Warn().Err(err).Str("func", "reconciler.Remove").Str("note_id", id).
				Msg("remote hard delete failed")
		}
	}()

	return nil
}

func (r *reconciler) Wait() {
	r.bg.Wait()
}

func (r *reconciler) PushPending(ctx context.Context) (models.PushReport, error) {
	var report models.PushReport

	notes, err := r.local.GetAll(ctx)
	if err != nil {
		return report, fmt.Errorf("error listing local notes: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.pushConcurrency)

	for _, n := range notes {
		if n.Synced {
			continue
		}
		id := n.ID
		g.Go(func() error {
			res, err := r.Push(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			report.Add(res)
			mu.Unlock()
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		return report, fmt.Errorf("error pushing pending notes: %w", err)
	}
	return report, nil
}

func (r *reconciler) Pull(ctx context.Context) (models.PullReport, error) {
	var report models.PullReport

	remote, err := r.remote.FetchAll(ctx)
	if err != nil {
		r.recordFailure(err)
		return report, fmt.Errorf("%w: %w", ErrOffline, err)
	}
	report.Fetched = len(remote)

	r.applyMu.Lock()
	defer r.applyMu.Unlock()

	local, err := r.local.GetAll(ctx)
	if err != nil {
		return report, fmt.Errorf("error listing local notes: %w", err)
	}

	known := make(map[string]int64, len(local))
	for _, n := range local {
		known[n.ID] = n.UpdatedAt
	}

	for _, rn := range remote {
		if updatedAt, ok := known[rn.ID]; ok && rn.UpdatedAt <= updatedAt {
			report.Kept++
			continue
		}

		adopted := rn.Clone()
		adopted.Synced = true
		adopted.Normalize()
		written, err := r.local.PutIfNewer(ctx, adopted)
		if err != nil {
			// puts already applied are valid on their own; the next pull redoes the rest
			return report, fmt.Errorf("error adopting remote note %s: %w", rn.ID, err)
		}
		if !written {
			// another tab saved a newer copy after GetAll
			report.Kept++
			continue
		}
		known[rn.ID] = rn.UpdatedAt
		report.Adopted = append(report.Adopted, rn.ID)
	}

	r.recordSuccess()
	if len(report.Adopted) > 0 {
		r.publish(ctx, models.Event{Type: models.EventPullSuccess})
	}

	r.logger.Debug().Str("func", "reconciler.Pull").
		Int("fetched", report.Fetched).
		Int("adopted", len(report.Adopted)).
		Int("kept", report.Kept).
		Msg("pull finished")

	return report, nil
}

func (r *reconciler) Replace(ctx context.Context) (int, error) {
	remote, err := r.remote.FetchAll(ctx)
	if err != nil {
		r.recordFailure(err)
		return 0, fmt.Errorf("%w: %w", ErrOffline, err)
	}

	notes := make([]models.Note, 0, len(remote))
	for _, rn := range remote {
		n := rn.Clone()
		n.Synced = true
		n.Normalize()
		notes = append(notes, n)
	}

	r.applyMu.Lock()
	defer r.applyMu.Unlock()

	if err = r.local.Clear(ctx); err != nil {
		return 0, fmt.Errorf("error clearing local store: %w", err)
	}
	if err = r.local.PutMany(ctx, notes...); err != nil {
		return 0, fmt.Errorf("error storing downloaded notes: %w", err)
	}

	r.recordSuccess()
	r.publish(ctx, models.Event{Type: models.EventPullSuccess})
	return len(notes), nil
}

func (r *reconciler) SyncCycle(ctx context.Context, trigger models.SyncTrigger) (models.CycleReport, error) {
	report := models.CycleReport{Trigger: trigger, Started: r.clock()}

	r.statusMu.Lock()
	r.syncing++
	r.statusMu.Unlock()
	defer func() {
		r.statusMu.Lock()
		r.syncing--
		r.statusMu.Unlock()
	}()

	push, err := r.PushPending(ctx)
	report.Push = push
	if err != nil {
		report.Finished = r.clock()
		r.recordFailure(err)
		return report, err
	}

	pull, err := r.Pull(ctx)
	report.Pull = pull
	report.Finished = r.clock()
	if err != nil {
		return report, err
	}

	if push.Offline > 0 {
		err = fmt.Errorf("%w: %d notes were not pushed", ErrOffline, push.Offline)
		r.recordFailure(err)
		return report, err
	}

	r.statusMu.Lock()
	r.lastErr = nil
	r.lastSyncAt = report.Finished
	r.statusMu.Unlock()

	r.publish(ctx, models.Event{Type: models.EventSyncSuccess})
	return report, nil
}

func (r *reconciler) Status(ctx context.Context) (models.SyncStatus, error) {
	notes, err := r.local.GetAll(ctx)
	if err != nil {
		return models.SyncStatus{}, fmt.Errorf("error listing local notes: %w", err)
	}

	status := models.SyncStatus{}
	for _, n := range notes {
		if !n.Synced {
			status.Pending++
		}
	}

	r.statusMu.Lock()
	defer r.statusMu.Unlock()

	status.LastSyncAt = r.lastSyncAt
	switch {
	case r.syncing > 0:
		status.State = models.SyncStateSyncing
	case r.lastErr != nil:
		status.State = models.SyncStateFailed
		status.LastError = r.lastErr.Error()
	case status.Pending > 0:
		status.State = models.SyncStateSavedLocally
	default:
		status.State = models.SyncStateSynced
	}

	return status, nil
}

func (r *reconciler) recordFailure(err error) {
	r.statusMu.Lock()
	r.lastErr = err
	r.statusMu.Unlock()
}

func (r *reconciler) recordSuccess() {
	r.statusMu.Lock()
	r.lastErr = nil
	r.statusMu.Unlock()
}

func (r *reconciler) publish(ctx context.Context, evt models.Event) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(evt); err != nil {
		r.logger.Debug().Err(err).Str("func", "reconciler.publish").
			Stringer("event", evt).Msg("event not published")
	}
}
