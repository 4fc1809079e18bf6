package models

import "time"

// UpsertStatus is the authority's verdict on a pushed note.
type UpsertStatus string

const (
	// UpsertAccepted means the pushed copy was strictly newer and is now stored.
	UpsertAccepted UpsertStatus = "accepted"

	// UpsertRejected means the authority already held an equal or newer copy,
	// which is returned instead.
	UpsertRejected UpsertStatus = "rejected"
)

// UpsertResult is the response body of POST /notes.
type UpsertResult struct {
	Status UpsertStatus `json:"status"`
	Note   Note         `json:"note"`
}

// PushOutcome classifies the result of pushing one note.
type PushOutcome string

const (
	PushAccepted   PushOutcome = "accepted"
	PushRejected   PushOutcome = "rejected"
	PushOffline    PushOutcome = "offline"
	PushSuperseded PushOutcome = "superseded"
	PushSkipped    PushOutcome = "skipped"
)

// PushResult describes one completed push attempt.
type PushResult struct {
	// ID is the pushed note identifier.
	ID string

	// Outcome is the classification of the attempt.
	Outcome PushOutcome

	// Note is the local copy after the push was applied. It is the zero
	// value when the note no longer exists locally.
	Note Note

	// Err holds the connectivity error for PushOffline.
	Err error
}

// PushReport aggregates the pushes of one PushPending run.
type PushReport struct {
	Accepted   int
	Rejected   int
	Offline    int
	Superseded int
}

// Add counts r into the report.
func (p *PushReport) Add(r PushResult) {
	switch r.Outcome {
	case PushAccepted:
		p.Accepted++
	case PushRejected:
		p.Rejected++
	case PushOffline:
		p.Offline++
	case PushSuperseded:
		p.Superseded++
	}
}

// PullReport summarizes one pull pass.
type PullReport struct {
	// Fetched is the number of valid notes returned by the authority.
	Fetched int

	// Adopted lists the ids whose remote copy replaced or created the local one.
	Adopted []string

	// Kept is the number of remote notes whose local copy was equal or newer.
	Kept int
}

// SyncTrigger names the reason a sync cycle was started.
type SyncTrigger string

const (
	TriggerLoad      SyncTrigger = "load"
	TriggerReconnect SyncTrigger = "reconnect"
	TriggerFocus     SyncTrigger = "focus"
	TriggerTimer     SyncTrigger = "timer"
	TriggerManual    SyncTrigger = "manual"
)

// CycleReport is the outcome of a full push-then-pull cycle.
type CycleReport struct {
	Trigger  SyncTrigger
	Push     PushReport
	Pull     PullReport
	Started  time.Time
	Finished time.Time
}

// SyncState is the coarse status shown by a non-modal indicator.
type SyncState string

const (
	SyncStateSavedLocally SyncState = "saved locally"
	SyncStateSyncing      SyncState = "syncing"
	SyncStateSynced       SyncState = "synced"
	SyncStateFailed       SyncState = "sync failed"
)

// SyncStatus is a snapshot of the reconciler's synchronization state.
type SyncStatus struct {
	State      SyncState
	Pending    int
	LastError  string
	LastSyncAt time.Time
}
