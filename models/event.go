package models

import "fmt"

// EventType names a cross-tab notification.
type EventType string

const (
	EventLocalUpdate EventType = "local-update"
	EventNoteDeleted EventType = "note-deleted"
	EventSyncSuccess EventType = "sync-success"
	EventPullSuccess EventType = "pull-success"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventLocalUpdate, EventNoteDeleted, EventSyncSuccess, EventPullSuccess:
		return true
	}
	return false
}

// Event is a refresh hint exchanged between tabs. It never carries a note
// payload: receivers re-read the local store.
type Event struct {
	Type EventType `json:"type"`
	ID   string    `json:"id,omitempty"`

	// Origin identifies the publishing endpoint. Set by the notifier.
	Origin string `json:"origin,omitempty"`
}

func (e Event) String() string {
	if e.ID == "" {
		return string(e.Type)
	}
	return fmt.Sprintf("%s(%s)", e.Type, e.ID)
}
