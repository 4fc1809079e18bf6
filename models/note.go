// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"slices"
	"strings"
)

const (
	// DefaultCategory is assigned to notes that arrive without a category.
	DefaultCategory = "General"

	// DefaultTitle is the placeholder title of a freshly created note.
	DefaultTitle = "Untitled note"

	// DefaultContent is the placeholder body of a freshly created note.
	DefaultContent = "Start writing…"
)

// NoteState is the lifecycle state of a note that still exists.
// A purged note has no state: it is simply absent from every store.
type NoteState string

const (
	// NoteActive notes are shown in the primary note list.
	NoteActive NoteState = "active"

	// NoteTrashed notes are soft-deleted and only shown in the trash view.
	NoteTrashed NoteState = "trashed"
)

// Note is the single entity synchronized between devices.
//
// UpdatedAt is the sole arbiter of conflict resolution: the copy with the
// strictly greater value wins. All timestamps are milliseconds since epoch.
type Note struct {
	// ID is generated client-side at creation and never changes.
	ID string `json:"id"`

	// Title is the user-editable headline of the note.
	Title string `json:"title"`

	// Content is the note body in markup form. Attachment URLs embedded
	// here are opaque to the sync engine.
	Content string `json:"content"`

	// Category is a free-form label, DefaultCategory when absent.
	Category string `json:"category"`

	// Tags is a set of labels; see NormalizeTags.
	Tags []string `json:"tags"`

	// CreatedAt is set once at creation.
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is stamped on every persisted local mutation.
	UpdatedAt int64 `json:"updatedAt"`

	// Deleted marks the note as trashed (soft delete).
	Deleted bool `json:"deleted"`

	// DeletedAt is set when the note is trashed and cleared on restore.
	DeletedAt *int64 `json:"deletedAt,omitempty"`

	// IsPinned only affects display ordering.
	IsPinned bool `json:"isPinned"`

	// Synced reports that the remote authority acknowledged this copy since
	// its last local mutation. Local bookkeeping only, never sent over the wire.
	Synced bool `json:"-"`
}

// State returns the lifecycle state derived from the soft-delete flag.
func (n Note) State() NoteState {
	if n.Deleted {
		return NoteTrashed
	}
	return NoteActive
}

// Clone returns a deep copy of n so that callers may mutate slices and
// pointers without affecting the stored value.
func (n Note) Clone() Note {
	c := n
	if n.Tags != nil {
		c.Tags = slices.Clone(n.Tags)
	}
	if n.DeletedAt != nil {
		at := *n.DeletedAt
		c.DeletedAt = &at
	}
	return c
}

// Normalize applies field defaults: category fallback and tag-set
// normalization. It does not touch timestamps or flags.
func (n *Note) Normalize() {
	if strings.TrimSpace(n.Category) == "" {
		n.Category = DefaultCategory
	}
	n.Tags = NormalizeTags(n.Tags)
	if !n.Deleted {
		n.DeletedAt = nil
	}
}

// NormalizeTags trims every label, drops empty ones, collapses duplicates
// and sorts the result. Two tag slices describe the same set if and only if
// their normalized forms are equal.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// NoteDraft carries the optional initial values of a new note.
// Empty title and content fall back to the placeholders.
type NoteDraft struct {
	Title    string
	Content  string
	Category string
	Tags     []string
	IsPinned bool
}

// NoteUpdate describes a partial edit of a note.
// Only non-nil fields are applied.
type NoteUpdate struct {
	Title    *string
	Content  *string
	Category *string
	Tags     *[]string
	IsPinned *bool
}

// IsEmpty reports whether the update changes nothing.
func (u NoteUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Category == nil && u.Tags == nil && u.IsPinned == nil
}

// Apply copies every non-nil field of u into n.
func (u NoteUpdate) Apply(n *Note) {
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.Content != nil {
		n.Content = *u.Content
	}
	if u.Category != nil {
		n.Category = *u.Category
	}
	if u.Tags != nil {
		n.Tags = slices.Clone(*u.Tags)
	}
	if u.IsPinned != nil {
		n.IsPinned = *u.IsPinned
	}
	n.Normalize()
}
