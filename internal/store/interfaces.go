// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-note-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// LocalStore is the durable per-device cache of notes keyed by id.
//
// Every operation is atomic for its own key only. There are no multi-key
// transactions: PutMany applies puts one by one and may fail half-way,
// leaving the earlier puts applied. All failures wrap ErrStorage, except
// Get on a missing key which returns ErrNoteNotFound.
type LocalStore interface {
	// GetAll returns every valid cached note in no particular order.
	// Corrupt entries are skipped and logged.
	GetAll(ctx context.Context) ([]models.Note, error)

	Get(ctx context.Context, id string) (models.Note, error)

	// Put replaces the note stored under note.ID wholesale.
	Put(ctx context.Context, note models.Note) error

	PutMany(ctx context.Context, notes ...models.Note) error

	// PutIfNewer stores note only when no copy exists or the stored copy has
	// a strictly smaller UpdatedAt. The check and the write are one atomic
	// step, also against other processes sharing the same store.
	PutIfNewer(ctx context.Context, note models.Note) (written bool, err error)

	// CompareAndPut replaces the stored copy only while its UpdatedAt still
	// equals expectedUpdatedAt. A missing key is never written.
	CompareAndPut(ctx context.Context, note models.Note, expectedUpdatedAt int64) (written bool, err error)

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, id string) error

	Clear(ctx context.Context) error
}

// NoteRepository is the authority's note collection.
type NoteRepository interface {
	// List returns every stored note, active and trashed alike.
	List(ctx context.Context) ([]models.Note, error)

	// UpsertIfNewer atomically stores note when no copy exists or the stored
	// copy has a strictly smaller UpdatedAt. It returns the copy that is
	// stored after the call and whether note was written.
	UpsertIfNewer(ctx context.Context, note models.Note) (stored models.Note, written bool, err error)

	// Delete removes the note. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// ErrorClassificator decides whether a failed database operation may be retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
