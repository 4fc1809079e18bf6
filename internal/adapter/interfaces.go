// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter is the client-side boundary to the remote note authority.
//
// The primary abstraction is [RemoteAuthority], which decouples the
// reconciler from the wire protocol. The package ships an HTTP/JSON
// implementation ([NewHTTPRemoteAuthority]).
//
// Every failure (transport error, timeout, non-2xx status, malformed body)
// wraps [ErrConnectivity] so callers can treat the authority as offline with a
// single [errors.Is] check. Status-specific sentinels defined in errors.go are
// mapped from HTTP status codes by mapHTTPError.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-note-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_authority_mock.go -package=mock

// RemoteAuthority is the server's note collection as seen by a device.
type RemoteAuthority interface {
	// FetchAll returns the authority's full note set, active and trashed.
	// Entries that fail validation are skipped and logged.
	FetchAll(ctx context.Context) ([]models.Note, error)

	// Upsert submits note for last-writer-wins arbitration. Submitting the
	// same payload twice is safe.
	Upsert(ctx context.Context, note models.Note) (models.UpsertResult, error)

	// HardDelete permanently removes the note. Deleting an unknown id
	// succeeds.
	HardDelete(ctx context.Context, id string) error
}
