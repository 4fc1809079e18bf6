// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// note authority handlers and middleware.
//
// All Msg* constants are human-readable message strings written into the
// "error" field of JSON error responses.
package app

const (
	// MsgInvalidNote is returned when the POST /notes body is not a valid
	// note (malformed JSON, missing id, negative timestamps).
	MsgInvalidNote = "invalid note was passed"

	// MsgNoteTooLarge is returned when the POST /notes body exceeds the
	// accepted size.
	MsgNoteTooLarge = "note is too large"

	// MsgReadBodyFailed is returned when the request body cannot be read.
	MsgReadBodyFailed = "error reading request body"

	MsgListNotesFailed  = "error listing notes"
	MsgUpsertFailed     = "error upserting note"
	MsgDeleteNoteFailed = "error deleting note"

	// MsgNotFound is returned for unknown routes and unsupported methods.
	MsgNotFound = "not found"
)
