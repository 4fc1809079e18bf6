package service

import "errors"

var (
	ErrInvalidDataProvided   = errors.New("invalid data provided")
	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	// ErrInvalidTransition is returned when a lifecycle operation is not
	// allowed in the note's current state.
	ErrInvalidTransition = errors.New("invalid note state transition")

	// ErrOffline is returned when the remote authority could not be reached.
	// The local store is left untouched.
	ErrOffline = errors.New("remote authority is unreachable")

	// ErrWriteContention is returned when other processes sharing the local
	// store kept writing the same note faster than a save could land.
	ErrWriteContention = errors.New("note keeps changing in the local store")
)
