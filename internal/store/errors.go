package store

import "errors"

// Sentinel errors returned by stores and repositories. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrNoteNotFound is returned when the requested id is absent.
	ErrNoteNotFound = errors.New("note was not found")

	// ErrStorage wraps every failure of the durable local store. The UI layer
	// uses it to warn that an edit may not survive a reload.
	ErrStorage = errors.New("local storage failure")

	// ErrCorruptRecord marks a stored payload that no longer parses as a note.
	ErrCorruptRecord = errors.New("corrupt note record")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan note row")

	// ErrScanningRows is returned when iterating a multi-row result fails.
	ErrScanningRows = errors.New("failed to scan note rows")

	// ErrEncodingNote is returned when a note cannot be serialized to its payload.
	ErrEncodingNote = errors.New("failed to encode note payload")
)
