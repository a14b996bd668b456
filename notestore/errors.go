package notestore

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("notestore: required parameter is nil")

	// ErrNoteNotFound indicates no note with the nullifier is stored.
	ErrNoteNotFound = errors.New("notestore: note not found")

	// ErrDuplicateNote indicates a note with this nullifier already exists.
	ErrDuplicateNote = errors.New("notestore: duplicate note")

	// ErrSealBroken indicates a sealed record failed authentication
	// (wrong seal key or corrupted data).
	ErrSealBroken = errors.New("notestore: cannot open sealed record")

	// ErrSealModeMismatch indicates a sealed database was opened without a
	// seal key, or an unsealed one with a key.
	ErrSealModeMismatch = errors.New("notestore: seal mode does not match database")

	// ErrCorruptIndex indicates the account index references a missing note.
	ErrCorruptIndex = errors.New("notestore: corrupt account index")
)
