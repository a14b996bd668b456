package note

import "errors"

var (
	// ErrInvalidNoteData indicates a serialized note record is malformed.
	ErrInvalidNoteData = errors.New("note: invalid note data")

	// ErrInvalidNullifier indicates a nullifier is not 32 bytes.
	ErrInvalidNullifier = errors.New("note: nullifier must be 32 bytes")

	// ErrInvalidAccountID indicates an account id cannot be parsed.
	ErrInvalidAccountID = errors.New("note: invalid account id")

	// ErrNegativeValue indicates a note value below zero.
	ErrNegativeValue = errors.New("note: negative value")

	// ErrValueTooLarge indicates a note value does not fit the record format.
	ErrValueTooLarge = errors.New("note: value exceeds maximum encodable size")

	// ErrNilNote indicates a required note is nil.
	ErrNilNote = errors.New("note: note is nil")
)
