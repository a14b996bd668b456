package wallet

import "errors"

var (
	// ErrNilStore indicates no note store was supplied.
	ErrNilStore = errors.New("wallet: note store is nil")

	// ErrInvalidValue indicates a requested value is missing or negative.
	ErrInvalidValue = errors.New("wallet: value must be non-negative")

	// ErrInsufficientFunds indicates the usable notes cannot cover a value
	// within the input note and chaining limits.
	ErrInsufficientFunds = errors.New("wallet: insufficient funds")

	// ErrNoteReserved indicates a note is already committed to an in-flight
	// transaction.
	ErrNoteReserved = errors.New("wallet: note already reserved")
)
