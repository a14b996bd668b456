package wallet

import (
	"fmt"

	"github.com/bitfsorg/notepicker-go/note"
)

// Reserve marks notes as committed to an in-flight transaction. Either all
// nullifiers are reserved or, if any is already reserved, none is.
func (w *Wallet) Reserve(nullifiers ...note.Nullifier) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, n := range nullifiers {
		if w.reserved.Contains(n) {
			return fmt.Errorf("%w: %s", ErrNoteReserved, n)
		}
	}
	w.reserved.Add(nullifiers...)
	log.Tracef("Reserved %d note(s)", len(nullifiers))
	return nil
}

// Release returns reserved notes to the spendable pool. Unknown nullifiers
// are ignored.
func (w *Wallet) Release(nullifiers ...note.Nullifier) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reserved.Remove(nullifiers...)
}

// Reserved returns a copy of the currently reserved nullifiers.
func (w *Wallet) Reserved() note.NullifierSet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return note.NewNullifierSet().Union(w.reserved)
}
