// Package note defines the confidential balance fragments a rollup wallet
// spends, together with the identifiers used to track them.
//
// A note is usable when it is settled, or when it is pending but its creator
// allowed chaining. A chainable note is a usable note whose creating
// transaction has not settled yet; a new transaction may consume at most one
// of them.
package note

import "math/big"

// Note is a single confidential value owned by an account.
type Note struct {
	Value      *big.Int  // Exact amount, never negative
	Nullifier  Nullifier // Revealed on spend; unique per note
	Pending    bool      // Creating transaction is not settled yet
	AllowChain bool      // May be spent while Pending
	Owner      AccountID
	AssetID    uint32
}

// Settled reports whether the note's creating transaction is confirmed.
func (n *Note) Settled() bool {
	return !n.Pending
}

// Usable reports whether the note may be selected as a transaction input.
func (n *Note) Usable() bool {
	return !n.Pending || n.AllowChain
}

// Chainable reports whether spending the note extends a pending transaction.
func (n *Note) Chainable() bool {
	return n.Pending && n.AllowChain
}

// Clone returns a deep copy of the note.
func (n *Note) Clone() Note {
	c := *n
	if n.Value != nil {
		c.Value = new(big.Int).Set(n.Value)
	}
	return c
}

// SumValues adds up the values of notes.
func SumValues(notes []Note) *big.Int {
	sum := new(big.Int)
	for i := range notes {
		sum.Add(sum, notes[i].Value)
	}
	return sum
}
