package note

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
)

// NullifierSize is the byte length of a nullifier.
const NullifierSize = 32

// Nullifier is the spend tag of a note.
type Nullifier [NullifierSize]byte

// NullifierFromBytes copies b into a Nullifier.
func NullifierFromBytes(b []byte) (Nullifier, error) {
	var n Nullifier
	if len(b) != NullifierSize {
		return n, fmt.Errorf("%w: got %d bytes", ErrInvalidNullifier, len(b))
	}
	copy(n[:], b)
	return n, nil
}

// ParseNullifier decodes a hex-encoded nullifier.
func ParseNullifier(s string) (Nullifier, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Nullifier{}, fmt.Errorf("%w: %w", ErrInvalidNullifier, err)
	}
	return NullifierFromBytes(b)
}

// String returns the hex encoding of the nullifier.
func (n Nullifier) String() string {
	return hex.EncodeToString(n[:])
}

// NullifierSet is a set of nullifiers excluded from selection.
// A nil set is empty and valid for lookups (Contains, Len, Union, Slice);
// Add needs a set from NewNullifierSet.
type NullifierSet map[Nullifier]struct{}

// NewNullifierSet builds a set from the given nullifiers.
func NewNullifierSet(nullifiers ...Nullifier) NullifierSet {
	s := make(NullifierSet, len(nullifiers))
	for _, n := range nullifiers {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts nullifiers into the set.
func (s NullifierSet) Add(nullifiers ...Nullifier) {
	for _, n := range nullifiers {
		s[n] = struct{}{}
	}
}

// Remove deletes nullifiers from the set.
func (s NullifierSet) Remove(nullifiers ...Nullifier) {
	for _, n := range nullifiers {
		delete(s, n)
	}
}

// Contains reports whether n is in the set.
func (s NullifierSet) Contains(n Nullifier) bool {
	_, ok := s[n]
	return ok
}

// Len returns the number of nullifiers in the set.
func (s NullifierSet) Len() int {
	return len(s)
}

// Union returns a new set holding the members of s and other.
func (s NullifierSet) Union(other NullifierSet) NullifierSet {
	u := make(NullifierSet, len(s)+len(other))
	for n := range s {
		u[n] = struct{}{}
	}
	for n := range other {
		u[n] = struct{}{}
	}
	return u
}

// Slice returns the members of the set in byte order.
func (s NullifierSet) Slice() []Nullifier {
	out := make([]Nullifier, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}
