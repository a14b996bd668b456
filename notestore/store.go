// Package notestore persists an account's notes and hands out the snapshots
// the note picker selects from.
package notestore

import (
	"fmt"
	"slices"
	"sync"

	"github.com/bitfsorg/notepicker-go/note"
)

// Store persists notes keyed by nullifier and indexed by owner and asset.
// Notes returned by a Store are copies; mutating them does not change the
// stored record.
type Store interface {
	// PutNote stores a new note.
	PutNote(n *note.Note) error

	// GetNote retrieves a note by nullifier.
	GetNote(nullifier note.Nullifier) (*note.Note, error)

	// UpdateNote overwrites an existing note, e.g. once its creating
	// transaction settles.
	UpdateNote(n *note.Note) error

	// DeleteNote removes a spent note.
	DeleteNote(nullifier note.Nullifier) error

	// NotesByAccount returns the account's notes of one asset in the order
	// they were stored.
	NotesByAccount(owner note.AccountID, assetID uint32) ([]*note.Note, error)

	// Assets returns the distinct asset ids the account holds notes in,
	// ascending.
	Assets(owner note.AccountID) ([]uint32, error)

	// ListNotes returns all stored notes (for backup/export).
	ListNotes() ([]*note.Note, error)
}

// MemStore is an in-memory implementation of Store for testing.
type MemStore struct {
	mu    sync.RWMutex
	notes map[note.Nullifier]*note.Note
	order []note.Nullifier
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates a new in-memory note store.
func NewMemStore() *MemStore {
	return &MemStore{notes: make(map[note.Nullifier]*note.Note)}
}

func copyNote(n *note.Note) *note.Note {
	c := n.Clone()
	return &c
}

// PutNote stores a new note.
func (s *MemStore) PutNote(n *note.Note) error {
	if n == nil {
		return fmt.Errorf("%w: note", ErrNilParam)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[n.Nullifier]; exists {
		return ErrDuplicateNote
	}
	s.notes[n.Nullifier] = copyNote(n)
	s.order = append(s.order, n.Nullifier)
	return nil
}

// GetNote retrieves a note by nullifier.
func (s *MemStore) GetNote(nullifier note.Nullifier) (*note.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[nullifier]
	if !ok {
		return nil, ErrNoteNotFound
	}
	return copyNote(n), nil
}

// UpdateNote overwrites an existing note.
func (s *MemStore) UpdateNote(n *note.Note) error {
	if n == nil {
		return fmt.Errorf("%w: note", ErrNilParam)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[n.Nullifier]; !ok {
		return ErrNoteNotFound
	}
	s.notes[n.Nullifier] = copyNote(n)
	return nil
}

// DeleteNote removes a note.
func (s *MemStore) DeleteNote(nullifier note.Nullifier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[nullifier]; !ok {
		return ErrNoteNotFound
	}
	delete(s.notes, nullifier)
	for i, n := range s.order {
		if n == nullifier {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// NotesByAccount returns the account's notes of one asset in insertion order.
func (s *MemStore) NotesByAccount(owner note.AccountID, assetID uint32) ([]*note.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*note.Note
	for _, nullifier := range s.order {
		n := s.notes[nullifier]
		if n.Owner == owner && n.AssetID == assetID {
			result = append(result, copyNote(n))
		}
	}
	return result, nil
}

// Assets returns the distinct asset ids held by owner, ascending.
func (s *MemStore) Assets(owner note.AccountID) ([]uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[uint32]bool)
	var assets []uint32
	for _, n := range s.notes {
		if n.Owner == owner && !seen[n.AssetID] {
			seen[n.AssetID] = true
			assets = append(assets, n.AssetID)
		}
	}
	slices.Sort(assets)
	return assets, nil
}

// ListNotes returns all stored notes in insertion order.
func (s *MemStore) ListNotes() ([]*note.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*note.Note, 0, len(s.order))
	for _, nullifier := range s.order {
		result = append(result, copyNote(s.notes[nullifier]))
	}
	return result, nil
}
