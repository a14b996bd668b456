package notestore

import (
	"math/big"
	"path/filepath"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/notepicker-go/note"
)

func testAccount(t *testing.T, nonce uint32) note.AccountID {
	t.Helper()
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	return note.NewAccountID(priv.PubKey(), nonce)
}

func testNote(seed byte, value int64, owner note.AccountID, asset uint32) *note.Note {
	var n note.Nullifier
	for i := range n {
		n[i] = seed
	}
	return &note.Note{
		Value:     big.NewInt(value),
		Nullifier: n,
		Owner:     owner,
		AssetID:   asset,
	}
}

func noteValues(notes []*note.Note) []int64 {
	out := make([]int64, len(notes))
	for i, n := range notes {
		out[i] = n.Value.Int64()
	}
	return out
}

// storeFactories runs the Store contract against every implementation.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"mem": func(t *testing.T) Store { return NewMemStore() },
		"bolt": func(t *testing.T) Store {
			store, err := OpenBoltStore(filepath.Join(t.TempDir(), "notes.db"), nil)
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })
			return store
		},
		"bolt sealed": func(t *testing.T) Store {
			key, err := ec.NewPrivateKey()
			require.NoError(t, err)
			store, err := OpenBoltStore(filepath.Join(t.TempDir(), "notes.db"), key)
			require.NoError(t, err)
			t.Cleanup(func() { store.Close() })
			return store
		},
	}
}

// ---------------------------------------------------------------------------
// Store contract tests
// ---------------------------------------------------------------------------

func TestStore_PutAndGet(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			owner := testAccount(t, 0)

			n := testNote(1, 42, owner, 0)
			n.Pending = true
			n.AllowChain = true
			require.NoError(t, store.PutNote(n))

			got, err := store.GetNote(n.Nullifier)
			require.NoError(t, err)
			assert.Equal(t, int64(42), got.Value.Int64())
			assert.Equal(t, owner, got.Owner)
			assert.True(t, got.Pending)
			assert.True(t, got.AllowChain)
		})
	}
}

func TestStore_Errors(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			owner := testAccount(t, 0)
			n := testNote(1, 42, owner, 0)

			assert.ErrorIs(t, store.PutNote(nil), ErrNilParam)
			assert.ErrorIs(t, store.UpdateNote(nil), ErrNilParam)

			_, err := store.GetNote(n.Nullifier)
			assert.ErrorIs(t, err, ErrNoteNotFound)
			assert.ErrorIs(t, store.UpdateNote(n), ErrNoteNotFound)
			assert.ErrorIs(t, store.DeleteNote(n.Nullifier), ErrNoteNotFound)

			require.NoError(t, store.PutNote(n))
			assert.ErrorIs(t, store.PutNote(n), ErrDuplicateNote)
		})
	}
}

func TestStore_NotesByAccount(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			alice := testAccount(t, 0)
			aliceNext := alice
			aliceNext.Nonce = 1
			bob := testAccount(t, 0)

			require.NoError(t, store.PutNote(testNote(1, 10, alice, 0)))
			require.NoError(t, store.PutNote(testNote(2, 1, alice, 0)))
			require.NoError(t, store.PutNote(testNote(3, 5, alice, 1)))
			require.NoError(t, store.PutNote(testNote(4, 7, bob, 0)))
			require.NoError(t, store.PutNote(testNote(5, 3, aliceNext, 0)))
			require.NoError(t, store.PutNote(testNote(6, 0, alice, 0)))

			notes, err := store.NotesByAccount(alice, 0)
			require.NoError(t, err)
			assert.Equal(t, []int64{10, 1, 0}, noteValues(notes))

			notes, err = store.NotesByAccount(alice, 1)
			require.NoError(t, err)
			assert.Equal(t, []int64{5}, noteValues(notes))

			notes, err = store.NotesByAccount(aliceNext, 0)
			require.NoError(t, err)
			assert.Equal(t, []int64{3}, noteValues(notes))

			notes, err = store.NotesByAccount(bob, 1)
			require.NoError(t, err)
			assert.Empty(t, notes)

			assets, err := store.Assets(alice)
			require.NoError(t, err)
			assert.Equal(t, []uint32{0, 1}, assets)

			all, err := store.ListNotes()
			require.NoError(t, err)
			assert.Len(t, all, 6)
		})
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			owner := testAccount(t, 0)

			first := testNote(1, 10, owner, 0)
			first.Pending = true
			require.NoError(t, store.PutNote(first))
			require.NoError(t, store.PutNote(testNote(2, 20, owner, 0)))

			first.Pending = false
			require.NoError(t, store.UpdateNote(first))

			got, err := store.GetNote(first.Nullifier)
			require.NoError(t, err)
			assert.False(t, got.Pending)

			// Settling keeps the insertion position.
			notes, err := store.NotesByAccount(owner, 0)
			require.NoError(t, err)
			assert.Equal(t, []int64{10, 20}, noteValues(notes))

			require.NoError(t, store.DeleteNote(first.Nullifier))
			notes, err = store.NotesByAccount(owner, 0)
			require.NoError(t, err)
			assert.Equal(t, []int64{20}, noteValues(notes))

			_, err = store.GetNote(first.Nullifier)
			assert.ErrorIs(t, err, ErrNoteNotFound)
		})
	}
}

func TestStore_UpdateMovesAsset(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			owner := testAccount(t, 0)

			n := testNote(1, 10, owner, 0)
			require.NoError(t, store.PutNote(n))

			n.AssetID = 3
			require.NoError(t, store.UpdateNote(n))

			notes, err := store.NotesByAccount(owner, 0)
			require.NoError(t, err)
			assert.Empty(t, notes)

			notes, err = store.NotesByAccount(owner, 3)
			require.NoError(t, err)
			assert.Equal(t, []int64{10}, noteValues(notes))
		})
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			owner := testAccount(t, 0)
			n := testNote(1, 10, owner, 0)
			require.NoError(t, store.PutNote(n))

			n.Value.SetInt64(99)
			got, err := store.GetNote(n.Nullifier)
			require.NoError(t, err)
			assert.Equal(t, int64(10), got.Value.Int64())

			got.Value.SetInt64(77)
			again, err := store.GetNote(n.Nullifier)
			require.NoError(t, err)
			assert.Equal(t, int64(10), again.Value.Int64())
		})
	}
}
