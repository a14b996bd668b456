package notestore

import (
	"path/filepath"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/notepicker-go/note"
)

func TestBoltStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "notes.db")
	owner := testAccount(t, 0)

	store, err := OpenBoltStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.PutNote(testNote(1, 10, owner, 0)))
	require.NoError(t, store.PutNote(testNote(2, 20, owner, 0)))
	require.NoError(t, store.Close())

	store, err = OpenBoltStore(path, nil)
	require.NoError(t, err)
	defer store.Close()

	notes, err := store.NotesByAccount(owner, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20}, noteValues(notes))
}

func TestBoltStore_SealedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	key, err := ec.NewPrivateKey()
	require.NoError(t, err)
	owner := testAccount(t, 0)
	n := testNote(1, 123456789, owner, 0)

	store, err := OpenBoltStore(path, key)
	require.NoError(t, err)
	require.NoError(t, store.PutNote(n))

	// The raw record must not be the plain encoding.
	plain, err := note.Marshal(n)
	require.NoError(t, err)
	err = store.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketNotes).Get(n.Nullifier[:])
		assert.NotEqual(t, plain, raw)
		assert.Len(t, raw, len(plain)+sealNonceLen+sealTagLen)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = OpenBoltStore(path, key)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetNote(n.Nullifier)
	require.NoError(t, err)
	assert.Equal(t, int64(123456789), got.Value.Int64())
}

func TestBoltStore_WrongSealKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	key, err := ec.NewPrivateKey()
	require.NoError(t, err)
	other, err := ec.NewPrivateKey()
	require.NoError(t, err)

	store, err := OpenBoltStore(path, key)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = OpenBoltStore(path, other)
	assert.ErrorIs(t, err, ErrSealBroken)
}

func TestBoltStore_SealModeMismatch(t *testing.T) {
	key, err := ec.NewPrivateKey()
	require.NoError(t, err)

	sealedPath := filepath.Join(t.TempDir(), "sealed.db")
	store, err := OpenBoltStore(sealedPath, key)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = OpenBoltStore(sealedPath, nil)
	assert.ErrorIs(t, err, ErrSealModeMismatch)

	plainPath := filepath.Join(t.TempDir(), "plain.db")
	store, err = OpenBoltStore(plainPath, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = OpenBoltStore(plainPath, key)
	assert.ErrorIs(t, err, ErrSealModeMismatch)
}

func TestBoltStore_StaleIndexSkipped(t *testing.T) {
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "notes.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	owner := testAccount(t, 0)
	stale := testNote(1, 10, owner, 0)
	require.NoError(t, store.PutNote(stale))
	require.NoError(t, store.PutNote(testNote(2, 20, owner, 0)))

	err = store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketNotes).Delete(stale.Nullifier[:])
	})
	require.NoError(t, err)

	notes, err := store.NotesByAccount(owner, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{20}, noteValues(notes))
}

func TestSealer_BindsNullifier(t *testing.T) {
	key, err := ec.NewPrivateKey()
	require.NoError(t, err)
	s, err := newSealer(key)
	require.NoError(t, err)

	a := testNote(1, 1, note.AccountID{}, 0).Nullifier
	b := testNote(2, 1, note.AccountID{}, 0).Nullifier

	sealed, err := s.seal(a, []byte("record"))
	require.NoError(t, err)

	opened, err := s.open(a, sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("record"), opened)

	_, err = s.open(b, sealed)
	assert.ErrorIs(t, err, ErrSealBroken)

	_, err = s.open(a, sealed[:sealNonceLen])
	assert.ErrorIs(t, err, ErrSealBroken)
}
