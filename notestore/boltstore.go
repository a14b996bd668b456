package notestore

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"go.etcd.io/bbolt"

	"github.com/bitfsorg/notepicker-go/note"
)

var (
	bucketNotes        = []byte("notes")
	bucketAccountNotes = []byte("account_notes")
	bucketNoteIndex    = []byte("note_index")
	bucketMeta         = []byte("meta")

	metaSealCheck = []byte("seal_check")
	metaUnsealed  = []byte("unsealed")

	sealCheckPlaintext = []byte("notepicker seal check")
)

const (
	accountPrefixSize = note.PubKeySize + 4   // pubkey(33) + nonce(4)
	assetPrefixSize   = accountPrefixSize + 4 // + asset(4)
	indexKeySize      = assetPrefixSize + 8   // + seq(8)
)

// BoltStore persists notes in a bbolt database. When opened with a seal key
// every record is encrypted at rest.
type BoltStore struct {
	db     *bbolt.DB
	sealer *sealer
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath. The parent
// directory is created if it does not exist. A nil sealKey stores records
// in the clear; a database keeps the seal mode it was created with.
func OpenBoltStore(dbPath string, sealKey *ec.PrivateKey) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("notestore: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("notestore: open bolt db: %w", err)
	}

	s := &BoltStore{db: db}
	if sealKey != nil {
		if s.sealer, err = newSealer(sealKey); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if err := db.Update(s.init); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debugf("Opened note store %s (sealed: %v)", dbPath, s.sealer != nil)
	return s, nil
}

// init creates the buckets and checks the seal mode against the database.
func (s *BoltStore) init(tx *bbolt.Tx) error {
	for _, name := range [][]byte{bucketNotes, bucketAccountNotes, bucketNoteIndex, bucketMeta} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("notestore: create bucket %q: %w", name, err)
		}
	}

	meta := tx.Bucket(bucketMeta)
	check := meta.Get(metaSealCheck)
	unsealed := meta.Get(metaUnsealed) != nil

	switch {
	case check == nil && !unsealed:
		// Fresh database: record the mode.
		if s.sealer == nil {
			return meta.Put(metaUnsealed, []byte{1})
		}
		sealed, err := s.sealer.seal(note.Nullifier{}, sealCheckPlaintext)
		if err != nil {
			return err
		}
		return meta.Put(metaSealCheck, sealed)
	case s.sealer == nil && check != nil, s.sealer != nil && unsealed:
		return ErrSealModeMismatch
	case s.sealer != nil:
		plain, err := s.sealer.open(note.Nullifier{}, check)
		if err != nil {
			return err
		}
		if !bytes.Equal(plain, sealCheckPlaintext) {
			return ErrSealBroken
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// accountPrefix encodes owner as the leading part of an index key.
func accountPrefix(owner note.AccountID) []byte {
	k := make([]byte, accountPrefixSize, indexKeySize)
	copy(k, owner.PubKey[:])
	binary.BigEndian.PutUint32(k[note.PubKeySize:], owner.Nonce)
	return k
}

func assetPrefix(owner note.AccountID, assetID uint32) []byte {
	return binary.BigEndian.AppendUint32(accountPrefix(owner), assetID)
}

// indexKey orders an account's notes of one asset by insertion sequence.
func indexKey(owner note.AccountID, assetID uint32, seq uint64) []byte {
	return binary.BigEndian.AppendUint64(assetPrefix(owner, assetID), seq)
}

func (s *BoltStore) encode(n *note.Note) ([]byte, error) {
	record, err := note.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("notestore: encode note: %w", err)
	}
	if s.sealer == nil {
		return record, nil
	}
	return s.sealer.seal(n.Nullifier, record)
}

func (s *BoltStore) decode(nullifier note.Nullifier, data []byte) (*note.Note, error) {
	record := data
	if s.sealer != nil {
		var err error
		if record, err = s.sealer.open(nullifier, data); err != nil {
			return nil, err
		}
	}
	n, err := note.Unmarshal(record)
	if err != nil {
		return nil, fmt.Errorf("notestore: decode note: %w", err)
	}
	return n, nil
}

// PutNote stores a new note. Returns ErrDuplicateNote if the nullifier
// already exists.
func (s *BoltStore) PutNote(n *note.Note) error {
	if n == nil {
		return fmt.Errorf("%w: note", ErrNilParam)
	}
	data, err := s.encode(n)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		notes := tx.Bucket(bucketNotes)
		if notes.Get(n.Nullifier[:]) != nil {
			return ErrDuplicateNote
		}
		seq, err := notes.NextSequence()
		if err != nil {
			return fmt.Errorf("notestore: next sequence: %w", err)
		}
		if err := notes.Put(n.Nullifier[:], data); err != nil {
			return fmt.Errorf("notestore: put note: %w", err)
		}
		key := indexKey(n.Owner, n.AssetID, seq)
		if err := tx.Bucket(bucketAccountNotes).Put(key, n.Nullifier[:]); err != nil {
			return fmt.Errorf("notestore: put account index: %w", err)
		}
		if err := tx.Bucket(bucketNoteIndex).Put(n.Nullifier[:], key); err != nil {
			return fmt.Errorf("notestore: put note index: %w", err)
		}
		return nil
	})
}

// GetNote retrieves a note by nullifier.
func (s *BoltStore) GetNote(nullifier note.Nullifier) (*note.Note, error) {
	var n *note.Note
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketNotes).Get(nullifier[:])
		if data == nil {
			return ErrNoteNotFound
		}
		var err error
		n, err = s.decode(nullifier, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateNote overwrites an existing note. A changed owner or asset moves the
// note's index entry while keeping its insertion position.
func (s *BoltStore) UpdateNote(n *note.Note) error {
	if n == nil {
		return fmt.Errorf("%w: note", ErrNilParam)
	}
	data, err := s.encode(n)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		notes := tx.Bucket(bucketNotes)
		if notes.Get(n.Nullifier[:]) == nil {
			return ErrNoteNotFound
		}
		if err := notes.Put(n.Nullifier[:], data); err != nil {
			return fmt.Errorf("notestore: update note: %w", err)
		}

		index := tx.Bucket(bucketNoteIndex)
		oldKey := index.Get(n.Nullifier[:])
		if len(oldKey) != indexKeySize {
			return fmt.Errorf("%w: note %s", ErrCorruptIndex, n.Nullifier)
		}
		seq := binary.BigEndian.Uint64(oldKey[assetPrefixSize:])
		newKey := indexKey(n.Owner, n.AssetID, seq)
		if bytes.Equal(oldKey, newKey) {
			return nil
		}

		accounts := tx.Bucket(bucketAccountNotes)
		if err := accounts.Delete(oldKey); err != nil {
			return fmt.Errorf("notestore: delete account index: %w", err)
		}
		if err := accounts.Put(newKey, n.Nullifier[:]); err != nil {
			return fmt.Errorf("notestore: put account index: %w", err)
		}
		if err := index.Put(n.Nullifier[:], newKey); err != nil {
			return fmt.Errorf("notestore: put note index: %w", err)
		}
		return nil
	})
}

// DeleteNote removes a note and its index entries.
func (s *BoltStore) DeleteNote(nullifier note.Nullifier) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		notes := tx.Bucket(bucketNotes)
		if notes.Get(nullifier[:]) == nil {
			return ErrNoteNotFound
		}
		if err := notes.Delete(nullifier[:]); err != nil {
			return fmt.Errorf("notestore: delete note: %w", err)
		}

		index := tx.Bucket(bucketNoteIndex)
		if key := index.Get(nullifier[:]); key != nil {
			if err := tx.Bucket(bucketAccountNotes).Delete(key); err != nil {
				return fmt.Errorf("notestore: delete account index: %w", err)
			}
		}
		if err := index.Delete(nullifier[:]); err != nil {
			return fmt.Errorf("notestore: delete note index: %w", err)
		}
		return nil
	})
}

// NotesByAccount returns the account's notes of one asset in insertion order.
func (s *BoltStore) NotesByAccount(owner note.AccountID, assetID uint32) ([]*note.Note, error) {
	prefix := assetPrefix(owner, assetID)

	var result []*note.Note
	err := s.db.View(func(tx *bbolt.Tx) error {
		notes := tx.Bucket(bucketNotes)
		c := tx.Bucket(bucketAccountNotes).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			nullifier, err := note.NullifierFromBytes(v)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCorruptIndex, err)
			}
			data := notes.Get(nullifier[:])
			if data == nil {
				log.Warnf("Stale account index entry for note %s", nullifier)
				continue
			}
			n, err := s.decode(nullifier, data)
			if err != nil {
				return err
			}
			result = append(result, n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("notestore: notes by account: %w", err)
	}
	return result, nil
}

// Assets returns the distinct asset ids held by owner, ascending.
func (s *BoltStore) Assets(owner note.AccountID) ([]uint32, error) {
	prefix := accountPrefix(owner)

	var assets []uint32
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketAccountNotes).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			asset := binary.BigEndian.Uint32(k[accountPrefixSize:assetPrefixSize])
			if n := len(assets); n == 0 || assets[n-1] != asset {
				assets = append(assets, asset)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("notestore: assets: %w", err)
	}
	return assets, nil
}

// ListNotes returns all stored notes in nullifier order.
func (s *BoltStore) ListNotes() ([]*note.Note, error) {
	var result []*note.Note
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketNotes).ForEach(func(k, v []byte) error {
			nullifier, err := note.NullifierFromBytes(k)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrCorruptIndex, err)
			}
			n, err := s.decode(nullifier, v)
			if err != nil {
				return err
			}
			result = append(result, n)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("notestore: list notes: %w", err)
	}
	return result, nil
}
