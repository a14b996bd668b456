// Package wallet answers an account's balance and note selection queries on
// top of a note store.
//
// Every query reads a fresh snapshot of the account's notes for one asset
// from the store and hands it to a notepicker.NotePicker, so results always
// reflect the latest settlement state. Notes committed to transactions that
// are still being built or broadcast can be reserved; reserved notes are
// excluded from every spendable query and selection until released or spent.
package wallet

import (
	"fmt"
	"sync"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/bitfsorg/notepicker-go/config"
	"github.com/bitfsorg/notepicker-go/note"
	"github.com/bitfsorg/notepicker-go/notepicker"
	"github.com/bitfsorg/notepicker-go/notestore"
)

// Options tune a Wallet's queries.
type Options struct {
	// MaxInputNotes is the default note count for MaxSpendableValue.
	// Zero means notepicker.DefaultMaxNotes.
	MaxInputNotes int

	// ExcludePending ignores unsettled notes in every query, in addition
	// to the per-call flag.
	ExcludePending bool
}

// Wallet serves note queries for any number of accounts sharing a store.
type Wallet struct {
	store notestore.Store
	opts  Options

	mu       sync.Mutex
	reserved note.NullifierSet

	closeFn func() error
}

// New creates a Wallet over store.
func New(store notestore.Store, opts Options) (*Wallet, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if opts.MaxInputNotes <= 0 {
		opts.MaxInputNotes = notepicker.DefaultMaxNotes
	}
	return &Wallet{
		store:    store,
		opts:     opts,
		reserved: note.NewNullifierSet(),
	}, nil
}

// Open validates cfg, sets up logging and opens the note database at
// config.StorePath(cfg). A non-nil sealKey encrypts note records at rest.
// Close releases the database and log file.
//
// Logging is process-wide: Open replaces the wallet and notestore loggers,
// and Close disables them.
func Open(cfg config.Config, sealKey *ec.PrivateKey) (*Wallet, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	closeLog, err := initLogging(cfg)
	if err != nil {
		return nil, fmt.Errorf("wallet: init logging: %w", err)
	}

	store, err := notestore.OpenBoltStore(config.StorePath(cfg), sealKey)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	w, err := New(store, Options{
		MaxInputNotes:  cfg.MaxInputNotes,
		ExcludePending: cfg.ExcludePendingNotes,
	})
	if err != nil {
		_ = store.Close()
		_ = closeLog()
		return nil, err
	}
	w.closeFn = func() error {
		err := store.Close()
		if lerr := closeLog(); err == nil {
			err = lerr
		}
		return err
	}

	log.Infof("Opened %s note wallet at %s", cfg.Network, cfg.DataDir)
	return w, nil
}

// Close releases resources acquired by Open. It is a no-op for wallets
// created with New.
func (w *Wallet) Close() error {
	if w.closeFn == nil {
		return nil
	}
	return w.closeFn()
}

// AddNote stores a newly received note.
func (w *Wallet) AddNote(n *note.Note) error {
	if err := w.store.PutNote(n); err != nil {
		return err
	}
	log.Debugf("Added note %s (asset %d, pending %v, chainable %v)",
		n.Nullifier, n.AssetID, n.Pending, n.Chainable())
	return nil
}

// SettleNote marks a note's creating transaction as confirmed.
func (w *Wallet) SettleNote(nullifier note.Nullifier) error {
	n, err := w.store.GetNote(nullifier)
	if err != nil {
		return err
	}
	if !n.Pending {
		return nil
	}
	n.Pending = false
	if err := w.store.UpdateNote(n); err != nil {
		return err
	}
	log.Debugf("Settled note %s", nullifier)
	return nil
}

// SpendNotes removes notes whose nullifiers were published and releases
// their reservations. Every nullifier is processed; the first error is
// returned.
func (w *Wallet) SpendNotes(nullifiers ...note.Nullifier) error {
	var firstErr error
	for _, nullifier := range nullifiers {
		if err := w.store.DeleteNote(nullifier); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("wallet: spend note %s: %w", nullifier, err)
			}
			continue
		}
		log.Debugf("Spent note %s", nullifier)
	}
	w.Release(nullifiers...)
	return firstErr
}

// snapshot loads the account's notes for asset into a picker. Pending notes
// are dropped when excludePending or the wallet option is set.
func (w *Wallet) snapshot(account note.AccountID, assetID uint32, excludePending bool) (*notepicker.NotePicker, error) {
	stored, err := w.store.NotesByAccount(account, assetID)
	if err != nil {
		return nil, err
	}
	excludePending = excludePending || w.opts.ExcludePending

	notes := make([]note.Note, 0, len(stored))
	for _, n := range stored {
		if excludePending && n.Pending {
			continue
		}
		notes = append(notes, *n)
	}
	return notepicker.New(notes), nil
}
