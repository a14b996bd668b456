package wallet

import (
	"fmt"
	"math/big"

	"github.com/bitfsorg/notepicker-go/note"
)

// Balance returns the settled balance of account in assetID. Reserved notes
// still count until they are spent.
func (w *Wallet) Balance(account note.AccountID, assetID uint32) (*big.Int, error) {
	p, err := w.snapshot(account, assetID, false)
	if err != nil {
		return nil, err
	}
	return p.Sum(nil), nil
}

// Balances returns the settled balance of every asset the account holds.
func (w *Wallet) Balances(account note.AccountID) (map[uint32]*big.Int, error) {
	assets, err := w.store.Assets(account)
	if err != nil {
		return nil, err
	}
	balances := make(map[uint32]*big.Int, len(assets))
	for _, assetID := range assets {
		b, err := w.Balance(account, assetID)
		if err != nil {
			return nil, err
		}
		balances[assetID] = b
	}
	return balances, nil
}

// SpendableSum returns the total of the account's unreserved usable notes in
// assetID, ignoring the input note limit.
func (w *Wallet) SpendableSum(account note.AccountID, assetID uint32, excludePending bool) (*big.Int, error) {
	p, err := w.snapshot(account, assetID, excludePending)
	if err != nil {
		return nil, err
	}
	return p.SpendableSum(w.Reserved()), nil
}

// SpendableSums returns SpendableSum for every asset the account holds.
func (w *Wallet) SpendableSums(account note.AccountID, excludePending bool) (map[uint32]*big.Int, error) {
	assets, err := w.store.Assets(account)
	if err != nil {
		return nil, err
	}
	sums := make(map[uint32]*big.Int, len(assets))
	for _, assetID := range assets {
		s, err := w.SpendableSum(account, assetID, excludePending)
		if err != nil {
			return nil, err
		}
		sums[assetID] = s
	}
	return sums, nil
}

// MaxSpendableValue returns the largest value a single transaction with at
// most numNotes inputs can spend. numNotes <= 0 uses Options.MaxInputNotes.
func (w *Wallet) MaxSpendableValue(account note.AccountID, assetID uint32, numNotes int, excludePending bool) (*big.Int, error) {
	if numNotes <= 0 {
		numNotes = w.opts.MaxInputNotes
	}
	p, err := w.snapshot(account, assetID, excludePending)
	if err != nil {
		return nil, err
	}
	return p.MaxSpendableValue(w.Reserved(), numNotes), nil
}

// PickNotes selects at most two unreserved notes covering value with the
// smallest possible total.
func (w *Wallet) PickNotes(account note.AccountID, assetID uint32, value *big.Int, excludePending bool) ([]note.Note, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pickNotes(account, assetID, value, excludePending)
}

func (w *Wallet) pickNotes(account note.AccountID, assetID uint32, value *big.Int, excludePending bool) ([]note.Note, error) {
	if value == nil || value.Sign() < 0 {
		return nil, ErrInvalidValue
	}
	p, err := w.snapshot(account, assetID, excludePending)
	if err != nil {
		return nil, err
	}
	notes := p.Pick(value, w.reserved)
	if len(notes) == 0 {
		return nil, fmt.Errorf("%w: cannot cover %s of asset %d for %s",
			ErrInsufficientFunds, value, assetID, account)
	}
	return notes, nil
}

// PickNote selects the smallest unreserved usable note covering value.
func (w *Wallet) PickNote(account note.AccountID, assetID uint32, value *big.Int, excludePending bool) (note.Note, error) {
	if value == nil || value.Sign() < 0 {
		return note.Note{}, ErrInvalidValue
	}
	p, err := w.snapshot(account, assetID, excludePending)
	if err != nil {
		return note.Note{}, err
	}
	n, ok := p.PickOne(value, w.Reserved())
	if !ok {
		return note.Note{}, fmt.Errorf("%w: no single note covers %s of asset %d for %s",
			ErrInsufficientFunds, value, assetID, account)
	}
	return n, nil
}

// PickAndReserve selects notes like PickNotes and reserves them before any
// other selection can observe them.
func (w *Wallet) PickAndReserve(account note.AccountID, assetID uint32, value *big.Int, excludePending bool) ([]note.Note, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	notes, err := w.pickNotes(account, assetID, value, excludePending)
	if err != nil {
		return nil, err
	}
	for i := range notes {
		w.reserved.Add(notes[i].Nullifier)
	}
	log.Debugf("Reserved %d note(s) totalling %s for %s",
		len(notes), note.SumValues(notes), account)
	return notes, nil
}
