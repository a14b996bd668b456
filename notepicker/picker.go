// Package notepicker selects the notes a rollup transaction spends.
//
// A NotePicker is built once from a snapshot of an account's notes for one
// asset and never changes afterwards; every query is a pure function of that
// snapshot plus its arguments, so a picker may be shared between goroutines
// without locking. Callers build a new picker whenever the note set changes.
//
// Selection rules:
//   - Only usable notes (settled, or pending with chaining allowed) are
//     candidates, and notes whose nullifier is excluded are skipped.
//   - A transaction spends at most two notes, and at most one of them may be
//     chainable (pending with chaining allowed).
//   - Pick minimizes the total value consumed. Equal totals prefer two notes
//     over one, then the pair whose larger note is smaller.
//
// Insufficient funds are reported by empty results, never by errors.
package notepicker

import (
	"math/big"
	"sort"

	"github.com/bitfsorg/notepicker-go/note"
)

// DefaultMaxNotes is the number of input notes a payment proof accepts.
const DefaultMaxNotes = 2

// NotePicker is an immutable snapshot of notes with selection queries.
type NotePicker struct {
	notes []note.Note // ascending by value, insertion order among equals
}

// New builds a picker over a copy of notes.
func New(notes []note.Note) *NotePicker {
	sorted := make([]note.Note, len(notes))
	for i := range notes {
		sorted[i] = notes[i].Clone()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value.Cmp(sorted[j].Value) < 0
	})
	return &NotePicker{notes: sorted}
}

// Len returns the number of notes in the snapshot, usable or not.
func (p *NotePicker) Len() int {
	return len(p.notes)
}

// Notes returns a copy of the snapshot in ascending value order.
func (p *NotePicker) Notes() []note.Note {
	out := make([]note.Note, len(p.notes))
	for i := range p.notes {
		out[i] = p.notes[i].Clone()
	}
	return out
}

// Pick returns at most two notes whose values add up to at least target,
// choosing the combination that consumes the least value. The notes are
// ordered smaller value first. An empty result means the usable notes
// cannot cover target. A nil or negative target is treated as zero.
func (p *NotePicker) Pick(target *big.Int, exclude note.NullifierSet) []note.Note {
	target = nonNegative(target)
	cands := p.candidates(exclude)

	best := pairSearch(cands, target, chainable)
	if single := smallestCovering(cands, target); single != nil {
		if s := newSelection(single); s.better(best) {
			best = s
		}
	}
	if best == nil {
		return nil
	}
	return best.result()
}

// PickOne returns the smallest usable note whose value is at least target.
// The second return value is false when no note qualifies. A nil or
// negative target is treated as zero.
func (p *NotePicker) PickOne(target *big.Int, exclude note.NullifierSet) (note.Note, bool) {
	n := smallestCovering(p.candidates(exclude), nonNegative(target))
	if n == nil {
		return note.Note{}, false
	}
	return n.Clone(), true
}

// Sum returns the total value of settled notes. Pending notes never count,
// chainable or not.
func (p *NotePicker) Sum(exclude note.NullifierSet) *big.Int {
	sum := new(big.Int)
	for i := range p.notes {
		n := &p.notes[i]
		if n.Settled() && !exclude.Contains(n.Nullifier) {
			sum.Add(sum, n.Value)
		}
	}
	return sum
}

// SpendableSum returns the total value of usable notes. The chain limit is
// not applied: the result is what all future spends together could use.
func (p *NotePicker) SpendableSum(exclude note.NullifierSet) *big.Int {
	sum := new(big.Int)
	for _, n := range p.candidates(exclude) {
		sum.Add(sum, n.Value)
	}
	return sum
}

// MaxSpendableValue returns the largest total a single transaction spending
// at most maxNotes usable notes can reach, including at most one chainable
// note. A maxNotes below one yields zero.
func (p *NotePicker) MaxSpendableValue(exclude note.NullifierSet, maxNotes int) *big.Int {
	sum := new(big.Int)
	for _, n := range constrainedTopK(p.candidates(exclude), maxNotes, chainable) {
		sum.Add(sum, n.Value)
	}
	return sum
}

// candidates returns the usable, non-excluded notes in ascending order.
func (p *NotePicker) candidates(exclude note.NullifierSet) []*note.Note {
	cands := make([]*note.Note, 0, len(p.notes))
	for i := range p.notes {
		n := &p.notes[i]
		if n.Usable() && !exclude.Contains(n.Nullifier) {
			cands = append(cands, n)
		}
	}
	return cands
}

func nonNegative(target *big.Int) *big.Int {
	if target == nil || target.Sign() < 0 {
		return new(big.Int)
	}
	return target
}

func chainable(n *note.Note) bool {
	return n.Chainable()
}
