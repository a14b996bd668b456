package notepicker

import (
	"math/big"
	"sort"

	"github.com/bitfsorg/notepicker-go/note"
)

// tagFunc marks the notes of which a selection may hold at most one.
type tagFunc func(*note.Note) bool

// selection is one way of covering a target: one or two notes in ascending
// order and their total.
type selection struct {
	notes []*note.Note
	sum   *big.Int
}

func newSelection(notes ...*note.Note) *selection {
	sum := new(big.Int)
	for _, n := range notes {
		sum.Add(sum, n.Value)
	}
	return &selection{notes: notes, sum: sum}
}

func (s *selection) largest() *big.Int {
	return s.notes[len(s.notes)-1].Value
}

// better reports whether s beats other: lower total first, then more notes,
// then a smaller largest note. Full ties keep other, so the earliest
// candidate found wins.
func (s *selection) better(other *selection) bool {
	if other == nil {
		return true
	}
	if c := s.sum.Cmp(other.sum); c != 0 {
		return c < 0
	}
	if len(s.notes) != len(other.notes) {
		return len(s.notes) > len(other.notes)
	}
	return s.largest().Cmp(other.largest()) < 0
}

func (s *selection) result() []note.Note {
	out := make([]note.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// smallestCovering returns the first note in ascending cands whose value is
// at least target, or nil.
func smallestCovering(cands []*note.Note, target *big.Int) *note.Note {
	i := sort.Search(len(cands), func(i int) bool {
		return cands[i].Value.Cmp(target) >= 0
	})
	if i == len(cands) {
		return nil
	}
	return cands[i]
}

// pairSearch finds the best pair of distinct notes from ascending cands
// whose total reaches target and which holds at most one tagged note.
//
// For each note a, the cheapest partner is the first later note reaching
// target-a that does not break the tag limit. Later partners cost at least
// as much and are no smaller.
func pairSearch(cands []*note.Note, target *big.Int, tagged tagFunc) *selection {
	var best *selection
	need := new(big.Int)
	for i := 0; i < len(cands)-1; i++ {
		a := cands[i]
		rest := cands[i+1:]
		need.Sub(target, a.Value)
		k := sort.Search(len(rest), func(k int) bool {
			return rest[k].Value.Cmp(need) >= 0
		})
		for ; k < len(rest); k++ {
			b := rest[k]
			if tagged(a) && tagged(b) {
				continue
			}
			if s := newSelection(a, b); s.better(best) {
				best = s
			}
			break
		}
	}
	return best
}

// constrainedTopK returns the at most k notes of ascending cands with the
// largest total, holding at most one tagged note.
//
// The answer is either the k largest untagged notes, or the largest tagged
// note plus the k-1 largest untagged notes. Equal totals keep the untagged
// group.
func constrainedTopK(cands []*note.Note, k int, tagged tagFunc) []*note.Note {
	if k <= 0 {
		return nil
	}

	var top *note.Note
	plain := make([]*note.Note, 0, k)
	for i := len(cands) - 1; i >= 0; i-- {
		n := cands[i]
		if tagged(n) {
			if top == nil {
				top = n
			}
			continue
		}
		if len(plain) < k {
			plain = append(plain, n)
		}
		if top != nil && len(plain) == k {
			break
		}
	}
	if top == nil {
		return plain
	}

	withTagged := make([]*note.Note, 0, k)
	withTagged = append(withTagged, top)
	withTagged = append(withTagged, plain[:min(len(plain), k-1)]...)

	if newSelection(withTagged...).sum.Cmp(newSelection(plain...).sum) > 0 {
		return withTagged
	}
	return plain
}
