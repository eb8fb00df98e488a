package domain

import "sort"

// RawCell is one (ballot, candidate) preference value as read from the
// input grid. A cell is either absent, a negative rank (explicitly
// ignored, equivalent to absent), or a non-negative rank where a lower
// value means a stronger preference.
type RawCell struct {
	// Rank is the raw preference number. Only meaningful when Present.
	Rank int
	// Present reports whether the voter filled this cell in at all.
	Present bool
}

// AbsentCell returns a cell for a blank entry.
func AbsentCell() RawCell { return RawCell{} }

// CellOf returns a filled-in cell with the given raw rank.
func CellOf(rank int) RawCell { return RawCell{Rank: rank, Present: true} }

// counted reports whether the cell participates in normalization.
// Absent and negative cells are both ignored.
func (c RawCell) counted() bool { return c.Present && c.Rank >= 0 }

// PreferenceTable is the in-memory form of one election's raw input:
// the ordered candidate set plus one row of raw cells per ballot.
// The table exclusively owns its rows; normalization reads them but
// never mutates them.
type PreferenceTable struct {
	Candidates Candidates
	Rows       [][]RawCell
}

// Ballot is a normalized ballot: an ordered sequence of distinct
// candidate columns, most preferred first. By construction it contains
// no duplicates and no gaps; the raw rank values are discarded once the
// order is derived, since only relative order matters downstream.
// A Ballot is immutable. The engine tracks its own cursor per ballot
// rather than re-slicing the sequence.
type Ballot struct {
	prefs []int
}

// NewBallot builds a normalized ballot directly from a preference order.
// It is intended for construction in tests and for replaying already
// normalized data; table input goes through NormalizeBallot instead.
func NewBallot(prefs []int) Ballot {
	owned := make([]int, len(prefs))
	copy(owned, prefs)
	return Ballot{prefs: owned}
}

// Len returns the number of ranked candidates on the ballot.
// A zero-length ballot is valid: it abstains from every round.
func (b Ballot) Len() int { return len(b.prefs) }

// At returns the candidate column at the given preference position.
func (b Ballot) At(i int) int { return b.prefs[i] }

// Preferences returns a copy of the preference order.
func (b Ballot) Preferences() []int {
	out := make([]int, len(b.prefs))
	copy(out, b.prefs)
	return out
}

// NormalizeBallot converts one raw row into a normalized ballot.
//
// All present, non-negative cells are collected and sorted ascending by
// their raw rank; the resulting candidate order is the ballot. The sole
// validity criterion is rank reuse: two counted cells sharing the exact
// same rank make the ballot invalid (ErrDuplicatePreference). Gaps,
// negative ranks, absent cells, and ranks larger than the candidate
// count are all accepted. A row with no counted cells normalizes to an
// empty ballot, exhausted from round zero.
//
// NormalizeBallot is a pure function and safe to call concurrently.
func NormalizeBallot(row []RawCell) (Ballot, error) {
	type pref struct {
		rank      int
		candidate int
	}

	pairs := make([]pref, 0, len(row))
	seen := make(map[int]struct{}, len(row))

	for candidate, cell := range row {
		if !cell.counted() {
			continue
		}
		if _, dup := seen[cell.Rank]; dup {
			return Ballot{}, ErrDuplicatePreference
		}
		seen[cell.Rank] = struct{}{}
		pairs = append(pairs, pref{rank: cell.Rank, candidate: candidate})
	}

	// Ranks are distinct at this point, so the order is total.
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].rank < pairs[j].rank })

	prefs := make([]int, len(pairs))
	for i, p := range pairs {
		prefs[i] = p.candidate
	}
	return Ballot{prefs: prefs}, nil
}
