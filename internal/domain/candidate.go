// Package domain contains the core value types of the vote counting engine:
// candidate sets, raw and normalized ballots, round snapshots, and outcomes.
// Everything in this package is immutable after construction and free of I/O.
package domain

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// foldCaser is a package-level Unicode case folder for candidate name
// comparison. This avoids creating a new caser per lookup.
var foldCaser = cases.Fold()

// Candidates is the fixed, ordered set of options in one election.
// A candidate's identity is its column position in the input header;
// that position also defines the deterministic tie-break order.
// The set never changes after construction: the engine eliminates
// candidates by marking them inactive, it never adds or removes entries.
type Candidates struct {
	names []string
}

// NewCandidates builds a candidate set from the ordered header names.
// Names are kept verbatim; validation rejects an empty set, blank names,
// and names that are equal under Unicode case folding, since two columns
// that fold to the same name make ballot intent ambiguous.
func NewCandidates(names []string) (Candidates, error) {
	if len(names) == 0 {
		return Candidates{}, ErrNoCandidates
	}

	seen := make(map[string]int, len(names))
	for i, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return Candidates{}, &CandidateNameError{Column: i, Name: name, Err: ErrBlankCandidateName}
		}
		folded := foldCaser.String(trimmed)
		if prev, ok := seen[folded]; ok {
			return Candidates{}, &CandidateNameError{Column: i, Name: name, Other: prev, Err: ErrDuplicateCandidateName}
		}
		seen[folded] = i
	}

	owned := make([]string, len(names))
	copy(owned, names)
	return Candidates{names: owned}, nil
}

// Len returns the number of candidates.
func (c Candidates) Len() int { return len(c.names) }

// Name returns the display name of the candidate at the given column,
// or the empty string when the column is out of range.
func (c Candidates) Name(column int) string {
	if column < 0 || column >= len(c.names) {
		return ""
	}
	return c.names[column]
}

// Names returns a copy of the ordered name list.
func (c Candidates) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// NamePair identifies two candidate columns whose names are suspiciously
// similar. Loaders surface these as warnings rather than errors: near
// duplicates are usually header typos, but they can also be legitimate.
type NamePair struct {
	A, B int
}

// NearDuplicates reports column pairs whose folded names are within one
// edit of each other. Exact fold-equal duplicates are already rejected by
// NewCandidates, so every reported pair differs by exactly one edit.
func (c Candidates) NearDuplicates() []NamePair {
	var pairs []NamePair
	for i := 0; i < len(c.names); i++ {
		for j := i + 1; j < len(c.names); j++ {
			a := foldCaser.String(strings.TrimSpace(c.names[i]))
			b := foldCaser.String(strings.TrimSpace(c.names[j]))
			if levenshtein.ComputeDistance(a, b) <= 1 {
				pairs = append(pairs, NamePair{A: i, B: j})
			}
		}
	}
	return pairs
}
