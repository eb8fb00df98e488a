package engine

import "github.com/preflib/runoff/internal/domain"

// electionState is the mutable per-count record: the active candidate
// set, current tallies, one cursor per ballot, and the exhausted-ballot
// count. Exactly one electionState exists per Count invocation and it
// never escapes the engine.
type electionState struct {
	// active marks candidates still in the running, indexed by column.
	active    []bool
	remaining int

	// tallies holds the current round's vote counts, indexed by column.
	// Inactive candidates stay at zero.
	tallies []int

	// cursors tracks, per ballot, the next preference index not yet
	// consumed. Cursors only move forward, so an exhausted ballot stays
	// exhausted for every subsequent round.
	cursors []int

	// exhausted counts ballots whose cursor ran off the end.
	exhausted int
}

func newElectionState(numCandidates, numBallots int) *electionState {
	st := &electionState{
		active:    make([]bool, numCandidates),
		remaining: numCandidates,
		tallies:   make([]int, numCandidates),
		cursors:   make([]int, numBallots),
	}
	for i := range st.active {
		st.active[i] = true
	}
	return st
}

// tally recomputes the current round's vote counts. Each ballot's cursor
// advances past eliminated candidates; the candidate under the cursor,
// if any, receives the ballot's vote. Returns the total valid votes in
// play this round.
func (st *electionState) tally(ballots []domain.Ballot) int {
	for i := range st.tallies {
		st.tallies[i] = 0
	}
	st.exhausted = 0

	total := 0
	for i, b := range ballots {
		for st.cursors[i] < b.Len() && !st.active[b.At(st.cursors[i])] {
			st.cursors[i]++
		}
		if st.cursors[i] >= b.Len() {
			st.exhausted++
			continue
		}
		st.tallies[b.At(st.cursors[i])]++
		total++
	}
	return total
}

// activeColumns returns the columns still in the running, ascending.
func (st *electionState) activeColumns() []int {
	cols := make([]int, 0, st.remaining)
	for c, a := range st.active {
		if a {
			cols = append(cols, c)
		}
	}
	return cols
}

// minimums returns the active candidates holding the strict minimum
// tally this round, ascending by column.
func (st *electionState) minimums() []int {
	min := -1
	for c, a := range st.active {
		if a && (min < 0 || st.tallies[c] < min) {
			min = st.tallies[c]
		}
	}

	var cols []int
	for c, a := range st.active {
		if a && st.tallies[c] == min {
			cols = append(cols, c)
		}
	}
	return cols
}

// eliminate deactivates the given columns.
func (st *electionState) eliminate(cols []int) {
	for _, c := range cols {
		if st.active[c] {
			st.active[c] = false
			st.remaining--
		}
	}
}
