package domain

import "math/big"

// NoWinnerReason classifies a terminal count that produced no winner.
// A no-winner outcome is a normal result, not an error.
type NoWinnerReason string

const (
	// ReasonExhausted means every ballot ran out of ranked candidates
	// before any active candidate reached the threshold.
	ReasonExhausted NoWinnerReason = "exhausted"

	// ReasonAllEliminated means elimination removed every candidate,
	// or left a sole candidate holding zero votes.
	ReasonAllEliminated NoWinnerReason = "all_eliminated"
)

// Winner describes the candidate that cleared the threshold.
type Winner struct {
	// Candidate is the winning candidate's column.
	Candidate int

	// Votes is the winner's tally in the deciding round.
	Votes int

	// Share is the exact fraction of the round's valid votes the winner
	// held, as Votes over that round's total. Kept rational so callers
	// can reproduce the threshold comparison without float drift.
	Share *big.Rat

	// Round is the 1-based round in which the threshold was met.
	Round int
}

// Outcome is the terminal result of one count: either a winner or a
// classified no-winner. Rounds records how many tally rounds ran.
type Outcome struct {
	// Winner is nil when the count produced no winner.
	Winner *Winner

	// Reason is set exactly when Winner is nil.
	Reason NoWinnerReason

	// Rounds is the number of tally rounds executed.
	Rounds int
}

// Round is one snapshot of the count, recorded before the round's
// elimination mutates the election state. The trace is an observational
// side channel only: the engine never reads it back, and consumers read
// it after the count terminates.
type Round struct {
	// Number is the 1-based round index.
	Number int

	// Active lists the candidate columns still standing at tally time.
	Active []int

	// Tallies holds one entry per candidate column; inactive candidates
	// hold zero. Indexed by column so reporters can pair tallies with
	// names without a lookup table.
	Tallies []int

	// TotalValid is the sum of active-candidate tallies. Exhausted
	// ballots are excluded: the threshold is a share of votes still in
	// play, not of the original ballot count.
	TotalValid int

	// Exhausted counts ballots with no active candidate left to vote for.
	Exhausted int

	// Eliminated lists the candidates removed at the end of this round.
	// Empty in the terminal round.
	Eliminated []int
}
