// Package report renders the human-readable side of a count: invalid
// ballots, the round-by-round trace, and the final outcome. It owns all
// formatting; the engine hands it plain immutable data.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/preflib/runoff/internal/domain"
)

var (
	invalidLabel   = color.New(color.FgHiGreen, color.Bold)
	countLabel     = color.New(color.FgHiYellow, color.Bold)
	eliminateLabel = color.New(color.FgHiMagenta)
	outcomeLabel   = color.New(color.FgHiBlue)
	warnLabel      = color.New(color.FgYellow, color.Bold)
)

// Reporter writes count reports for one election to a single writer.
type Reporter struct {
	w          io.Writer
	candidates domain.Candidates

	// verbose gates everything except the final outcome line.
	verbose bool
}

// New creates a Reporter for the given candidate set.
func New(w io.Writer, candidates domain.Candidates, verbose bool) *Reporter {
	return &Reporter{w: w, candidates: candidates, verbose: verbose}
}

// InvalidBallots lists every dropped ballot with its source line and
// raw cells, absent cells rendered as underscores.
func (r *Reporter) InvalidBallots(table domain.PreferenceTable, invalid []*domain.InvalidBallotError) {
	if !r.verbose {
		return
	}
	for _, ib := range invalid {
		fmt.Fprintf(r.w, "%s %s (line: %d)\n",
			invalidLabel.Sprint("Invalid Ballot:"), renderRow(table, ib.Line), ib.Line)
	}
}

// Rounds prints the per-round tallies and eliminations of the trace.
func (r *Reporter) Rounds(rounds []domain.Round) {
	if !r.verbose {
		return
	}
	for _, round := range rounds {
		fmt.Fprintf(r.w, "%s\n", countLabel.Sprint("Current Count:"))
		for _, c := range round.Active {
			fmt.Fprintf(r.w, "    %s : %d\n", r.candidates.Name(c), round.Tallies[c])
		}
		if round.Exhausted > 0 {
			fmt.Fprintf(r.w, "    (exhausted ballots: %d)\n", round.Exhausted)
		}
		if len(round.Eliminated) > 0 {
			fmt.Fprintf(r.w, "%s %s\n",
				eliminateLabel.Sprint("Eliminating:"), r.nameList(round.Eliminated))
		}
	}
}

// Outcome prints the terminal result. This line always prints,
// regardless of verbosity.
func (r *Reporter) Outcome(outcome domain.Outcome) {
	if outcome.Winner != nil {
		share, _ := outcome.Winner.Share.Float64()
		fmt.Fprintf(r.w, "%s %s (%.1f%% in round %d)\n",
			outcomeLabel.Sprint("Winner:"),
			r.candidates.Name(outcome.Winner.Candidate),
			share*100, outcome.Winner.Round)
		return
	}

	switch outcome.Reason {
	case domain.ReasonExhausted:
		fmt.Fprintf(r.w, "%s\n", outcomeLabel.Sprint("No winner: all ballots exhausted"))
	default:
		fmt.Fprintf(r.w, "%s\n", outcomeLabel.Sprint("No winner: all candidates eliminated"))
	}
}

// ThresholdClamped warns that an out-of-range threshold was adjusted.
func (r *Reporter) ThresholdClamped(requested, actual float64) {
	fmt.Fprintf(r.w, "%s threshold %v was outside the allowed range, using %v\n",
		warnLabel.Sprint("Warning:"), requested, actual)
}

// NearDuplicateNames warns about header names that are likely typos of
// each other.
func (r *Reporter) NearDuplicateNames(pairs []domain.NamePair) {
	if !r.verbose {
		return
	}
	for _, p := range pairs {
		fmt.Fprintf(r.w, "%s candidate names %q and %q differ by one edit; possible header typo\n",
			warnLabel.Sprint("Warning:"), r.candidates.Name(p.A), r.candidates.Name(p.B))
	}
}

func (r *Reporter) nameList(cols []int) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = r.candidates.Name(c)
	}
	return strings.Join(names, ", ")
}

// renderRow reconstructs the raw cells of the ballot at the given file
// line, matching the source layout so voters can find the row.
func renderRow(table domain.PreferenceTable, line int) string {
	row := line - 2 // header occupies line 1
	if row < 0 || row >= len(table.Rows) {
		return ""
	}
	segments := make([]string, len(table.Rows[row]))
	for i, cell := range table.Rows[row] {
		if !cell.Present {
			segments[i] = "_"
			continue
		}
		segments[i] = strconv.Itoa(cell.Rank)
	}
	return strings.Join(segments, ",")
}
