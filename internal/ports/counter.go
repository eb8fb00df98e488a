// Package ports defines the interfaces that connect the counting core to
// its collaborators: input loaders, reporters, and observability backends.
// These interfaces enable dependency inversion and keep the core testable.
package ports

import (
	"context"

	"github.com/preflib/runoff/internal/domain"
)

// Counter runs one election count over a set of normalized ballots.
// Implementations must be deterministic: the same ballots and
// configuration always produce the same outcome and trace.
type Counter interface {
	// Count runs the elimination loop to a terminal outcome.
	// The returned trace is non-nil only when tracing is enabled and is
	// safe to read once Count returns; it is never consulted by the
	// count itself. A no-winner outcome is a normal result. Errors are
	// reserved for precondition violations (empty candidate set, no
	// ballots) and refused ties.
	//
	// The context carries cancellation for callers that abandon a count;
	// the loop checks it between rounds.
	Count(ctx context.Context, ballots []domain.Ballot) (domain.Outcome, []domain.Round, error)
}

// TableReader loads one election's raw preference grid from an external
// source. Implementations own all decoding concerns; the core only ever
// sees the in-memory PreferenceTable.
type TableReader interface {
	// ReadTable decodes the full table. The candidate set is fixed by
	// the source's header and is never extended afterwards.
	ReadTable(ctx context.Context) (domain.PreferenceTable, error)
}
