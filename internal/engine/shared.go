// Package engine implements the round-based instant-runoff counting
// engine: tallying, threshold checks, elimination, vote transfer, and
// the optional round trace.
package engine

import (
	"github.com/go-playground/validator/v10"
)

// TieBreak selects the policy for resolving an exact tally tie between
// candidates that clear the threshold in the same round.
type TieBreak string

// Supported tie-break policies.
const (
	// TieBallotOrder breaks the tie by ballot-paper order: the candidate
	// in the earlier header column wins. Deterministic and reproducible.
	TieBallotOrder TieBreak = "ballot_order"

	// TieError refuses to pick, returning ErrUnresolvedTie.
	// Useful when a tie must be escalated rather than decided silently.
	TieError TieBreak = "error"
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()
