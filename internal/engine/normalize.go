package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/preflib/runoff/internal/domain"
)

// headerLines offsets data-row indexes to 1-based file line numbers,
// counting the header row.
const headerLines = 2

// NormalizeTable normalizes every row of the table into the valid
// ballot set, collecting per-row failures instead of aborting: a
// malformed ballot shrinks the pool, it never stops the count.
//
// Rows are independent, so normalization fans out across at most
// parallelism goroutines (GOMAXPROCS when parallelism <= 0). Output
// order matches row order regardless of scheduling. The only returned
// error is context cancellation.
func NormalizeTable(ctx context.Context, table domain.PreferenceTable, parallelism int) ([]domain.Ballot, []*domain.InvalidBallotError, error) {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	results := make([]domain.Ballot, len(table.Rows))
	rowErrs := make([]error, len(table.Rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, row := range table.Rows {
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], rowErrs[i] = domain.NormalizeBallot(row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	valid := make([]domain.Ballot, 0, len(table.Rows))
	var invalid []*domain.InvalidBallotError
	for i := range table.Rows {
		if rowErrs[i] != nil {
			invalid = append(invalid, domain.NewInvalidBallotError(i+headerLines, rowErrs[i]))
			continue
		}
		valid = append(valid, results[i])
	}
	return valid, invalid, nil
}
