// Package csvtable decodes tabulated ballot data from CSV into the
// in-memory preference table consumed by the counting engine.
//
// The header row defines the ordered candidate set; every subsequent
// row is one ballot, one cell per candidate. A cell is either empty,
// an integer rank, or anything unparsable, which counts as no
// preference. Negative ranks are carried through and ignored by
// normalization.
package csvtable

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/preflib/runoff/internal/domain"
	"github.com/preflib/runoff/internal/ports"
)

var _ ports.TableReader = (*Reader)(nil)

// Reader loads one preference table from a CSV stream.
type Reader struct {
	r io.Reader
}

// NewReader wraps the given CSV stream.
func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// ReadTable decodes the full grid. The header fixes the candidate set
// and the expected cell count per row; a row with a different number of
// cells is a data error. Individual cell contents never fail the read:
// unparsable values mean the voter expressed no preference there.
func (rd *Reader) ReadTable(ctx context.Context) (domain.PreferenceTable, error) {
	cr := csv.NewReader(rd.r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return domain.PreferenceTable{}, domain.ErrNoCandidates
	}
	if err != nil {
		return domain.PreferenceTable{}, fmt.Errorf("reading header: %w", err)
	}

	candidates, err := domain.NewCandidates(header)
	if err != nil {
		return domain.PreferenceTable{}, err
	}

	var rows [][]domain.RawCell
	for {
		if err := ctx.Err(); err != nil {
			return domain.PreferenceTable{}, err
		}
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.PreferenceTable{}, fmt.Errorf("reading ballots: %w", err)
		}

		row := make([]domain.RawCell, len(record))
		for i, field := range record {
			row[i] = parseCell(field)
		}
		rows = append(rows, row)
	}

	return domain.PreferenceTable{Candidates: candidates, Rows: rows}, nil
}

// ReadFile loads a preference table from a CSV file on disk.
func ReadFile(ctx context.Context, path string) (domain.PreferenceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.PreferenceTable{}, fmt.Errorf("opening ballot file: %w", err)
	}
	defer f.Close()
	return NewReader(f).ReadTable(ctx)
}

func parseCell(field string) domain.RawCell {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return domain.AbsentCell()
	}
	rank, err := strconv.Atoi(trimmed)
	if err != nil {
		return domain.AbsentCell()
	}
	return domain.CellOf(rank)
}
