package domain

import (
	"errors"
	"fmt"
)

// Common domain errors surfaced during ballot normalization and count setup.
var (
	// ErrDuplicatePreference indicates a ballot expressed the same raw
	// rank for two candidates. The ballot is dropped from the count.
	ErrDuplicatePreference = errors.New("duplicate preference rank")

	// ErrNoCandidates indicates the candidate set is empty. Fatal before
	// counting begins, never recovered.
	ErrNoCandidates = errors.New("no candidates")

	// ErrNoBallots indicates no valid ballot survived normalization.
	// Fatal before counting begins, never recovered.
	ErrNoBallots = errors.New("no ballots")

	// ErrInvalidThreshold indicates the winning threshold lies outside (0, 1].
	ErrInvalidThreshold = errors.New("threshold must be in (0, 1]")

	// ErrBlankCandidateName indicates a header column with an empty name.
	ErrBlankCandidateName = errors.New("blank candidate name")

	// ErrDuplicateCandidateName indicates two header columns fold to the
	// same candidate name.
	ErrDuplicateCandidateName = errors.New("duplicate candidate name")

	// ErrUnresolvedTie indicates multiple candidates cleared the threshold
	// with identical tallies and the configured tie policy refuses to pick.
	ErrUnresolvedTie = errors.New("unresolved tie between winning candidates")
)

// InvalidBallotError reports a ballot that failed normalization.
// Line is the 1-based line number in the source file, counting the
// header, so it matches what a voter auditing the CSV would see.
type InvalidBallotError struct {
	Line int
	Err  error
}

// Error implements the error interface for InvalidBallotError.
func (e *InvalidBallotError) Error() string {
	return fmt.Sprintf("invalid ballot at line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error, supporting errors.Is checks.
func (e *InvalidBallotError) Unwrap() error { return e.Err }

// NewInvalidBallotError creates an InvalidBallotError for the given line.
func NewInvalidBallotError(line int, err error) *InvalidBallotError {
	return &InvalidBallotError{Line: line, Err: err}
}

// CandidateNameError reports a rejected header name.
type CandidateNameError struct {
	// Column is the offending header column.
	Column int

	// Name is the raw header value.
	Name string

	// Other is the earlier column involved in a duplicate, when relevant.
	Other int

	// Err is the underlying error that caused rejection.
	Err error
}

// Error implements the error interface for CandidateNameError.
func (e *CandidateNameError) Error() string {
	if errors.Is(e.Err, ErrDuplicateCandidateName) {
		return fmt.Sprintf("candidate column %d (%q) duplicates column %d", e.Column, e.Name, e.Other)
	}
	return fmt.Sprintf("candidate column %d: %v", e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *CandidateNameError) Unwrap() error { return e.Err }
