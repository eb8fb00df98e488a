package engine

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/preflib/runoff/internal/domain"
	"github.com/preflib/runoff/internal/ports"
)

var _ ports.Counter = (*Engine)(nil)

// Config defines the tunable parameters of one counting engine.
// All fields are validated at construction; an Engine is immutable and
// safe for repeated Count calls after New returns.
type Config struct {
	// Threshold is the vote share of the votes still in play that a
	// candidate must reach to win. Must lie in (0, 1]; 0.5 is a simple
	// majority.
	Threshold float64 `yaml:"threshold" validate:"required,gt=0,lte=1"`

	// TieBreak selects the policy for an exact tally tie between
	// candidates clearing the threshold in the same round.
	TieBreak TieBreak `yaml:"tie_break" validate:"required,oneof=ballot_order error"`

	// Trace enables recording of one round snapshot per iteration for
	// the report generator. The count itself never reads the trace.
	Trace bool `yaml:"trace"`
}

// DefaultConfig returns a simple-majority configuration with
// deterministic ballot-order tie-breaking and tracing off.
func DefaultConfig() Config {
	return Config{Threshold: 0.5, TieBreak: TieBallotOrder}
}

// Engine counts instant-runoff elections over normalized ballots.
//
// The count is a pure, synchronous computation: per round it tallies
// every ballot's highest-ranked active candidate, checks the threshold
// against the exact rational vote share, and otherwise eliminates every
// candidate tied at the strict minimum tally. Elimination ties are
// resolved by simultaneous multi-elimination; an elimination that
// empties the field terminates the count with no winner. The loop runs
// at most one round per candidate.
//
// Threshold comparison uses math/big.Rat, so share >= threshold is
// exact for the binary float the caller supplied: a candidate holding
// exactly half the votes in play wins at threshold 0.5.
type Engine struct {
	candidates domain.Candidates
	config     Config

	// threshold is the exact rational form of Config.Threshold.
	threshold *big.Rat

	metrics ports.MetricsCollector
	tracer  trace.Tracer
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithMetrics attaches a metrics collector. A nil collector leaves
// metrics disabled.
func WithMetrics(mc ports.MetricsCollector) Option {
	return func(e *Engine) { e.metrics = mc }
}

// New creates an Engine for the given candidate set.
// It returns ErrNoCandidates for an empty set and a validation error
// for an out-of-range threshold or unknown tie policy.
func New(candidates domain.Candidates, config Config, opts ...Option) (*Engine, error) {
	if candidates.Len() == 0 {
		return nil, domain.ErrNoCandidates
	}
	if config.Threshold <= 0 || config.Threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", domain.ErrInvalidThreshold, config.Threshold)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	e := &Engine{
		candidates: candidates,
		config:     config,
		threshold:  new(big.Rat).SetFloat64(config.Threshold),
		tracer:     otel.Tracer("count-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Count runs the elimination loop to a terminal outcome.
//
// Per round: tally, then threshold check, then elimination. A round
// with zero valid votes terminates with no winner, classified as
// exhausted while at least two candidates stand and as all-eliminated
// when the field has collapsed to at most one zero-vote candidate.
// When tracing is enabled the round snapshot, including the round's
// eliminations, is appended before the state mutates.
//
// Count returns an error only for precondition violations (no ballots)
// and for ErrUnresolvedTie under the error tie policy; a no-winner
// outcome is a normal result.
func (e *Engine) Count(ctx context.Context, ballots []domain.Ballot) (domain.Outcome, []domain.Round, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Count",
		trace.WithAttributes(
			attribute.Int("election.candidates", e.candidates.Len()),
			attribute.Int("election.ballots", len(ballots)),
			attribute.Float64("election.threshold", e.config.Threshold),
		),
	)
	defer span.End()

	if len(ballots) == 0 {
		return domain.Outcome{}, nil, domain.ErrNoBallots
	}

	start := time.Now()
	st := newElectionState(e.candidates.Len(), len(ballots))

	var rounds []domain.Round
	var outcome domain.Outcome

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return domain.Outcome{}, rounds, err
		}

		total := st.tally(ballots)
		snap := e.snapshot(round, st, total)

		if total == 0 {
			reason := domain.ReasonExhausted
			if st.remaining <= 1 {
				// A lone survivor with zero votes is a collapsed field,
				// not an exhausted electorate.
				reason = domain.ReasonAllEliminated
			}
			outcome = domain.Outcome{Reason: reason, Rounds: round}
			rounds = e.record(rounds, snap)
			break
		}

		winner, err := e.findWinner(round, st, total)
		if err != nil {
			span.RecordError(err)
			return domain.Outcome{}, e.record(rounds, snap), err
		}
		if winner != nil {
			outcome = domain.Outcome{Winner: winner, Rounds: round}
			rounds = e.record(rounds, snap)
			break
		}

		losers := st.minimums()
		snap.Eliminated = losers
		rounds = e.record(rounds, snap)

		st.eliminate(losers)
		if st.remaining == 0 {
			outcome = domain.Outcome{Reason: domain.ReasonAllEliminated, Rounds: round}
			break
		}
	}

	e.observe(outcome, st, time.Since(start))
	span.SetAttributes(
		attribute.Int("election.rounds", outcome.Rounds),
		attribute.String("election.outcome", outcomeLabel(outcome)),
	)
	return outcome, rounds, nil
}

// findWinner returns the round's winner, if any active candidate's
// exact vote share meets the threshold. When several qualify, the
// strictly higher tally wins; an exact tally tie falls to the
// configured policy.
func (e *Engine) findWinner(round int, st *electionState, total int) (*domain.Winner, error) {
	best := -1
	tied := 0
	for _, c := range st.activeColumns() {
		share := new(big.Rat).SetFrac64(int64(st.tallies[c]), int64(total))
		if share.Cmp(e.threshold) < 0 {
			continue
		}
		switch {
		case best < 0 || st.tallies[c] > st.tallies[best]:
			best, tied = c, 1
		case st.tallies[c] == st.tallies[best]:
			tied++
		}
	}

	if best < 0 {
		return nil, nil
	}
	if tied > 1 && e.config.TieBreak == TieError {
		return nil, fmt.Errorf("%w: round %d", domain.ErrUnresolvedTie, round)
	}

	// Under ballot order the earliest qualifying column already won the
	// scan above.
	return &domain.Winner{
		Candidate: best,
		Votes:     st.tallies[best],
		Share:     new(big.Rat).SetFrac64(int64(st.tallies[best]), int64(total)),
		Round:     round,
	}, nil
}

// snapshot captures the round before any elimination mutates the state.
func (e *Engine) snapshot(round int, st *electionState, total int) domain.Round {
	tallies := make([]int, len(st.tallies))
	copy(tallies, st.tallies)
	return domain.Round{
		Number:     round,
		Active:     st.activeColumns(),
		Tallies:    tallies,
		TotalValid: total,
		Exhausted:  st.exhausted,
	}
}

func (e *Engine) record(rounds []domain.Round, snap domain.Round) []domain.Round {
	if !e.config.Trace {
		return rounds
	}
	return append(rounds, snap)
}

func (e *Engine) observe(outcome domain.Outcome, st *electionState, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	labels := map[string]string{"outcome": outcomeLabel(outcome)}
	e.metrics.RecordLatency("count", elapsed, labels)
	e.metrics.RecordHistogram("count_rounds", float64(outcome.Rounds), labels)
	e.metrics.RecordGauge("ballots_exhausted", float64(st.exhausted), labels)
	e.metrics.RecordCounter("counts_total", 1, labels)
}

func outcomeLabel(outcome domain.Outcome) string {
	if outcome.Winner != nil {
		return "winner"
	}
	return string(outcome.Reason)
}
