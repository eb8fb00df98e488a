package engine

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preflib/runoff/internal/domain"
)

func mustCandidates(t *testing.T, names ...string) domain.Candidates {
	t.Helper()
	c, err := domain.NewCandidates(names)
	require.NoError(t, err)
	return c
}

func ballots(prefs ...[]int) []domain.Ballot {
	out := make([]domain.Ballot, len(prefs))
	for i, p := range prefs {
		out[i] = domain.NewBallot(p)
	}
	return out
}

func newEngine(t *testing.T, candidates domain.Candidates, config Config) *Engine {
	t.Helper()
	e, err := New(candidates, config)
	require.NoError(t, err)
	return e
}

func tracedConfig() Config {
	config := DefaultConfig()
	config.Trace = true
	return config
}

func TestEngineImmediateWinner(t *testing.T) {
	e := newEngine(t, mustCandidates(t, "Peter", "Mia"), tracedConfig())

	outcome, rounds, err := e.Count(context.Background(), ballots([]int{0}, []int{0}, []int{1}))
	require.NoError(t, err)

	require.NotNil(t, outcome.Winner)
	assert.Equal(t, 0, outcome.Winner.Candidate)
	assert.Equal(t, 2, outcome.Winner.Votes)
	assert.Equal(t, 1, outcome.Winner.Round)
	assert.Equal(t, 0, outcome.Winner.Share.Cmp(big.NewRat(2, 3)))
	assert.Equal(t, 1, outcome.Rounds)

	require.Len(t, rounds, 1)
	assert.Equal(t, []int{2, 1}, rounds[0].Tallies)
	assert.Equal(t, 3, rounds[0].TotalValid)
	assert.Empty(t, rounds[0].Eliminated)
}

// A single elimination transfers the loser's ballots to their next live
// preference before the next tally.
func TestEngineEliminationTransfersVotes(t *testing.T) {
	e := newEngine(t, mustCandidates(t, "Alice", "Bob", "Carol"), tracedConfig())

	outcome, rounds, err := e.Count(context.Background(), ballots(
		[]int{0}, []int{0}, []int{1}, []int{1}, []int{2, 1},
	))
	require.NoError(t, err)

	require.NotNil(t, outcome.Winner)
	assert.Equal(t, 1, outcome.Winner.Candidate)
	assert.Equal(t, 3, outcome.Winner.Votes)
	assert.Equal(t, 2, outcome.Winner.Round)
	assert.Equal(t, 0, outcome.Winner.Share.Cmp(big.NewRat(3, 5)))

	require.Len(t, rounds, 2)
	assert.Equal(t, []int{2}, rounds[0].Eliminated, "Carol holds the strict minimum in round one")
	assert.Equal(t, []int{2, 3, 0}, rounds[1].Tallies, "Carol's ballot moved to Bob")
	assert.Equal(t, 5, rounds[1].TotalValid)
}

// Candidates [Peter, Mia, Hannah, Lee] with ballots
// {Peter:1,Mia:2,Lee:3}, {Peter:2,Hannah:3,Lee:1}, {Hannah:1} at
// threshold 0.5: Mia falls first, then the remaining three tie at one
// vote each and eliminate simultaneously. The outcome must reproduce
// exactly across runs.
func TestEngineDeterministicScenario(t *testing.T) {
	e := newEngine(t, mustCandidates(t, "Peter", "Mia", "Hannah", "Lee"), tracedConfig())
	bs := ballots([]int{0, 1, 3}, []int{3, 0, 2}, []int{2})

	first, firstRounds, err := e.Count(context.Background(), bs)
	require.NoError(t, err)

	require.Nil(t, first.Winner)
	assert.Equal(t, domain.ReasonAllEliminated, first.Reason)
	assert.Equal(t, 2, first.Rounds)

	require.Len(t, firstRounds, 2)
	assert.Equal(t, []int{1}, firstRounds[0].Eliminated)
	assert.Equal(t, []int{0, 2, 3}, firstRounds[1].Eliminated)

	second, secondRounds, err := e.Count(context.Background(), bs)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, firstRounds, secondRounds)
}

// Every ballot blank: the count terminates immediately with an
// exhausted electorate, not an error.
func TestEngineAllBallotsExhausted(t *testing.T) {
	e := newEngine(t, mustCandidates(t, "Peter", "Mia", "Hannah"), tracedConfig())

	outcome, rounds, err := e.Count(context.Background(), ballots(nil, nil, nil))
	require.NoError(t, err)

	require.Nil(t, outcome.Winner)
	assert.Equal(t, domain.ReasonExhausted, outcome.Reason)
	assert.Equal(t, 1, outcome.Rounds)

	require.Len(t, rounds, 1)
	assert.Equal(t, 0, rounds[0].TotalValid)
	assert.Equal(t, 3, rounds[0].Exhausted)
}

// Exactly half of the votes in play meets a 0.5 threshold: the
// comparison is >= and exact.
func TestEngineThresholdBoundary(t *testing.T) {
	e := newEngine(t, mustCandidates(t, "Alice", "Bob", "Carol"), DefaultConfig())

	outcome, _, err := e.Count(context.Background(), ballots(
		[]int{0}, []int{0}, []int{1}, []int{2},
	))
	require.NoError(t, err)

	require.NotNil(t, outcome.Winner)
	assert.Equal(t, 0, outcome.Winner.Candidate)
	assert.Equal(t, 0, outcome.Winner.Share.Cmp(big.NewRat(1, 2)))
	assert.Equal(t, 1, outcome.Rounds)
}

// When several candidates clear a low threshold in the same round, the
// strictly higher tally wins.
func TestEngineHigherTallyWinsAmongQualifiers(t *testing.T) {
	config := DefaultConfig()
	config.Threshold = 0.25
	e := newEngine(t, mustCandidates(t, "Alice", "Bob"), config)

	outcome, _, err := e.Count(context.Background(), ballots([]int{0}, []int{0}, []int{1}))
	require.NoError(t, err)

	require.NotNil(t, outcome.Winner)
	assert.Equal(t, 0, outcome.Winner.Candidate)
	assert.Equal(t, 2, outcome.Winner.Votes)
}

func TestEngineWinningTiePolicies(t *testing.T) {
	candidates := mustCandidates(t, "Alice", "Bob")
	tied := ballots([]int{0}, []int{1})

	t.Run("ballot order picks the earlier column", func(t *testing.T) {
		e := newEngine(t, candidates, DefaultConfig())

		outcome, _, err := e.Count(context.Background(), tied)
		require.NoError(t, err)
		require.NotNil(t, outcome.Winner)
		assert.Equal(t, 0, outcome.Winner.Candidate)
	})

	t.Run("error policy refuses to pick", func(t *testing.T) {
		config := DefaultConfig()
		config.TieBreak = TieError
		e := newEngine(t, candidates, config)

		_, _, err := e.Count(context.Background(), tied)
		require.ErrorIs(t, err, domain.ErrUnresolvedTie)
	})
}

// A sole candidate that no ballot ranks is a collapsed field, not an
// exhausted electorate.
func TestEngineSoleCandidateWithZeroVotes(t *testing.T) {
	e := newEngine(t, mustCandidates(t, "Alice"), DefaultConfig())

	outcome, _, err := e.Count(context.Background(), ballots(nil, nil))
	require.NoError(t, err)

	require.Nil(t, outcome.Winner)
	assert.Equal(t, domain.ReasonAllEliminated, outcome.Reason)
}

// A survivor of simultaneous elimination wins on the following tally
// even when some ballots exhaust along the way.
func TestEngineSoleSurvivorWinsNextRound(t *testing.T) {
	config := tracedConfig()
	config.Threshold = 1.0
	e := newEngine(t, mustCandidates(t, "Alice", "Bob", "Carol"), config)

	outcome, rounds, err := e.Count(context.Background(), ballots(
		[]int{2}, []int{2}, []int{0}, []int{1},
	))
	require.NoError(t, err)

	require.NotNil(t, outcome.Winner)
	assert.Equal(t, 2, outcome.Winner.Candidate)
	assert.Equal(t, 2, outcome.Winner.Round)
	assert.Equal(t, 0, outcome.Winner.Share.Cmp(big.NewRat(1, 1)))

	require.Len(t, rounds, 2)
	assert.Equal(t, []int{0, 1}, rounds[0].Eliminated)
	assert.Equal(t, 2, rounds[1].Exhausted, "the Alice and Bob ballots exhaust")
	assert.Equal(t, 2, rounds[1].TotalValid)
}

// The engine terminates within one round per candidate, and exhausted
// ballots never come back.
func TestEngineTerminationAndMonotonicExhaustion(t *testing.T) {
	config := tracedConfig()
	config.Threshold = 0.9
	candidates := mustCandidates(t, "A", "B", "C", "D", "E")
	e := newEngine(t, candidates, config)

	outcome, rounds, err := e.Count(context.Background(), ballots(
		[]int{0, 1}, []int{1, 2}, []int{2, 3}, []int{3, 4}, []int{4, 0}, []int{0},
	))
	require.NoError(t, err)

	assert.LessOrEqual(t, outcome.Rounds, candidates.Len())
	require.NotEmpty(t, rounds)
	prev := 0
	for _, round := range rounds {
		assert.GreaterOrEqual(t, round.Exhausted, prev, "round %d lost an exhausted ballot", round.Number)
		prev = round.Exhausted
	}
}

func TestEnginePreconditions(t *testing.T) {
	candidates := mustCandidates(t, "Alice", "Bob")

	t.Run("empty candidate set", func(t *testing.T) {
		_, err := New(domain.Candidates{}, DefaultConfig())
		require.ErrorIs(t, err, domain.ErrNoCandidates)
	})

	t.Run("zero threshold", func(t *testing.T) {
		config := DefaultConfig()
		config.Threshold = 0
		_, err := New(candidates, config)
		require.ErrorIs(t, err, domain.ErrInvalidThreshold)
	})

	t.Run("threshold above one", func(t *testing.T) {
		config := DefaultConfig()
		config.Threshold = 1.5
		_, err := New(candidates, config)
		require.ErrorIs(t, err, domain.ErrInvalidThreshold)
	})

	t.Run("threshold of exactly one is allowed", func(t *testing.T) {
		config := DefaultConfig()
		config.Threshold = 1.0
		_, err := New(candidates, config)
		require.NoError(t, err)
	})

	t.Run("unknown tie policy", func(t *testing.T) {
		config := DefaultConfig()
		config.TieBreak = "coin_flip"
		_, err := New(candidates, config)
		require.Error(t, err)
	})

	t.Run("no ballots", func(t *testing.T) {
		e := newEngine(t, candidates, DefaultConfig())
		_, _, err := e.Count(context.Background(), nil)
		require.ErrorIs(t, err, domain.ErrNoBallots)
	})
}

func TestEngineTraceDisabled(t *testing.T) {
	e := newEngine(t, mustCandidates(t, "Alice", "Bob"), DefaultConfig())

	outcome, rounds, err := e.Count(context.Background(), ballots([]int{0}, []int{0}))
	require.NoError(t, err)
	require.NotNil(t, outcome.Winner)
	assert.Nil(t, rounds)
}

func TestEngineContextCancellation(t *testing.T) {
	e := newEngine(t, mustCandidates(t, "Alice", "Bob"), DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.Count(ctx, ballots([]int{0}))
	require.ErrorIs(t, err, context.Canceled)
}
