package simulator

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack-ipc/internal/actor"
	"github.com/lox/blackjack-ipc/internal/deck"
	"github.com/lox/blackjack-ipc/internal/statistics"
	"github.com/lox/blackjack-ipc/internal/transport"
)

var testLogger = log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewAppliesDefaults(t *testing.T) {
	sim := New(Config{})
	assert.Equal(t, DefaultRounds, sim.config.Rounds)
	assert.Equal(t, transport.Chan, sim.config.Transport)
	assert.Equal(t, statistics.PerPlayer, sim.config.Scoring)
	assert.NotNil(t, sim.clock)
	assert.NotNil(t, sim.logger)
}

func TestRunStackedDeck(t *testing.T) {
	clock := quartz.NewMock(t)
	var rounds []actor.RoundResult

	// Dealer stands on 17, player one stands on 15 and loses, player two stands on 19 and wins
	result, err := Run(testContext(t), Config{
		Rounds:  3,
		Seed:    99,
		Clock:   clock,
		Logger:  testLogger,
		Deck:    deck.NewStacked(deck.MustParseCards("T7 T5 T9")),
		OnRound: func(r actor.RoundResult) { rounds = append(rounds, r) },
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Tally.Rounds)
	assert.Equal(t, 3, result.Tally.DealerWins)
	assert.Equal(t, 0, result.Tally.P1Wins())
	assert.Equal(t, 3, result.Tally.P2Wins())
	assert.Equal(t, int64(99), result.Seed)

	require.Len(t, rounds, 3)
	for i, r := range rounds {
		assert.Equal(t, i+1, r.Round)
		assert.Equal(t, 17, r.DealerValue)
		assert.Equal(t, [2]int{15, 19}, r.PlayerValues)
		assert.Equal(t, [2]statistics.Outcome{statistics.DealerWin, statistics.PlayerWin}, r.Outcomes)
	}
}

func TestRunPerRoundScoring(t *testing.T) {
	// Dealer 20 beats both players every round
	stacked := deck.MustParseCards("TT T5 T8")

	perPlayer, err := Run(testContext(t), Config{Rounds: 4, Logger: testLogger, Deck: deck.NewStacked(stacked)})
	require.NoError(t, err)
	perRound, err := Run(testContext(t), Config{Rounds: 4, Logger: testLogger, Deck: deck.NewStacked(stacked), Scoring: statistics.PerRound})
	require.NoError(t, err)

	assert.Equal(t, 8, perPlayer.Tally.DealerWins)
	assert.Equal(t, 4, perRound.Tally.DealerWins)
	assert.Equal(t, statistics.PerRound, perRound.Tally.Scoring)
}

func TestRunSeedFromClock(t *testing.T) {
	clock := quartz.NewMock(t)
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	clock.Set(now)

	result, err := Run(testContext(t), Config{Rounds: 10, Clock: clock, Logger: testLogger})
	require.NoError(t, err)

	assert.Equal(t, now.UnixNano(), result.Seed)
	assert.Equal(t, now, result.StartedAt)
	assert.Equal(t, now, result.FinishedAt)
	assert.Zero(t, result.Elapsed)
}

func TestRunIsReproducible(t *testing.T) {
	a, err := Run(testContext(t), Config{Rounds: 200, Seed: 31337, Logger: testLogger})
	require.NoError(t, err)
	b, err := Run(testContext(t), Config{Rounds: 200, Seed: 31337, Logger: testLogger})
	require.NoError(t, err)

	assert.Equal(t, a.Tally, b.Tally)
	assert.NotEqual(t, a.RunID, b.RunID)
}

// Every in-process transport must produce exactly the same session for a seed
func TestRunTransportsAgree(t *testing.T) {
	const seed, rounds = 2024, 300

	want, err := Run(testContext(t), Config{Rounds: rounds, Seed: seed, Logger: testLogger})
	require.NoError(t, err)
	require.NoError(t, want.Tally.Validate())

	for _, kind := range []transport.Kind{transport.Pipe, transport.WebSocket} {
		t.Run(string(kind), func(t *testing.T) {
			got, err := Run(testContext(t), Config{Rounds: rounds, Seed: seed, Transport: kind, Logger: testLogger})
			require.NoError(t, err)
			assert.Equal(t, kind, got.Transport)
			assert.Equal(t, want.Tally, got.Tally)
		})
	}

	t.Run("buffered", func(t *testing.T) {
		got, err := Run(testContext(t), Config{Rounds: rounds, Seed: seed, Buffer: 16, Logger: testLogger})
		require.NoError(t, err)
		assert.Equal(t, want.Tally, got.Tally)
	})
}

func TestRunFullSession(t *testing.T) {
	result, err := Run(testContext(t), Config{Seed: 7, Logger: testLogger})
	require.NoError(t, err)

	tally := result.Tally
	assert.Equal(t, DefaultRounds, tally.Rounds)
	assert.LessOrEqual(t, tally.P1Wins(), DefaultRounds)
	assert.LessOrEqual(t, tally.P2Wins(), DefaultRounds)
	assert.LessOrEqual(t, tally.DealerWins, 2*DefaultRounds)
	assert.Positive(t, tally.DealerWins)
	assert.Positive(t, tally.P1Wins()+tally.P2Wins())
}

func TestRunAbortsWhenDeckRunsOut(t *testing.T) {
	for _, kind := range []transport.Kind{transport.Chan, transport.Pipe, transport.WebSocket} {
		t.Run(string(kind), func(t *testing.T) {
			// Both players are dealt 2+2 and hit, so the dealer runs out mid-round
			_, err := Run(testContext(t), Config{
				Rounds:    1,
				Transport: kind,
				Logger:    testLogger,
				Deck:      deck.NewStacked(deck.MustParseCards("T7 23 45")),
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, deck.ErrExhausted)
		})
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	_, err := Run(testContext(t), Config{Rounds: -1, Logger: testLogger})
	assert.Error(t, err)

	_, err = Run(testContext(t), Config{Rounds: 1, Transport: "smoke-signals", Logger: testLogger})
	assert.ErrorIs(t, err, transport.ErrUnknownKind)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Config{Rounds: 10, Logger: testLogger})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
