// Package simulator runs a complete blackjack session: it builds the channel
// fabric, starts the dealer and both players concurrently and returns the
// final tally once every actor has finished.
package simulator

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack-ipc/internal/actor"
	"github.com/lox/blackjack-ipc/internal/deck"
	"github.com/lox/blackjack-ipc/internal/protocol"
	"github.com/lox/blackjack-ipc/internal/randutil"
	"github.com/lox/blackjack-ipc/internal/statistics"
	"github.com/lox/blackjack-ipc/internal/strategy"
	"github.com/lox/blackjack-ipc/internal/transport"
)

// DefaultRounds is the number of rounds in a standard session
const DefaultRounds = 1000

// Config holds configuration for running simulations
type Config struct {
	Rounds    int
	Seed      int64 // 0 derives a seed from Clock
	Transport transport.Kind
	Buffer    int
	Scoring   statistics.Scoring

	// Executable and LogLevel are handed to child processes by the process transport
	Executable string
	LogLevel   string

	Clock  quartz.Clock
	Logger *log.Logger

	// Deck replaces the seeded deck, e.g. with deck.NewStacked for fixtures
	Deck *deck.Deck
	// OnRound is called by the dealer after each round is scored
	OnRound func(actor.RoundResult)
}

// Result describes a finished session
type Result struct {
	RunID      uuid.UUID
	Seed       int64
	Transport  transport.Kind
	Tally      statistics.Tally
	StartedAt  time.Time
	FinishedAt time.Time
	Elapsed    time.Duration
}

// Simulator runs blackjack sessions
type Simulator struct {
	config Config
	clock  quartz.Clock
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Rounds == 0 {
		config.Rounds = DefaultRounds
	}
	if config.Transport == "" {
		config.Transport = transport.Chan
	}
	if config.Scoring == "" {
		config.Scoring = statistics.PerPlayer
	}

	clock := config.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Simulator{
		config: config,
		clock:  clock,
		logger: logger.WithPrefix("simulator"),
	}
}

// Run plays the session. If any actor fails the whole session is aborted, the
// remaining actors are unblocked and the first error is returned.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	cfg := s.config
	if cfg.Rounds < 1 {
		return nil, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.New(),
		Seed:      randutil.Resolve(cfg.Seed, s.clock),
		Transport: cfg.Transport,
		StartedAt: s.clock.Now(),
	}
	logger := s.logger.With("run", result.RunID)

	d := cfg.Deck
	if d == nil {
		d = deck.New(randutil.New(result.Seed))
	}

	logger.Info("Starting simulation",
		"rounds", cfg.Rounds,
		"seed", result.Seed,
		"transport", cfg.Transport,
		"scoring", cfg.Scoring)

	fabric, err := transport.Open(ctx, transport.Options{
		Kind:       cfg.Transport,
		Buffer:     cfg.Buffer,
		Rounds:     cfg.Rounds,
		Executable: cfg.Executable,
		LogLevel:   cfg.LogLevel,
		Logger:     s.logger,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fabric.Close(); err != nil {
			logger.Warn("Closing channel fabric", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	// A failed actor cancels gctx. Closing the fabric then wakes any actor
	// blocked in a read that does not watch the context.
	stop := context.AfterFunc(gctx, func() { _ = fabric.Close() })
	defer stop()

	for _, seat := range protocol.Seats() {
		if child := fabric.Child(seat); child != nil {
			g.Go(child.Wait)
			continue
		}

		policy, err := strategy.ForSeat(int(seat))
		if err != nil {
			return nil, err
		}
		player := actor.NewPlayer(actor.PlayerConfig{
			Seat:   seat,
			Policy: policy,
			Rounds: cfg.Rounds,
			Logger: s.logger,
		}, *fabric.Players[seat.Index()])
		g.Go(func() error { return player.Run(gctx) })
	}

	dealer := actor.NewDealer(actor.DealerConfig{
		Rounds:  cfg.Rounds,
		Scoring: cfg.Scoring,
		Logger:  s.logger,
		OnRound: cfg.OnRound,
	}, d, fabric.Dealer)

	var tally statistics.Tally
	g.Go(func() error {
		var err error
		tally, err = dealer.Run(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Simulation aborted", "error", err)
		return nil, fmt.Errorf("simulation aborted: %w", err)
	}

	if err := tally.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	result.Tally = tally
	result.FinishedAt = s.clock.Now()
	result.Elapsed = result.FinishedAt.Sub(result.StartedAt)

	logger.Info("Simulation complete",
		"rounds", tally.Rounds,
		"dealer_wins", tally.DealerWins,
		"p1_wins", tally.P1Wins(),
		"p2_wins", tally.P2Wins(),
		"elapsed", result.Elapsed)

	return result, nil
}

// Run is a convenience function that creates a simulator and runs one session
func Run(ctx context.Context, config Config) (*Result, error) {
	return New(config).Run(ctx)
}
