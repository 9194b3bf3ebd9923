package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack-ipc/internal/actor"
	"github.com/lox/blackjack-ipc/internal/config"
	"github.com/lox/blackjack-ipc/internal/deck"
	"github.com/lox/blackjack-ipc/internal/report"
	"github.com/lox/blackjack-ipc/internal/simulator"
	"github.com/lox/blackjack-ipc/internal/store"
)

// RunCmd plays one session and prints the tallies
type RunCmd struct {
	Rounds    *int   `kong:"help='Number of rounds to play (default 1000)'"`
	Seed      *int64 `kong:"help='Deck RNG seed; 0 derives one from the clock'"`
	Transport string `kong:"help='Channel transport: chan, pipe, websocket or process'"`
	Buffer    *int   `kong:"help='Capacity of in-process channels; 0 makes every send wait for its receive'"`
	Scoring   string `kong:"help='Dealer win counting: per-player or per-round'"`
	DB        string `kong:"name='db',help='SQLite file or postgres:// URL to record the session in'"`
	Output    string `kong:"type='path',help='Write a JSON summary to this file'"`
	NoColor   bool   `kong:"help='Disable coloured output'"`
	Trace     bool   `kong:"help='Log every scored round at info level'"`

	out   io.Writer    `kong:"-"`
	clock quartz.Clock `kong:"-"`
}

// apply overlays flags that were set on the command line
func (c *RunCmd) apply(cfg *config.Config) {
	if c.Rounds != nil {
		cfg.Simulation.Rounds = *c.Rounds
	}
	if c.Seed != nil {
		cfg.Simulation.Seed = *c.Seed
	}
	if c.Transport != "" {
		cfg.Simulation.Transport = c.Transport
	}
	if c.Buffer != nil {
		cfg.Simulation.Buffer = *c.Buffer
	}
	if c.Scoring != "" {
		cfg.Simulation.Scoring = c.Scoring
	}
	if c.DB != "" {
		cfg.Results.Database = c.DB
	}
}

func (c *RunCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel())
	ctx, cancel := signalContext(logger)
	defer cancel()

	simCfg := simulator.Config{
		Rounds:    cfg.Simulation.Rounds,
		Seed:      cfg.Simulation.Seed,
		Transport: cfg.TransportKind(),
		Buffer:    cfg.Simulation.Buffer,
		Scoring:   cfg.ScoringMode(),
		LogLevel:  cfg.Log.Level,
		Clock:     c.clock,
		Logger:    logger,
	}
	if c.Trace {
		trace := logger.WithPrefix("trace")
		simCfg.OnRound = func(r actor.RoundResult) {
			trace.Info("Round",
				"round", r.Round,
				"dealer", fmt.Sprintf("%d (%s)", r.DealerValue, deck.FormatCards(r.DealerCards)),
				"p1", fmt.Sprintf("%d (%s) %s", r.PlayerValues[0], deck.FormatCards(r.Dealt[0]), r.Outcomes[0]),
				"p2", fmt.Sprintf("%d (%s) %s", r.PlayerValues[1], deck.FormatCards(r.Dealt[1]), r.Outcomes[1]))
		}
	}

	result, err := simulator.Run(ctx, simCfg)
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = stdout
	}
	if err := report.NewRenderer(out, plainOutput(out, c.NoColor)).Result(result); err != nil {
		return fmt.Errorf("print report: %w", err)
	}

	if c.Output != "" {
		if err := report.WriteJSON(c.Output, report.NewSummary(result)); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		logger.Info("Wrote summary", "file", c.Output)
	}

	if cfg.Results.Database != "" {
		if err := record(ctx, cfg.Results.Database, result, logger); err != nil {
			return err
		}
	}
	return nil
}

func record(ctx context.Context, path string, result *simulator.Result, logger *log.Logger) error {
	// A finished session is recorded even if a signal arrives meanwhile
	ctx = context.WithoutCancel(ctx)

	s, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Save(ctx, store.FromResult(result)); err != nil {
		return err
	}
	logger.Info("Recorded session", "database", path, "run", result.RunID)
	return nil
}
