package main

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack-ipc/internal/actor"
	"github.com/lox/blackjack-ipc/internal/protocol"
	"github.com/lox/blackjack-ipc/internal/strategy"
	"github.com/lox/blackjack-ipc/internal/transport"
)

// PlayerCmd is the entry point of a child process started by the process
// transport. Its channels arrive as inherited file descriptors 3, 4 and 5.
type PlayerCmd struct {
	Seat   int `kong:"required,help='Seat to play (1 or 2)'"`
	Rounds int `kong:"required,help='Number of rounds the dealer will deal'"`
}

func (c *PlayerCmd) Run(g *Globals) error {
	level := log.InfoLevel
	if g.LogLevel != "" {
		parsed, err := log.ParseLevel(g.LogLevel)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}
	logger := newLogger(level)

	seat := protocol.Seat(c.Seat)
	if !seat.Valid() {
		return fmt.Errorf("invalid seat %d", c.Seat)
	}
	policy, err := strategy.ForSeat(c.Seat)
	if err != nil {
		return err
	}

	link, err := transport.ChildLink()
	if err != nil {
		return err
	}
	defer link.Close()

	ctx, cancel := signalContext(logger)
	defer cancel()

	player := actor.NewPlayer(actor.PlayerConfig{
		Seat:   seat,
		Policy: policy,
		Rounds: c.Rounds,
		Logger: logger,
	}, link)
	return player.Run(ctx)
}
