// Package actor implements the dealer and player state machines. Actors share
// no state; everything they know about each other arrives over the channels in
// their links.
package actor

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack-ipc/internal/channel"
	"github.com/lox/blackjack-ipc/internal/deck"
	"github.com/lox/blackjack-ipc/internal/protocol"
)

// DealerLink is the dealer's side of the three channels to one player
type DealerLink struct {
	Cards     channel.SendCloser[deck.Card]
	Decisions channel.ReceiveCloser[protocol.Decision]
	Values    channel.ReceiveCloser[protocol.FinalValue]
}

// Close releases every endpoint in the link
func (l DealerLink) Close() error {
	return closeAll(l.Cards, l.Decisions, l.Values)
}

// PlayerLink is a player's side of its three channels to the dealer
type PlayerLink struct {
	Cards     channel.ReceiveCloser[deck.Card]
	Decisions channel.SendCloser[protocol.Decision]
	Values    channel.SendCloser[protocol.FinalValue]
}

// Close releases every endpoint in the link
func (l PlayerLink) Close() error {
	return closeAll(l.Cards, l.Decisions, l.Values)
}

type closer interface{ Close() error }

func closeAll(closers ...closer) error {
	var errs []error
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func orDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger
}
