package actor

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack-ipc/internal/deck"
	"github.com/lox/blackjack-ipc/internal/hand"
	"github.com/lox/blackjack-ipc/internal/protocol"
	"github.com/lox/blackjack-ipc/internal/strategy"
)

// PlayerState tracks where a player is within a round
type PlayerState int

const (
	AwaitingInitialDeal PlayerState = iota
	Deciding
	AwaitingCard
	Reporting
)

func (s PlayerState) String() string {
	switch s {
	case AwaitingInitialDeal:
		return "awaiting-initial-deal"
	case Deciding:
		return "deciding"
	case AwaitingCard:
		return "awaiting-card"
	case Reporting:
		return "reporting"
	default:
		return "unknown"
	}
}

// PlayerConfig configures a player actor
type PlayerConfig struct {
	Seat   protocol.Seat
	Policy strategy.Policy
	Rounds int
	Logger *log.Logger
}

// Player receives dealt cards, applies its policy and reports decisions and
// its final hand value back to the dealer.
type Player struct {
	seat   protocol.Seat
	policy strategy.Policy
	rounds int
	link   PlayerLink
	logger *log.Logger

	hand  hand.Hand
	state PlayerState
}

// NewPlayer creates a player actor bound to link
func NewPlayer(cfg PlayerConfig, link PlayerLink) *Player {
	return &Player{
		seat:   cfg.Seat,
		policy: cfg.Policy,
		rounds: cfg.Rounds,
		link:   link,
		logger: orDiscard(cfg.Logger).WithPrefix("player").With("seat", cfg.Seat),
	}
}

// Run plays the configured number of rounds and returns. Any channel failure
// aborts the run.
func (p *Player) Run(ctx context.Context) error {
	for round := 1; round <= p.rounds; round++ {
		if err := p.playRound(ctx, round); err != nil {
			return fmt.Errorf("%s round %d (%s): %w", p.seat, round, p.state, err)
		}
	}
	p.logger.Debug("Player finished", "rounds", p.rounds)
	return nil
}

func (p *Player) playRound(ctx context.Context, round int) error {
	p.state = AwaitingInitialDeal
	p.hand.Reset()

	for i := 0; i < 2; i++ {
		card, err := p.receiveCard(ctx)
		if err != nil {
			return err
		}
		p.hand.Add(card)
	}

	for {
		p.state = Deciding
		value := p.hand.Value()
		decision := protocol.Decision(p.policy(value))

		p.logger.Debug("Decision", "round", round, "hand", p.hand.String(), "value", value, "decision", decision)
		if err := p.link.Decisions.Send(ctx, decision); err != nil {
			return fmt.Errorf("send decision: %w", err)
		}
		if decision == protocol.Stand {
			break
		}

		p.state = AwaitingCard
		card, err := p.receiveCard(ctx)
		if err != nil {
			return err
		}
		p.hand.Add(card)
	}

	p.state = Reporting
	if err := p.link.Values.Send(ctx, protocol.FinalValue(p.hand.Value())); err != nil {
		return fmt.Errorf("send final value: %w", err)
	}
	return nil
}

func (p *Player) receiveCard(ctx context.Context) (deck.Card, error) {
	card, err := p.link.Cards.Receive(ctx)
	if err != nil {
		return 0, fmt.Errorf("receive card: %w", err)
	}
	return card, nil
}
