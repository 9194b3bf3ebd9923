package actor

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack-ipc/internal/deck"
	"github.com/lox/blackjack-ipc/internal/hand"
	"github.com/lox/blackjack-ipc/internal/protocol"
	"github.com/lox/blackjack-ipc/internal/statistics"
	"github.com/lox/blackjack-ipc/internal/strategy"
)

// RoundResult describes one completed round as seen by the dealer
type RoundResult struct {
	Round        int
	DealerCards  []deck.Card
	DealerValue  int
	Dealt        [protocol.NumSeats][]deck.Card // cards sent to each player
	PlayerValues [protocol.NumSeats]int         // values reported by each player
	Outcomes     [protocol.NumSeats]statistics.Outcome
}

// DealerConfig configures the dealer actor
type DealerConfig struct {
	Rounds  int
	Scoring statistics.Scoring
	Logger  *log.Logger
	// OnRound, if set, is called after each round is scored
	OnRound func(RoundResult)
}

// Dealer owns the deck, deals to both players over their links, plays its own
// hand and keeps the running tally.
type Dealer struct {
	deck    *deck.Deck
	links   [protocol.NumSeats]DealerLink
	rounds  int
	scoring statistics.Scoring
	policy  strategy.Policy
	onRound func(RoundResult)
	logger  *log.Logger

	hand hand.Hand
}

// NewDealer creates a dealer that deals from d to the players behind links
func NewDealer(cfg DealerConfig, d *deck.Deck, links [protocol.NumSeats]DealerLink) *Dealer {
	return &Dealer{
		deck:    d,
		links:   links,
		rounds:  cfg.Rounds,
		scoring: cfg.Scoring,
		policy:  strategy.Dealer,
		onRound: cfg.OnRound,
		logger:  orDiscard(cfg.Logger).WithPrefix("dealer"),
	}
}

// Run plays every round and returns the final tally. The tally accumulated so
// far is returned alongside any error.
func (d *Dealer) Run(ctx context.Context) (statistics.Tally, error) {
	tally := statistics.NewTally(d.scoring)

	for round := 1; round <= d.rounds; round++ {
		result, err := d.playRound(ctx, round)
		if err != nil {
			return tally, fmt.Errorf("dealer round %d: %w", round, err)
		}

		result.Outcomes = tally.Record(result.DealerValue, result.PlayerValues)
		d.logger.Debug("Round scored",
			"round", round,
			"dealer", result.DealerValue,
			"p1", result.PlayerValues[0],
			"p2", result.PlayerValues[1],
			"outcomes", fmt.Sprintf("%s/%s", result.Outcomes[0], result.Outcomes[1]))

		if d.onRound != nil {
			d.onRound(result)
		}
	}

	d.logger.Debug("Dealer finished", "rounds", d.rounds)
	return tally, nil
}

func (d *Dealer) playRound(ctx context.Context, round int) (RoundResult, error) {
	result := RoundResult{Round: round}

	d.deck.Shuffle()
	d.hand.Reset()

	// Deck order: dealer, dealer, p1, p1, p2, p2
	for i := 0; i < 2; i++ {
		card, err := d.deck.Draw()
		if err != nil {
			return result, err
		}
		d.hand.Add(card)
	}
	for _, seat := range protocol.Seats() {
		for i := 0; i < 2; i++ {
			if err := d.deal(ctx, seat, &result); err != nil {
				return result, err
			}
		}
	}

	var decisions [protocol.NumSeats]protocol.Decision
	for _, seat := range protocol.Seats() {
		decision, err := d.receiveDecision(ctx, seat)
		if err != nil {
			return result, err
		}
		decisions[seat.Index()] = decision
	}

	// Service each player's hits in turn. The players run concurrently, so the
	// second may already have queued its decisions while the first is served.
	for _, seat := range protocol.Seats() {
		for decision := decisions[seat.Index()]; decision == protocol.Hit; {
			if err := d.deal(ctx, seat, &result); err != nil {
				return result, err
			}
			var err error
			if decision, err = d.receiveDecision(ctx, seat); err != nil {
				return result, err
			}
		}
	}

	for d.policy(d.hand.Value()) {
		card, err := d.deck.Draw()
		if err != nil {
			return result, err
		}
		d.hand.Add(card)
	}
	result.DealerCards = d.hand.Cards()
	result.DealerValue = d.hand.Value()

	for _, seat := range protocol.Seats() {
		value, err := d.links[seat.Index()].Values.Receive(ctx)
		if err != nil {
			return result, fmt.Errorf("receive %s final value: %w", seat, err)
		}
		result.PlayerValues[seat.Index()] = int(value)

		dealt := result.Dealt[seat.Index()]
		if expected := hand.Value(dealt); expected != int(value) {
			d.logger.Warn("Player reported a value that does not match the cards dealt",
				"round", round, "seat", seat, "reported", int(value), "dealt", deck.FormatCards(dealt), "expected", expected)
		}
	}

	return result, nil
}

// deal draws the next card and sends it to seat
func (d *Dealer) deal(ctx context.Context, seat protocol.Seat, result *RoundResult) error {
	card, err := d.deck.Draw()
	if err != nil {
		return err
	}
	if err := d.links[seat.Index()].Cards.Send(ctx, card); err != nil {
		return fmt.Errorf("send card to %s: %w", seat, err)
	}
	result.Dealt[seat.Index()] = append(result.Dealt[seat.Index()], card)
	return nil
}

func (d *Dealer) receiveDecision(ctx context.Context, seat protocol.Seat) (protocol.Decision, error) {
	decision, err := d.links[seat.Index()].Decisions.Receive(ctx)
	if err != nil {
		return protocol.Stand, fmt.Errorf("receive %s decision: %w", seat, err)
	}
	return decision, nil
}
