package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// Size is the number of cards in a full deck
const Size = 52

// ErrExhausted is returned when a draw is attempted past the end of the deck.
// Under the fixed strategies this cannot happen, so callers treat it as fatal.
var ErrExhausted = errors.New("deck exhausted")

// Standard returns the 52-card multiset in canonical order: four each of 2-9,
// sixteen ten-valued cards and four aces.
func Standard() []Card {
	cards := make([]Card, 0, Size)
	for rank := Two; rank <= Nine; rank++ {
		for i := 0; i < 4; i++ {
			cards = append(cards, rank)
		}
	}
	for i := 0; i < 16; i++ {
		cards = append(cards, Ten)
	}
	for i := 0; i < 4; i++ {
		cards = append(cards, Ace)
	}
	return cards
}

// Deck is an ordered sequence of cards with a cursor ("spot") marking the next
// undealt position. A Deck is owned by a single goroutine.
type Deck struct {
	cards []Card
	spot  int
	order func(cards []Card) []Card
}

// New creates a standard deck that is shuffled with rng on every Shuffle call
func New(rng *rand.Rand) *Deck {
	return &Deck{
		cards: Standard(),
		order: func(cards []Card) []Card {
			rng.Shuffle(len(cards), func(i, j int) {
				cards[i], cards[j] = cards[j], cards[i]
			})
			return cards
		},
	}
}

// NewStacked creates a deck whose Shuffle installs a fixed order instead of
// randomising. Successive shuffles cycle through rounds, so a multi-round
// fixture can provide one order per round.
func NewStacked(rounds ...[]Card) *Deck {
	if len(rounds) == 0 {
		rounds = [][]Card{Standard()}
	}
	next := 0
	return &Deck{
		order: func([]Card) []Card {
			cards := append([]Card(nil), rounds[next%len(rounds)]...)
			next++
			return cards
		},
	}
}

// Shuffle reorders the deck and resets the cursor to the top
func (d *Deck) Shuffle() {
	d.cards = d.order(d.cards)
	d.spot = 0
}

// Draw returns the card at the cursor and advances it
func (d *Deck) Draw() (Card, error) {
	if d.spot >= len(d.cards) {
		return 0, fmt.Errorf("%w: %d of %d cards dealt", ErrExhausted, d.spot, len(d.cards))
	}
	card := d.cards[d.spot]
	d.spot++
	return card, nil
}

// Spot returns the cursor position, i.e. how many cards have been dealt this round
func (d *Deck) Spot() int {
	return d.spot
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards) - d.spot
}
