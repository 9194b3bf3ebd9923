// Package hand evaluates blackjack hands.
package hand

import "github.com/lox/blackjack-ipc/internal/deck"

// Bust is the highest value a hand can hold without busting
const Bust = 21

// Value computes the value of cards from scratch. Non-ace cards count their
// hard value. At most one ace is ever soft: with n aces the hand scores
// nonAce+11+(n-1) when that does not exceed 21, otherwise nonAce+n.
func Value(cards []deck.Card) int {
	nonAce, aces := 0, 0
	for _, c := range cards {
		if c.IsAce() {
			aces++
			continue
		}
		nonAce += c.Value()
	}

	if aces == 0 {
		return nonAce
	}
	if nonAce <= 11-aces {
		return nonAce + 11 + (aces - 1)
	}
	return nonAce + aces
}

// IsBust reports whether value exceeds 21
func IsBust(value int) bool {
	return value > Bust
}

// Hand is the ordered set of cards held by one actor during a round
type Hand struct {
	cards []deck.Card
}

// Reset clears the hand for a new round, keeping capacity
func (h *Hand) Reset() {
	h.cards = h.cards[:0]
}

// Add appends cards to the hand
func (h *Hand) Add(cards ...deck.Card) {
	h.cards = append(h.cards, cards...)
}

// Cards returns a copy of the cards in the hand
func (h *Hand) Cards() []deck.Card {
	return append([]deck.Card(nil), h.cards...)
}

// Len returns the number of cards held
func (h *Hand) Len() int {
	return len(h.cards)
}

// Value returns the current value of the hand
func (h *Hand) Value() int {
	return Value(h.cards)
}

func (h *Hand) String() string {
	return deck.FormatCards(h.cards)
}
