package hand

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/blackjack-ipc/internal/deck"
)

func TestValue(t *testing.T) {
	tests := []struct {
		cards string
		want  int
	}{
		// aces
		{"A", 11},
		{"AA", 12},
		{"AAA", 13},
		{"AAAA", 14},
		{"A9", 20},
		{"AT", 21},
		{"AA9", 21},
		{"AAA9", 12},
		{"AAAA7", 21},
		{"AAAA8", 12},
		{"AT5", 16},
		{"A55", 21},
		{"A56", 12},
		// no aces
		{"", 0},
		{"234", 9},
		{"TT", 20},
		{"TTT", 30},
		{"569", 20},
	}

	for _, tt := range tests {
		t.Run(tt.cards, func(t *testing.T) {
			assert.Equal(t, tt.want, Value(deck.MustParseCards(tt.cards)))
		})
	}
}

func TestValueIsPure(t *testing.T) {
	cards := deck.MustParseCards("A7A3")
	first := Value(cards)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Value(cards))
	}
	assert.Equal(t, "A7A3", deck.FormatCards(cards), "Value must not reorder its input")
}

// The soft total uses the threshold nonAce <= 11-n for every ace count.
func TestValueMatchesThresholdRule(t *testing.T) {
	for aces := 1; aces <= 4; aces++ {
		for nonAce := 2; nonAce <= 30; nonAce++ {
			cards := make([]deck.Card, 0, aces+4)
			for i := 0; i < aces; i++ {
				cards = append(cards, deck.Ace)
			}
			remaining := nonAce
			for remaining > 10 {
				cards = append(cards, deck.Ten)
				remaining -= 10
			}
			if remaining == 1 {
				// cannot express 1 without an ace; split into 9+2 by borrowing a ten
				if len(cards) > aces {
					cards = cards[:len(cards)-1]
					cards = append(cards, deck.Nine, deck.Two)
				} else {
					continue
				}
			} else if remaining > 0 {
				cards = append(cards, deck.Card(remaining))
			}

			want := nonAce + aces
			if nonAce <= 11-aces {
				want = nonAce + 11 + aces - 1
			}
			assert.Equal(t, want, Value(cards), "aces=%d nonAce=%d", aces, nonAce)
		}
	}
}

func TestHand(t *testing.T) {
	var h Hand
	h.Add(deck.Ace, deck.Five)
	assert.Equal(t, 16, h.Value())
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, "A5", h.String())

	h.Add(deck.Ten)
	assert.Equal(t, 16, h.Value())
	assert.False(t, IsBust(h.Value()))

	h.Add(deck.Nine)
	assert.True(t, IsBust(h.Value()))

	cards := h.Cards()
	cards[0] = deck.Two
	assert.Equal(t, deck.Ace, h.Cards()[0], "Cards returns a copy")

	h.Reset()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 0, h.Value())
}
