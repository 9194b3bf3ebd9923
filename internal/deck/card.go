package deck

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCard is returned when a rank symbol cannot be parsed
var ErrInvalidCard = errors.New("invalid card")

// Card is a rank symbol. Suits play no part in the game so they are not modelled.
type Card uint8

const (
	Two Card = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten // covers 10, J, Q and K
	Ace
)

// String returns the single-character rank symbol (e.g. "7", "T", "A")
func (c Card) String() string {
	switch {
	case c >= Two && c <= Nine:
		return string(rune('0' + c))
	case c == Ten:
		return "T"
	case c == Ace:
		return "A"
	default:
		return "?"
	}
}

// Valid reports whether c is one of the ten ranks in play
func (c Card) Valid() bool {
	return c >= Two && c <= Ace
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c == Ace
}

// Value returns the hard value of the card: face value for 2-9, 10 for the
// ten-valued rank and 1 for an ace.
func (c Card) Value() int {
	switch c {
	case Ace:
		return 1
	case Ten:
		return 10
	default:
		return int(c)
	}
}

// ParseCard parses a single rank symbol. "T", "J", "Q" and "K" all map to Ten.
func ParseCard(s string) (Card, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	switch ch := strings.ToUpper(s)[0]; {
	case ch >= '2' && ch <= '9':
		return Card(ch - '0'), nil
	case ch == 'T' || ch == 'J' || ch == 'Q' || ch == 'K':
		return Ten, nil
	case ch == 'A':
		return Ace, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
}

// ParseCards parses a compact card string such as "A9T" or "5,6 9,9".
// Spaces and commas are ignored.
func ParseCards(s string) ([]Card, error) {
	cards := make([]Card, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == ',' {
			continue
		}
		c, err := ParseCard(string(r))
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for fixtures.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards renders cards as a compact string, e.g. "A9T"
func FormatCards(cards []Card) string {
	var sb strings.Builder
	for _, c := range cards {
		sb.WriteString(c.String())
	}
	return sb.String()
}
