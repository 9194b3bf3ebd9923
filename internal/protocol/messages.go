// Package protocol defines the typed messages exchanged between the dealer and
// the players, and their msgpack encodings for byte-stream transports.
package protocol

import "fmt"

// Seat identifies one of the two players
type Seat int

const (
	SeatOne Seat = 1
	SeatTwo Seat = 2
)

// NumSeats is the number of player seats at the table
const NumSeats = 2

// Seats returns the player seats in service order
func Seats() [NumSeats]Seat {
	return [NumSeats]Seat{SeatOne, SeatTwo}
}

// Index returns the zero-based index of the seat
func (s Seat) Index() int {
	return int(s) - 1
}

// Valid reports whether s names a real seat
func (s Seat) Valid() bool {
	return s == SeatOne || s == SeatTwo
}

func (s Seat) String() string {
	return fmt.Sprintf("p%d", int(s))
}

// Decision is a player's hit/stand signal
type Decision bool

const (
	Stand Decision = false
	Hit   Decision = true
)

func (d Decision) String() string {
	if d == Hit {
		return "hit"
	}
	return "stand"
}

// FinalValue is the hand total a player reports once it stands
type FinalValue int

// Kind names one of the three logical channels that connect a player to the dealer
type Kind string

const (
	KindCards     Kind = "cards"     // dealer -> player
	KindDecisions Kind = "decisions" // player -> dealer
	KindValues    Kind = "values"    // player -> dealer
)

// Kinds returns every channel kind
func Kinds() []Kind {
	return []Kind{KindCards, KindDecisions, KindValues}
}

// ParseKind validates a channel kind name
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown channel kind %q", s)
}
