package statistics

import (
	"fmt"

	"github.com/lox/blackjack-ipc/internal/hand"
	"github.com/lox/blackjack-ipc/internal/protocol"
)

// Outcome is the result of comparing one player's final value against the dealer's
type Outcome int

const (
	// Unscored covers pushes, and a busted player facing a dealer who stood.
	// Neither side is credited.
	Unscored Outcome = iota
	PlayerWin
	DealerWin
)

func (o Outcome) String() string {
	switch o {
	case PlayerWin:
		return "player"
	case DealerWin:
		return "dealer"
	default:
		return "none"
	}
}

// Judge compares a player's final value with the dealer's.
//
// When the dealer busts, a player on 21 or less wins and a busted player loses.
// Otherwise a player on 21 or less who beats the dealer wins, a player below
// the dealer loses, and anything else (ties, a busted player) is Unscored.
func Judge(dealer, player int) Outcome {
	if hand.IsBust(dealer) {
		if !hand.IsBust(player) {
			return PlayerWin
		}
		return DealerWin
	}

	switch {
	case !hand.IsBust(player) && player > dealer:
		return PlayerWin
	case player < dealer:
		return DealerWin
	default:
		return Unscored
	}
}

// Scoring controls how dealer wins are counted
type Scoring string

const (
	// PerPlayer credits the dealer once for every player it beats
	PerPlayer Scoring = "per-player"
	// PerRound credits the dealer at most once per round, however many players it beats
	PerRound Scoring = "per-round"
)

// ParseScoring validates a scoring mode name
func ParseScoring(s string) (Scoring, error) {
	switch Scoring(s) {
	case PerPlayer, PerRound:
		return Scoring(s), nil
	case "":
		return PerPlayer, nil
	default:
		return "", fmt.Errorf("unknown scoring mode %q", s)
	}
}

// Tally holds the cumulative win counters of a run
type Tally struct {
	Scoring    Scoring
	Rounds     int
	DealerWins int
	PlayerWins [protocol.NumSeats]int
}

// NewTally creates an empty tally using the given scoring mode
func NewTally(scoring Scoring) Tally {
	if scoring == "" {
		scoring = PerPlayer
	}
	return Tally{Scoring: scoring}
}

// Record scores one round and returns each player's outcome
func (t *Tally) Record(dealer int, players [protocol.NumSeats]int) [protocol.NumSeats]Outcome {
	var outcomes [protocol.NumSeats]Outcome
	dealerWins := 0

	for i, player := range players {
		outcomes[i] = Judge(dealer, player)
		switch outcomes[i] {
		case PlayerWin:
			t.PlayerWins[i]++
		case DealerWin:
			dealerWins++
		}
	}

	if t.Scoring == PerRound && dealerWins > 1 {
		dealerWins = 1
	}
	t.DealerWins += dealerWins
	t.Rounds++
	return outcomes
}

// P1Wins returns player one's win count
func (t Tally) P1Wins() int { return t.PlayerWins[protocol.SeatOne.Index()] }

// P2Wins returns player two's win count
func (t Tally) P2Wins() int { return t.PlayerWins[protocol.SeatTwo.Index()] }

// MaxDealerWins returns the most dealer wins the scoring mode allows per round
func (t Tally) MaxDealerWins() int {
	if t.Scoring == PerRound {
		return 1
	}
	return protocol.NumSeats
}

// Percentage returns wins as a percentage of rounds played
func (t Tally) Percentage(wins int) float64 {
	if t.Rounds == 0 {
		return 0
	}
	return float64(wins) / float64(t.Rounds) * 100
}

// Validate checks the counters are consistent with the number of rounds played
func (t Tally) Validate() error {
	if t.Rounds < 0 {
		return fmt.Errorf("negative round count %d", t.Rounds)
	}
	for i, wins := range t.PlayerWins {
		if wins < 0 || wins > t.Rounds {
			return fmt.Errorf("player %d wins %d outside [0, %d]", i+1, wins, t.Rounds)
		}
	}
	if limit := t.Rounds * t.MaxDealerWins(); t.DealerWins < 0 || t.DealerWins > limit {
		return fmt.Errorf("dealer wins %d outside [0, %d]", t.DealerWins, limit)
	}
	return nil
}
