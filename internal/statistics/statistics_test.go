package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJudge(t *testing.T) {
	tests := []struct {
		name           string
		dealer, player int
		want           Outcome
	}{
		{"dealer busts, player safe", 22, 18, PlayerWin},
		{"dealer busts, player on 21", 26, 21, PlayerWin},
		{"dealer busts, player busts", 23, 24, DealerWin},
		{"dealer stands, player beats dealer", 17, 19, PlayerWin},
		{"dealer stands, player below dealer", 20, 18, DealerWin},
		{"push", 18, 18, Unscored},
		{"player busts against standing dealer", 17, 25, Unscored},
		{"player on 21 against dealer 21", 21, 21, Unscored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Judge(tt.dealer, tt.player))
		})
	}
}

func TestRecordPerPlayer(t *testing.T) {
	tally := NewTally(PerPlayer)

	outcomes := tally.Record(24, [2]int{25, 23})
	assert.Equal(t, [2]Outcome{DealerWin, DealerWin}, outcomes)
	assert.Equal(t, 2, tally.DealerWins, "both players busting scores the dealer twice")

	tally.Record(22, [2]int{15, 18})
	assert.Equal(t, 1, tally.P1Wins())
	assert.Equal(t, 1, tally.P2Wins())
	assert.Equal(t, 2, tally.DealerWins)

	tally.Record(18, [2]int{18, 25})
	assert.Equal(t, 2, tally.DealerWins, "pushes and busts against a standing dealer score nothing")

	assert.Equal(t, 3, tally.Rounds)
	require.NoError(t, tally.Validate())
}

func TestRecordPerRound(t *testing.T) {
	tally := NewTally(PerRound)

	tally.Record(24, [2]int{25, 23})
	assert.Equal(t, 1, tally.DealerWins)

	tally.Record(20, [2]int{15, 21})
	assert.Equal(t, 2, tally.DealerWins)
	assert.Equal(t, 1, tally.P2Wins())

	require.NoError(t, tally.Validate())
}

func TestCountersAreMonotonic(t *testing.T) {
	tally := NewTally(PerPlayer)
	prev := tally
	for dealer := 17; dealer <= 26; dealer++ {
		for p1 := 12; p1 <= 26; p1 += 2 {
			tally.Record(dealer, [2]int{p1, 30 - p1})
			assert.GreaterOrEqual(t, tally.DealerWins, prev.DealerWins)
			assert.GreaterOrEqual(t, tally.P1Wins(), prev.P1Wins())
			assert.GreaterOrEqual(t, tally.P2Wins(), prev.P2Wins())
			prev = tally
		}
	}
	require.NoError(t, tally.Validate())
}

func TestValidate(t *testing.T) {
	assert.Error(t, Tally{Scoring: PerPlayer, Rounds: 1, PlayerWins: [2]int{2, 0}}.Validate())
	assert.Error(t, Tally{Scoring: PerRound, Rounds: 1, DealerWins: 2}.Validate())
	assert.NoError(t, Tally{Scoring: PerPlayer, Rounds: 1, DealerWins: 2}.Validate())
}

func TestPercentage(t *testing.T) {
	tally := Tally{Rounds: 1000}
	assert.InDelta(t, 41.3, tally.Percentage(413), 1e-9)
	assert.Zero(t, Tally{}.Percentage(5))
}

func TestParseScoring(t *testing.T) {
	s, err := ParseScoring("")
	require.NoError(t, err)
	assert.Equal(t, PerPlayer, s)

	s, err = ParseScoring("per-round")
	require.NoError(t, err)
	assert.Equal(t, PerRound, s)

	_, err = ParseScoring("per-hand")
	assert.Error(t, err)
}
