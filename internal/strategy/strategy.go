// Package strategy holds the fixed hit/stand policies of the three actors.
package strategy

import "fmt"

// Hit thresholds. A policy hits while the hand value is strictly below its threshold.
const (
	PlayerOneThreshold = 15
	PlayerTwoThreshold = 18
	DealerThreshold    = 17
)

// Policy decides whether to hit (true) or stand (false) on a hand value
type Policy func(value int) bool

// PlayerOne hits below 15
func PlayerOne(value int) bool {
	return value < PlayerOneThreshold
}

// PlayerTwo hits below 18
func PlayerTwo(value int) bool {
	return value < PlayerTwoThreshold
}

// Dealer hits below 17
func Dealer(value int) bool {
	return value < DealerThreshold
}

// ForSeat returns the policy for player seat 1 or 2
func ForSeat(seat int) (Policy, error) {
	switch seat {
	case 1:
		return PlayerOne, nil
	case 2:
		return PlayerTwo, nil
	default:
		return nil, fmt.Errorf("no strategy for seat %d", seat)
	}
}
