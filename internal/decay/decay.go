// Package decay evaluates declared amount ranges against a time or block
// schedule. All functions are pure: callers supply the execution-time
// context, nothing here reads a clock.
package decay

import (
	"errors"
	"math/big"
)

var (
	ErrEndTimeBeforeStartTime = errors.New("decay end before decay start")
	ErrDeadlineBeforeEndTime  = errors.New("order deadline before decay end")
	ErrInputAndOutputDecay    = errors.New("input and output cannot both decay")
	ErrIncorrectAmounts       = errors.New("amounts inconsistent with decay direction")
)

// Rounding picks which way interpolation rounds the evaluated amount.
// Quantities the swapper receives round up, quantities the filler collects
// round down; either way the swapper never loses to truncation.
type Rounding int

const (
	RoundDown Rounding = iota
	RoundUp
)

// Linear maps a (startAmount, endAmount) range onto [startTime, endTime] at
// instant now. Outside the window it clamps to the nearer endpoint.
func Linear(startAmount, endAmount *big.Int, startTime, endTime, now uint64, round Rounding) *big.Int {
	if startAmount.Cmp(endAmount) == 0 || now <= startTime {
		return new(big.Int).Set(startAmount)
	}
	if now >= endTime {
		return new(big.Int).Set(endAmount)
	}
	return interpolate(startAmount, endAmount, now-startTime, endTime-startTime, round)
}

// interpolate computes start + (end-start)*elapsed/duration with the result
// rounded per round. duration must be > 0 and 0 < elapsed < duration.
func interpolate(start, end *big.Int, elapsed, duration uint64, round Rounding) *big.Int {
	num := new(big.Int).Sub(end, start)
	num.Mul(num, new(big.Int).SetUint64(elapsed))
	den := new(big.Int).SetUint64(duration)

	quo, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	// big.Int Quo truncates toward zero; adjust to the requested direction
	// when there is a remainder.
	if rem.Sign() != 0 {
		if round == RoundUp && num.Sign() > 0 {
			quo.Add(quo, big.NewInt(1))
		}
		if round == RoundDown && num.Sign() < 0 {
			quo.Sub(quo, big.NewInt(1))
		}
	}
	return quo.Add(quo, start)
}

// ValidateWindow checks the linear schedule ordering invariants.
func ValidateWindow(decayStart, decayEnd, deadline uint64) error {
	if decayEnd < decayStart {
		return ErrEndTimeBeforeStartTime
	}
	if deadline < decayEnd {
		return ErrDeadlineBeforeEndTime
	}
	return nil
}

// ValidateInputRange rejects inputs declared to decay downward: an input may
// only grow toward the filler over time or stay flat.
func ValidateInputRange(startAmount, endAmount *big.Int) error {
	if startAmount.Cmp(endAmount) > 0 {
		return ErrIncorrectAmounts
	}
	return nil
}

// ValidateOutputRange rejects outputs declared to decay upward: an output may
// only shrink toward the end amount or stay flat.
func ValidateOutputRange(startAmount, endAmount *big.Int) error {
	if startAmount.Cmp(endAmount) < 0 {
		return ErrIncorrectAmounts
	}
	return nil
}

// ValidateSingleDirection rejects orders where both the input and any output
// have a non-degenerate range: the pricing direction would be ambiguous.
func ValidateSingleDirection(inputDecays, outputDecays bool) error {
	if inputDecays && outputDecays {
		return ErrInputAndOutputDecay
	}
	return nil
}
