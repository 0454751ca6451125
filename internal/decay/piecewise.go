package decay

import (
	"errors"
	"math/big"

	"github.com/openfill/fillgate/internal/types"
)

var ErrEmptyCurve = errors.New("piecewise curve has no points")

// Piecewise evaluates a block-anchored piecewise-linear curve. base is the
// leg's start amount; each curve point is (relativeBlocks, relativeAmount)
// against the decay start block, with positive deltas moving the amount up.
//
// Points are scanned in declaration order and the first segment whose end
// offset covers the elapsed distance wins. Out-of-order points therefore
// never cause a revisit of an earlier offset: once a point is passed the scan
// only moves forward.
//
// Zero-duration points (two or more points sharing one offset) are
// instantaneous: exactly at that offset the first such point in encounter
// order supplies the value, while interpolation past the offset anchors on
// the last one. This asymmetry is deliberate and pinned by tests.
func Piecewise(base *big.Int, curve []types.CurvePoint, startBlock, nowBlock uint64, round Rounding) *big.Int {
	if len(curve) == 0 || nowBlock <= startBlock {
		return new(big.Int).Set(base)
	}
	elapsed := nowBlock - startBlock

	prevOffset := uint64(0)
	prevValue := new(big.Int).Set(base)
	for _, p := range curve {
		value := new(big.Int).Add(base, p.RelativeAmount.Big())
		if elapsed <= p.RelativeBlocks {
			if p.RelativeBlocks == prevOffset {
				// instantaneous point hit exactly
				return value
			}
			return interpolate(prevValue, value, elapsed-prevOffset, p.RelativeBlocks-prevOffset, round)
		}
		prevOffset = p.RelativeBlocks
		prevValue = value
	}
	// past the last point: fully decayed, clamped
	return prevValue
}

// ValidateCurve checks the ordering invariants of a piecewise leg. floor is
// the hard bound the curve may never cross: for outputs the declared minimum
// (deltas must be <= 0 and never take the amount below it), for inputs the
// declared maximum mirrored by the caller via ValidateInputCurve.
func ValidateOutputCurve(start, min *big.Int, curve []types.CurvePoint) error {
	for _, p := range curve {
		if p.RelativeAmount.Sign() > 0 {
			return ErrIncorrectAmounts
		}
		v := new(big.Int).Add(start, p.RelativeAmount.Big())
		if v.Cmp(min) < 0 || v.Sign() < 0 {
			return ErrIncorrectAmounts
		}
	}
	return nil
}

// ValidateInputCurve rejects input curves that decay downward or exceed the
// declared maximum the swapper is willing to pay.
func ValidateInputCurve(start, max *big.Int, curve []types.CurvePoint) error {
	for _, p := range curve {
		if p.RelativeAmount.Sign() < 0 {
			return ErrIncorrectAmounts
		}
		v := new(big.Int).Add(start, p.RelativeAmount.Big())
		if v.Cmp(max) > 0 {
			return ErrIncorrectAmounts
		}
	}
	return nil
}

// CurveEndBlock returns the absolute block at which the curve is fully
// decayed, for deadline consistency checks.
func CurveEndBlock(startBlock uint64, curve []types.CurvePoint) uint64 {
	end := startBlock
	for _, p := range curve {
		if startBlock+p.RelativeBlocks > end {
			end = startBlock + p.RelativeBlocks
		}
	}
	return end
}
