// Package priority scales order amounts with the priority fee the caller
// pays above a signed baseline. Outputs grow with congestion (the swapper
// captures the priority premium); inputs shrink instead. An order may scale
// one side only.
package priority

import (
	"errors"
	"math/big"

	"github.com/openfill/fillgate/internal/types"
)

var (
	ErrInvalidGasPrice    = errors.New("gas price below current base fee")
	ErrInputOutputScaling = errors.New("order scales both input and outputs")
	ErrAuctionNotStarted  = errors.New("priority auction has not started")
)

// mpsDenominator is the milli-basis-point scale: 1e7 MPS = 100%.
var mpsDenominator = big.NewInt(10_000_000)

// Fee derives the effective priority fee from the caller's gas price:
// max(0, gasPrice - baseFee - baselinePriorityFeeWei). A gas price below the
// base fee is rejected outright to keep the baseline unmanipulable.
func Fee(gasPrice, baseFee, baselinePriorityFeeWei *big.Int) (*big.Int, error) {
	if gasPrice == nil || baseFee == nil {
		return nil, ErrInvalidGasPrice
	}
	if gasPrice.Cmp(baseFee) < 0 {
		return nil, ErrInvalidGasPrice
	}
	fee := new(big.Int).Sub(gasPrice, baseFee)
	if baselinePriorityFeeWei != nil {
		fee.Sub(fee, baselinePriorityFeeWei)
	}
	if fee.Sign() < 0 {
		fee.SetInt64(0)
	}
	return fee, nil
}

// ScaleOutput grows an output amount by mpsPerPriorityFeeWei milli-bps per
// wei of priority fee, rounding up in the swapper's favor.
func ScaleOutput(amount, mpsPerPriorityFeeWei, priorityFee *big.Int) *big.Int {
	if mpsPerPriorityFeeWei.Sign() == 0 || priorityFee.Sign() == 0 {
		return new(big.Int).Set(amount)
	}
	multiplier := new(big.Int).Mul(mpsPerPriorityFeeWei, priorityFee)
	multiplier.Add(multiplier, mpsDenominator)
	scaled := new(big.Int).Mul(amount, multiplier)
	rem := new(big.Int)
	scaled.QuoRem(scaled, mpsDenominator, rem)
	if rem.Sign() != 0 {
		scaled.Add(scaled, big.NewInt(1))
	}
	return scaled
}

// ScaleInput shrinks an input amount by the mirrored factor, rounding down
// and flooring at zero once the fee consumes the whole amount.
func ScaleInput(amount, mpsPerPriorityFeeWei, priorityFee *big.Int) *big.Int {
	if mpsPerPriorityFeeWei.Sign() == 0 || priorityFee.Sign() == 0 {
		return new(big.Int).Set(amount)
	}
	discount := new(big.Int).Mul(mpsPerPriorityFeeWei, priorityFee)
	if discount.Cmp(mpsDenominator) >= 0 {
		return new(big.Int)
	}
	multiplier := new(big.Int).Sub(mpsDenominator, discount)
	scaled := new(big.Int).Mul(amount, multiplier)
	return scaled.Quo(scaled, mpsDenominator)
}

// ValidateScalingSides rejects orders that put a non-zero scaling factor on
// both the input and any output.
func ValidateScalingSides(input types.PriorityInput, outputs []types.PriorityOutput) error {
	if input.MpsPerPriorityFeeWei.Sign() == 0 {
		return nil
	}
	for _, out := range outputs {
		if out.MpsPerPriorityFeeWei.Sign() != 0 {
			return ErrInputOutputScaling
		}
	}
	return nil
}
