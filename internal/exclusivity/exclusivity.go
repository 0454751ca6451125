// Package exclusivity gates settlement on the caller's identity during an
// order's exclusivity window. This is the only point in resolution where who
// is calling affects pricing.
package exclusivity

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openfill/fillgate/internal/types"
)

var ErrNoExclusiveOverride = errors.New("order is strictly exclusive and caller is not the exclusive filler")

var bpsDenominator = big.NewInt(10_000)

// HasFillingRights reports whether caller settles at face value: no exclusive
// filler declared, the window already ended, or the caller holds it.
func HasFillingRights(exclusiveFiller common.Address, caller common.Address, windowEnd, now uint64) bool {
	if exclusiveFiller == (common.Address{}) {
		return true
	}
	if now > windowEnd {
		return true
	}
	return caller == exclusiveFiller
}

// Apply enforces exclusivity on already-decayed outputs. Callers without
// filling rights pay overrideBps on every output, rounded up so the penalty
// always reaches the swapper in full; a zero override marks the order
// strictly exclusive and rejects them outright.
func Apply(outputs []types.ResolvedOutput, exclusiveFiller, caller common.Address, overrideBps *big.Int, windowEnd, now uint64) ([]types.ResolvedOutput, error) {
	if HasFillingRights(exclusiveFiller, caller, windowEnd, now) {
		return outputs, nil
	}
	if overrideBps == nil || overrideBps.Sign() == 0 {
		return nil, ErrNoExclusiveOverride
	}

	scaled := make([]types.ResolvedOutput, len(outputs))
	multiplier := new(big.Int).Add(bpsDenominator, overrideBps)
	for i, out := range outputs {
		amount := new(big.Int).Mul(out.Amount.Big(), multiplier)
		rem := new(big.Int)
		amount.QuoRem(amount, bpsDenominator, rem)
		if rem.Sign() != 0 {
			amount.Add(amount, big.NewInt(1))
		}
		scaled[i] = types.ResolvedOutput{
			Token:     out.Token,
			Amount:    types.NewU256(amount),
			Recipient: out.Recipient,
		}
	}
	return scaled, nil
}
