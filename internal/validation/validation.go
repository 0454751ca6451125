// Package validation runs the optional per-order validation callback an
// order can name via its validation-contract reference.
package validation

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openfill/fillgate/internal/types"
)

var ErrValidationFailed = errors.New("order validation callback rejected the order")

// Validator answers whether an order naming a validation contract may
// settle. Orders with a zero validation contract skip the callback entirely.
type Validator interface {
	IsValid(ctx context.Context, info types.OrderInfo, filler common.Address) (bool, error)
}

// NoopValidator accepts everything; used when no RPC endpoint is configured.
type NoopValidator struct{}

func (NoopValidator) IsValid(context.Context, types.OrderInfo, common.Address) (bool, error) {
	return true, nil
}

// Check applies the callback when the order declares a validation contract.
func Check(ctx context.Context, v Validator, info types.OrderInfo, filler common.Address) error {
	if info.ValidationContract == (common.Address{}) {
		return nil
	}
	if v == nil {
		v = NoopValidator{}
	}
	ok, err := v.IsValid(ctx, info, filler)
	if err != nil {
		return err
	}
	if !ok {
		return ErrValidationFailed
	}
	return nil
}
