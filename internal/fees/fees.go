// Package fees injects protocol fee outputs into resolved orders. Injection
// is append-only and runs strictly after resolution: swapper-visible amounts
// never change, fee policy stays decoupled from auction mechanics.
package fees

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openfill/fillgate/internal/types"
)

// MaxFeeBps caps what a controller may charge on any pair.
const MaxFeeBps = 5

var (
	ErrFeeTooLarge = errors.New("fee controller returned a rate above the cap")

	bpsDenominator = big.NewInt(10_000)
)

// Controller supplies the protocol fee rate for a (tokenIn, tokenOut) pair
// in basis points. A zero rate means no fee.
type Controller interface {
	FeeBps(ctx context.Context, tokenIn, tokenOut common.Address) (uint64, error)
}

// StaticController serves rates from an in-memory pair table; the HTTP
// service builds one from config when no database is wired.
type StaticController struct {
	rates map[[2]common.Address]uint64
}

func NewStaticController() *StaticController {
	return &StaticController{rates: make(map[[2]common.Address]uint64)}
}

func (c *StaticController) Set(tokenIn, tokenOut common.Address, bps uint64) {
	c.rates[[2]common.Address{tokenIn, tokenOut}] = bps
}

func (c *StaticController) FeeBps(_ context.Context, tokenIn, tokenOut common.Address) (uint64, error) {
	return c.rates[[2]common.Address{tokenIn, tokenOut}], nil
}

// Injector appends protocol fee outputs to resolved orders.
type Injector struct {
	controller Controller
	recipient  common.Address
}

func NewInjector(controller Controller, recipient common.Address) *Injector {
	return &Injector{controller: controller, recipient: recipient}
}

// Inject appends at most one fee output, computed on the order's first
// output token against the input token. The fee amount rounds down: the
// filler pays it, so truncation favors the filler never the protocol.
func (i *Injector) Inject(ctx context.Context, order *types.ResolvedOrder) error {
	if i == nil || i.controller == nil || len(order.Outputs) == 0 {
		return nil
	}
	feeToken := order.Outputs[0].Token
	bps, err := i.controller.FeeBps(ctx, order.Input.Token, feeToken)
	if err != nil {
		return err
	}
	if bps == 0 {
		return nil
	}
	if bps > MaxFeeBps {
		return ErrFeeTooLarge
	}

	total := new(big.Int)
	for _, out := range order.Outputs {
		if out.Token == feeToken {
			total.Add(total, out.Amount.Big())
		}
	}
	fee := new(big.Int).Mul(total, new(big.Int).SetUint64(bps))
	fee.Quo(fee, bpsDenominator)
	if fee.Sign() == 0 {
		return nil
	}

	order.Outputs = append(order.Outputs, types.ResolvedOutput{
		Token:     feeToken,
		Amount:    types.NewU256(fee),
		Recipient: i.recipient,
	})
	return nil
}
