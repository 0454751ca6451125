// Package resolver turns signed declarative orders into concrete
// (input, outputs) amounts. One OrderResolver per order family, composed
// behind a registry; the settlement engine never inspects family-specific
// payloads itself.
package resolver

import (
	"errors"
	"fmt"

	"github.com/openfill/fillgate/internal/cosigner"
	"github.com/openfill/fillgate/internal/signer"
	"github.com/openfill/fillgate/internal/types"
)

var (
	ErrUnknownOrderType     = errors.New("unknown order type")
	ErrMalformedOrder       = errors.New("malformed order payload")
	ErrInvalidAuctionTarget = errors.New("cosigned auction target after signed auction start")
)

// OrderResolver resolves one order family. Resolve must be pure with respect
// to rctx: same order and context in, same resolved order out.
type OrderResolver interface {
	Type() types.OrderType
	Resolve(rctx types.ResolutionContext, signed types.SignedOrder) (*types.ResolvedOrder, error)
}

// Registry dispatches signed orders to their family resolver.
type Registry struct {
	resolvers map[types.OrderType]OrderResolver
}

// NewRegistry wires every supported order family with the injected
// signature-recovery primitive.
func NewRegistry(recover cosigner.RecoverFunc) *Registry {
	if recover == nil {
		recover = signer.RecoverSigner
	}
	r := &Registry{resolvers: make(map[types.OrderType]OrderResolver)}
	r.register(&limitResolver{})
	r.register(&dutchResolver{})
	r.register(&exclusiveDutchResolver{})
	r.register(&cosignedDutchResolver{recover: recover})
	r.register(&piecewiseDutchResolver{recover: recover})
	r.register(&priorityResolver{recover: recover})
	return r
}

func (r *Registry) register(or OrderResolver) {
	r.resolvers[or.Type()] = or
}

// Resolve dispatches to the family resolver for the envelope's order type.
func (r *Registry) Resolve(rctx types.ResolutionContext, signed types.SignedOrder) (*types.ResolvedOrder, error) {
	or, ok := r.resolvers[signed.OrderType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrderType, signed.OrderType)
	}
	return or.Resolve(rctx, signed)
}

func decodeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedOrder, err)
}
