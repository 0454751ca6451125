// Package cosigner validates a cosigner's attestation over auxiliary auction
// parameters and enforces that overrides can only improve the swapper's
// economics relative to the base signed order.
package cosigner

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidCosignature     = errors.New("cosignature does not recover to declared cosigner")
	ErrInvalidCosignerInput   = errors.New("cosigner input override exceeds signed start amount")
	ErrInvalidCosignerOutput  = errors.New("cosigner output override below signed start amount")
	ErrOverrideLengthMismatch = errors.New("cosigner output override count does not match outputs")
	ErrMissingCosigner        = errors.New("order declares no cosigner")
)

// RecoverFunc is the injected signature-recovery primitive: digest and
// signature in, signer identity out. Keeping it a plain function keeps the
// override rules testable without real keys.
type RecoverFunc func(digest common.Hash, sig []byte) (common.Address, error)

// VerifyAttestation recovers the signer of digest and checks it against the
// declared cosigner. The zero address is the "no cosigner" sentinel and is
// never a valid signer.
func VerifyAttestation(recover RecoverFunc, declared common.Address, digest common.Hash, sig []byte) error {
	if declared == (common.Address{}) {
		return ErrMissingCosigner
	}
	signer, err := recover(digest, sig)
	if err != nil {
		return ErrInvalidCosignature
	}
	if signer != declared {
		return ErrInvalidCosignature
	}
	return nil
}

// OverrideInput replaces the decay-start amount of an input leg. A zero
// override means "no change". A non-zero override must not ask the swapper to
// pay more than the signed start amount.
func OverrideInput(signedStart, override *big.Int) (*big.Int, error) {
	if override == nil || override.Sign() == 0 {
		return new(big.Int).Set(signedStart), nil
	}
	if override.Cmp(signedStart) > 0 {
		return nil, ErrInvalidCosignerInput
	}
	return new(big.Int).Set(override), nil
}

// OverrideOutput replaces the decay-start amount of one output leg. A
// non-zero override must not give the swapper less than the signed start
// amount.
func OverrideOutput(signedStart, override *big.Int) (*big.Int, error) {
	if override == nil || override.Sign() == 0 {
		return new(big.Int).Set(signedStart), nil
	}
	if override.Cmp(signedStart) < 0 {
		return nil, ErrInvalidCosignerOutput
	}
	return new(big.Int).Set(override), nil
}

// CheckOverrideCount enforces that per-output overrides, when supplied at
// all, cover every output exactly once.
func CheckOverrideCount(overrides, outputs int) error {
	if overrides != 0 && overrides != outputs {
		return ErrOverrideLengthMismatch
	}
	return nil
}
