package signer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// Constants for EIP-712
const (
	EIP712DomainName    = "FillGate Settler"
	EIP712DomainVersion = "1"
)

var (
	// EIP712DomainTypeHash is the keccak256 hash of the EIP712Domain type definition
	EIP712DomainTypeHash = crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))

	domainNameHash    = crypto.Keccak256Hash([]byte(EIP712DomainName))
	domainVersionHash = crypto.Keccak256Hash([]byte(EIP712DomainVersion))
)

// DomainSeparator binds signatures to one chain and one settlement engine
// identity (the reactor address).
func DomainSeparator(chainID *big.Int, reactor common.Address) common.Hash {
	// keccak256(abi.encode(typeHash, nameHash, versionHash, chainId, verifyingContract))
	data := make([]byte, 32*5)
	copy(data[0:32], EIP712DomainTypeHash.Bytes())
	copy(data[32:64], domainNameHash.Bytes())
	copy(data[64:96], domainVersionHash.Bytes())
	copy(data[96:128], math.U256Bytes(new(big.Int).Set(chainID)))
	copy(data[128+12:160], reactor.Bytes())
	return crypto.Keccak256Hash(data)
}

// TypedDigest is the digest a swapper actually signs:
// keccak256("\x19\x01" || domainSeparator || structHash).
func TypedDigest(domainSeparator, structHash common.Hash) common.Hash {
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator.Bytes(), structHash.Bytes())
}

// abi-encoding helpers: every EIP-712 struct field occupies one 32-byte word.
// Signed values (piecewise curve deltas) encode as two's-complement int256,
// which math.U256Bytes already produces for negative inputs.

func wordUint(v *big.Int) []byte {
	if v == nil {
		v = new(big.Int)
	}
	return math.U256Bytes(new(big.Int).Set(v))
}

func wordUint64(v uint64) []byte {
	return math.U256Bytes(new(big.Int).SetUint64(v))
}

func wordAddress(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), 32)
}

func encodeWords(words ...[]byte) []byte {
	out := make([]byte, 0, len(words)*32)
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}
