package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// U256 wraps a big.Int for JSON transport. Amounts are emitted as decimal
// strings; decimal strings, 0x-hex strings and bare JSON numbers are all
// accepted on input.
type U256 struct {
	*big.Int
}

func NewU256(i *big.Int) U256 {
	return U256{i}
}

func U256FromUint64(v uint64) U256 {
	return U256{new(big.Int).SetUint64(v)}
}

// Big returns the wrapped value, never nil.
func (u U256) Big() *big.Int {
	if u.Int == nil {
		return new(big.Int)
	}
	return u.Int
}

func (u U256) MarshalJSON() ([]byte, error) {
	if u.Int == nil {
		return []byte(`"0"`), nil
	}
	return []byte(`"` + u.Int.String() + `"`), nil
}

func (u *U256) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		u.Int = new(big.Int)
		return nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "-0x") {
		neg := strings.HasPrefix(s, "-")
		hs := strings.TrimPrefix(s, "-")
		v, err := hexutil.DecodeBig(hs)
		if err != nil {
			return fmt.Errorf("invalid hex amount %q: %w", s, err)
		}
		if neg {
			v.Neg(v)
		}
		u.Int = v
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", s)
	}
	u.Int = v
	return nil
}

// Sign reports -1, 0 or +1. A nil inner value counts as zero, so callers can
// treat omitted JSON fields as "no override".
func (u U256) Sign() int {
	if u.Int == nil {
		return 0
	}
	return u.Int.Sign()
}
