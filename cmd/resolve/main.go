// Command resolve reads a signed order envelope from a JSON file and prints
// the resolved amounts at a chosen execution context. Useful for checking
// what a decaying order is worth before attempting settlement.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openfill/fillgate/internal/resolver"
	"github.com/openfill/fillgate/internal/types"
)

func main() {
	var (
		orderPath = flag.String("order", "", "path to signed order JSON (required)")
		timestamp = flag.Uint64("timestamp", 0, "resolution timestamp, unix seconds (default now)")
		block     = flag.Uint64("block", 0, "resolution block number")
		chainID   = flag.Int64("chain-id", 1, "chain id")
		baseFee   = flag.String("base-fee", "0", "block base fee in wei")
		gasPrice  = flag.String("gas-price", "0", "transaction gas price in wei")
		caller    = flag.String("caller", "", "filler address attempting the fill")
	)
	flag.Parse()

	if *orderPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	raw, err := os.ReadFile(*orderPath)
	if err != nil {
		fatalf("read order: %v", err)
	}
	var signed types.SignedOrder
	if err := json.Unmarshal(raw, &signed); err != nil {
		fatalf("parse order: %v", err)
	}

	rctx := types.ResolutionContext{
		Timestamp:   *timestamp,
		BlockNumber: *block,
		ChainID:     big.NewInt(*chainID),
		BaseFee:     mustBig(*baseFee),
		GasPrice:    mustBig(*gasPrice),
		Caller:      common.HexToAddress(*caller),
	}
	if rctx.Timestamp == 0 {
		rctx.Timestamp = uint64(time.Now().Unix())
	}

	registry := resolver.NewRegistry(nil)
	resolved, err := registry.Resolve(rctx, signed)
	if err != nil {
		fatalf("resolve: %v", err)
	}

	out, err := json.MarshalIndent(resolved, "", "  ")
	if err != nil {
		fatalf("encode result: %v", err)
	}
	fmt.Println(string(out))
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		fatalf("invalid integer %q", s)
	}
	return v
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
