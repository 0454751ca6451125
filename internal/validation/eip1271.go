package validation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/openfill/fillgate/internal/types"
)

// isValid(bytes32 orderInfoHash, address filler, bytes validationData)
var isValidSelector = crypto.Keccak256([]byte("isValid(bytes32,address,bytes)"))[:4]

// the contract signals acceptance by echoing the selector, in the EIP-1271
// magic-value style
var validMagicValue = isValidSelector

// ContractValidator calls the order's validation contract over JSON-RPC and
// caches verdicts briefly; validation contracts are expected to be
// deterministic over short horizons.
type ContractValidator struct {
	client   *ethclient.Client
	timeout  time.Duration
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[common.Hash]cacheEntry
}

type cacheEntry struct {
	valid   bool
	expires time.Time
}

func NewContractValidator(rpcURL string, timeout, cacheTTL time.Duration) (*ContractValidator, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to eth client: %w", err)
	}
	return &ContractValidator{
		client:   client,
		timeout:  timeout,
		cacheTTL: cacheTTL,
		cache:    make(map[common.Hash]cacheEntry),
	}, nil
}

func (v *ContractValidator) IsValid(ctx context.Context, info types.OrderInfo, filler common.Address) (bool, error) {
	key := cacheKey(info, filler)
	if hit, ok := v.cacheGet(key); ok {
		return hit, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	data := make([]byte, 0, 4+32*3+len(info.ValidationData))
	data = append(data, isValidSelector...)
	data = append(data, infoHash(info).Bytes()...)
	data = append(data, common.LeftPadBytes(filler.Bytes(), 32)...)
	data = append(data, common.RightPadBytes(info.ValidationData, (len(info.ValidationData)+31)/32*32)...)

	to := info.ValidationContract
	res, err := v.client.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return false, fmt.Errorf("validation contract call failed: %w", err)
	}
	valid := len(res) >= 4 && string(res[:4]) == string(validMagicValue)

	v.cachePut(key, valid)
	return valid, nil
}

func infoHash(info types.OrderInfo) common.Hash {
	return crypto.Keccak256Hash(
		info.Reactor.Bytes(),
		info.Swapper.Bytes(),
		common.LeftPadBytes(info.Nonce.Big().Bytes(), 32),
	)
}

func cacheKey(info types.OrderInfo, filler common.Address) common.Hash {
	return crypto.Keccak256Hash(infoHash(info).Bytes(), filler.Bytes(), info.ValidationData)
}

func (v *ContractValidator) cacheGet(key common.Hash) (bool, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	entry, ok := v.cache[key]
	if !ok || time.Now().After(entry.expires) {
		return false, false
	}
	return entry.valid, true
}

func (v *ContractValidator) cachePut(key common.Hash, valid bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache[key] = cacheEntry{valid: valid, expires: time.Now().Add(v.cacheTTL)}
}
