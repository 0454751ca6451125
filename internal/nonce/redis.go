package nonce

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

const redisPrefix = "nonce:"

// RedisStore consumes nonces with SETNX, which gives the first-to-finalize
// semantics across engine instances sharing one Redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Use(ctx context.Context, swapper common.Address, nonce *big.Int) error {
	ok, err := s.client.SetNX(ctx, redisPrefix+key(swapper, nonce), 1, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNonceUsed
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, swapper common.Address, nonce *big.Int) error {
	return s.client.Del(ctx, redisPrefix+key(swapper, nonce)).Err()
}

func (s *RedisStore) Used(ctx context.Context, swapper common.Address, nonce *big.Int) (bool, error) {
	n, err := s.client.Exists(ctx, redisPrefix+key(swapper, nonce)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
