package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openfill/fillgate/internal/config"
)

// NewRedisClient connects and pings; a nil return with error lets the caller
// fall back to in-memory stores.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
