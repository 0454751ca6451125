package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Fees     FeesConfig     `mapstructure:"fees"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Limits   LimitsConfig   `mapstructure:"limits"`
}

type ServerConfig struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

type AuthConfig struct {
	RequireAPIKey bool   `mapstructure:"require_api_key"`
	APIKey        string `mapstructure:"api_key"`
}

type DatabaseConfig struct {
	DSN                       string `mapstructure:"dsn"`
	IdempotencyRetentionHours int    `mapstructure:"idempotency_retention_hours"`
}

type RedisConfig struct {
	Addr                  string `mapstructure:"addr"`
	Password              string `mapstructure:"password"`
	DB                    int    `mapstructure:"db"`
	IdempotencyTTLSeconds int    `mapstructure:"idempotency_ttl_seconds"`
}

type ChainConfig struct {
	// RPCURL is optional; without it the service runs against a wall-clock
	// context provider and skips contract-based order validation.
	RPCURL              string `mapstructure:"rpc_url"`
	ChainID             int64  `mapstructure:"chain_id"`
	Reactor             string `mapstructure:"reactor"`
	ContextCacheSeconds int    `mapstructure:"context_cache_seconds"`
	EIP1271CacheSeconds int    `mapstructure:"eip1271_cache_seconds"`
	EIP1271TimeoutMs    int    `mapstructure:"eip1271_timeout_ms"`
}

type FeesConfig struct {
	Recipient string          `mapstructure:"recipient"`
	Pairs     []FeePairConfig `mapstructure:"pairs"`
}

// FeePairConfig is one static (token_in, token_out) -> bps entry. With a
// database configured the pair table in Postgres takes precedence.
type FeePairConfig struct {
	TokenIn  string `mapstructure:"token_in"`
	TokenOut string `mapstructure:"token_out"`
	Bps      uint64 `mapstructure:"bps"`
}

// LedgerConfig seeds the in-memory bank at startup so settlements can
// succeed without an external funding path. Amounts are base-10 strings.
type LedgerConfig struct {
	Seeds []BalanceSeedConfig `mapstructure:"seeds"`
}

type BalanceSeedConfig struct {
	Owner  string `mapstructure:"owner"`
	Token  string `mapstructure:"token"`
	Amount string `mapstructure:"amount"`
}

type LimitsConfig struct {
	MaxBatchSize     int     `mapstructure:"max_batch_size"`
	RatePerSecond    float64 `mapstructure:"rate_per_second"`
	RateBurst        int     `mapstructure:"rate_burst"`
	StreamBufferSize int     `mapstructure:"stream_buffer_size"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. FILLGATE_CHAIN_RPC_URL
	viper.SetEnvPrefix("fillgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("auth.require_api_key", false)
	viper.SetDefault("redis.idempotency_ttl_seconds", 86400)
	viper.SetDefault("chain.chain_id", 1)
	viper.SetDefault("chain.context_cache_seconds", 2)
	viper.SetDefault("chain.eip1271_cache_seconds", 60)
	viper.SetDefault("chain.eip1271_timeout_ms", 5000)
	viper.SetDefault("database.idempotency_retention_hours", 168)
	viper.SetDefault("limits.max_batch_size", 20)
	viper.SetDefault("limits.rate_per_second", 50)
	viper.SetDefault("limits.rate_burst", 100)
	viper.SetDefault("limits.stream_buffer_size", 64)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
