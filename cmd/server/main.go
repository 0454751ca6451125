package main

import (
	"context"
	"log"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openfill/fillgate/internal/chainctx"
	"github.com/openfill/fillgate/internal/config"
	"github.com/openfill/fillgate/internal/fees"
	"github.com/openfill/fillgate/internal/handler"
	"github.com/openfill/fillgate/internal/ledger"
	"github.com/openfill/fillgate/internal/middleware"
	"github.com/openfill/fillgate/internal/nonce"
	"github.com/openfill/fillgate/internal/pkg/logger"
	"github.com/openfill/fillgate/internal/repository"
	"github.com/openfill/fillgate/internal/resolver"
	"github.com/openfill/fillgate/internal/service"
	"github.com/openfill/fillgate/internal/settlement"
	"github.com/openfill/fillgate/internal/stream"
	"github.com/openfill/fillgate/internal/validation"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Server.LogLevel)

	chainID := big.NewInt(cfg.Chain.ChainID)
	reactor := common.HexToAddress(cfg.Chain.Reactor)

	// 2. Initialize Persistence
	// Nonce store (Postgres > Redis > Memory) and fill history
	var (
		nonceStore nonce.Store
		fillRepo   *repository.FillRepository
		feeCtl     fees.Controller
		idemStore  middleware.IdempotencyStore
	)
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to db: %v", err)
		}
		logger.Info("Connected to PostgreSQL")
		if nonceStore, err = nonce.NewPostgresStore(db); err != nil {
			log.Fatalf("Failed to migrate nonce store: %v", err)
		}
		if fillRepo, err = repository.NewFillRepository(db); err != nil {
			log.Fatalf("Failed to migrate fills: %v", err)
		}
		if feeCtl, err = repository.NewPostgresFeeController(db); err != nil {
			log.Fatalf("Failed to migrate fee pairs: %v", err)
		}
		if idemStore, err = repository.NewPostgresIdempotencyStore(db); err != nil {
			log.Fatalf("Failed to migrate idempotency keys: %v", err)
		}
	}
	if cfg.Redis.Addr != "" {
		redisClient, err := repository.NewRedisClient(cfg)
		if err != nil {
			logger.Error("Failed to connect to Redis, falling back", "error", err)
		} else {
			logger.Info("Connected to Redis")
			if nonceStore == nil {
				nonceStore = nonce.NewRedisStore(redisClient)
			}
			ttl := time.Duration(cfg.Redis.IdempotencyTTLSeconds) * time.Second
			idemStore = repository.NewRedisIdempotencyStore(redisClient, ttl)
		}
	}
	if nonceStore == nil {
		nonceStore = nonce.NewMemoryStore()
	}
	if idemStore == nil {
		idemStore = middleware.NewInMemIdempotencyStore()
	}
	if feeCtl == nil {
		feeCtl = staticFees(cfg)
	}

	// 3. Chain context and order validation
	var chainProvider chainctx.Provider
	var validator validation.Validator = validation.NoopValidator{}
	if cfg.Chain.RPCURL != "" {
		ttl := time.Duration(cfg.Chain.ContextCacheSeconds) * time.Second
		rpcProvider, err := chainctx.NewRPCProvider(cfg.Chain.RPCURL, ttl)
		if err != nil {
			log.Fatalf("Failed to connect to chain RPC: %v", err)
		}
		chainProvider = rpcProvider

		cv, err := validation.NewContractValidator(
			cfg.Chain.RPCURL,
			time.Duration(cfg.Chain.EIP1271TimeoutMs)*time.Millisecond,
			time.Duration(cfg.Chain.EIP1271CacheSeconds)*time.Second,
		)
		if err != nil {
			log.Fatalf("Failed to init contract validator: %v", err)
		}
		validator = cv
	} else {
		logger.Warn("No RPC configured, running with wall-clock context and open validation")
		chainProvider = &chainctx.StaticProvider{
			ChainID:    chainID,
			OriginTime: uint64(time.Now().Unix()),
		}
	}

	// 4. Core engine and services
	registry := resolver.NewRegistry(nil)
	feeRecipient := common.HexToAddress(cfg.Fees.Recipient)
	injector := fees.NewInjector(feeCtl, feeRecipient)
	bank := ledger.NewBank(chainID, reactor)
	seedBank(cfg, bank)
	engine := settlement.NewEngine(reactor, registry, nonceStore, bank, injector, validator)

	hub := stream.NewHub(cfg.Limits.StreamBufferSize)
	settleSvc := service.NewSettlementService(engine, chainProvider, fillRepo, hub, cfg.Limits.MaxBatchSize)
	quoteSvc := service.NewQuoteService(registry, chainProvider)

	// 5. Handlers and router
	orderHandler := handler.NewOrderHandler(settleSvc, quoteSvc)

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "fillgate"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg))
	v1.Use(middleware.RateLimitMiddleware(cfg.Limits.RatePerSecond, cfg.Limits.RateBurst))
	v1.Use(middleware.IdempotencyMiddleware(idemStore))
	{
		v1.POST("/execute", orderHandler.Execute)
		v1.POST("/execute/batch", orderHandler.ExecuteBatch)
		v1.POST("/quote", orderHandler.Quote)
		v1.GET("/fills", orderHandler.ListFills)
		v1.GET("/ws/fills", hub.ServeWS)
	}

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("FillGate started", "port", cfg.Server.Port, "chain_id", cfg.Chain.ChainID, "reactor", reactor.Hex())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	logger.Info("Server exiting")
}

func seedBank(cfg *config.Config, bank *ledger.Bank) {
	seeds := make([]ledger.Seed, 0, len(cfg.Ledger.Seeds))
	for _, s := range cfg.Ledger.Seeds {
		seed, err := ledger.ParseSeed(s.Owner, s.Token, s.Amount)
		if err != nil {
			log.Fatalf("Bad ledger seed: %v", err)
		}
		seeds = append(seeds, seed)
	}
	bank.ApplySeeds(seeds)
	if len(seeds) == 0 {
		logger.Warn("No ledger seeds configured, settlements will fail until balances are funded")
	} else {
		logger.Info("Seeded ledger balances", "count", len(seeds))
	}
}

func staticFees(cfg *config.Config) fees.Controller {
	ctl := fees.NewStaticController()
	for _, pair := range cfg.Fees.Pairs {
		ctl.Set(common.HexToAddress(pair.TokenIn), common.HexToAddress(pair.TokenOut), pair.Bps)
	}
	return ctl
}
