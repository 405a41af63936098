package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/commonfund/treasury-api/internal/api"
	"github.com/commonfund/treasury-api/internal/api/metrics"
	"github.com/commonfund/treasury-api/internal/core/domain"
	"github.com/commonfund/treasury-api/internal/core/service"
	"github.com/commonfund/treasury-api/internal/infrastructure/config"
	mongodb "github.com/commonfund/treasury-api/internal/infrastructure/db/mongo"
	redisdb "github.com/commonfund/treasury-api/internal/infrastructure/db/redis"
	"github.com/commonfund/treasury-api/internal/infrastructure/journal"
	"github.com/commonfund/treasury-api/internal/infrastructure/payment"
	"github.com/commonfund/treasury-api/pkg/logger"
)

const tokenTTL = 24 * time.Hour

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "treasury-api",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}
	if cfg.Treasury.Deployer == "" {
		log.Fatal().Msg("DEPLOYER_ADDRESS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	// --- Repositories ---
	ledgerStore := mongodb.NewLedgerStore(db)
	actionRepo := mongodb.NewActionRepository(db)
	accountRepo := mongodb.NewAccountRepository(db)

	if err := actionRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("action indexes failed")
	}
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("account indexes failed")
	}

	// --- Ledger bootstrap ---
	ledger, err := ledgerStore.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("ledger load failed")
	}
	if ledger == nil {
		ledger = domain.NewLedger(domain.Identity(cfg.Treasury.Deployer))
		if err := ledgerStore.Save(ctx, ledger); err != nil {
			log.Fatal().Err(err).Msg("ledger bootstrap failed")
		}
		log.Info().Str("deployer", cfg.Treasury.Deployer).Msg("ledger created")
	}
	metrics.PoolBalance.Set(float64(ledger.Pool))

	// --- Action journal ---
	writer := journal.NewWriter(cfg.Treasury.JournalBuffer, actionRepo, log)
	writer.Start(ctx)

	// --- Services ---
	transferor := payment.NewClient(cfg.Payment.URL, cfg.Payment.Timeout)
	ballots := redisdb.NewBallotMarker(rdb)

	treasury := service.NewTreasury(ledger, ledgerStore, transferor, writer, ballots, service.TreasuryConfig{
		Threshold:    cfg.Treasury.Threshold,
		VotingWindow: cfg.Treasury.VotingWindow,
	}, log)
	authService := service.NewAuthService(accountRepo, cfg.JWTSecret, tokenTTL)

	// --- HTTP server ---
	e := api.NewRouter(api.Deps{
		Treasury:  treasury,
		Auth:      authService,
		Actions:   actionRepo,
		Mongo:     db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
