package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/example/trade-marketplace/internal/auth"
	"github.com/example/trade-marketplace/internal/cache"
	"github.com/example/trade-marketplace/internal/config"
	"github.com/example/trade-marketplace/internal/events"
	"github.com/example/trade-marketplace/internal/fiscal"
	favsvc "github.com/example/trade-marketplace/internal/service/favorite"
	tradesvc "github.com/example/trade-marketplace/internal/service/trade"
	"github.com/example/trade-marketplace/internal/storage"
	"github.com/example/trade-marketplace/internal/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	trades, favorites, users, cleanup, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}
	defer cleanup()

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer kp.Close()
		publisher = kp
	}

	fiscalClient := fiscal.NewHTTPClient(cfg.FiscalBaseURL, cfg.FiscalAPIKey, cfg.FiscalTimeout, logger)
	if cfg.FiscalBaseURL == "" {
		logger.Warn("no fiscal service configured; cash trades will be rejected")
	}

	tradeService := tradesvc.NewService(trades, users, fiscalClient, publisher, logger)
	favoriteService := favsvc.NewService(favorites, trades)

	if err := maybeSeed(ctx, cfg, users, trades, logger); err != nil {
		logger.Warn("sample data seeding failed", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	readCache, err := cache.New(1<<26, cfg.CacheTTL)
	if err != nil {
		logger.Fatal("cache", zap.Error(err))
	}

	server := web.NewServer(tradeService, favoriteService, users, tokens, readCache, logger, cfg.CORSOrigin)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.R,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("http listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}

// setupRepositories connects to MongoDB when a URI is configured and falls
// back to the in-memory store otherwise (local development).
func setupRepositories(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.TradeRepository, storage.FavoriteRepository, storage.UserRepository, func(), error) {
	if cfg.MongoURI == "" {
		logger.Warn("MONGO_URI not set; using in-memory storage")
		return storage.NewInMemoryTradeRepository(),
			storage.NewInMemoryFavoriteRepository(),
			storage.NewInMemoryUserRepository(),
			func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, nil, nil, err
	}

	db := client.Database(cfg.MongoDatabase)
	if err := storage.EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}
	return storage.NewMongoTradeRepository(db),
		storage.NewMongoFavoriteRepository(db),
		storage.NewMongoUserRepository(db),
		cleanup, nil
}
