package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	_ "github.com/closetshop/closet-api/docs" // swagger docs
	"github.com/closetshop/closet-api/internal/api"
	"github.com/closetshop/closet-api/internal/core/ports"
	"github.com/closetshop/closet-api/internal/core/service"
	"github.com/closetshop/closet-api/internal/infrastructure/config"
	mongodb "github.com/closetshop/closet-api/internal/infrastructure/db/mongo"
	redisdb "github.com/closetshop/closet-api/internal/infrastructure/db/redis"
	"github.com/closetshop/closet-api/internal/infrastructure/http/handlers"
	"github.com/closetshop/closet-api/internal/infrastructure/queue"
	"github.com/closetshop/closet-api/pkg/logger"
)

// @title                       Closet API
// @version                     1.0
// @description                 Second-hand clothing marketplace: catalog, accounts, sessions and orders.
// @BasePath                    /
// @securityDefinitions.apikey  AccessToken
// @in                          header
// @name                        Authorization
// @description                 The access token returned by POST /users or POST /sessions. A "Bearer " prefix is accepted.
func main() {
	// Config is read before the logger exists, so failures go to a bootstrap logger.
	cfg := config.Load(zerolog.New(os.Stderr).With().Timestamp().Logger())

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "closet-api",
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect")
		}
	}()

	products := mongodb.NewProductRepository(db)
	users := mongodb.NewUserRepository(db)
	orders := mongodb.NewOrderRepository(db)
	if err := mongodb.EnsureIndexes(ctx, products, users, orders); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	readiness := []handlers.Dependency{handlers.MongoCheck(db)}

	// The cache is optional: without Redis every read goes to MongoDB.
	var cache ports.ProductCache
	redisCfg := redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	if redisCfg.Enabled() {
		rdb, err := redisdb.Connect(ctx, redisCfg)
		if err != nil {
			log.Warn().Err(err).Str("addr", redisCfg.Addr).Msg("redis unavailable, product cache disabled")
		} else {
			defer rdb.Close()
			cache = redisdb.NewProductCache(rdb, cfg.Redis.ProductTTL, logger.Component("product_cache"))
			readiness = append(readiness, handlers.RedisCheck(rdb))
		}
	}

	// --- Services ---
	catalogService := service.NewCatalogService(products, users, mongodb.NewImageStore(db), cache, logger.Component("catalog"))
	userService := service.NewUserService(users, products, orders, logger.Component("users"))
	accessService := service.NewAccessService(users)
	orderService := service.NewOrderService(
		orders,
		products,
		users,
		mongodb.NewTransactor(client, cfg.Mongo.Transactions),
		cache,
		logger.Component("orders"),
	)

	dispatcher := queue.NewDispatcher(queue.Options{
		Workers:     cfg.Fulfillment.Workers,
		MaxAttempts: cfg.Fulfillment.MaxAttempts,
		RetryDelay:  cfg.Fulfillment.RetryDelay,
	}, orderService, logger.Component("fulfillment"))
	dispatcher.Start(ctx)
	orderService.UseRetryQueue(dispatcher)

	// --- Bootstrap data ---
	if cfg.ResetDB {
		if err := mongodb.SeedProducts(ctx, products, log); err != nil {
			log.Fatal().Err(err).Msg("failed to seed products")
		}
	}
	if cfg.Admin.Email != "" {
		admin, err := userService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to ensure admin account")
		}
		log.Info().Str("user_id", admin.ID).Msg("admin account ready")
	}

	// Orders left unfulfilled by a previous run are retried in the background.
	pending, err := orders.FindUnfulfilled(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load unfulfilled orders")
	} else if len(pending) > 0 {
		log.Info().Int("count", len(pending)).Msg("resuming fulfilment of pending orders")
		dispatcher.EnqueueBatch(pending)
	}

	// --- HTTP ---
	ready := handlers.NewReadinessHandler(readiness...)
	log.Info().Strs("dependencies", ready.Names()).Msg("readiness checks configured")

	e := api.NewRouter(api.Dependencies{
		Catalog:       catalogService,
		Users:         userService,
		Orders:        orderService,
		Access:        accessService,
		Readiness:     ready,
		MaxImageBytes: cfg.Images.MaxBytes,
		Logger:        logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
