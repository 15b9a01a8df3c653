package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/cartage-systems/cartage/internal/app"
	"github.com/cartage-systems/cartage/internal/dispatch"
	"github.com/cartage-systems/cartage/internal/fleet"
	"github.com/cartage-systems/cartage/internal/intake"
	"github.com/cartage-systems/cartage/internal/orders"
	"github.com/cartage-systems/cartage/internal/platform/cache"
	"github.com/cartage-systems/cartage/internal/platform/db"
	"github.com/cartage-systems/cartage/internal/shared"
	"github.com/cartage-systems/cartage/internal/staging"
	"github.com/cartage-systems/cartage/internal/users"
	"github.com/cartage-systems/cartage/jobs"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo)
	ordersHandler := orders.NewHandler(logger, ordersService)

	sanitizer := intake.NewSanitizer(cfg.OrderNumberDenylist, 0)
	reconciler, err := intake.NewReconciler(cfg.CreditTolerance)
	if err != nil {
		logger.Error("configure reconciler", slog.Any("error", err))
		os.Exit(1)
	}
	intakeService := intake.NewService(
		intake.NewPgStore(ordersRepo),
		intake.NewClassifier(sanitizer, nil),
		reconciler,
		logger,
	)
	intakeHandler := intake.NewHandler(logger, intakeService)

	stagingRepo := staging.NewRepository(pool)
	stagingService := staging.NewService(stagingRepo, logger)
	stagingHandler := staging.NewHandler(logger, stagingService)

	locks := shared.NewSessionLock(redisClient, cfg.FinalizeLockTTL)
	dispatchRepo := dispatch.NewRepository(pool)
	dispatchService := dispatch.NewService(dispatchRepo, locks, logger)
	dispatchHandler := dispatch.NewHandler(logger, dispatchService)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	fleetRepo := fleet.NewRepository(pool)
	fleetService := fleet.NewService(fleetRepo)
	fleetHandler := fleet.NewHandler(logger, fleetService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		IntakeHandler:   intakeHandler,
		OrdersHandler:   ordersHandler,
		StagingHandler:  stagingHandler,
		DispatchHandler: dispatchHandler,
		UsersHandler:    usersHandler,
		FleetHandler:    fleetHandler,
		JobsHandler:     jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
