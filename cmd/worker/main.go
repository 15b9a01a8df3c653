package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/cartage-systems/cartage/internal/app"
	"github.com/cartage-systems/cartage/internal/intake"
	"github.com/cartage-systems/cartage/internal/orders"
	"github.com/cartage-systems/cartage/internal/platform/db"
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

	ordersRepo := orders.NewRepository(pool)
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

	worker := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Intake:    intakeService,
	})

	logger.Info("worker starting", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
