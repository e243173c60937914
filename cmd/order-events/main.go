package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-shop-services/internal/config"
	kafkax "github.com/ariefcatur/go-shop-services/internal/kafka"
	"github.com/ariefcatur/go-shop-services/internal/orderevents"
	"github.com/ariefcatur/go-shop-services/internal/redisx"
	"github.com/ariefcatur/go-shop-services/internal/telemetry"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load("order-events")
	telemetry.InitLogger(cfg.LogLevel, cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis (dedup)
	rdb, err := redisx.New(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("redis connect", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	tail := &orderevents.Tail{Redis: rdb, ServiceName: cfg.ServiceName, Log: slog.Default()}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.EventsGroup, cfg.KafkaTopic, cfg.EventsWorkers)

	slog.Info("order event consumer started", "group", cfg.EventsGroup, "topic", cfg.KafkaTopic, "workers", cfg.EventsWorkers)
	if err := cons.Start(ctx, tail.Handle); err != nil {
		slog.Error("consumer exit", "error", err)
		stop()
		os.Exit(1)
	}
	slog.Info("consumer stopped")
}
