package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-shop-services/internal/config"
	"github.com/ariefcatur/go-shop-services/internal/httpx"
	kafkax "github.com/ariefcatur/go-shop-services/internal/kafka"
	"github.com/ariefcatur/go-shop-services/internal/orders"
	"github.com/ariefcatur/go-shop-services/internal/productclient"
	"github.com/ariefcatur/go-shop-services/internal/redisx"
	"github.com/ariefcatur/go-shop-services/internal/telemetry"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load("orders-service")
	telemetry.InitLogger(cfg.LogLevel, cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		fatal("tracer setup", err)
	}

	// Redis
	rdb, err := redisx.New(ctx, cfg.RedisURL)
	if err != nil {
		fatal("redis connect", err)
	}
	defer rdb.Close()

	// Kafka: topic dulu, gagal cukup di-log
	topicCtx, cancelTopic := context.WithTimeout(ctx, 10*time.Second)
	if err := kafkax.EnsureTopic(topicCtx, cfg.KafkaBrokers, cfg.KafkaTopic, 1, 1); err != nil {
		slog.Error("ensure kafka topic", "topic", cfg.KafkaTopic, "error", err)
	}
	cancelTopic()
	prod := kafkax.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)

	// Service & handler
	svc := orders.NewService(
		orders.NewRedisStore(rdb),
		&orders.KafkaPublisher{Producer: prod},
		productclient.New(cfg.ProductServiceURL, cfg.ProductLookupTimeout),
		cfg.ServiceName,
	)
	router := httpx.NewRouter(cfg.ServiceName)
	httpx.NewOrdersHandler(svc).Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("HTTP listening", "addr", cfg.HTTPAddr, "topic", cfg.KafkaTopic, "products", cfg.ProductServiceURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("listen", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if err := prod.Close(); err != nil {
		slog.Error("kafka producer close", "error", err)
	}
	if err := shutdownTracer(ctx2); err != nil {
		slog.Error("tracer shutdown", "error", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
