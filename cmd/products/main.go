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
	"github.com/ariefcatur/go-shop-services/internal/postgres"
	"github.com/ariefcatur/go-shop-services/internal/products"
	"github.com/ariefcatur/go-shop-services/internal/telemetry"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load("products-service")
	telemetry.InitLogger(cfg.LogLevel, cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		fatal("tracer setup", err)
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
	if err != nil {
		fatal("db connect", err)
	}
	defer db.Close()

	repo := &products.Repo{DB: db}
	if err := repo.EnsureSchema(ctx); err != nil {
		fatal("db schema", err)
	}

	router := httpx.NewRouter(cfg.ServiceName)
	httpx.NewProductsHandler(repo).Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("listen", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if err := shutdownTracer(ctx2); err != nil {
		slog.Error("tracer shutdown", "error", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
