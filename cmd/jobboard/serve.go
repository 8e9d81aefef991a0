package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"kaamkhoj/jobboard/internal/auth"
	"kaamkhoj/jobboard/internal/config"
	"kaamkhoj/jobboard/internal/db"
	"kaamkhoj/jobboard/internal/events"
	"kaamkhoj/jobboard/internal/grpcserver"
	"kaamkhoj/jobboard/internal/httpx"
	"kaamkhoj/jobboard/internal/live"
	"kaamkhoj/jobboard/internal/postings"
	"kaamkhoj/jobboard/internal/scheduler"
	"kaamkhoj/jobboard/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, the gRPC health server and the provider probe",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	logger := slog.Default()

	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Tracing ─────────────────────────────────────────────────────────────
	shutdownTracing, err := tracing.Init("jobboard", cfg.TracingEnabled, os.Stderr)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "err", err)
		}
	}()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	logger.Info("connecting to PostgreSQL")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		return err
	}
	logger.Info("PostgreSQL connected")

	// ── Redis ────────────────────────────────────────────────────────────────
	logger.Info("connecting to Redis")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()
	logger.Info("Redis connected")

	// ── Services ─────────────────────────────────────────────────────────────
	liveSvc, adzuna, remoteok := newLiveService(cfg, logger)
	postingSvc := postings.NewService(postings.NewPostgresStore(pool), events.NewRedisPublisher(rdb), logger)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiration())
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; admin job routes will reject every request")
	}

	// ── gRPC health ──────────────────────────────────────────────────────────
	grpcSrv := grpcserver.New(logger)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	go func() {
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("gRPC server error", "err", err)
		}
	}()

	// ── Provider probe ───────────────────────────────────────────────────────
	sched := scheduler.New([]scheduler.Source{adzuna, remoteok}, grpcSrv, cfg.ProbeInterval, logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	live.NewHandler(liveSvc, logger).RegisterRoutes(mux)
	postings.NewHandler(postingSvc, auth.RequireRole(tokens, auth.RoleAdmin), logger).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpx.CORS(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Adzuna alone may take up to its 15s timeout.
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "version", version, "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case serveErr = <-errCh:
		logger.Error("HTTP server error", "err", serveErr)
	}

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown error", "err", err)
	}
	grpcSrv.Stop()

	logger.Info("stopped")
	return serveErr
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "jobboard",
		"version": version,
	})
}
