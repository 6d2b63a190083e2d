package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/gacha-wish/internal/banner"
	"github.com/xtding233/gacha-wish/internal/catalog"
	"github.com/xtding233/gacha-wish/internal/config"
	"github.com/xtding233/gacha-wish/internal/server"
	"github.com/xtding233/gacha-wish/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("wish server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	var fsys fs.FS = catalog.Bundled()
	if cfg.CatalogDir != "" {
		fsys = os.DirFS(cfg.CatalogDir)
	}
	loader := catalog.NewLoader(fsys, logger)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(server.Options{
		Loader:      loader,
		Store:       st,
		Limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		Logger:      logger,
		Seed:        cfg.Seed,
		MaxTrials:   cfg.MaxTrials,
		MaxSessions: cfg.MaxSessions,
		SessionTTL:  cfg.SessionTTL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go srv.RunSweeper(ctx, cfg.SessionTTL/2)

	hs := health.NewServer()
	report(hs, srv.CheckCatalog(), logger)

	if cfg.CatalogDir != "" {
		w, err := catalog.NewWatcher(cfg.CatalogDir, cfg.Reload, func(string) {
			report(hs, srv.Reload(), logger)
		}, logger)
		if err != nil {
			return err
		}
		w.Start(ctx)
		defer w.Stop()
	}

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}
	go func() {
		logger.Info("grpc health listening", "addr", cfg.GRPCAddr)
		if err := gs.Serve(lis); err != nil {
			logger.Error("grpc serve", "error", err)
		}
	}()

	hsrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errc <- hsrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			gs.Stop()
			return err
		}
	}

	logger.Info("shutting down")
	hs.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = hsrv.Shutdown(shutdownCtx)
	gs.GracefulStop()
	return err
}

// report publishes one health service per banner plus the overall "" service.
func report(hs *health.Server, results map[banner.Kind]error, logger *slog.Logger) {
	overall := healthpb.HealthCheckResponse_SERVING
	for kind, err := range results {
		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
			logger.Warn("banner catalog invalid", "banner", kind, "error", err)
		}
		hs.SetServingStatus("wish.banner."+string(kind), status)
	}
	hs.SetServingStatus("", overall)
}
