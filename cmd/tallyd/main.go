package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tally-lab/island-tally/internal/config"
	"github.com/tally-lab/island-tally/internal/feed"
	"github.com/tally-lab/island-tally/internal/ingest"
	"github.com/tally-lab/island-tally/internal/metrics"
	"github.com/tally-lab/island-tally/internal/query"
	"github.com/tally-lab/island-tally/internal/register"
	"github.com/tally-lab/island-tally/internal/server"
	"github.com/tally-lab/island-tally/internal/store"
)

func main() {
	configPath := flag.String("config", "tally.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Load District Register
	districts := register.Empty()
	if cfg.Register.Path != "" {
		districts, err = register.Load(cfg.Register.Path)
		if err != nil {
			slog.Error("Failed to load district register", "path", cfg.Register.Path, "error", err)
			os.Exit(1)
		}
		slog.Info("District register loaded", "path", cfg.Register.Path, "districts", districts.Len())
	}

	// 3. Initialize Metrics
	m := metrics.New(prometheus.DefaultRegisterer)

	// 4. Initialize Store and Snapshot Feed
	st := store.New()
	hub := feed.NewHub(cfg.Feed.BufferSize, m)

	// 5. Initialize Ingestion and Query Services
	ingestSvc := ingest.NewService(st, hub, districts, m, cfg.Server.MaxBodySizeMB)
	querySvc := query.NewService(st, cfg.Ranking.DefaultTopN)

	// 6. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), st, cfg.Server.Mode)
	ingestSvc.RegisterRoutes(srv.Engine)
	querySvc.RegisterRoutes(srv.Engine)
	hub.RegisterRoutes(srv.Engine)
	srv.Engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7. Start
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
