package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/colinchu27/lyft-up-sub000/internal/analytics"
	"github.com/colinchu27/lyft-up-sub000/internal/config"
	"github.com/colinchu27/lyft-up-sub000/internal/localstore"
	"github.com/colinchu27/lyft-up-sub000/internal/server"
	"github.com/colinchu27/lyft-up-sub000/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// trackedUserID is the single tracked user until multi-user auth exists.
const trackedUserID = 1

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LyftUp starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Open the session store
	var store server.Store
	var sessionSource analytics.SessionSource

	switch cfg.Storage.Driver {
	case "sqlite":
		local, err := localstore.Open(cfg.Storage.SQLitePath)
		if err != nil {
			log.Error("failed to open local store", "path", cfg.Storage.SQLitePath, "error", err)
			os.Exit(1)
		}
		defer local.Close()
		store = local
		sessionSource = local
		log.Info("local store opened", "path", cfg.Storage.SQLitePath)

	default:
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = db
		sessionSource = db
		log.Info("database connected")
	}

	// Start the metrics tracker: initial computation plus a full
	// recompute on every session change.
	tracker := analytics.NewTracker(sessionSource, trackedUserID, log)
	if err := tracker.Start(ctx); err != nil {
		log.Error("initial metrics computation failed", "error", err)
		os.Exit(1)
	}
	log.Info("metrics tracker started", "workouts", tracker.Metrics().TotalWorkouts)

	// Create server
	srv := server.New(store, tracker, cfg.Auth.APIKey, log)

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
