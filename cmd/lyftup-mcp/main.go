package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/colinchu27/lyft-up-sub000/internal/config"
	"github.com/colinchu27/lyft-up-sub000/internal/localstore"
	"github.com/colinchu27/lyft-up-sub000/internal/mcp"
	"github.com/colinchu27/lyft-up-sub000/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	remote := flag.String("remote", "", "base URL of a remote LyftUp server (uses REST API instead of a local store)")
	flag.Parse()

	// Logs go to stderr; stdout carries the MCP stdio transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource

	if *remote != "" {
		ds = mcp.NewHTTPClient(*remote)
		log.Info("MCP server using remote data source", "url", *remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		switch cfg.Storage.Driver {
		case "sqlite":
			local, err := localstore.Open(cfg.Storage.SQLitePath)
			if err != nil {
				log.Error("failed to open local store", "error", err)
				os.Exit(1)
			}
			defer local.Close()
			ds = local

		default:
			db, err := storage.New(context.Background(), cfg.Database.DSN())
			if err != nil {
				log.Error("failed to connect database", "error", err)
				os.Exit(1)
			}
			defer db.Close()
			ds = db
		}
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}
