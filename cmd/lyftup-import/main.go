package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/colinchu27/lyft-up-sub000/internal/config"
	"github.com/colinchu27/lyft-up-sub000/internal/importer"
	"github.com/colinchu27/lyft-up-sub000/internal/localstore"
	"github.com/colinchu27/lyft-up-sub000/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "path to session export JSON file (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into the store")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: lyftup-import -config config.yaml -path export.json [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*exportPath); err != nil {
		log.Error("export file does not exist", "path", *exportPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the store")
	}

	// Open the session store
	var store importer.Store
	switch cfg.Storage.Driver {
	case "sqlite":
		local, err := localstore.Open(cfg.Storage.SQLitePath)
		if err != nil {
			log.Error("failed to open local store", "error", err)
			os.Exit(1)
		}
		defer local.Close()
		store = local
		log.Info("local store opened", "path", cfg.Storage.SQLitePath)

	default:
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = db
		log.Info("database connected")
	}

	// Run import
	imp := importer.New(store, log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	if stats == nil {
		return
	}
	log.Info("import stats",
		"read", stats.SessionsRead,
		"inserted", stats.SessionsInserted,
		"duplicates", stats.Duplicates,
		"invalid", stats.Invalid,
	)
}
