package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/raptorfit/internal/config"
	"github.com/claude/raptorfit/internal/importer"
	"github.com/claude/raptorfit/internal/importstate"
	"github.com/claude/raptorfit/internal/ingest/alpha"
	"github.com/claude/raptorfit/internal/insights"
	"github.com/claude/raptorfit/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "Alpha Progression CSV export, or a directory of exports (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	stateDir := flag.String("state-dir", "", "directory for the imported-files database (default ~/.raptorfit)")
	userID := flag.Int("user", 1, "user ID to import into")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: raptorfit-import -config config.yaml -path /path/to/exports [-dry-run] [-state-dir DIR]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*exportPath); err != nil {
		log.Error("export path does not exist", "path", *exportPath)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	schemaVersion, err := storage.RunMigrations(dsn, "migrations")
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied", "version", schemaVersion)

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Open state database
	dir := *stateDir
	if dir == "" {
		dir, err = importstate.DefaultDir()
		if err != nil {
			log.Error("failed to resolve state directory", "error", err)
			os.Exit(1)
		}
	}
	state, err := importstate.Open(dir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Run import
	svc := insights.New(db, cfg.Analytics, log)
	imp := importer.New(alpha.NewProvider(db, log), state, db, svc, log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath, *userID)
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
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_inserted", stats.SessionsInserted,
		"sets_inserted", stats.SetsInserted,
		"warmups_skipped", stats.WarmupsSkipped,
	)
	if len(stats.Unmapped) > 0 {
		log.Info("exercises without a muscle group", "exercises", stats.Unmapped)
	}
	if stats.Snapshot != nil {
		log.Info("strength index",
			"total", stats.Snapshot.Snapshot.TotalSI,
			"change", stats.Snapshot.Snapshot.Change,
			"persisted", stats.Snapshot.Persisted,
		)
	}
}
