package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/raptorfit/internal/importer"
	"github.com/claude/raptorfit/internal/importstate"
	"github.com/claude/raptorfit/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "RaptorFit server URL (e.g. http://raptorfit.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("RAPTORFIT_AUTH_API_KEY"), "API key for write endpoints")
	exportPath := flag.String("path", "", "Alpha Progression CSV export, or a directory of exports")
	dryRun := flag.Bool("dry-run", false, "parse exports but don't send to server")
	stateDir := flag.String("state-dir", "", "directory for the uploaded-files database (default ~/.raptorfit/upload)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("raptorfit-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: raptorfit-upload -server <URL> -api-key <key> -path <exports> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if (*serverURL == "" || *apiKey == "") && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server and -api-key are required (or use -dry-run)\n")
		os.Exit(1)
	}

	dir := *stateDir
	if dir == "" {
		home, err := importstate.DefaultDir()
		if err != nil {
			log.Error("failed to resolve state directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(home, "upload")
	}
	state, err := importstate.Open(dir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	if *dryRun {
		log.Info("DRY RUN mode: exports will be parsed but not sent")
	}

	// The server logs the import and refreshes the strength index itself.
	imp := importer.New(upload.NewClient(*serverURL, *apiKey), state, nil, nil, log, *dryRun)
	stats, err := imp.Import(context.Background(), *exportPath, 1)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}

	log.Info("upload complete",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_inserted", stats.SessionsInserted,
		"sets_inserted", stats.SetsInserted,
	)
	if len(stats.Unmapped) > 0 {
		log.Info("exercises without a muscle group", "exercises", stats.Unmapped)
	}
}
