// Package importer runs Alpha Progression CSV exports from disk through the
// ingest pipeline, skipping files that were already imported.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/claude/raptorfit/internal/importstate"
	"github.com/claude/raptorfit/internal/ingest"
	"github.com/claude/raptorfit/internal/ingest/alpha"
	"github.com/claude/raptorfit/internal/insights"
	"github.com/claude/raptorfit/internal/storage"
	"github.com/klauspost/compress/gzip"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsInserted int
	SetsInserted     int64
	WarmupsSkipped   int

	Unmapped []string
	Snapshot *insights.RefreshResult
}

// Ingester stores one export.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}

// State remembers imported files.
type State interface {
	IsImported(path string, size int64, hash string) (bool, error)
	MarkImported(path string, size int64, hash string, sessions int) error
}

// LogStore records one import_logs row per file.
type LogStore interface {
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
}

// Refresher recomputes the strength index after new data lands.
type Refresher interface {
	Refresh(ctx context.Context, userID int) (*insights.RefreshResult, error)
}

// Importer walks a file or directory of exports.
type Importer struct {
	ingester  Ingester
	state     State
	logs      LogStore
	refresher Refresher
	log       *slog.Logger
	dryRun    bool
	stats     Stats
}

// New creates an Importer. In dry-run mode files are parsed and counted but
// nothing is written, including the import state.
func New(ingester Ingester, state State, logs LogStore, refresher Refresher, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{
		ingester:  ingester,
		state:     state,
		logs:      logs,
		refresher: refresher,
		log:       log,
		dryRun:    dryRun,
	}
}

// Import processes path, a single export or a directory searched recursively
// for .csv and .csv.gz files in name order.
func (imp *Importer) Import(ctx context.Context, path string, userID int) (*Stats, error) {
	files, err := collectFiles(path)
	if err != nil {
		return &imp.stats, err
	}
	if len(files) == 0 {
		imp.log.Warn("no CSV exports found", "path", path)
		return &imp.stats, nil
	}

	unmapped := make(map[string]struct{})
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		res, skipped, err := imp.importFile(ctx, f, userID)
		switch {
		case err != nil:
			imp.stats.FilesErrored++
			imp.log.Error("import failed", "file", f, "error", err)
			continue
		case skipped:
			imp.stats.FilesSkipped++
			continue
		}
		imp.stats.FilesProcessed++
		imp.stats.SessionsInserted += res.SessionsInserted
		imp.stats.SetsInserted += res.SetsInserted
		imp.stats.WarmupsSkipped += res.WarmupsSkipped
		for _, n := range res.Unmapped {
			unmapped[n] = struct{}{}
		}
	}
	for n := range unmapped {
		imp.stats.Unmapped = append(imp.stats.Unmapped, n)
	}
	sort.Strings(imp.stats.Unmapped)

	if !imp.dryRun && imp.stats.SessionsInserted > 0 && imp.refresher != nil {
		snap, err := imp.refresher.Refresh(ctx, userID)
		if err != nil {
			return &imp.stats, fmt.Errorf("refreshing strength index: %w", err)
		}
		imp.stats.Snapshot = snap
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path string, userID int) (*ingest.Result, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}
	hash, err := importstate.HashFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("hashing %s: %w", path, err)
	}
	if imp.state != nil {
		done, err := imp.state.IsImported(path, info.Size(), hash)
		if err != nil {
			return nil, false, err
		}
		if done {
			imp.log.Debug("already imported", "file", path)
			return nil, true, nil
		}
	}

	r, closeFn, err := openExport(path)
	if err != nil {
		return nil, false, err
	}
	defer closeFn()

	if imp.dryRun {
		res, err := countExport(r)
		if err != nil {
			return nil, false, fmt.Errorf("parsing %s: %w", path, err)
		}
		imp.log.Info("dry run", "file", path, "sessions", res.SessionsReceived, "sets", res.SetsReceived)
		return res, false, nil
	}

	start := time.Now()
	logID, err := imp.startLog(ctx, path, userID)
	if err != nil {
		return nil, false, err
	}

	res, ingestErr := imp.ingester.Ingest(ctx, r, userID)
	if err := imp.finishLog(ctx, logID, userID, res, ingestErr, time.Since(start)); err != nil {
		imp.log.Warn("failed to update import log", "id", logID, "error", err)
	}
	if ingestErr != nil {
		return nil, false, fmt.Errorf("ingesting %s: %w", path, ingestErr)
	}

	if imp.state != nil {
		if err := imp.state.MarkImported(path, info.Size(), hash, res.SessionsInserted); err != nil {
			return nil, false, err
		}
	}
	imp.log.Info("imported", "file", path, "sessions", res.SessionsInserted, "sets", res.SetsInserted)
	return res, false, nil
}

func (imp *Importer) startLog(ctx context.Context, path string, userID int) (int64, error) {
	if imp.logs == nil {
		return 0, nil
	}
	meta, _ := json.Marshal(map[string]string{"file": filepath.Base(path)})
	raw := json.RawMessage(meta)
	id, err := imp.logs.InsertImportLog(ctx, storage.ImportLog{
		UserID:   userID,
		Source:   alpha.Source,
		Status:   storage.ImportRunning,
		Metadata: &raw,
	})
	if err != nil {
		return 0, fmt.Errorf("creating import log: %w", err)
	}
	return id, nil
}

func (imp *Importer) finishLog(ctx context.Context, id int64, userID int, res *ingest.Result, ingestErr error, elapsed time.Duration) error {
	if imp.logs == nil {
		return nil
	}
	entry := storage.ImportLog{UserID: userID, Source: alpha.Source}
	if res != nil {
		entry.SessionsReceived = res.SessionsReceived
		entry.SessionsInserted = res.SessionsInserted
		entry.SetsInserted = res.SetsInserted
	}
	entry.Finish(ingestErr, elapsed)
	return imp.logs.UpdateImportLog(ctx, id, entry)
}

// countExport parses an export without storing it.
func countExport(r io.Reader) (*ingest.Result, error) {
	parsed, err := alpha.Parse(r)
	if err != nil {
		return nil, err
	}
	res := &ingest.Result{SessionsReceived: len(parsed)}
	for _, a := range parsed {
		s, warmups, names := alpha.ToWorkoutSession(a)
		res.WarmupsSkipped += warmups
		res.Unmapped = append(res.Unmapped, names...)
		for _, ex := range s.Exercises {
			res.SetsReceived += len(ex.Sets)
		}
	}
	return res, nil
}

// collectFiles returns path itself when it is a file, or every export below it.
func collectFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isExport(d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}

func isExport(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".csv.gz")
}

// openExport opens path, transparently decompressing .gz files.
func openExport(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, func() { f.Close() }, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	return zr, func() {
		zr.Close()
		f.Close()
	}, nil
}
