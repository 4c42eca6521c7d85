package importer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/raptorfit/internal/importstate"
	"github.com/claude/raptorfit/internal/ingest"
	"github.com/claude/raptorfit/internal/insights"
	"github.com/claude/raptorfit/internal/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
)

const export = `"Push";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 40 kg · 10 reps"
#;KG;REPS;RIR
1;100;6;1
2;100;6;0
"2. Zercher Carry · Barbell · 20 reps"
#;KG;REPS;RIR
1;60;20;2
`

type fakeIngester struct {
	calls int
	err   error
}

func (f *fakeIngester) Ingest(_ context.Context, r io.Reader, _ int) (*ingest.Result, error) {
	f.calls++
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &ingest.Result{SessionsReceived: 1, SessionsInserted: 1, SetsInserted: 3, Unmapped: []string{"zercher carry"}}, nil
}

type fakeState struct {
	marked map[string]string
}

func (f *fakeState) IsImported(path string, _ int64, hash string) (bool, error) {
	return f.marked[path] == hash, nil
}

func (f *fakeState) MarkImported(path string, _ int64, hash string, _ int) error {
	f.marked[path] = hash
	return nil
}

type fakeLogs struct {
	inserted []storage.ImportLog
	updated  []storage.ImportLog
}

func (f *fakeLogs) InsertImportLog(_ context.Context, l storage.ImportLog) (int64, error) {
	f.inserted = append(f.inserted, l)
	return int64(len(f.inserted)), nil
}

func (f *fakeLogs) UpdateImportLog(_ context.Context, _ int64, l storage.ImportLog) error {
	f.updated = append(f.updated, l)
	return nil
}

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) Refresh(context.Context, int) (*insights.RefreshResult, error) {
	f.calls++
	return &insights.RefreshResult{Persisted: true}, nil
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestImportDirectory verifies every export is ingested, logged and followed by
// a single refresh, and that a second run skips them.
func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2026-02.csv", []byte(export))
	writeFile(t, dir, "archive/2026-01.csv.gz", gzipped(t, export))
	writeFile(t, dir, "notes.txt", []byte("ignore me"))

	ing := &fakeIngester{}
	state := &fakeState{marked: map[string]string{}}
	logs := &fakeLogs{}
	ref := &fakeRefresher{}

	stats, err := New(ing, state, logs, ref, discard(), false).Import(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.FilesProcessed != 2 || stats.FilesSkipped != 0 || stats.FilesErrored != 0 {
		t.Errorf("files = %d/%d/%d, want 2/0/0", stats.FilesProcessed, stats.FilesSkipped, stats.FilesErrored)
	}
	if stats.SessionsInserted != 2 || stats.SetsInserted != 6 {
		t.Errorf("sessions/sets = %d/%d, want 2/6", stats.SessionsInserted, stats.SetsInserted)
	}
	if diff := cmp.Diff([]string{"zercher carry"}, stats.Unmapped); diff != "" {
		t.Errorf("unmapped mismatch (-want +got):\n%s", diff)
	}
	if ref.calls != 1 || stats.Snapshot == nil {
		t.Errorf("refresh calls = %d, want 1", ref.calls)
	}
	if len(logs.inserted) != 2 || len(logs.updated) != 2 {
		t.Fatalf("import logs = %d/%d, want 2/2", len(logs.inserted), len(logs.updated))
	}
	if logs.inserted[0].Status != "running" || logs.updated[0].Status != "success" {
		t.Errorf("log statuses = %q -> %q", logs.inserted[0].Status, logs.updated[0].Status)
	}

	again, err := New(ing, state, logs, ref, discard(), false).Import(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if again.FilesSkipped != 2 || again.FilesProcessed != 0 {
		t.Errorf("second run files = %d processed %d skipped, want 0/2", again.FilesProcessed, again.FilesSkipped)
	}
	if ing.calls != 2 || ref.calls != 1 {
		t.Errorf("ingest/refresh calls = %d/%d, want 2/1", ing.calls, ref.calls)
	}
}

// TestImportDryRun verifies nothing is written in dry-run mode.
func TestImportDryRun(t *testing.T) {
	path := writeFile(t, t.TempDir(), "feb.csv", []byte(export))
	ing := &fakeIngester{}
	state := &fakeState{marked: map[string]string{}}
	logs := &fakeLogs{}
	ref := &fakeRefresher{}

	stats, err := New(ing, state, logs, ref, discard(), true).Import(context.Background(), path, 1)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if ing.calls != 0 || ref.calls != 0 || len(logs.inserted) != 0 || len(state.marked) != 0 {
		t.Errorf("dry run wrote data: ingest=%d refresh=%d logs=%d state=%d",
			ing.calls, ref.calls, len(logs.inserted), len(state.marked))
	}
	if stats.WarmupsSkipped != 1 || stats.FilesProcessed != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if diff := cmp.Diff([]string{"zercher carry"}, stats.Unmapped); diff != "" {
		t.Errorf("unmapped mismatch (-want +got):\n%s", diff)
	}
}

// TestImportErrorIsLogged verifies a failing file is counted, logged as an
// error and not marked as imported.
func TestImportErrorIsLogged(t *testing.T) {
	path := writeFile(t, t.TempDir(), "feb.csv", []byte(export))
	ing := &fakeIngester{err: io.ErrUnexpectedEOF}
	state := &fakeState{marked: map[string]string{}}
	logs := &fakeLogs{}

	stats, err := New(ing, state, logs, &fakeRefresher{}, discard(), false).Import(context.Background(), path, 1)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.FilesErrored != 1 {
		t.Errorf("errored = %d, want 1", stats.FilesErrored)
	}
	if len(logs.updated) != 1 || logs.updated[0].Status != "error" || logs.updated[0].ErrorMessage == nil {
		t.Errorf("updated logs = %+v, want one error entry", logs.updated)
	}
	if len(state.marked) != 0 {
		t.Error("failed file was marked as imported")
	}
}

// TestImportWithSQLiteState runs the importer against the real state database.
func TestImportWithSQLiteState(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "feb.csv", []byte(export))
	st, err := importstate.Open(filepath.Join(dir, "state"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ing := &fakeIngester{}
	for i := 0; i < 2; i++ {
		if _, err := New(ing, st, &fakeLogs{}, &fakeRefresher{}, discard(), false).Import(context.Background(), path, 1); err != nil {
			t.Fatalf("Import %d: %v", i, err)
		}
	}
	if ing.calls != 1 {
		t.Errorf("ingest calls = %d, want 1", ing.calls)
	}
}

// TestIsExport covers the recognised file names.
func TestIsExport(t *testing.T) {
	tests := map[string]bool{
		"workouts.csv":    true,
		"WORKOUTS.CSV":    true,
		"workouts.csv.gz": true,
		"workouts.json":   false,
		"csv":             false,
	}
	for name, want := range tests {
		if got := isExport(name); got != want {
			t.Errorf("isExport(%q) = %v, want %v", name, got, want)
		}
	}
}
