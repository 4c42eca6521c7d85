package importstate

import (
	"os"
	"path/filepath"
	"testing"
)

// TestImportedRoundTrip verifies a marked file is recognised only with the same
// size and hash.
func TestImportedRoundTrip(t *testing.T) {
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ok, err := st.IsImported("exports/feb.csv", 120, "abc")
	if err != nil {
		t.Fatalf("IsImported: %v", err)
	}
	if ok {
		t.Fatal("unmarked file reported as imported")
	}

	if err := st.MarkImported("exports/feb.csv", 120, "abc", 3); err != nil {
		t.Fatalf("MarkImported: %v", err)
	}
	if ok, _ := st.IsImported("exports/feb.csv", 120, "abc"); !ok {
		t.Error("marked file not reported as imported")
	}
	if ok, _ := st.IsImported("exports/feb.csv", 130, "def"); ok {
		t.Error("changed file reported as imported")
	}
}

// TestMarkImportedReplaces verifies re-marking a changed file keeps one record.
func TestMarkImportedReplaces(t *testing.T) {
	st, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	if err := st.MarkImported("a.csv", 1, "h1", 1); err != nil {
		t.Fatal(err)
	}
	if err := st.MarkImported("a.csv", 2, "h2", 4); err != nil {
		t.Fatal(err)
	}
	files, err := st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %d, want 1", len(files))
	}
	if files[0].Hash != "h2" || files[0].Sessions != 4 {
		t.Errorf("record = %+v, want latest hash and sessions", files[0])
	}
}

// TestOpenCreatesDir verifies a missing state directory is created.
func TestOpenCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	st, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	st.Close()
	if _, err := os.Stat(filepath.Join(dir, "state.db")); err != nil {
		t.Errorf("state.db not created: %v", err)
	}
}

// TestHashFile verifies the SHA-256 of a known file.
func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.csv")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("hash = %s, want %s", got, want)
	}
}
