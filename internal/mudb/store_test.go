package mudb

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/ssrmu/mujson/internal/account"
)

// setupTestStore writes content to a database file in a temp directory.
func setupTestStore(t *testing.T, content string) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mudb.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing database: %v", err)
	}
	return NewFileStore(path)
}

func TestFileStore_LoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))

	_, err := s.Load()
	if !account.IsDecode(err) {
		t.Fatalf("Load() error = %v, want decode error", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("underlying error should be not-exist: %v", err)
	}
}

func TestFileStore_LoadInvalid(t *testing.T) {
	s := setupTestStore(t, `{"user": "a"}`)

	_, err := s.Load()
	if !account.IsDecode(err) {
		t.Fatalf("Load() error = %v, want decode error", err)
	}
	var decodeErr *account.DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Path != s.Path() {
		t.Errorf("error should carry the path: %v", err)
	}
}

func TestFileStore_SaveLoad(t *testing.T) {
	s := setupTestStore(t, "[]")

	c, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}

	c.Records = append(c.Records, account.Record{User: "a", Port: 1, Enable: true})
	if err := s.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 1 || got.Records[0].User != "a" {
		t.Errorf("Load() after Save = %+v", got)
	}

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600 preserved", info.Mode().Perm())
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "mudb.json" && e.Name() != "mudb.json"+LockSuffix {
			t.Errorf("unexpected file %s", e.Name())
		}
	}
}

func TestFileStore_SaveNilIsNoop(t *testing.T) {
	s := setupTestStore(t, "not json at all")

	if err := s.Save(nil); err != nil {
		t.Fatalf("Save(nil): %v", err)
	}
	data, _ := os.ReadFile(s.Path())
	if string(data) != "not json at all" {
		t.Errorf("Save(nil) modified the file: %q", data)
	}

	if err := s.Save(&account.Collection{}); err != nil {
		t.Fatalf("Save(empty): %v", err)
	}
	data, _ = os.ReadFile(s.Path())
	if string(data) != "[]" {
		t.Errorf("Save(empty) wrote %q, want []", data)
	}
}

func TestFileStore_Lock(t *testing.T) {
	s := setupTestStore(t, "[]")

	unlock, err := s.Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := os.Stat(s.LockPath()); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
	unlock()

	// Lock is reusable after release.
	unlock, err = s.Lock()
	if err != nil {
		t.Fatalf("second Lock: %v", err)
	}
	unlock()
}

func TestFileStore_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "mudb.json")
	s := NewFileStore(path)

	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	c, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("new database has %d records", c.Len())
	}

	if err := s.Init(); err == nil {
		t.Error("Init() should refuse to overwrite an existing database")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(account.Record{User: "a"})

	c, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Records[0].User = "changed"
	if s.Records()[0].User != "a" {
		t.Error("Load() should return a copy")
	}

	unlock, err := s.Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := s.Lock(); err == nil {
		t.Error("nested Lock() should fail")
	}
	unlock()
	if s.Held() {
		t.Error("Held() after unlock")
	}
}
