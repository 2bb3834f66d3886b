package mudb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ssrmu/mujson/internal/account"
)

// LockSuffix is appended to the database path to name its lock file.
const LockSuffix = ".lock"

// FileStore keeps the collection in one JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the database file path.
func (s *FileStore) Path() string {
	return s.path
}

// LockPath returns the path of the lock file guarding the database.
func (s *FileStore) LockPath() string {
	return s.path + LockSuffix
}

// Load reads and decodes the whole database file. Any failure is reported
// as an *account.DecodeError.
func (s *FileStore) Load() (*account.Collection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &account.DecodeError{Path: s.path, Err: err}
	}

	c, err := Decode(data)
	if err != nil {
		return nil, &account.DecodeError{Path: s.path, Err: err}
	}
	return c, nil
}

// Save replaces the database file with the encoded collection. A nil
// collection means nothing was loaded and is not written; an empty one is
// written as [].
// Uses temp file + rename so readers never see a partial file.
func (s *FileStore) Save(c *account.Collection) error {
	if c == nil {
		return nil
	}

	data, err := Encode(c)
	if err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(s.path), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Chmod(mode); err != nil {
		tmpFile.Close()
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// Lock takes an exclusive lock on the database's lock file, blocking until
// it is available.
func (s *FileStore) Lock() (func(), error) {
	return lockFile(s.LockPath())
}

// Init creates an empty database at the store path. It fails if the file
// already exists.
func (s *FileStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	if _, err := f.WriteString("[]"); err != nil {
		f.Close()
		return fmt.Errorf("writing database: %w", err)
	}
	return f.Close()
}
