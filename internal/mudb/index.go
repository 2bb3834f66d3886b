package mudb

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ssrmu/mujson/internal/account"

	_ "modernc.org/sqlite"
)

// IndexTable is the table holding one row per account.
const IndexTable = "accounts"

// Row is one result row of an index query, keyed by column name.
type Row map[string]any

// QueryResult holds the rows of a query along with its columns in SELECT
// order.
type QueryResult struct {
	Columns []string
	Rows    []Row
}

// Index is an ephemeral SQLite copy of the account collection. The JSON
// file stays the source of truth; the index is rebuilt whenever the file's
// content hash changes.
type Index struct {
	path string
}

// IndexInfo describes the state of an index.
type IndexInfo struct {
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Records  int       `json:"records"`
	LastSync time.Time `json:"last_sync,omitempty"`
	InSync   bool      `json:"in_sync"`
}

// NewIndex returns an index stored at path. The file is created on the
// first Rebuild.
func NewIndex(path string) *Index {
	return &Index{path: path}
}

// Path returns the index database path.
func (ix *Index) Path() string {
	return ix.path
}

// openIndexDB opens the SQLite database backing an index.
func openIndexDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	return db, nil
}

const accountsDDL = `CREATE TABLE IF NOT EXISTS accounts (
  position INTEGER PRIMARY KEY,
  user TEXT,
  port INTEGER,
  passwd TEXT,
  method TEXT,
  protocol TEXT,
  obfs TEXT,
  transfer_enable INTEGER,
  u INTEGER,
  d INTEGER,
  enable INTEGER,
  forbidden_port TEXT
)`

const metaDDL = `CREATE TABLE IF NOT EXISTS _meta (
  key TEXT PRIMARY KEY,
  value TEXT
)`

// ComputeFileHash computes a SHA256 hash of a file's contents. A missing
// file hashes as empty.
func ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256([]byte{})
			return hex.EncodeToString(h[:]), nil
		}
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Rebuild replaces the index content with c and records hash as the
// content hash it was built from. Returns the number of rows written.
func (ix *Index) Rebuild(c *account.Collection, hash string) (int, error) {
	db, err := openIndexDB(ix.path)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, ddl := range []string{accountsDDL, metaDDL} {
		if _, err := tx.Exec(ddl); err != nil {
			return 0, fmt.Errorf("creating tables: %w", err)
		}
	}
	if _, err := tx.Exec("DELETE FROM " + IndexTable); err != nil {
		return 0, fmt.Errorf("clearing accounts: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO accounts
  (position, user, port, passwd, method, protocol, obfs, transfer_enable, u, d, enable, forbidden_port)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range c.Records {
		if _, err := stmt.Exec(i,
			column(r, account.KeyUser, r.User),
			column(r, account.KeyPort, r.Port),
			column(r, account.KeyPasswd, r.Passwd),
			column(r, account.KeyMethod, r.Method),
			column(r, account.KeyProtocol, r.Protocol),
			column(r, account.KeyObfs, r.Obfs),
			column(r, account.KeyTransferEnable, r.TransferEnable),
			column(r, account.KeyU, r.U),
			column(r, account.KeyD, r.D),
			column(r, account.KeyEnable, r.Enable),
			column(r, account.KeyForbiddenPort, r.ForbiddenPort)); err != nil {
			return 0, fmt.Errorf("inserting record %d: %w", i+1, err)
		}
	}

	if _, err := tx.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES ('db_hash', ?)`, hash); err != nil {
		return 0, fmt.Errorf("updating hash: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES ('last_sync', ?)`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, fmt.Errorf("updating sync time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index: %w", err)
	}
	return c.Len(), nil
}

// column returns v, or NULL when the record lacks key.
func column(r account.Record, key string, v any) any {
	if !r.Has(key) {
		return nil
	}
	return v
}

// meta reads a value from the _meta table. Missing tables or keys read as
// empty.
func meta(db *sql.DB, key string) (string, error) {
	var exists int
	err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = '_meta'`).Scan(&exists)
	if err != nil {
		return "", err
	}
	if exists == 0 {
		return "", nil
	}

	var value sql.NullString
	err = db.QueryRow(`SELECT value FROM _meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value.String, nil
}

// NeedsRebuild reports whether the index was built from content other than
// hash, or was never built.
func (ix *Index) NeedsRebuild(hash string) (bool, error) {
	if _, err := os.Stat(ix.path); os.IsNotExist(err) {
		return true, nil
	}

	db, err := openIndexDB(ix.path)
	if err != nil {
		return true, err
	}
	defer db.Close()

	stored, err := meta(db, "db_hash")
	if err != nil {
		return true, err
	}
	return stored != hash, nil
}

// Sync rebuilds the index from store if the database file changed since the
// last build. Returns whether a rebuild happened.
func (ix *Index) Sync(store *FileStore) (bool, error) {
	hash, err := ComputeFileHash(store.Path())
	if err != nil {
		return false, fmt.Errorf("computing hash: %w", err)
	}

	stale, err := ix.NeedsRebuild(hash)
	if err != nil {
		return false, fmt.Errorf("checking index: %w", err)
	}
	if !stale {
		return false, nil
	}

	c, err := store.Load()
	if err != nil {
		return false, err
	}
	if _, err := ix.Rebuild(c, hash); err != nil {
		return false, err
	}
	return true, nil
}

// Query runs a read-only SQL statement against the index.
func (ix *Index) Query(query string, args ...any) (*QueryResult, error) {
	db, err := openIndexDB(ix.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if _, err := db.Exec("PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("setting read-only: %w", err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows converts SQL rows to Row values.
func scanRows(rows *sql.Rows) (*QueryResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := &QueryResult{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out.Rows = append(out.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Info returns the index state relative to the database at dbPath.
func (ix *Index) Info(dbPath string) (*IndexInfo, error) {
	info := &IndexInfo{Path: ix.path}

	stat, err := os.Stat(ix.path)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return nil, err
	}
	info.Size = stat.Size()

	hash, err := ComputeFileHash(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := openIndexDB(ix.path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	stored, err := meta(db, "db_hash")
	if err != nil {
		return nil, err
	}
	info.InSync = stored != "" && stored == hash

	if last, err := meta(db, "last_sync"); err == nil && last != "" {
		if t, err := time.Parse(time.RFC3339, last); err == nil {
			info.LastSync = t
		}
	}

	if stored != "" {
		if err := db.QueryRow("SELECT count(*) FROM " + IndexTable).Scan(&info.Records); err != nil {
			return nil, fmt.Errorf("counting records: %w", err)
		}
	}

	return info, nil
}
