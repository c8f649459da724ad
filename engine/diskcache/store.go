// Package diskcache persists generated asset bundles across sessions so
// a restarted world does not pay the generation cost again for creatures
// it has already seen. Entries are keyed by descriptor hash and pipeline
// version; unreadable entries are treated as misses and overwritten.
package diskcache

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/spaghettifunk/morphogen/engine/assembler"
	"github.com/spaghettifunk/morphogen/engine/core"
)

const storeSchema = `
CREATE TABLE IF NOT EXISTS bundles (
	hash       INTEGER NOT NULL,
	version    INTEGER NOT NULL,
	data       BLOB    NOT NULL,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s','now')),
	PRIMARY KEY (hash, version)
);`

// Store is a sqlite-backed bundle cache. Safe for concurrent use; the
// driver serializes access to the underlying database.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the cache database under dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "bundles.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(storeSchema); err != nil {
		db.Close()
		return nil, err
	}

	core.LogInfo("diskcache: opened bundle store at %s", path)
	return &Store{db: db}, nil
}

// Get loads a cached bundle. A missing entry returns (nil, nil). A
// corrupt entry is deleted, counted and reported as a miss so the caller
// regenerates; cache corruption is never fatal.
func (s *Store) Get(hash uint64, version uint32) (*assembler.AssetBundle, error) {
	var data []byte
	row := s.db.QueryRow(
		`SELECT data FROM bundles WHERE hash = ? AND version = ?`,
		int64(hash), int64(version),
	)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	bundle, err := Decode(data)
	if err != nil || bundle.Hash != hash || bundle.Version != version {
		core.LogWarn("diskcache: corrupt entry for hash %d, dropping and regenerating", hash)
		core.Metrics().DiskCacheCorrupt.Add(1)
		s.Delete(hash, version)
		return nil, nil
	}
	return bundle, nil
}

// Put stores a bundle, overwriting any previous entry for the same key.
func (s *Store) Put(bundle *assembler.AssetBundle) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO bundles (hash, version, data) VALUES (?, ?, ?)`,
		int64(bundle.Hash), int64(bundle.Version), Encode(bundle),
	)
	return err
}

// Delete removes an entry. Missing entries are not an error.
func (s *Store) Delete(hash uint64, version uint32) {
	if _, err := s.db.Exec(
		`DELETE FROM bundles WHERE hash = ? AND version = ?`,
		int64(hash), int64(version),
	); err != nil {
		core.LogError("diskcache: delete of hash %d failed: %s", hash, err.Error())
	}
}

// Prune drops every entry whose version differs from the current one.
// Run at startup after a tuning or decoder change.
func (s *Store) Prune(version uint32) error {
	res, err := s.db.Exec(`DELETE FROM bundles WHERE version != ?`, int64(version))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		core.LogInfo("diskcache: pruned %d stale bundle(s)", n)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
