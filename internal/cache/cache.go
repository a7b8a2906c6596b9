// Package cache is the content-addressed build cache (SPEC_FULL §4.8):
// source hash -> {yul, abi, bytecode}, persisted to sqlite so repeated
// `yulc build` runs skip re-lowering unchanged sources. Grounded verbatim
// on the teacher's geth-17-indexer module: `sql.Open("sqlite", path)`,
// `CREATE TABLE IF NOT EXISTS`, parameterized `db.Exec`.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one cached compilation result (SPEC_FULL §3's CacheEntry).
type Entry struct {
	SourceHash string
	Yul        string
	ABIJSON    string
	Bytecode   string
	CreatedAt  time.Time
}

// Cache wraps a sqlite-backed compilations table.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS compilations(
		source_hash TEXT PRIMARY KEY,
		yul TEXT NOT NULL,
		abi_json TEXT NOT NULL,
		bytecode TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Key hashes the source text exactly as given (no normalization; any
// whitespace change yields a new key) plus a compiler version tag
// (SPEC_FULL §4.8), so a version bump invalidates stale entries without
// needing an explicit migration.
func Key(versionTag, source string) string {
	h := sha256.New()
	h.Write([]byte(versionTag))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks up key, returning (entry, true, nil) on a hit, (Entry{},
// false, nil) on a clean miss.
func (c *Cache) Get(key string) (Entry, bool, error) {
	row := c.db.QueryRow(`SELECT source_hash, yul, abi_json, bytecode, created_at FROM compilations WHERE source_hash = ?`, key)
	var e Entry
	var createdAt int64
	err := row.Scan(&e.SourceHash, &e.Yul, &e.ABIJSON, &e.Bytecode, &createdAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache: lookup: %w", err)
	}
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	return e, true, nil
}

// Put upserts e, keyed by e.SourceHash.
func (c *Cache) Put(e Entry) error {
	_, err := c.db.Exec(`INSERT INTO compilations(source_hash, yul, abi_json, bytecode, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_hash) DO UPDATE SET
			yul=excluded.yul, abi_json=excluded.abi_json,
			bytecode=excluded.bytecode, created_at=excluded.created_at`,
		e.SourceHash, e.Yul, e.ABIJSON, e.Bytecode, e.CreatedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("cache: upsert: %w", err)
	}
	return nil
}
