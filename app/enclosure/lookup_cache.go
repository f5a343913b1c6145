package enclosure

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var _ LookupStore = (*LookupCache)(nil)

// LookupCache persists resolved enclosure metadata in a local sqlite
// file so repeated builds skip network lookups. It sits below the
// per-unit memoization and is safe for concurrent use.
type LookupCache struct {
	db *sql.DB
}

func OpenLookupCache(path string) (*LookupCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup cache: %w", err)
	}

	// modernc sqlite serializes writes through a single connection
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate lookup cache: %w", err)
	}

	return &LookupCache{db: db}, nil
}

func (c *LookupCache) Get(url string) (*Metadata, error) {
	row := c.db.QueryRow(
		`SELECT length, mime_type, duration FROM enclosure_lookups WHERE url = ?`, url)

	md := Metadata{URL: url}
	err := row.Scan(&md.Length, &md.Type, &md.Duration)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lookup cache: %w", err)
	}

	return &md, nil
}

func (c *LookupCache) Put(md Metadata) error {
	_, err := c.db.Exec(
		`INSERT INTO enclosure_lookups (url, length, mime_type, duration, resolved_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(url) DO UPDATE SET
		   length = excluded.length,
		   mime_type = excluded.mime_type,
		   duration = excluded.duration,
		   resolved_at = excluded.resolved_at`,
		md.URL, md.Length, md.Type, md.Duration)
	if err != nil {
		return fmt.Errorf("failed to upsert lookup: %w", err)
	}

	return nil
}

func (c *LookupCache) Close() error {
	return c.db.Close()
}
