// Package catalog keeps a small persistent index of scanned GCD files, so
// repeated inspection of a firmware collection does not reparse everything.
// Summaries are stored in a pebble key-value store under ksuid keys, which
// sort by creation time.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrNotFound means no entry exists under the given ID.
var ErrNotFound = errors.New("catalog entry not found")

// Catalog is a persistent store of file summaries. Safe for concurrent use;
// pebble handles the locking.
type Catalog struct {
	db *pebble.DB
}

// Entry is one catalog row.
type Entry struct {
	ID      ksuid.KSUID `json:"id"`
	Summary Summary     `json:"summary"`
}

// Open opens or creates a catalog at path.
func Open(path string) (*Catalog, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Put stores a summary under a fresh ID and returns it.
func (c *Catalog) Put(s *Summary) (ksuid.KSUID, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("encode summary: %w", err)
	}
	id := ksuid.New()
	if err := c.db.Set(id.Bytes(), data, pebble.Sync); err != nil {
		return ksuid.Nil, fmt.Errorf("store summary: %w", err)
	}
	return id, nil
}

// Get returns the summary stored under id.
func (c *Catalog) Get(id ksuid.KSUID) (*Summary, error) {
	data, closer, err := c.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	defer closer.Close()

	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &s, nil
}

// List returns every entry, oldest first.
func (c *Catalog) List() ([]Entry, error) {
	iter, err := c.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	defer iter.Close()

	var entries []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("catalog key: %w", err)
		}
		var s Summary
		if err := json.Unmarshal(iter.Value(), &s); err != nil {
			return nil, fmt.Errorf("decode summary %s: %w", id, err)
		}
		entries = append(entries, Entry{ID: id, Summary: s})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return entries, nil
}

// Delete removes the entry under id. Deleting a missing entry is not an
// error.
func (c *Catalog) Delete(id ksuid.KSUID) error {
	return c.db.Delete(id.Bytes(), pebble.Sync)
}

// Close closes the underlying store.
func (c *Catalog) Close() error {
	return c.db.Close()
}
