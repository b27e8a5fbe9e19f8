// Package cache provides in-memory caching for fetched rule lists and rendered results.
package cache

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// BodyCache holds fetched list bodies keyed by URL
type BodyCache struct {
	mu          sync.RWMutex
	entries     map[string]bodyEntry
	ttl         time.Duration
	persistPath string
}

type bodyEntry struct {
	Body      string
	ETag      string
	Timestamp time.Time
}

// NewBodyCache creates a new BodyCache with the specified TTL
func NewBodyCache(ttl time.Duration) *BodyCache {
	return &BodyCache{
		entries: make(map[string]bodyEntry),
		ttl:     ttl,
	}
}

// SetPersistPath enables on-disk persistence for the body cache.
func (c *BodyCache) SetPersistPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.persistPath = path
}

// Get returns the cached body for url if it is still within TTL, along with its ETag
func (c *BodyCache) Get(url string) (string, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[url]
	if !ok {
		return "", "", false
	}

	if time.Since(entry.Timestamp) > c.ttl {
		return "", entry.ETag, false
	}

	return entry.Body, entry.ETag, true
}

// GetAny returns the cached body regardless of TTL.
func (c *BodyCache) GetAny(url string) (string, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[url]
	if !ok {
		return "", "", false
	}

	return entry.Body, entry.ETag, true
}

// Set stores a body and its ETag
func (c *BodyCache) Set(url, body, etag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = bodyEntry{
		Body:      body,
		ETag:      etag,
		Timestamp: time.Now(),
	}
	return c.persistToFileLocked()
}

// Touch marks an entry as fresh again, used after a 304 revalidation.
func (c *BodyCache) Touch(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if !ok {
		return nil
	}
	entry.Timestamp = time.Now()
	c.entries[url] = entry
	return c.persistToFileLocked()
}

// Len returns the number of cached bodies
func (c *BodyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LoadFromFile restores cache data from disk if available.
func (c *BodyCache) LoadFromFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var persisted map[string]bodyEntry
	if err := gob.NewDecoder(file).Decode(&persisted); err != nil {
		return err
	}

	for url, entry := range persisted {
		c.entries[url] = entry
	}
	c.persistPath = path
	return nil
}

func (c *BodyCache) persistToFileLocked() error {
	if c.persistPath == "" {
		return nil
	}
	return writeFileAtomic(c.persistPath, func(w io.Writer) error {
		return gob.NewEncoder(w).Encode(c.entries)
	})
}

// writeFileAtomic writes through a sibling .tmp file and renames it into
// place, so readers never observe a partial cache file.
func writeFileAtomic(path string, encode func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if err := encode(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// ResultCache holds rendered documents until they expire. Only documents
// built from a fully successful resolution are kept.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]resultEntry
	ttl     time.Duration
}

type resultEntry struct {
	doc     string
	expires time.Time
}

// NewResultCache creates a ResultCache whose entries live for ttl
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[string]resultEntry),
		ttl:     ttl,
	}
}

// Get returns the document stored under key while it is unexpired
func (c *ResultCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || !time.Now().Before(entry.expires) {
		return "", false
	}
	return entry.doc, true
}

// Store keeps doc under key when complete is true and reports whether it
// did. An incomplete document also evicts whatever key held before, so a
// partial render never outlives the failure that produced it.
func (c *ResultCache) Store(key, doc string, complete bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !complete {
		delete(c.entries, key)
		return false
	}
	c.entries[key] = resultEntry{doc: doc, expires: time.Now().Add(c.ttl)}
	return true
}

// Cleanup drops expired entries and returns how many were removed
func (c *ResultCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}
