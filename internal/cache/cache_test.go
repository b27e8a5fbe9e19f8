package cache

import (
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyCacheGetSet(t *testing.T) {
	c := NewBodyCache(time.Hour)

	_, _, ok := c.Get("u")
	assert.False(t, ok)

	require.NoError(t, c.Set("u", "body", "etag-1"))
	body, etag, ok := c.Get("u")
	assert.True(t, ok)
	assert.Equal(t, "body", body)
	assert.Equal(t, "etag-1", etag)
	assert.Equal(t, 1, c.Len())
}

func TestBodyCacheExpiry(t *testing.T) {
	c := NewBodyCache(-time.Second)
	require.NoError(t, c.Set("u", "body", "etag-1"))

	_, etag, ok := c.Get("u")
	assert.False(t, ok)
	assert.Equal(t, "etag-1", etag)

	body, _, ok := c.GetAny("u")
	assert.True(t, ok)
	assert.Equal(t, "body", body)
}

func TestBodyCacheTouch(t *testing.T) {
	c := NewBodyCache(time.Hour)
	require.NoError(t, c.Touch("missing"))

	require.NoError(t, c.Set("u", "body", ""))
	c.entries["u"] = bodyEntry{Body: "body", Timestamp: time.Now().Add(-2 * time.Hour)}
	_, _, ok := c.Get("u")
	require.False(t, ok)

	require.NoError(t, c.Touch("u"))
	_, _, ok = c.Get("u")
	assert.True(t, ok)
}

func TestBodyCachePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bodies.gob")

	c := NewBodyCache(time.Hour)
	c.SetPersistPath(path)
	require.NoError(t, c.Set("https://example.com/gfw.txt", "example.com\n", "abc"))

	restored := NewBodyCache(time.Hour)
	require.NoError(t, restored.LoadFromFile(path))

	body, etag, ok := restored.Get("https://example.com/gfw.txt")
	assert.True(t, ok)
	assert.Equal(t, "example.com\n", body)
	assert.Equal(t, "abc", etag)
	assert.NoFileExists(t, path+".tmp")
}

func TestBodyCacheLoadMissingFile(t *testing.T) {
	c := NewBodyCache(time.Hour)
	assert.Error(t, c.LoadFromFile(filepath.Join(t.TempDir(), "absent.gob")))
}

func TestResultCache(t *testing.T) {
	c := NewResultCache(time.Hour)
	assert.True(t, c.Store("gfw", "doc", true))

	v, ok := c.Get("gfw")
	assert.True(t, ok)
	assert.Equal(t, "doc", v)

	_, ok = c.Get("other")
	assert.False(t, ok)
}

func TestResultCacheSkipsIncomplete(t *testing.T) {
	c := NewResultCache(time.Hour)

	assert.False(t, c.Store("gfw", "partial", false))
	_, ok := c.Get("gfw")
	assert.False(t, ok)

	require.True(t, c.Store("gfw", "full", true))
	assert.False(t, c.Store("gfw", "partial", false))
	_, ok = c.Get("gfw")
	assert.False(t, ok, "a failed render evicts the previous document")
}

func TestResultCacheExpiry(t *testing.T) {
	c := NewResultCache(-time.Second)
	c.Store("gfw", "doc", true)

	_, ok := c.Get("gfw")
	assert.False(t, ok)
}

func TestResultCacheCleanup(t *testing.T) {
	c := NewResultCache(time.Minute)
	c.Store("old", "x", true)
	c.Store("new", "y", true)
	old := c.entries["old"]
	old.expires = time.Now().Add(-time.Second)
	c.entries["old"] = old

	assert.Equal(t, 1, c.Cleanup())

	_, ok := c.Get("old")
	assert.False(t, ok)
	_, ok = c.Get("new")
	assert.True(t, ok)
	assert.Len(t, c.entries, 1)
}

func TestWriteFileAtomicFailureRemovesTemp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.gob")

	err := writeFileAtomic(path, func(io.Writer) error { return errors.New("encode failed") })

	assert.Error(t, err)
	assert.NoFileExists(t, path)
	assert.NoFileExists(t, path+".tmp")
}
