package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader([]string{"gfw"}, now))
	require.NoError(t, w.WriteBlock("gfw", []string{"||a.com"}))
	require.NoError(t, w.Close())

	want := Header([]string{"gfw"}, now) + Block("gfw", []string{"||a.com"}) + "\n\n"
	assert.Equal(t, want, buf.String())
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is long"), 0o644))

	w, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteBlock("gfw", nil))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Block("gfw", nil)+"\n\n", string(data))
}

func TestCreateFailure(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing-dir", "out.txt"))
	assert.Error(t, err)
}
