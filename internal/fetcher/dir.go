package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no local file backs a URL.
var ErrNotFound = errors.New("list not found")

// Dir serves lists from a local directory instead of the network. The last
// path segment of the URL names the file, with or without a .txt suffix.
type Dir struct {
	root string
}

// NewDir creates a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Fetch reads the file that url maps to.
func (d *Dir) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := path.Base(url)
	candidates := []string{name}
	if trimmed := strings.TrimSuffix(name, ".txt"); trimmed != name {
		candidates = append(candidates, trimmed)
	} else {
		candidates = append(candidates, name+".txt")
	}

	for _, c := range candidates {
		data, err := os.ReadFile(filepath.Join(d.root, c))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if len(data) == 0 {
			return "", fmt.Errorf("%s: %w", c, ErrEmptyBody)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("%s in %s: %w", name, d.root, ErrNotFound)
}
