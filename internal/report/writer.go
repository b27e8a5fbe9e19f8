package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"
)

// Writer streams a document: one header, then one block per root item.
type Writer struct {
	w      *bufio.Writer
	closer io.Closer
}

// NewWriter writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Create opens path for writing, truncating any existing file.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for writing: %w", path, err)
	}
	return &Writer{w: bufio.NewWriter(f), closer: f}, nil
}

// WriteHeader writes the file header.
func (w *Writer) WriteHeader(items []string, now time.Time) error {
	_, err := w.w.WriteString(Header(items, now))
	return err
}

// WriteBlock writes one item's block followed by a blank separator line.
func (w *Writer) WriteBlock(item string, lines []string) error {
	if _, err := w.w.WriteString(Block(item, lines)); err != nil {
		return err
	}
	_, err := w.w.WriteString("\n\n")
	return err
}

// Close flushes buffered output and closes the underlying file, if any.
func (w *Writer) Close() error {
	err := w.w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
