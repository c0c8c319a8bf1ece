package extract

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/lethalbit/bookwurm/internal/document"
)

// maxTextSize caps how much of a plain text file is indexed.
const maxTextSize = 8 << 20

// Text indexes plain text files as a single page.
type Text struct{}

// NewText creates a plain text extractor.
func NewText() *Text {
	return &Text{}
}

// Type returns document.TypeText.
func (t *Text) Type() document.FileType {
	return document.TypeText
}

// Extract reads the file into page 0.
func (t *Text) Extract(_ context.Context, id document.ID, entry document.FileEntry) (*document.Record, error) {
	content, err := readCapped(entry.Path)
	if err != nil {
		return nil, err
	}

	rec := document.NewRecord(id, entry)
	rec.TotalPages = 1
	rec.Pages[0] = content
	return rec, nil
}

// readCapped reads at most maxTextSize bytes of valid UTF-8 text.
func readCapped(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", document.ErrExtraction, path, err)
	}
	if len(data) > maxTextSize {
		data = data[:maxTextSize]
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", document.ErrExtraction, path)
	}
	return string(data), nil
}
