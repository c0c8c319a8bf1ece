package document

import (
	"path/filepath"
	"strings"
)

// FileType discriminates which extractor handles a file.
type FileType string

const (
	TypePDF      FileType = "pdf"
	TypeText     FileType = "text"
	TypeMarkdown FileType = "markdown"
	TypeCSV      FileType = "csv"
	TypeUnknown  FileType = ""
)

// extensionToType maps lower-cased file extensions to file types.
var extensionToType = map[string]FileType{
	".pdf":      TypePDF,
	".txt":      TypeText,
	".text":     TypeText,
	".md":       TypeMarkdown,
	".markdown": TypeMarkdown,
	".csv":      TypeCSV,
}

// DetectType returns the FileType for the given file name based on its
// extension. Unrecognised extensions yield TypeUnknown.
func DetectType(name string) FileType {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionToType[ext]; ok {
		return t
	}
	return TypeUnknown
}

// FileEntry is a single file discovered by the collector.
type FileEntry struct {
	Path string   // Absolute path on disk.
	Type FileType // Derived from the extension.
}

// NewFileEntry builds a FileEntry for path, resolving it to an absolute path.
func NewFileEntry(path string) (FileEntry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileEntry{}, err
	}
	return FileEntry{Path: abs, Type: DetectType(abs)}, nil
}

// Name returns the base name of the file.
func (e FileEntry) Name() string {
	return filepath.Base(e.Path)
}

// ID is the deterministic identity of a document in the index. It is the
// index primary key and the idempotency key for re-runs.
type ID string

// IDLength is the fixed number of hex characters in an ID.
const IDLength = 64

// Record is the normalised unit stored in the index. Records are built once
// by an extractor and replaced wholesale on re-extraction.
type Record struct {
	ID         ID             `json:"id"`
	Type       FileType       `json:"type"`
	File       string         `json:"file"`
	Title      string         `json:"title"`
	Author     string         `json:"author"`
	Keywords   []string       `json:"keywords"`
	TotalPages int            `json:"total_pages"`
	Pages      map[int]string `json:"pages"`
}

// NewRecord returns a Record for entry with the defaults every extractor
// relies on: title falls back to the base name and keywords are never nil.
func NewRecord(id ID, entry FileEntry) *Record {
	return &Record{
		ID:       id,
		Type:     entry.Type,
		File:     entry.Path,
		Title:    entry.Name(),
		Keywords: []string{},
		Pages:    make(map[int]string),
	}
}

// SetTitle sets the title, keeping the base-name fallback for blank values.
func (r *Record) SetTitle(title string) {
	title = CleanMetadata(title)
	if title == "" {
		return
	}
	r.Title = title
}

// MatchSpan is a highlighted region within an attribute's text, as reported
// by the search backend. Offsets are in bytes.
type MatchSpan struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// End returns the exclusive end offset of the span.
func (m MatchSpan) End() int {
	return m.Start + m.Length
}

// CleanMetadata trims surrounding whitespace and removes embedded NUL
// characters from a metadata value.
func CleanMetadata(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// SplitKeywords splits a keywords metadata string on whitespace and commas.
// The result is never nil.
func SplitKeywords(s string) []string {
	fields := strings.FieldsFunc(CleanMetadata(s), func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if fields == nil {
		return []string{}
	}
	return fields
}
