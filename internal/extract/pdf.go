package extract

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/lethalbit/bookwurm/internal/document"
)

// PDF extracts metadata and per-page plain text from PDF files.
type PDF struct{}

// NewPDF creates a PDF extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// Type returns document.TypePDF.
func (p *PDF) Type() document.FileType {
	return document.TypePDF
}

// Extract opens the PDF, reads the Info dictionary and the text of every
// page. Parser panics on malformed files are reported as extraction errors.
func (p *PDF) Extract(ctx context.Context, id document.ID, entry document.FileEntry) (rec *document.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("%w: %s: malformed pdf: %v", document.ErrExtraction, entry.Path, r)
		}
	}()

	f, reader, err := pdf.Open(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", document.ErrExtraction, entry.Path, err)
	}
	defer f.Close()

	rec = document.NewRecord(id, entry)

	info := reader.Trailer().Key("Info")
	rec.SetTitle(info.Key("Title").Text())
	rec.Author = document.CleanMetadata(info.Key("Author").Text())
	rec.Keywords = document.SplitKeywords(info.Key("Keywords").Text())

	total := reader.NumPage()
	rec.TotalPages = total
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			rec.Pages[i-1] = ""
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %v", document.ErrExtraction, entry.Path, i, err)
		}
		rec.Pages[i-1] = text
	}

	return rec, nil
}
