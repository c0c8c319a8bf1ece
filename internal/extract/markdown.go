package extract

import (
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/lethalbit/bookwurm/internal/document"
)

// Markdown indexes markdown files as a single page of plain text. The first
// heading becomes the title.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a markdown extractor.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New()}
}

// Type returns document.TypeMarkdown.
func (m *Markdown) Type() document.FileType {
	return document.TypeMarkdown
}

// Extract parses the file and flattens its block structure to text, one
// block per line.
func (m *Markdown) Extract(_ context.Context, id document.ID, entry document.FileEntry) (*document.Record, error) {
	content, err := readCapped(entry.Path)
	if err != nil {
		return nil, err
	}

	source := []byte(content)
	root := m.md.Parser().Parse(text.NewReader(source))

	var (
		sb    strings.Builder
		title string
	)
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			line := blockText(node, source)
			if title == "" {
				title = line
			}
			writeLine(&sb, line)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			writeLine(&sb, blockText(node, source))
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			writeLine(&sb, rawLines(node, source))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	rec := document.NewRecord(id, entry)
	rec.SetTitle(title)
	rec.TotalPages = 1
	rec.Pages[0] = strings.TrimSpace(sb.String())
	return rec, nil
}

// blockText collects the text of every inline descendant of n.
func blockText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.CodeSpan:
			for child := t.FirstChild(); child != nil; child = child.NextSibling() {
				if txt, ok := child.(*ast.Text); ok {
					sb.Write(txt.Segment.Value(source))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// rawLines returns the literal lines of a code block.
func rawLines(n ast.Node, source []byte) string {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeLine(sb *strings.Builder, line string) {
	if line == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	sb.WriteString(line)
}
