package snippet

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lethalbit/bookwurm/internal/document"
)

// DefaultContextWidth is the number of bytes kept on each side of a match.
const DefaultContextWidth = 128

// Segment is a run of text that is either plain context or a highlighted match.
type Segment struct {
	Text      string `json:"text"`
	Highlight bool   `json:"highlight"`
}

// Window is one contiguous excerpt of the page, [Start, End) in bytes.
type Window struct {
	Start    int       `json:"start"`
	End      int       `json:"end"`
	Segments []Segment `json:"segments"`
}

// Snippet is the ordered list of non-adjacent windows rendered for a page.
type Snippet struct {
	Windows []Window `json:"windows"`
}

// Empty reports whether the snippet has no windows.
func (s Snippet) Empty() bool {
	return len(s.Windows) == 0
}

// Style decorates highlighted text and separates windows.
type Style interface {
	Highlight(text string) string
	Gap() string
}

// Markers is a plain-text Style using paired delimiters.
type Markers struct {
	Open      string
	Close     string
	Separator string
}

// Plain is the default plain-text Style.
var Plain = Markers{Open: "[[", Close: "]]", Separator: " … "}

func (m Markers) Highlight(text string) string { return m.Open + text + m.Close }
func (m Markers) Gap() string                  { return m.Separator }

// Markup concatenates the windows into a single string.
func (s Snippet) Markup(style Style) string {
	var b strings.Builder
	for i, w := range s.Windows {
		if i > 0 {
			b.WriteString(style.Gap())
		}
		for _, seg := range w.Segments {
			if seg.Highlight {
				b.WriteString(style.Highlight(seg.Text))
				continue
			}
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

type span struct{ start, end int }

// Render builds the snippet for text given match spans in byte offsets.
// Each match gets contextWidth bytes of context on both sides, clamped to the
// text. Windows that overlap or touch are coalesced, and overlapping
// highlights are unioned. Spans that are empty or start past the end of the
// text are dropped. Offsets are snapped to rune boundaries only when text is
// valid UTF-8; otherwise they are used as given.
func Render(text string, matches []document.MatchSpan, contextWidth int) Snippet {
	if contextWidth < 0 {
		contextWidth = 0
	}
	n := len(text)

	floor, ceil := floorRune, ceilRune
	if !utf8.ValidString(text) {
		floor = func(_ string, i int) int { return i }
		ceil = floor
	}

	hl := make([]span, 0, len(matches))
	for _, m := range matches {
		if m.Length <= 0 || m.Start < 0 || m.Start >= n {
			continue
		}
		hl = append(hl, span{
			start: floor(text, m.Start),
			end:   ceil(text, m.Start+min(m.Length, n-m.Start)),
		})
	}
	if len(hl) == 0 {
		return Snippet{}
	}
	sort.Slice(hl, func(i, j int) bool {
		if hl[i].start != hl[j].start {
			return hl[i].start < hl[j].start
		}
		return hl[i].end < hl[j].end
	})
	hl = union(hl)

	var (
		windows []Window
		cur     span
		curHL   []span
	)
	flush := func() {
		windows = append(windows, buildWindow(text, cur, curHL))
	}
	for i, h := range hl {
		w := span{
			start: floor(text, h.start-min(h.start, contextWidth)),
			end:   ceil(text, h.end+min(n-h.end, contextWidth)),
		}
		if i > 0 && w.start <= cur.end {
			cur.end = max(cur.end, w.end)
			curHL = append(curHL, h)
			continue
		}
		if i > 0 {
			flush()
		}
		cur = w
		curHL = []span{h}
	}
	flush()

	return Snippet{Windows: windows}
}

// union merges sorted spans that overlap or touch.
func union(spans []span) []span {
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.start <= last.end {
			last.end = max(last.end, s.end)
			continue
		}
		out = append(out, s)
	}
	return out
}

func buildWindow(text string, w span, hl []span) Window {
	var segs []Segment
	pos := w.start
	for _, h := range hl {
		if h.start > pos {
			segs = append(segs, Segment{Text: text[pos:h.start]})
		}
		segs = append(segs, Segment{Text: text[h.start:h.end], Highlight: true})
		pos = h.end
	}
	if pos < w.end {
		segs = append(segs, Segment{Text: text[pos:w.end]})
	}
	return Window{Start: w.start, End: w.end, Segments: segs}
}

// floorRune moves i back to the start of the rune containing it.
func floorRune(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// ceilRune moves i forward to the next rune boundary.
func ceilRune(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
