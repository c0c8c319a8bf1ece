package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/lethalbit/bookwurm/internal/history"
	"github.com/lethalbit/bookwurm/internal/index"
	"github.com/lethalbit/bookwurm/internal/indexer"
	"github.com/lethalbit/bookwurm/internal/search"
)

// Terminal palette.
const (
	colorAccent   = "81"  // titles and highlights
	colorGray     = "245" // secondary text
	colorDarkGray = "238" // borders
	colorRed      = "196"
	colorYellow   = "220"
	colorGreen    = "114"
)

// styles holds the lipgloss styles used by command output.
type styles struct {
	Header  lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Match   lipgloss.Style
	Panel   lipgloss.Style
	color   bool
}

func defaultStyles() styles {
	return styles{
		Header:  lipgloss.NewStyle().Bold(true),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
		Match:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorDarkGray)).
			Padding(0, 1).
			MarginLeft(3),
		color: true,
	}
}

// plainStyles leaves text untouched, for pipes and CI logs.
func plainStyles() styles {
	return styles{
		Header:  lipgloss.NewStyle(),
		Title:   lipgloss.NewStyle(),
		Label:   lipgloss.NewStyle(),
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Match:   lipgloss.NewStyle(),
		Panel:   lipgloss.NewStyle().MarginLeft(3),
	}
}

// stylesFor picks colored styles only when w is a terminal.
func stylesFor(w io.Writer) styles {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return defaultStyles()
	}
	return plainStyles()
}

// Highlight and Gap make styles usable as a snippet.Style.
func (s styles) Highlight(text string) string {
	if !s.color {
		return "[[" + text + "]]"
	}
	return s.Match.Render(text)
}

func (s styles) Gap() string { return " … " }

// printSearchResults writes the human-readable listing of res.
func printSearchResults(w io.Writer, res *search.Results, st styles) {
	fmt.Fprintln(w, st.Label.Render(res.Summary()))
	for _, h := range res.Hits {
		title := h.Title
		if title == "" {
			title = h.File
		}
		fmt.Fprintf(w, " * %s (%d matches)\n", st.Title.Render(title), len(h.Matches))
		fmt.Fprintf(w, "   %s\n", st.Label.Render(hitDetails(h.Hit)))

		for _, ps := range h.Snippets {
			n := len(h.Matches[fmt.Sprintf("pages.%d", ps.Page)])
			header := st.Header.Render(fmt.Sprintf("Page %d (%d matches)", ps.Page+1, n))
			fmt.Fprintln(w, st.Panel.Render(header+"\n"+ps.Snippet.Markup(st)))
		}
	}
}

func hitDetails(h index.Hit) string {
	name := filepath.Base(h.File)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	parts := []string{strings.ToUpper(string(h.Type))}
	if h.TotalPages > 0 {
		parts = append(parts, fmt.Sprintf("%d pages", h.TotalPages))
	}
	if h.Author != "" {
		parts = append(parts, h.Author)
	}
	return fmt.Sprintf("%s (%s)", stem, strings.Join(parts, ", "))
}

// printIndexSummary writes the per-outcome counts of one run.
func printIndexSummary(w io.Writer, root string, res *indexer.Result, st styles) {
	fmt.Fprintf(w, "%s %s\n", st.Header.Render("Indexed"), root)
	fmt.Fprintf(w, "  %-16s %d\n", "Files:", res.Total)
	fmt.Fprintf(w, "  %-16s %s\n", "Indexed:", st.Success.Render(fmt.Sprint(res.Indexed)))
	fmt.Fprintf(w, "  %-16s %d\n", "Already indexed:", res.AlreadyIndexed)
	fmt.Fprintf(w, "  %-16s %d\n", "Unsupported:", res.Unsupported)
	failed := fmt.Sprint(res.Failed)
	if res.Failed > 0 {
		failed = st.Error.Render(failed)
	}
	fmt.Fprintf(w, "  %-16s %s\n", "Failed:", failed)
	if res.Cancelled > 0 {
		fmt.Fprintf(w, "  %-16s %s\n", "Cancelled:", st.Warning.Render(fmt.Sprint(res.Cancelled)))
	}
	fmt.Fprintf(w, "  %-16s %s\n", "Duration:", res.Duration.Round(time.Millisecond))
}

// printStats writes index statistics followed by recent runs, if any.
func printStats(w io.Writer, stats *index.Stats, runs []history.Run, st styles) {
	fmt.Fprintln(w, st.Header.Render("bookwurm index stats:"))
	fmt.Fprintf(w, " * Number of Documents: %d\n", stats.NumberOfDocuments)
	if stats.IsIndexing {
		fmt.Fprintln(w, " * "+st.Warning.Render("Indexing in progress"))
	}

	if len(runs) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.Header.Render("Recent runs:"))
	for _, r := range runs {
		state := st.Warning.Render("unfinished")
		if r.Finished() {
			state = fmt.Sprintf("%d files, %d indexed, %d already indexed, %d unsupported, %d failed",
				r.Total, r.Indexed, r.AlreadyIndexed, r.Unsupported, r.Failed)
			if r.Cancelled > 0 {
				state += fmt.Sprintf(", %d cancelled", r.Cancelled)
			}
		}
		fmt.Fprintf(w, " * %s %s: %s\n",
			st.Label.Render(r.StartedAt.Local().Format(time.DateTime)), r.Root, state)
	}
}
