package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback while files are collected and indexed.
// Advance may be called from many goroutines.
type Reporter interface {
	SetTotal(total int)
	Advance(message string)
	Describe(message string)
	Finish()
}

// NewReporter returns a TerminalReporter when stderr is an interactive
// terminal, or a LineReporter in CI and when output is redirected.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" || !isTerminal(os.Stderr) {
		return NewLineReporter(os.Stderr)
	}
	return &TerminalReporter{}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TerminalReporter displays a progress bar in the terminal. Before SetTotal
// is called it shows an indeterminate spinner.
type TerminalReporter struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) ensure() *progressbar.ProgressBar {
	if r.bar == nil {
		r.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Collecting files"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	}
	return r.bar
}

func (r *TerminalReporter) SetTotal(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
	}
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Advance(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bar := r.ensure()
	if message != "" {
		bar.Describe(message)
	}
	_ = bar.Add(1)
}

func (r *TerminalReporter) Describe(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure().Describe(message)
}

func (r *TerminalReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// LineReporter prints line-by-line progress suitable for CI logs.
type LineReporter struct {
	mu      sync.Mutex
	w       io.Writer
	total   atomic.Int64
	current atomic.Int64
}

// NewLineReporter writes progress lines to w.
func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

func (r *LineReporter) SetTotal(total int) {
	r.total.Store(int64(total))
	r.current.Store(0)
	r.printf("Indexing %d files\n", total)
}

func (r *LineReporter) Advance(message string) {
	n := r.current.Add(1)
	r.printf("[%d/%d] %s\n", n, r.total.Load(), message)
}

func (r *LineReporter) Describe(message string) {
	r.printf("%s\n", message)
}

func (r *LineReporter) Finish() {
	r.printf("Indexing complete (%d/%d)\n", r.current.Load(), r.total.Load())
}

// Count returns the number of Advance calls since the last SetTotal.
func (r *LineReporter) Count() int {
	return int(r.current.Load())
}

func (r *LineReporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}

// Nop discards all progress.
type Nop struct{}

func (Nop) SetTotal(int)    {}
func (Nop) Advance(string)  {}
func (Nop) Describe(string) {}
func (Nop) Finish()         {}
