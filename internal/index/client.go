package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"

	"github.com/lethalbit/bookwurm/internal/document"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultIndexUID     = "bookwurm"
	DefaultWaitTimeout  = 100 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
	primaryKey          = "id"
)

// Config holds connection settings for the index service.
type Config struct {
	URL          string // Full base URL, e.g. http://127.0.0.1:7700.
	APIKey       string
	IndexUID     string
	WaitTimeout  time.Duration // Upper bound on waiting for a write to commit.
	PollInterval time.Duration // Task status poll interval.
	HTTPTimeout  time.Duration
}

// Client wraps a Meilisearch client bound to one index.
type Client struct {
	ms           *meilisearch.Client
	uid          string
	waitTimeout  time.Duration
	pollInterval time.Duration
}

// New creates a Client. It performs no network calls.
func New(cfg Config) *Client {
	if cfg.IndexUID == "" {
		cfg.IndexUID = DefaultIndexUID
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = DefaultWaitTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	return &Client{
		ms: meilisearch.NewClient(meilisearch.ClientConfig{
			Host:    cfg.URL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.HTTPTimeout,
		}),
		uid:          cfg.IndexUID,
		waitTimeout:  cfg.WaitTimeout,
		pollInterval: cfg.PollInterval,
	}
}

// IndexUID returns the name of the index this client targets.
func (c *Client) IndexUID() string {
	return c.uid
}

// EnsureIndex fetches the index, creating it with "id" as primary key when
// it does not exist yet. Safe to call repeatedly.
func (c *Client) EnsureIndex(ctx context.Context) error {
	_, err := c.ms.GetIndex(c.uid)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("fetching index %s: %w", c.uid, err)
	}

	info, err := c.ms.CreateIndex(&meilisearch.IndexConfig{
		Uid:        c.uid,
		PrimaryKey: primaryKey,
	})
	if err != nil {
		return fmt.Errorf("creating index %s: %w", c.uid, err)
	}

	task, err := c.wait(ctx, info.TaskUID)
	if err != nil {
		return fmt.Errorf("creating index %s: %w", c.uid, err)
	}
	// A concurrent creator may win the race; that is not a failure.
	if task.Status == meilisearch.TaskStatusFailed && task.Error.Code != "index_already_exists" {
		return fmt.Errorf("creating index %s: %s", c.uid, task.Error.Message)
	}
	return nil
}

// Existing reports whether a document with the given ID is in the index.
// LookupNotFound is returned only when the service positively reports the
// document as missing; every other failure is LookupError.
func (c *Client) Existing(ctx context.Context, id document.ID) (Lookup, error) {
	if err := ctx.Err(); err != nil {
		return LookupError, err
	}

	var doc map[string]any
	err := c.ms.Index(c.uid).GetDocument(string(id), &meilisearch.DocumentQuery{
		Fields: []string{primaryKey},
	}, &doc)
	switch {
	case err == nil:
		return LookupFound, nil
	case isNotFound(err):
		return LookupNotFound, nil
	default:
		return LookupError, err
	}
}

// Upsert adds or fully replaces the given records and waits until the write
// is committed or the wait timeout expires.
func (c *Client) Upsert(ctx context.Context, records ...*document.Record) error {
	if len(records) == 0 {
		return nil
	}

	info, err := c.ms.Index(c.uid).AddDocuments(records, primaryKey)
	if err != nil {
		return fmt.Errorf("%w: %v", document.ErrIndexWrite, err)
	}

	task, err := c.wait(ctx, info.TaskUID)
	if err != nil {
		return err
	}
	if task.Status == meilisearch.TaskStatusFailed {
		return fmt.Errorf("%w: %s", document.ErrIndexWrite, task.Error.Message)
	}
	return nil
}

// wait polls a task until it reaches a terminal state.
func (c *Client) wait(ctx context.Context, taskUID int64) (*meilisearch.Task, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	task, err := c.ms.WaitForTask(taskUID, meilisearch.WaitParams{
		Context:  waitCtx,
		Interval: c.pollInterval,
	})
	if err != nil {
		if ctx.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: task %d after %s", document.ErrIndexWriteTimeout, taskUID, c.waitTimeout)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: polling task %d: %v", document.ErrIndexWrite, taskUID, err)
	}
	return task, nil
}

// Search runs a query and returns hits annotated with match positions.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := c.ms.Index(c.uid).Search(query, &meilisearch.SearchRequest{
		Limit:                int64(opts.Limit),
		Offset:               int64(opts.Offset),
		AttributesToRetrieve: hitAttributes,
		ShowMatchesPosition:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", c.uid, err)
	}

	hits, err := decodeHits(resp.Hits)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Query:              query,
		Hits:               hits,
		EstimatedTotalHits: int(resp.EstimatedTotalHits),
		Limit:              opts.Limit,
		ProcessingTime:     time.Duration(resp.ProcessingTimeMs) * time.Millisecond,
	}, nil
}

// decodeHits converts the loosely typed hits into Hit values.
func decodeHits(raw any) ([]Hit, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding hits: %w", err)
	}
	var hits []Hit
	if err := json.Unmarshal(data, &hits); err != nil {
		return nil, fmt.Errorf("decoding hits: %w", err)
	}
	return hits, nil
}

// Pages fetches the page texts of one document.
func (c *Client) Pages(ctx context.Context, id document.ID) (map[int]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc struct {
		Pages map[string]string `json:"pages"`
	}
	if err := c.ms.Index(c.uid).GetDocument(string(id), &meilisearch.DocumentQuery{
		Fields: []string{"pages"},
	}, &doc); err != nil {
		return nil, fmt.Errorf("fetching pages of %s: %w", id, err)
	}

	pages := make(map[int]string, len(doc.Pages))
	for k, v := range doc.Pages {
		n, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		pages[n] = v
	}
	return pages, nil
}

// Stats returns the document count and indexing state.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, err := c.ms.Index(c.uid).GetStats()
	if err != nil {
		return nil, fmt.Errorf("fetching stats of %s: %w", c.uid, err)
	}

	fields := make(map[string]int, len(s.FieldDistribution))
	for k, v := range s.FieldDistribution {
		fields[k] = int(v)
	}
	return &Stats{
		NumberOfDocuments: int(s.NumberOfDocuments),
		IsIndexing:        s.IsIndexing,
		FieldDistribution: fields,
	}, nil
}

// IsNotFound reports whether err is a "not found" answer from the service.
func IsNotFound(err error) bool {
	return isNotFound(err)
}

func isNotFound(err error) bool {
	var apiErr *meilisearch.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusNotFound {
		return true
	}
	return strings.HasSuffix(apiErr.MeilisearchApiError.Code, "_not_found")
}

// PageIndex parses a match attribute of the form "pages.N".
func PageIndex(attribute string) (int, bool) {
	rest, ok := strings.CutPrefix(attribute, "pages.")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
