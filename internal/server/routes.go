package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lethalbit/bookwurm/internal/document"
	"github.com/lethalbit/bookwurm/internal/search"
)

type hitResponse struct {
	ID         document.ID          `json:"id"`
	Title      string               `json:"title"`
	Author     string               `json:"author"`
	Keywords   []string             `json:"keywords"`
	Type       document.FileType    `json:"type"`
	File       string               `json:"file"`
	TotalPages int                  `json:"total_pages"`
	Snippets   []search.PageSnippet `json:"snippets,omitempty"`
}

type searchResponse struct {
	Query              string        `json:"query"`
	Summary            string        `json:"summary"`
	EstimatedTotalHits int           `json:"estimated_total_hits"`
	Limit              int           `json:"limit"`
	ProcessingTimeMs   int64         `json:"processing_time_ms"`
	Hits               []hitResponse `json:"hits"`
}

type statsResponse struct {
	NumberOfDocuments int            `json:"number_of_documents"`
	IsIndexing        bool           `json:"is_indexing"`
	FieldDistribution map[string]int `json:"field_distribution"`
}

type runResponse struct {
	ID             string     `json:"id"`
	Root           string     `json:"root"`
	Workers        int        `json:"workers"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Total          int        `json:"total"`
	Indexed        int        `json:"indexed"`
	AlreadyIndexed int        `json:"already_indexed"`
	Unsupported    int        `json:"unsupported"`
	Failed         int        `json:"failed"`
	Cancelled      int        `json:"cancelled"`
}

// registerRoutes mounts the API endpoints on r.
func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/api/search", s.searchHandler())
	r.Get("/api/stats", s.statsHandler())
	r.Get("/api/runs", s.runsHandler())
}

func (s *Server) searchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		text := q.Get("q")
		if text == "" {
			writeError(w, http.StatusBadRequest, "q is required")
			return
		}

		limit, err := intParam(q.Get("limit"), s.cfg.DefaultLimit)
		if err != nil || limit <= 0 || limit > s.cfg.MaxLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(s.cfg.MaxLimit))
			return
		}
		detailed, err := boolParam(q.Get("detailed"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "detailed must be a boolean")
			return
		}

		res, err := s.searcher.Search(r.Context(), search.Query{Text: text, Limit: limit, Detailed: detailed})
		if err != nil {
			s.logger.Error("search failed", "query", text, "error", err)
			writeError(w, http.StatusBadGateway, "search failed: "+err.Error())
			return
		}

		resp := searchResponse{
			Query:              res.Query,
			Summary:            res.Summary(),
			EstimatedTotalHits: res.EstimatedTotalHits,
			Limit:              res.Limit,
			ProcessingTimeMs:   res.ProcessingTime.Milliseconds(),
			Hits:               make([]hitResponse, 0, len(res.Hits)),
		}
		for _, h := range res.Hits {
			resp.Hits = append(resp.Hits, hitResponse{
				ID:         h.ID,
				Title:      h.Title,
				Author:     h.Author,
				Keywords:   h.Keywords,
				Type:       h.Type,
				File:       h.File,
				TotalPages: h.TotalPages,
				Snippets:   h.Snippets,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.stats.Stats(r.Context())
		if err != nil {
			s.logger.Error("stats failed", "error", err)
			writeError(w, http.StatusBadGateway, "stats failed: "+err.Error())
			return
		}
		fields := stats.FieldDistribution
		if fields == nil {
			fields = map[string]int{}
		}
		writeJSON(w, http.StatusOK, statsResponse{
			NumberOfDocuments: stats.NumberOfDocuments,
			IsIndexing:        stats.IsIndexing,
			FieldDistribution: fields,
		})
	}
}

func (s *Server) runsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.runs == nil {
			writeJSON(w, http.StatusOK, []runResponse{})
			return
		}
		limit, err := intParam(r.URL.Query().Get("limit"), 10)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		runs, err := s.runs.Recent(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]runResponse, 0, len(runs))
		for _, run := range runs {
			rr := runResponse{
				ID:             run.ID.String(),
				Root:           run.Root,
				Workers:        run.Workers,
				StartedAt:      run.StartedAt,
				Total:          run.Total,
				Indexed:        run.Indexed,
				AlreadyIndexed: run.AlreadyIndexed,
				Unsupported:    run.Unsupported,
				Failed:         run.Failed,
				Cancelled:      run.Cancelled,
			}
			if run.Finished() {
				finished := run.FinishedAt
				rr.FinishedAt = &finished
			}
			out = append(out, rr)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func boolParam(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
