// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the search pipeline over REST for the web frontend.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/hedwig/internal/search"
	"github.com/pdiddy/hedwig/pkg/types"
)

// Handler serves the search API. It holds no per-request state; every
// request runs the pipeline independently.
type Handler struct {
	sources map[string]search.Source
	cfg     types.SearchConfig
	logger  *zap.Logger
}

// NewHandler wires the adapter set into the HTTP surface.
func NewHandler(sources map[string]search.Source, cfg types.SearchConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{sources: sources, cfg: cfg, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// Health reports static liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Message: "hedwig paper search service is running",
	})
}

// SearchPapers handles POST /api/search/papers with a JSON request body.
func (h *Handler) SearchPapers(w http.ResponseWriter, r *http.Request) {
	var req types.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.runSearch(w, r, req)
}

// SearchPapersGet handles GET /api/search/papers with query parameters.
// sources is comma-separated.
func (h *Handler) SearchPapersGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := types.SearchRequest{
		Query:    q.Get("query"),
		SortBy:   types.SortMode(q.Get("sort_by")),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}

	if raw := q.Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_results must be an integer")
			return
		}
		req.MaxResults = n
	}

	if raw := q.Get("sources"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.Sources = append(req.Sources, s)
			}
		}
	}

	h.runSearch(w, r, req)
}

func (h *Handler) runSearch(w http.ResponseWriter, r *http.Request, req types.SearchRequest) {
	resp, err := search.Search(r.Context(), req, h.sources, h.cfg, h.logger)
	if errors.Is(err, search.ErrInvalidRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
