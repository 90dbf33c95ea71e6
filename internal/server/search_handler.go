// Package server provides the HTTP entry point for phrase searches.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/phrasebook/internal/entry"
	"github.com/at-ishikawa/phrasebook/internal/search"
)

// SearchRequest is the inbound request body.
type SearchRequest struct {
	Phrase string `json:"phrase"`
}

// SearchHandler answers phrase search requests with a search.Result envelope.
type SearchHandler struct {
	service *search.Service
	logger  *slog.Logger
}

// NewSearchHandler creates a new SearchHandler. A nil logger falls back to
// slog.Default.
func NewSearchHandler(service *search.Service, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{service: service, logger: logger}
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeJSON(w, http.StatusMethodNotAllowed, search.Result{
			Contents:  []entry.Entry{},
			Error:     "method not allowed",
			ErrorCode: search.CodeInvalidArgument,
		})
		return
	}

	var request SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeJSON(w, http.StatusBadRequest, search.Result{
			Contents:  []entry.Entry{},
			Error:     "invalid request body",
			ErrorCode: search.CodeInvalidArgument,
		})
		return
	}

	result := h.service.Search(r.Context(), request.Phrase)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *SearchHandler) writeJSON(w http.ResponseWriter, status int, result search.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("encode response failed", "error", err)
	}
}

// NewMux routes the search endpoint and a database health check.
func NewMux(handler *SearchHandler, db *sqlx.DB) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/search", handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
