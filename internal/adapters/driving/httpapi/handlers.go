package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ferndale-labs/marque/internal/core/domain"
	"github.com/ferndale-labs/marque/internal/core/ports/driving"
	"github.com/ferndale-labs/marque/internal/extract"
	"github.com/ferndale-labs/marque/internal/logger"
)

// storeRequest is the POST /api/store payload.
type storeRequest struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`

	// ContentType marks the content encoding. "text/html" triggers
	// server-side text extraction for agents that post raw markup;
	// anything else is stored as-is.
	ContentType string `json:"content_type,omitempty"`
}

// storeResponse acknowledges a successful store.
type storeResponse struct {
	RecordID int64 `json:"record_id"`
}

// recordResponse is a record's metadata, without its content.
type recordResponse struct {
	RecordID  int64     `json:"record_id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// errorResponse carries a failure to the caller.
type errorResponse struct {
	Error string `json:"error"`
}

// handleStore accepts a captured page from the agent. The extension
// calls this cross-origin, so responses carry permissive CORS headers
// and OPTIONS preflights are answered with an empty 200.
func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reqID := uuid.NewString()
	logger.Debug("[%s] POST /api/store", reqID)

	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	content := req.Content
	title := req.Title
	if strings.HasPrefix(req.ContentType, "text/html") {
		if title == "" {
			title = extract.Title(content)
		}
		content = extract.Text(content)
	}

	id, err := s.ingestor.Store(r.Context(), driving.Capture{
		URL:     req.URL,
		Title:   title,
		Content: content,
	})
	if err != nil {
		logger.Warn("[%s] store failed: %v", reqID, err)
		writeFailure(w, err)
		return
	}

	logger.Info("[%s] stored record %d (%s)", reqID, id, req.URL)
	writeJSON(w, http.StatusOK, storeResponse{RecordID: id})
}

// handleSearch answers GET /api/search?query=... with a JSON array of
// results ordered by ascending distance. A missing query parameter is
// a malformed request; an empty store is an empty array.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter")
		return
	}

	reqID := uuid.NewString()
	logger.Debug("[%s] GET /api/search query=%q", reqID, query)

	results, err := s.searcher.Search(r.Context(), query)
	if err != nil {
		logger.Warn("[%s] search failed: %v", reqID, err)
		writeFailure(w, err)
		return
	}

	if results == nil {
		results = []domain.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

// handleRecord answers GET /api/records/{id} with the record's
// metadata. Content is deliberately omitted; snippets come from search.
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	rec, err := s.records.GetRecord(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "storage failure")
		return
	}

	writeJSON(w, http.StatusOK, recordResponse{
		RecordID:  rec.ID,
		URL:       rec.URL,
		Title:     rec.Title,
		CreatedAt: rec.CreatedAt,
	})
}

// handleHealth reports liveness, including embedder reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.embedder.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeFailure maps domain errors to HTTP statuses: bad input is the
// caller's fault, an embedding rejection is an upstream failure, and
// everything else is a server-side storage problem.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEmbeddingFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding failures here leave nothing useful to send the client.
	_ = json.NewEncoder(w).Encode(v)
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
