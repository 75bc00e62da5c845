package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
)

// DocumentHandler serves the processed document store and index rebuilds
type DocumentHandler struct {
	storage  interfaces.DocumentStorage
	ingester Reindexer
	logger   arbor.ILogger
}

// NewDocumentHandler creates a new document handler. ingester may be nil, which disables reindex.
func NewDocumentHandler(storage interfaces.DocumentStorage, ingester Reindexer, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		storage:  storage,
		ingester: ingester,
		logger:   logger,
	}
}

// ListHandler handles GET /api/documents
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	page, pageSize := GetPaginationParams(r)
	role := strings.TrimSpace(r.URL.Query().Get("business_role"))

	// Role filtering happens after the fetch, so count from an unpaged listing
	all, err := h.storage.ListDocuments(&interfaces.ListOptions{BusinessRole: role})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list documents")
		WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	start := page * pageSize
	end := min(start+pageSize, len(all))
	summaries := make([]models.DocumentSummary, 0, pageSize)
	if start < len(all) {
		for _, doc := range all[start:end] {
			summaries = append(summaries, doc.Summary())
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents":  summaries,
		"pagination": NewPagination(page, pageSize, len(all)),
	})
}

// DocumentRoutes handles GET /api/documents/{id} and POST /api/documents/reindex.
// A GET always reads a document, so an ID of "reindex" stays reachable.
func (h *DocumentHandler) DocumentRoutes(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/documents/")
	if id == "reindex" && r.Method != http.MethodGet {
		h.ReindexHandler(w, r)
		return
	}
	h.GetHandler(w, r, id)
}

// GetHandler returns one stored document with its content
func (h *DocumentHandler) GetHandler(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	doc, err := h.storage.GetDocument(id)
	if err != nil {
		h.logger.Debug().Err(err).Str("document_id", id).Msg("Document lookup failed")
		WriteError(w, http.StatusNotFound, "Document not found")
		return
	}

	WriteJSON(w, http.StatusOK, doc)
}

// ReindexHandler rebuilds the index synchronously and returns its stats
func (h *DocumentHandler) ReindexHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if h.ingester == nil {
		WriteError(w, http.StatusServiceUnavailable, "Re-ingestion is not available")
		return
	}

	stats, err := h.ingester.Reingest(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Reindex request failed")
		WriteError(w, http.StatusInternalServerError, "Reindex failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"stats":  stats,
	})
}
