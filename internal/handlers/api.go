package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
)

type APIHandler struct {
	index    IndexProvider
	ingester Reindexer
	logger   arbor.ILogger
}

// NewAPIHandler creates the version and health handler. ingester may be nil.
func NewAPIHandler(index IndexProvider, ingester Reindexer, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		index:    index,
		ingester: ingester,
		logger:   logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// HealthHandler reports whether an index is published and how the last rebuild went
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	idx := h.index.Load()
	status := "ok"
	if idx.Len() == 0 {
		status = "no_index"
	}

	response := map[string]interface{}{
		"status": status,
		"index":  idx.Stats(),
	}
	if h.ingester != nil {
		response["ingest"] = h.ingester.Status()
	}

	WriteJSON(w, http.StatusOK, response)
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
