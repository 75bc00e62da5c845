package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
)

// InteractionHandler serves the interaction log
type InteractionHandler struct {
	storage interfaces.InteractionStorage
	logger  arbor.ILogger
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(storage interfaces.InteractionStorage, logger arbor.ILogger) *InteractionHandler {
	return &InteractionHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListHandler handles GET /api/interactions, newest first.
// Query parameters: session_id, business_role, limit (default 50, max 500), offset.
func (h *InteractionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query()
	limit := 50
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}
	offset := 0
	if o, err := strconv.Atoi(query.Get("offset")); err == nil && o > 0 {
		offset = o
	}

	var (
		interactions []*models.Interaction
		err          error
	)
	if sessionID := query.Get("session_id"); sessionID != "" {
		interactions, err = h.storage.ListBySession(sessionID, limit)
	} else {
		interactions, err = h.storage.ListInteractions(&interfaces.ListOptions{
			BusinessRole: query.Get("business_role"),
			Limit:        limit,
			Offset:       offset,
		})
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list interactions")
		WriteError(w, http.StatusInternalServerError, "Failed to list interactions")
		return
	}

	total, err := h.storage.CountInteractions()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count interactions")
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"interactions": interactions,
		"count":        len(interactions),
		"total":        total,
	})
}
