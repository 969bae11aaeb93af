package handlers

import (
	"medication-tracker-server/internal/tracker"
	"medication-tracker-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// InteractionHandler serves detected drug interactions.
type InteractionHandler struct {
	Tracker *tracker.Service
}

// NewInteractionHandler creates a new InteractionHandler.
func NewInteractionHandler(t *tracker.Service) *InteractionHandler {
	return &InteractionHandler{Tracker: t}
}

// ListInteractions returns the caller's interactions, most severe first.
func (h *InteractionHandler) ListInteractions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	interactions, err := h.Tracker.Interactions(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "fetch interactions", err)
		return
	}

	utils.Success(c, "Interactions fetched successfully", interactions)
}

// GetCriticalAlerts returns banner alerts for critical interactions.
func (h *InteractionHandler) GetCriticalAlerts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	alerts, err := h.Tracker.CriticalAlerts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "fetch critical alerts", err)
		return
	}

	utils.Success(c, "Critical alerts fetched successfully", alerts)
}
