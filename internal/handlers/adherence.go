package handlers

import (
	"medication-tracker-server/internal/models"
	"medication-tracker-server/internal/tracker"
	"medication-tracker-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AdherenceHandler handles dose logging and adherence summaries.
type AdherenceHandler struct {
	Tracker *tracker.Service
}

// NewAdherenceHandler creates a new AdherenceHandler.
func NewAdherenceHandler(t *tracker.Service) *AdherenceHandler {
	return &AdherenceHandler{Tracker: t}
}

// LogDoseRequest represents the request body for logging a dose. The
// scheduledDateTime must be echoed exactly as the schedule returned it.
type LogDoseRequest struct {
	MedicationID      string            `json:"medicationId" binding:"required,uuid"`
	ScheduledDateTime int64             `json:"scheduledDateTime" binding:"required"`
	Status            models.DoseStatus `json:"status" binding:"required,oneof=taken skipped snoozed"`
	Notes             string            `json:"notes"`
}

// LogDose records the outcome of a scheduled dose.
func (h *AdherenceHandler) LogDose(c *gin.Context) {
	var req LogDoseRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	err := h.Tracker.LogDose(c.Request.Context(), userID, tracker.DoseLog{
		MedicationID:      req.MedicationID,
		ScheduledDateTime: req.ScheduledDateTime,
		Status:            req.Status,
		Notes:             req.Notes,
	})
	if err != nil {
		respondError(c, "log dose", err)
		return
	}

	utils.Success(c, "Dose logged successfully", gin.H{"success": true})
}

// GetWeeklyAdherence returns the caller's adherence over the trailing week.
func (h *AdherenceHandler) GetWeeklyAdherence(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.Tracker.WeeklyAdherence(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "fetch weekly adherence", err)
		return
	}

	utils.Success(c, "Weekly adherence fetched successfully", summary)
}
