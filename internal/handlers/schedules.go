package handlers

import (
	"medication-tracker-server/internal/tracker"
	"medication-tracker-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler handles dose schedule requests.
type ScheduleHandler struct {
	Tracker *tracker.Service
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(t *tracker.Service) *ScheduleHandler {
	return &ScheduleHandler{Tracker: t}
}

// ScheduleRequest represents the request body for creating or replacing a
// schedule entry.
type ScheduleRequest struct {
	MedicationID  string   `json:"medicationId" binding:"required,uuid"`
	ScheduledTime string   `json:"scheduledTime" binding:"required,timeofday"`
	Days          []string `json:"days" binding:"required,min=1,dive,weekday"`
}

func (r *ScheduleRequest) input() tracker.ScheduleInput {
	return tracker.ScheduleInput{
		MedicationID:  r.MedicationID,
		ScheduledTime: r.ScheduledTime,
		Days:          r.Days,
	}
}

// ListSchedules returns the caller's active schedule entries.
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	entries, err := h.Tracker.Schedules(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "fetch schedules", err)
		return
	}

	utils.Success(c, "Schedules fetched successfully", entries)
}

// CreateSchedule adds a weekly dose slot.
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req ScheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	entry, err := h.Tracker.CreateSchedule(c.Request.Context(), userID, req.input())
	if err != nil {
		respondError(c, "create schedule", err)
		return
	}

	utils.Created(c, "Schedule created successfully", entry)
}

// UpdateSchedule replaces a schedule entry.
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	scheduleID, ok := idParam(c, "id", "Schedule")
	if !ok {
		return
	}

	var req ScheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	entry, err := h.Tracker.UpdateSchedule(c.Request.Context(), userID, scheduleID, req.input())
	if err != nil {
		respondError(c, "update schedule", err)
		return
	}

	utils.Success(c, "Schedule updated successfully", entry)
}

// DeleteSchedule deactivates a schedule entry.
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	scheduleID, ok := idParam(c, "id", "Schedule")
	if !ok {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.Tracker.DeactivateSchedule(c.Request.Context(), userID, scheduleID); err != nil {
		respondError(c, "delete schedule", err)
		return
	}

	utils.Success(c, "Schedule deleted successfully", nil)
}

// GetTodaySchedule returns today's doses with their logged status.
func (h *ScheduleHandler) GetTodaySchedule(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	doses, err := h.Tracker.TodaySchedule(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "fetch today's schedule", err)
		return
	}

	utils.Success(c, "Today's schedule fetched successfully", doses)
}
