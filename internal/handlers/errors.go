package handlers

import (
	"errors"

	"medication-tracker-server/internal/middleware"
	"medication-tracker-server/internal/tracker"
	"medication-tracker-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps tracker errors onto API responses.
func respondError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, tracker.ErrMedicationNotFound),
		errors.Is(err, tracker.ErrScheduleNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, tracker.ErrMedicationLimitReached):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, tracker.ErrInvalidDoseStatus),
		errors.Is(err, tracker.ErrInvalidDays),
		errors.Is(err, tracker.ErrInvalidTimeOfDay),
		errors.Is(err, tracker.ErrInvalidWindow),
		errors.Is(err, tracker.ErrInvalidPlan):
		utils.BadRequest(c, err.Error())
	default:
		utils.InternalServerError(c, "Failed to "+action+": "+err.Error())
	}
}

// currentUser returns the caller's ID, answering 401 when there is none.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "Not authenticated")
	}
	return userID, ok
}

// idParam reads a UUID path parameter, answering 400 when it is malformed.
func idParam(c *gin.Context, name, label string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		utils.BadRequest(c, "Invalid "+label+" ID format")
		return "", false
	}
	return id, true
}
