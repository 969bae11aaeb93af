package handlers

import (
	"medication-tracker-server/internal/models"
	"medication-tracker-server/internal/tracker"
	"medication-tracker-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandler handles plan requests.
type SubscriptionHandler struct {
	Tracker *tracker.Service
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(t *tracker.Service) *SubscriptionHandler {
	return &SubscriptionHandler{Tracker: t}
}

// GetSubscription returns the caller's current plan.
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	subscription, err := h.Tracker.Subscription(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "fetch subscription", err)
		return
	}

	utils.Success(c, "Subscription fetched successfully", subscription)
}

// ChangePlanRequest represents the request body for switching plans.
type ChangePlanRequest struct {
	Plan models.Plan `json:"plan" binding:"required,oneof=free premium"`
}

// ChangePlan moves the caller to another plan.
func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	var req ChangePlanRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	subscription, err := h.Tracker.ChangePlan(c.Request.Context(), userID, req.Plan)
	if err != nil {
		respondError(c, "change plan", err)
		return
	}

	utils.Success(c, "Subscription updated successfully", subscription)
}
