package handlers

import (
	"medication-tracker-server/internal/tracker"
	"medication-tracker-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// MedicationHandler handles medication related requests.
type MedicationHandler struct {
	Tracker *tracker.Service
}

// NewMedicationHandler creates a new MedicationHandler.
func NewMedicationHandler(t *tracker.Service) *MedicationHandler {
	return &MedicationHandler{Tracker: t}
}

// ListMedications returns the caller's active medications.
func (h *MedicationHandler) ListMedications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	medications, err := h.Tracker.ActiveMedications(c.Request.Context(), userID)
	if err != nil {
		respondError(c, "fetch medications", err)
		return
	}

	utils.Success(c, "Medications fetched successfully", medications)
}

// AddMedicationRequest represents the request body for adding a medication.
type AddMedicationRequest struct {
	Name            string `json:"name" binding:"required,max=255"`
	Dosage          string `json:"dosage" binding:"required,max=100"`
	Form            string `json:"form" binding:"required,max=50"`
	Frequency       string `json:"frequency" binding:"required,max=100"`
	Instructions    string `json:"instructions"`
	InitialQuantity *int   `json:"initialQuantity" binding:"required,min=0"`
}

// AddMedication stores a new medication and starts the interaction check and
// FDA lookup in the background.
func (h *MedicationHandler) AddMedication(c *gin.Context) {
	var req AddMedicationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	medication, err := h.Tracker.AddMedication(c.Request.Context(), userID, tracker.NewMedication{
		Name:            req.Name,
		Dosage:          req.Dosage,
		Form:            req.Form,
		Frequency:       req.Frequency,
		Instructions:    req.Instructions,
		InitialQuantity: *req.InitialQuantity,
	})
	if err != nil {
		respondError(c, "add medication", err)
		return
	}

	utils.Created(c, "Medication added successfully", gin.H{"id": medication.ID, "medication": medication})
}

// GetMedication returns one of the caller's medications.
func (h *MedicationHandler) GetMedication(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	medicationID, ok := idParam(c, "id", "Medication")
	if !ok {
		return
	}

	medication, err := h.Tracker.Medication(c.Request.Context(), userID, medicationID)
	if err != nil {
		respondError(c, "fetch medication", err)
		return
	}

	utils.Success(c, "Medication fetched successfully", medication)
}

// DeactivateMedication soft-deletes one of the caller's medications.
func (h *MedicationHandler) DeactivateMedication(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	medicationID, ok := idParam(c, "id", "Medication")
	if !ok {
		return
	}

	if err := h.Tracker.DeactivateMedication(c.Request.Context(), userID, medicationID); err != nil {
		respondError(c, "deactivate medication", err)
		return
	}

	utils.Success(c, "Medication deactivated successfully", nil)
}

// AdjustQuantityRequest represents the request body for a stock adjustment.
type AdjustQuantityRequest struct {
	QuantityChange *int `json:"quantityChange" binding:"required"`
}

// AdjustQuantity adds to (or subtracts from) a medication's stock.
func (h *MedicationHandler) AdjustQuantity(c *gin.Context) {
	medicationID, ok := idParam(c, "id", "Medication")
	if !ok {
		return
	}

	var req AdjustQuantityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	quantity, err := h.Tracker.AdjustQuantity(c.Request.Context(), userID, medicationID, *req.QuantityChange)
	if err != nil {
		respondError(c, "update quantity", err)
		return
	}

	utils.Success(c, "Quantity updated successfully", gin.H{"currentQuantity": quantity})
}

// AdherenceStatsQuery holds the optional window of GetAdherenceStats.
type AdherenceStatsQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=366"`
}

// GetAdherenceStats returns adherence figures for one medication.
func (h *MedicationHandler) GetAdherenceStats(c *gin.Context) {
	medicationID, ok := idParam(c, "id", "Medication")
	if !ok {
		return
	}

	var query AdherenceStatsQuery
	if !utils.BindQuery(c, &query) {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.Tracker.MedicationAdherence(c.Request.Context(), userID, medicationID, query.Days)
	if err != nil {
		respondError(c, "fetch adherence stats", err)
		return
	}

	utils.Success(c, "Adherence stats fetched successfully", stats)
}
