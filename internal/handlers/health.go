package handlers

import (
	"time"

	"medication-tracker-server/internal/models"
	"medication-tracker-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HealthLogHandler handles symptom and vital sign records.
type HealthLogHandler struct {
	DB *gorm.DB
}

// NewHealthLogHandler creates a new HealthLogHandler.
func NewHealthLogHandler(db *gorm.DB) *HealthLogHandler {
	return &HealthLogHandler{DB: db}
}

// CreateSymptomRequest represents the request body for logging a symptom.
type CreateSymptomRequest struct {
	Date          *time.Time `json:"date"`
	Symptom       string     `json:"symptom" binding:"required,max=255"`
	Severity      int        `json:"severity" binding:"required,min=1,max=10"`
	Notes         string     `json:"notes"`
	MedicationIDs []string   `json:"medicationIds" binding:"omitempty,dive,uuid"`
}

// CreateSymptom logs a symptom for the caller.
func (h *HealthLogHandler) CreateSymptom(c *gin.Context) {
	var req CreateSymptomRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if len(req.MedicationIDs) > 0 {
		var owned int64
		err := h.DB.Model(&models.Medication{}).
			Where("user_id = ? AND id IN ?", userID, req.MedicationIDs).
			Count(&owned).Error
		if err != nil {
			utils.InternalServerError(c, "Database error verifying medications: "+err.Error())
			return
		}
		if int(owned) != len(uniqueStrings(req.MedicationIDs)) {
			utils.NotFound(c, "One or more medications not found")
			return
		}
	}

	symptom := models.Symptom{
		UserID:        userID,
		Date:          time.Now(),
		Symptom:       req.Symptom,
		Severity:      req.Severity,
		Notes:         req.Notes,
		MedicationIDs: datatypes.JSONSlice[string](req.MedicationIDs),
	}
	if req.Date != nil {
		symptom.Date = *req.Date
	}

	if err := h.DB.Create(&symptom).Error; err != nil {
		utils.InternalServerError(c, "Failed to log symptom: "+err.Error())
		return
	}

	utils.Created(c, "Symptom logged successfully", symptom)
}

// ListSymptomsQuery bounds the symptom list. Both ends are optional RFC 3339
// timestamps.
type ListSymptomsQuery struct {
	From time.Time `form:"from"`
	To   time.Time `form:"to"`
}

// ListSymptoms returns the caller's symptoms, newest first.
func (h *HealthLogHandler) ListSymptoms(c *gin.Context) {
	var query ListSymptomsQuery
	if !utils.BindQuery(c, &query) {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	q := h.DB.Where("user_id = ?", userID)
	if !query.From.IsZero() {
		q = q.Where("date >= ?", query.From)
	}
	if !query.To.IsZero() {
		q = q.Where("date <= ?", query.To)
	}

	symptoms := []models.Symptom{}
	if err := q.Order("date desc").Find(&symptoms).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch symptoms: "+err.Error())
		return
	}

	utils.Success(c, "Symptoms fetched successfully", symptoms)
}

// CreateVitalRequest represents the request body for recording a vital sign.
type CreateVitalRequest struct {
	Date   *time.Time       `json:"date"`
	Type   models.VitalType `json:"type" binding:"required,oneof=blood_pressure heart_rate weight temperature blood_sugar"`
	Value  string           `json:"value" binding:"required,max=50"`
	Unit   string           `json:"unit" binding:"required,max=20"`
	Source string           `json:"source" binding:"omitempty,oneof=manual healthkit google_fit"`
}

// CreateVital records a vital sign for the caller.
func (h *HealthLogHandler) CreateVital(c *gin.Context) {
	var req CreateVitalRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	vital := models.Vital{
		UserID: userID,
		Date:   time.Now(),
		Type:   req.Type,
		Value:  req.Value,
		Unit:   req.Unit,
		Source: req.Source,
	}
	if req.Date != nil {
		vital.Date = *req.Date
	}
	if vital.Source == "" {
		vital.Source = "manual"
	}

	if err := h.DB.Create(&vital).Error; err != nil {
		utils.InternalServerError(c, "Failed to record vital: "+err.Error())
		return
	}

	utils.Created(c, "Vital recorded successfully", vital)
}

// ListVitalsQuery optionally narrows the vitals list to one type.
type ListVitalsQuery struct {
	Type models.VitalType `form:"type" binding:"omitempty,oneof=blood_pressure heart_rate weight temperature blood_sugar"`
}

// ListVitals returns the caller's vitals, newest first.
func (h *HealthLogHandler) ListVitals(c *gin.Context) {
	var query ListVitalsQuery
	if !utils.BindQuery(c, &query) {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	q := h.DB.Where("user_id = ?", userID)
	if query.Type != "" {
		q = q.Where("type = ?", query.Type)
	}

	vitals := []models.Vital{}
	if err := q.Order("date desc").Find(&vitals).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch vitals: "+err.Error())
		return
	}

	utils.Success(c, "Vitals fetched successfully", vitals)
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
