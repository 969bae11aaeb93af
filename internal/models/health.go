package models

import (
	"time"

	"gorm.io/datatypes"
)

// Symptom is a self-reported symptom, optionally tied to medications.
type Symptom struct {
	BaseModel
	UserID        string                      `gorm:"size:36;not null;index:idx_symptoms_user_date,priority:1" json:"userId"`
	Date          time.Time                   `gorm:"index:idx_symptoms_user_date,priority:2" json:"date"`
	Symptom       string                      `gorm:"size:255;not null" json:"symptom"`
	Severity      int                         `gorm:"not null" json:"severity"` // 1-10
	Notes         string                      `gorm:"type:text" json:"notes,omitempty"`
	MedicationIDs datatypes.JSONSlice[string] `json:"medicationIds,omitempty"`
}

// VitalType is the kind of measurement in a Vital.
type VitalType string

const (
	VitalBloodPressure VitalType = "blood_pressure"
	VitalHeartRate     VitalType = "heart_rate"
	VitalWeight        VitalType = "weight"
	VitalTemperature   VitalType = "temperature"
	VitalBloodSugar    VitalType = "blood_sugar"
)

// Vital is one measurement. Value is free text so "120/80" fits.
type Vital struct {
	BaseModel
	UserID string    `gorm:"size:36;not null;index:idx_vitals_user_type,priority:1" json:"userId"`
	Date   time.Time `json:"date"`
	Type   VitalType `gorm:"size:30;not null;index:idx_vitals_user_type,priority:2" json:"type"`
	Value  string    `gorm:"size:50;not null" json:"value"`
	Unit   string    `gorm:"size:20" json:"unit"`
	Source string    `gorm:"size:30" json:"source,omitempty"` // manual, healthkit, google_fit
}
