package models

import (
	"time"
)

// FDAData is the label summary patched onto a medication by the FDA fetch job.
type FDAData struct {
	Indications []string `json:"indications"`
	SideEffects []string `json:"sideEffects"`
	Summary     string   `json:"summary"`
}

// Medication is one drug a user tracks. CurrentQuantity never goes below zero.
type Medication struct {
	BaseModel
	UserID          string    `gorm:"size:36;not null;index:idx_medications_user_active,priority:1" json:"userId"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Dosage          string    `gorm:"size:100" json:"dosage"`
	Form            string    `gorm:"size:50" json:"form"`      // tablet, capsule, liquid, ...
	Frequency       string    `gorm:"size:100" json:"frequency"` // daily, twice daily, ...
	Instructions    string    `gorm:"type:text" json:"instructions,omitempty"`
	PrescribedDate  time.Time `json:"prescribedDate"`
	InitialQuantity int       `gorm:"not null" json:"initialQuantity"`
	CurrentQuantity int       `gorm:"not null" json:"currentQuantity"`
	RefillReminder  bool      `gorm:"not null" json:"refillReminder"`
	IsActive        bool      `gorm:"not null;index:idx_medications_user_active,priority:2" json:"isActive"`
	FDAData         *FDAData  `gorm:"serializer:json;type:text" json:"fdaData,omitempty"`
}
