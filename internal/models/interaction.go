package models

import (
	"time"
)

// Severity of a drug interaction.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeveritySerious  Severity = "serious"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// Rank orders severities for display, most severe first. Unknown values sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeveritySerious:
		return 1
	case SeverityModerate:
		return 2
	case SeverityMinor:
		return 3
	}
	return 4
}

// Interaction is a detected interaction between two of a user's medications.
type Interaction struct {
	BaseModel
	UserID        string    `gorm:"size:36;not null;index" json:"userId"`
	Medication1ID string    `gorm:"size:36;not null;index:idx_interactions_medications,priority:1" json:"medication1Id"`
	Medication2ID string    `gorm:"size:36;not null;index:idx_interactions_medications,priority:2" json:"medication2Id"`
	Severity      Severity  `gorm:"size:20;not null" json:"severity"`
	Description   string    `gorm:"type:text" json:"description"`
	Source        string    `gorm:"size:100" json:"source"`
	DateChecked   time.Time `json:"dateChecked"`
}
