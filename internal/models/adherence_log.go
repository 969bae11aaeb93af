package models

// DoseStatus is the outcome recorded for a dose slot.
type DoseStatus string

const (
	DoseTaken   DoseStatus = "taken"
	DoseSkipped DoseStatus = "skipped"
	DoseSnoozed DoseStatus = "snoozed"
	// DosePending is shown for slots without a log. It is never stored.
	DosePending DoseStatus = "pending"
)

// Loggable reports whether the status may be written by the dose logger.
func (s DoseStatus) Loggable() bool {
	switch s {
	case DoseTaken, DoseSkipped, DoseSnoozed:
		return true
	}
	return false
}

// AdherenceLog records what happened to one dose slot. Timestamps are Unix
// milliseconds so the slot key matches exactly regardless of column precision.
//
// The unique index makes (user, medication, scheduled time) a single row.
type AdherenceLog struct {
	BaseModel
	UserID            string     `gorm:"size:36;not null;uniqueIndex:idx_adherence_slot,priority:1;index:idx_adherence_user_date,priority:1" json:"userId"`
	MedicationID      string     `gorm:"size:36;not null;index;uniqueIndex:idx_adherence_slot,priority:2" json:"medicationId"`
	ScheduledDateTime int64      `gorm:"not null;uniqueIndex:idx_adherence_slot,priority:3;index:idx_adherence_user_date,priority:2" json:"scheduledDateTime"`
	ActualDateTime    *int64     `json:"actualDateTime,omitempty"`
	Status            DoseStatus `gorm:"size:20;not null" json:"status"`
	Notes             string     `gorm:"type:text" json:"notes,omitempty"`
}
