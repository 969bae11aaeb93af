// Package tracker holds the medication tracking logic: dose schedules,
// adherence aggregation, interaction listing and dose logging over the
// record store.
package tracker

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrMedicationNotFound     = errors.New("medication not found")
	ErrScheduleNotFound       = errors.New("schedule not found")
	ErrMedicationLimitReached = errors.New("free plan limited to 3 medications, upgrade to premium for unlimited access")
	ErrInvalidDoseStatus      = errors.New("status must be one of taken, skipped, snoozed")
	ErrInvalidDays            = errors.New("days must be lowercase English weekday names")
	ErrInvalidTimeOfDay       = errors.New("scheduled time must be HH:MM")
	ErrInvalidWindow          = errors.New("window must cover at least one day")
	ErrInvalidPlan            = errors.New("plan must be free or premium")
)

// MedicationObserver is told about newly added medications so follow-up work
// can run outside the request.
type MedicationObserver interface {
	MedicationAdded(medicationID string)
}

// Service runs tracker operations against the record store.
type Service struct {
	db       *gorm.DB
	observer MedicationObserver
	now      func() time.Time
}

// NewService creates a Service. observer may be nil.
func NewService(db *gorm.DB, observer MedicationObserver) *Service {
	return &Service{db: db, observer: observer, now: time.Now}
}

// WithClock replaces the wall clock used for "today" and log timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
