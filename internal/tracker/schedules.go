package tracker

import (
	"context"
	"errors"
	"fmt"

	"medication-tracker-server/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScheduleInput describes a weekly dose slot.
type ScheduleInput struct {
	MedicationID  string
	ScheduledTime string
	Days          []string
}

func (in ScheduleInput) validate() error {
	if _, _, err := models.ParseTimeOfDay(in.ScheduledTime); err != nil {
		return ErrInvalidTimeOfDay
	}
	if len(in.Days) == 0 {
		return ErrInvalidDays
	}
	for _, d := range in.Days {
		if !models.IsWeekday(d) {
			return ErrInvalidDays
		}
	}
	return nil
}

// Schedules lists the user's active schedule entries.
func (s *Service) Schedules(ctx context.Context, userID string) ([]models.ScheduleEntry, error) {
	entries := []models.ScheduleEntry{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("scheduled_time asc").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("while loading schedules: %w", err)
	}
	return entries, nil
}

// CreateSchedule adds a weekly slot for one of the user's medications.
func (s *Service) CreateSchedule(ctx context.Context, userID string, in ScheduleInput) (*models.ScheduleEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	entry := &models.ScheduleEntry{
		UserID:        userID,
		MedicationID:  in.MedicationID,
		ScheduledTime: in.ScheduledTime,
		Days:          datatypes.JSONSlice[string](in.Days),
		IsActive:      true,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedMedication(tx, userID, in.MedicationID); err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("while inserting schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateSchedule replaces the time, days and medication of a schedule entry.
func (s *Service) UpdateSchedule(ctx context.Context, userID, scheduleID string, in ScheduleInput) (*models.ScheduleEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var entry *models.ScheduleEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = ownedSchedule(tx, userID, scheduleID)
		if err != nil {
			return err
		}
		if _, err := ownedMedication(tx, userID, in.MedicationID); err != nil {
			return err
		}

		entry.MedicationID = in.MedicationID
		entry.ScheduledTime = in.ScheduledTime
		entry.Days = datatypes.JSONSlice[string](in.Days)
		if err := tx.Save(entry).Error; err != nil {
			return fmt.Errorf("while updating schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DeactivateSchedule stops a schedule entry from producing doses.
func (s *Service) DeactivateSchedule(ctx context.Context, userID, scheduleID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := ownedSchedule(tx, userID, scheduleID)
		if err != nil {
			return err
		}
		if err := tx.Model(entry).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("while deactivating schedule: %w", err)
		}
		return nil
	})
}

func ownedSchedule(tx *gorm.DB, userID, scheduleID string) (*models.ScheduleEntry, error) {
	var entry models.ScheduleEntry
	err := tx.Where("id = ? AND user_id = ?", scheduleID, userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("while loading schedule %s: %w", scheduleID, err)
	}
	return &entry, nil
}
