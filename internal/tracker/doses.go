package tracker

import (
	"context"
	"errors"
	"fmt"

	"medication-tracker-server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DoseLog is the outcome a user reports for one dose slot. ScheduledDateTime
// must be the exact instant the schedule returned for the slot.
type DoseLog struct {
	MedicationID      string
	ScheduledDateTime int64
	Status            models.DoseStatus
	Notes             string
}

// slotColumns is the unique key of an adherence log.
var slotColumns = []clause.Column{{Name: "user_id"}, {Name: "medication_id"}, {Name: "scheduled_date_time"}}

// LogDose records the outcome of a dose slot, replacing any earlier outcome of
// the same slot. Every "taken" call takes one unit off the medication's stock,
// stopping at zero, even when the slot was already taken.
func (s *Service) LogDose(ctx context.Context, userID string, in DoseLog) error {
	if !in.Status.Loggable() {
		return ErrInvalidDoseStatus
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ownedMedication(tx, userID, in.MedicationID); err != nil {
			return err
		}

		actual := s.now().UnixMilli()
		entry := models.AdherenceLog{
			UserID:            userID,
			MedicationID:      in.MedicationID,
			ScheduledDateTime: in.ScheduledDateTime,
			ActualDateTime:    &actual,
			Status:            in.Status,
			Notes:             in.Notes,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   slotColumns,
			DoUpdates: clause.AssignmentColumns([]string{"status", "actual_date_time", "notes", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("while upserting adherence log: %w", err)
		}

		if in.Status != models.DoseTaken {
			return nil
		}

		err = tx.Model(&models.Medication{}).
			Where("id = ? AND current_quantity > 0", in.MedicationID).
			UpdateColumn("current_quantity", gorm.Expr("current_quantity - ?", 1)).Error
		if err != nil {
			return fmt.Errorf("while decrementing medication quantity: %w", err)
		}
		return nil
	})
}

// AdjustQuantity adds change (which may be negative) to an owned medication's
// stock, clamping at zero, and returns the new quantity.
func (s *Service) AdjustQuantity(ctx context.Context, userID, medicationID string, change int) (int, error) {
	var quantity int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		medication, err := ownedMedication(tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID, medicationID)
		if err != nil {
			return err
		}

		quantity = max(0, medication.CurrentQuantity+change)
		if err := tx.Model(medication).UpdateColumn("current_quantity", quantity).Error; err != nil {
			return fmt.Errorf("while updating medication quantity: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return quantity, nil
}

func ownedMedication(tx *gorm.DB, userID, medicationID string) (*models.Medication, error) {
	var medication models.Medication
	err := tx.Where("id = ? AND user_id = ?", medicationID, userID).First(&medication).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMedicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("while loading medication %s: %w", medicationID, err)
	}
	return &medication, nil
}
