package tracker

import (
	"context"
	"fmt"

	"medication-tracker-server/internal/models"

	"gorm.io/gorm"
)

// NewMedication is the user-supplied part of a medication.
type NewMedication struct {
	Name            string
	Dosage          string
	Form            string
	Frequency       string
	Instructions    string
	InitialQuantity int
}

// ActiveMedications lists the user's active medications.
func (s *Service) ActiveMedications(ctx context.Context, userID string) ([]models.Medication, error) {
	medications := []models.Medication{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at asc").
		Find(&medications).Error
	if err != nil {
		return nil, fmt.Errorf("while loading active medications: %w", err)
	}
	return medications, nil
}

// Medication returns one of the user's medications, active or not.
func (s *Service) Medication(ctx context.Context, userID, medicationID string) (*models.Medication, error) {
	return ownedMedication(s.db.WithContext(ctx), userID, medicationID)
}

// AddMedication stores a new active medication with a full stock. On the free
// plan it fails with ErrMedicationLimitReached once the user has
// models.FreeMedicationLimit active medications. The observer hears about the
// medication only after it is committed.
func (s *Service) AddMedication(ctx context.Context, userID string, in NewMedication) (*models.Medication, error) {
	medication := &models.Medication{
		UserID:          userID,
		Name:            in.Name,
		Dosage:          in.Dosage,
		Form:            in.Form,
		Frequency:       in.Frequency,
		Instructions:    in.Instructions,
		PrescribedDate:  s.now(),
		InitialQuantity: in.InitialQuantity,
		CurrentQuantity: in.InitialQuantity,
		RefillReminder:  true,
		IsActive:        true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subscription, err := activeSubscription(tx, userID)
		if err != nil {
			return err
		}

		plan := models.PlanFree
		if subscription != nil {
			plan = subscription.Plan
		}

		if limit := models.LimitFor(plan); limit > 0 {
			var count int64
			err := tx.Model(&models.Medication{}).
				Where("user_id = ? AND is_active = ?", userID, true).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("while counting active medications: %w", err)
			}
			if count >= int64(limit) {
				return ErrMedicationLimitReached
			}
		}

		if err := tx.Create(medication).Error; err != nil {
			return fmt.Errorf("while inserting medication: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.MedicationAdded(medication.ID)
	}
	return medication, nil
}

// DeactivateMedication hides a medication from lists and schedules. Its logs
// and interactions are kept.
func (s *Service) DeactivateMedication(ctx context.Context, userID, medicationID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		medication, err := ownedMedication(tx, userID, medicationID)
		if err != nil {
			return err
		}
		if err := tx.Model(medication).Update("is_active", false).Error; err != nil {
			return fmt.Errorf("while deactivating medication: %w", err)
		}
		return nil
	})
}
