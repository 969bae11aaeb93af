package tracker

import (
	"context"
	"fmt"

	"medication-tracker-server/internal/models"

	"gorm.io/gorm"
)

func activeSubscription(tx *gorm.DB, userID string) (*models.Subscription, error) {
	var subscriptions []models.Subscription
	err := tx.Where("user_id = ? AND is_active = ?", userID, true).
		Order("start_date desc").
		Limit(1).
		Find(&subscriptions).Error
	if err != nil {
		return nil, fmt.Errorf("while loading subscription: %w", err)
	}
	if len(subscriptions) == 0 {
		return nil, nil
	}
	return &subscriptions[0], nil
}

// Subscription returns the user's active subscription. Users who never
// subscribed get an unsaved free plan.
func (s *Service) Subscription(ctx context.Context, userID string) (*models.Subscription, error) {
	subscription, err := activeSubscription(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		subscription = &models.Subscription{
			UserID:          userID,
			Plan:            models.PlanFree,
			IsActive:        true,
			MedicationLimit: models.LimitFor(models.PlanFree),
		}
	}
	return subscription, nil
}

// ChangePlan ends the current subscription and starts one on plan. Existing
// medications are kept when downgrading; the cap only applies to new ones.
func (s *Service) ChangePlan(ctx context.Context, userID string, plan models.Plan) (*models.Subscription, error) {
	if plan != models.PlanFree && plan != models.PlanPremium {
		return nil, ErrInvalidPlan
	}

	now := s.now()
	subscription := &models.Subscription{
		UserID:          userID,
		Plan:            plan,
		StartDate:       now,
		IsActive:        true,
		MedicationLimit: models.LimitFor(plan),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Subscription{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Updates(map[string]interface{}{"is_active": false, "end_date": now}).Error
		if err != nil {
			return fmt.Errorf("while ending subscription: %w", err)
		}
		if err := tx.Create(subscription).Error; err != nil {
			return fmt.Errorf("while creating subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return subscription, nil
}
