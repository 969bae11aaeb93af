package models

import (
	"time"
)

// Plan is a subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// FreeMedicationLimit caps active medications on the free plan.
const FreeMedicationLimit = 3

// Subscription tracks a user's plan. A user without an active subscription is
// on the free plan.
type Subscription struct {
	BaseModel
	UserID          string     `gorm:"size:36;not null;index" json:"userId"`
	Plan            Plan       `gorm:"size:20;not null" json:"plan"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	IsActive        bool       `gorm:"not null" json:"isActive"`
	MedicationLimit int        `json:"medicationLimit"` // 0 means unlimited
}

// LimitFor returns the active medication cap of a plan, 0 for none.
func LimitFor(plan Plan) int {
	if plan == PlanPremium {
		return 0
	}
	return FreeMedicationLimit
}
