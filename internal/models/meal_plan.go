package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanLengthDays is the fixed span of every plan, start and end inclusive.
const PlanLengthDays = 7

// Assignment statuses. Only active rows are visible; superseded and removed
// rows are kept as history and never change again.
const (
	AssignmentActive     = "active"
	AssignmentSuperseded = "superseded"
	AssignmentRemoved    = "removed"
)

// MealPlan is a 7-day window of meal assignments owned by one user.
// At most one plan exists per (owner, start_date).
type MealPlan struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_meal_plan_owner_start,priority:1" json:"owner_id"`
	StartDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_meal_plan_owner_start,priority:2" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null;index" json:"end_date"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MealPlan) TableName() string { return "user_meal_plans" }

// Contains reports whether day falls inside the plan's inclusive range.
func (p *MealPlan) Contains(day time.Time) bool {
	return !day.Before(p.StartDate) && !day.After(p.EndDate)
}

// PlanAssignment places one meal item into a (date, meal type) slot of a plan.
// A swap writes a new row that points back at the row it replaced.
type PlanAssignment struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	PlanID       uint      `gorm:"not null;index:idx_assignment_slot,priority:1" json:"plan_id"`
	Date         time.Time `gorm:"type:date;not null;index:idx_assignment_slot,priority:2" json:"date"`
	MealTypeID   uint      `gorm:"not null;index:idx_assignment_slot,priority:3" json:"meal_type_id"`
	MealItemID   uint      `gorm:"not null;index" json:"meal_item_id"`
	Status       string    `gorm:"size:16;not null;index:idx_assignment_slot,priority:4" json:"status"`
	SupersedesID *uint     `gorm:"index" json:"supersedes_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (PlanAssignment) TableName() string { return "user_meal_plan_details" }

// IsActive reports whether the row is the live assignment for its slot.
func (a *PlanAssignment) IsActive() bool {
	return a.Status == AssignmentActive
}
