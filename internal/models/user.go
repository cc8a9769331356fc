package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserProfile carries the onboarding answers the planner uses to shape a
// plan. Metadata is free-form JSON written by the onboarding flow.
type UserProfile struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	FullName  string         `gorm:"size:255" json:"full_name"`
	Metadata  datatypes.JSON `json:"metadata"`
	IsActive  bool           `gorm:"not null" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }

// All returns every model managed by auto-migration, in dependency order.
func All() []interface{} {
	return []interface{}{
		&UserProfile{},
		&MealType{},
		&MealItem{},
		&MealIngredientType{},
		&MealIngredient{},
		&MealItemIngredient{},
		&MealPlan{},
		&PlanAssignment{},
	}
}
