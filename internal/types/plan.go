package types

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentRow is an active assignment joined with the names needed to
// render it. It is the aggregator's only input.
type AssignmentRow struct {
	ID                uint      `json:"id"`
	PlanID            uint      `json:"plan_id"`
	Date              time.Time `json:"date"`
	MealTypeID        uint      `json:"meal_type_id"`
	MealTypeName      string    `json:"meal_type_name"`
	MealTypeSortOrder int       `json:"meal_type_sort_order"`
	MealItemID        uint      `json:"meal_item_id"`
	MealItemName      string    `json:"meal_item_name"`
}

// DayView is one date of the aggregated plan view.
type DayView struct {
	Date  string     `json:"date"`
	Meals []MealView `json:"meals"`
}

// MealView is one meal type within a day.
type MealView struct {
	MealTypeID uint       `json:"meal_type_id"`
	MealType   string     `json:"meal_type"`
	SortOrder  int        `json:"-"`
	Items      []ItemView `json:"items"`
}

// ItemView is a single assignment as shown to a client. SlotID is the
// assignment id clients pass back to swap or remove it.
type ItemView struct {
	SlotID            uint                `json:"slot_id"`
	ItemID            uint                `json:"item_id"`
	ItemName          string              `json:"item_name"`
	IngredientsByType map[string][]string `json:"ingredients_by_type,omitempty"`
}

// PlanView is the response body for a single plan.
type PlanView struct {
	PlanID    uint      `json:"plan_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	IsActive  bool      `json:"is_active"`
	Days      []DayView `json:"days"`
}

// Ingredient is one ingredient of a meal item, with its category resolved.
type Ingredient struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity float64 `json:"quantity,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// GroceryList groups the unique ingredient names of a plan by category.
type GroceryList struct {
	PlanID                 uint                `json:"plan_id"`
	StartDate              string              `json:"start_date"`
	EndDate                string              `json:"end_date"`
	GroceryItemsByType     map[string][]string `json:"grocery_items_by_type"`
	TotalUniqueIngredients int                 `json:"total_unique_ingredients"`
}

// SwapResult reports both sides of a swap.
type SwapResult struct {
	OldDetailID   uint   `json:"old_detail_id"`
	NewDetailID   uint   `json:"new_detail_id"`
	OldMealItemID uint   `json:"old_meal_item_id"`
	NewMealItemID uint   `json:"new_meal_item_id"`
	PlanID        uint   `json:"plan_id"`
	Date          string `json:"date"`
	MealTypeID    uint   `json:"meal_type_id"`
}

// PlanFilters narrows ListPlans.
type PlanFilters struct {
	Active *bool
	Limit  int
	Offset int
}

// ItemFilters narrows the catalog listing. Nil fields are ignored.
type ItemFilters struct {
	CanVegetarianEat  *bool `form:"can_vegetarian_eat"`
	CanEggetarianEat  *bool `form:"can_eggetarian_eat"`
	CanCarnitarianEat *bool `form:"can_carnitarian_eat"`
	CanOmnitarianEat  *bool `form:"can_omnitarian_eat"`
	CanVeganEat       *bool `form:"can_vegan_eat"`
	IsBreakfast       *bool `form:"is_breakfast"`
	IsLunch           *bool `form:"is_lunch"`
	IsSnacks          *bool `form:"is_snacks"`
	IsDinner          *bool `form:"is_dinner"`
}

// NewAssignment is one row to insert into a plan.
type NewAssignment struct {
	Date       time.Time
	MealTypeID uint
	MealItemID uint
}

// PlannerProfile is the free-form description of a user handed to the planner.
type PlannerProfile struct {
	OwnerID     uuid.UUID              `json:"user_id"`
	FullName    string                 `json:"full_name,omitempty"`
	Preferences map[string]interface{} `json:"preferences,omitempty"`
}
