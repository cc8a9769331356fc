package models

import "time"

// MealItem is a dish that can be assigned to a slot. The catalog is
// maintained elsewhere and is read-only to this service.
type MealItem struct {
	ID                 uint      `gorm:"primarykey" json:"id"`
	Name               string    `gorm:"size:255;not null" json:"name"`
	Description        string    `gorm:"type:text" json:"description,omitempty"`
	IsBreakfast        bool      `gorm:"not null" json:"is_breakfast"`
	IsLunch            bool      `gorm:"not null" json:"is_lunch"`
	IsSnacks           bool      `gorm:"not null" json:"is_snacks"`
	IsDinner           bool      `gorm:"not null" json:"is_dinner"`
	CanVegetarianEat   bool      `gorm:"not null" json:"can_vegetarian_eat"`
	CanEggetarianEat   bool      `gorm:"not null" json:"can_eggetarian_eat"`
	CanCarnitarianEat  bool      `gorm:"not null" json:"can_carnitarian_eat"`
	CanOmnitarianEat   bool      `gorm:"not null" json:"can_omnitarian_eat"`
	CanVeganEat        bool      `gorm:"not null" json:"can_vegan_eat"`
	IsActive           bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (MealItem) TableName() string { return "meal_items" }

// MealType is a named slot within a day. SortOrder drives display order.
type MealType struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"size:64;not null;uniqueIndex" json:"name"`
	SortOrder int       `gorm:"not null" json:"sort_order"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (MealType) TableName() string { return "meal_types" }

// DefaultMealTypes returns the four slots every installation starts with.
// They also stand in when the meal_types table is empty.
func DefaultMealTypes() []MealType {
	return []MealType{
		{ID: 1, Name: "Breakfast", SortOrder: 1, IsActive: true},
		{ID: 2, Name: "Lunch", SortOrder: 2, IsActive: true},
		{ID: 3, Name: "Snacks", SortOrder: 3, IsActive: true},
		{ID: 4, Name: "Dinner", SortOrder: 4, IsActive: true},
	}
}

type MealIngredientType struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:128;not null;uniqueIndex" json:"name"`
}

func (MealIngredientType) TableName() string { return "meal_ingredients_types" }

type MealIngredient struct {
	ID                   uint   `gorm:"primarykey" json:"id"`
	Name                 string `gorm:"size:255;not null" json:"name"`
	Description          string `gorm:"type:text" json:"description,omitempty"`
	MealIngredientTypeID *uint  `gorm:"index" json:"meal_ingredient_type_id,omitempty"`
}

func (MealIngredient) TableName() string { return "meal_ingredients" }

// MealItemIngredient links an item to one of its ingredients.
type MealItemIngredient struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	MealItemID       uint    `gorm:"not null;index" json:"meal_item_id"`
	MealIngredientID uint    `gorm:"not null;index" json:"meal_ingredient_id"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `gorm:"size:32" json:"unit"`
	IsActive         bool    `gorm:"not null" json:"is_active"`
}

func (MealItemIngredient) TableName() string { return "meal_item_ingredients" }
