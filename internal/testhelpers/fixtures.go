package testhelpers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

// Catalog ids seeded by SeedCatalog.
const (
	ItemPoha       uint = 10
	ItemIdli       uint = 11
	ItemDalRice    uint = 12
	ItemPaneerWrap uint = 45
	ItemFruitBowl  uint = 46
	ItemKhichdi    uint = 47
	ItemRetired    uint = 99

	MealTypeBreakfast uint = 1
	MealTypeLunch     uint = 2
	MealTypeSnacks    uint = 3
	MealTypeDinner    uint = 4
)

// SeedCatalog inserts a small catalog of meal items with ingredients.
// ItemRetired is inactive.
func SeedCatalog(t *testing.T, db *gorm.DB) {
	t.Helper()

	items := []models.MealItem{
		{ID: ItemPoha, Name: "Poha", IsBreakfast: true, CanVegetarianEat: true, CanVeganEat: true, IsActive: true},
		{ID: ItemIdli, Name: "Idli", IsBreakfast: true, CanVegetarianEat: true, CanVeganEat: true, IsActive: true},
		{ID: ItemDalRice, Name: "Dal Rice", IsLunch: true, IsDinner: true, CanVegetarianEat: true, IsActive: true},
		{ID: ItemPaneerWrap, Name: "Paneer Wrap", IsLunch: true, IsDinner: true, CanVegetarianEat: true, IsActive: true},
		{ID: ItemFruitBowl, Name: "Fruit Bowl", IsSnacks: true, CanVegetarianEat: true, CanVeganEat: true, IsActive: true},
		{ID: ItemKhichdi, Name: "Khichdi", IsDinner: true, CanVegetarianEat: true, IsActive: true},
		{ID: ItemRetired, Name: "Retired Dish", IsLunch: true, IsActive: false},
	}
	mustCreate(t, db, &items)

	ingredientTypes := []models.MealIngredientType{
		{ID: 1, Name: "Vegetables"},
		{ID: 2, Name: "Grains"},
		{ID: 3, Name: "Dairy"},
	}
	mustCreate(t, db, &ingredientTypes)

	vegetables, grains, dairy := uint(1), uint(2), uint(3)
	ingredients := []models.MealIngredient{
		{ID: 1, Name: "Onion", MealIngredientTypeID: &vegetables},
		{ID: 2, Name: "Rice", MealIngredientTypeID: &grains},
		{ID: 3, Name: "Paneer", MealIngredientTypeID: &dairy},
		{ID: 4, Name: "Flattened Rice", MealIngredientTypeID: &grains},
		{ID: 5, Name: "Lentils"},
	}
	mustCreate(t, db, &ingredients)

	links := []models.MealItemIngredient{
		{MealItemID: ItemPoha, MealIngredientID: 4, Quantity: 1, Unit: "cup", IsActive: true},
		{MealItemID: ItemPoha, MealIngredientID: 1, Quantity: 1, Unit: "pc", IsActive: true},
		{MealItemID: ItemDalRice, MealIngredientID: 2, Quantity: 1, Unit: "cup", IsActive: true},
		{MealItemID: ItemDalRice, MealIngredientID: 5, Quantity: 0.5, Unit: "cup", IsActive: true},
		{MealItemID: ItemPaneerWrap, MealIngredientID: 3, Quantity: 100, Unit: "g", IsActive: true},
		{MealItemID: ItemPaneerWrap, MealIngredientID: 1, Quantity: 1, Unit: "pc", IsActive: true},
		{MealItemID: ItemKhichdi, MealIngredientID: 2, Quantity: 0.5, Unit: "cup", IsActive: true},
		{MealItemID: ItemKhichdi, MealIngredientID: 5, Quantity: 0.5, Unit: "cup", IsActive: true},
	}
	mustCreate(t, db, &links)
}

// CreateProfile stores an active profile with the given onboarding metadata.
func CreateProfile(t *testing.T, db *gorm.DB, owner uuid.UUID, metadata map[string]interface{}) *models.UserProfile {
	t.Helper()

	raw, err := json.Marshal(metadata)
	if err != nil {
		t.Fatalf("failed to marshal metadata: %v", err)
	}
	profile := &models.UserProfile{
		ID:       owner,
		FullName: "Test User",
		Metadata: datatypes.JSON(raw),
		IsActive: true,
	}
	mustCreate(t, db, profile)
	return profile
}

// CreatePlan inserts a plan starting on start (YYYY-MM-DD) directly.
func CreatePlan(t *testing.T, db *gorm.DB, owner uuid.UUID, start string, active bool) *models.MealPlan {
	t.Helper()

	startDate := Date(t, start)
	plan := &models.MealPlan{
		OwnerID:   owner,
		StartDate: startDate,
		EndDate:   types.AddDays(startDate, models.PlanLengthDays-1),
		IsActive:  active,
	}
	mustCreate(t, db, plan)
	return plan
}

// AddAssignment inserts an active assignment directly.
func AddAssignment(t *testing.T, db *gorm.DB, planID uint, date string, mealTypeID, itemID uint) *models.PlanAssignment {
	t.Helper()

	a := &models.PlanAssignment{
		PlanID:     planID,
		Date:       Date(t, date),
		MealTypeID: mealTypeID,
		MealItemID: itemID,
		Status:     models.AssignmentActive,
	}
	mustCreate(t, db, a)
	return a
}

// FillPlan assigns one breakfast and one lunch item to every day of the plan.
func FillPlan(t *testing.T, db *gorm.DB, plan *models.MealPlan) []*models.PlanAssignment {
	t.Helper()

	var out []*models.PlanAssignment
	for d := 0; d < models.PlanLengthDays; d++ {
		day := types.FormatDate(types.AddDays(plan.StartDate, d))
		out = append(out,
			AddAssignment(t, db, plan.ID, day, MealTypeBreakfast, ItemPoha),
			AddAssignment(t, db, plan.ID, day, MealTypeLunch, ItemDalRice),
		)
	}
	return out
}

// Date parses YYYY-MM-DD or fails the test.
func Date(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := types.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date: %v", err)
	}
	return d
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed to create %T: %v", value, err)
	}
}
