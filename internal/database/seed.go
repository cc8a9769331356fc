package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodeasy/backend/internal/models"
)

type demoItem struct {
	id          uint
	name        string
	meals       string // b, l, s, d
	diet        string // vegan, veg, egg, meat
	ingredients []uint
}

type demoUser struct {
	id       string
	name     string
	metadata map[string]interface{}
}

var demoIngredientTypes = []models.MealIngredientType{
	{ID: 1, Name: "Vegetables"},
	{ID: 2, Name: "Grains"},
	{ID: 3, Name: "Dairy"},
	{ID: 4, Name: "Pulses"},
	{ID: 5, Name: "Fruits"},
	{ID: 6, Name: "Protein"},
}

var demoIngredients = []struct {
	id     uint
	name   string
	typeID uint
}{
	{1, "Onion", 1}, {2, "Tomato", 1}, {3, "Spinach", 1}, {4, "Potato", 1},
	{5, "Rice", 2}, {6, "Flattened Rice", 2}, {7, "Wheat Flour", 2}, {8, "Semolina", 2}, {9, "Oats", 2},
	{10, "Paneer", 3}, {11, "Curd", 3}, {12, "Milk", 3},
	{13, "Toor Dal", 4}, {14, "Moong Dal", 4}, {15, "Chickpeas", 4},
	{16, "Banana", 5}, {17, "Apple", 5},
	{18, "Egg", 6}, {19, "Chicken", 6},
	{20, "Peanuts", 0},
}

var demoItems = []demoItem{
	{10, "Poha", "b", "vegan", []uint{6, 1, 20}},
	{11, "Idli Sambar", "b", "vegan", []uint{5, 13, 2}},
	{12, "Upma", "b", "vegan", []uint{8, 1}},
	{13, "Masala Oats", "b", "vegan", []uint{9, 1, 2}},
	{14, "Egg Bhurji", "bd", "egg", []uint{18, 1, 2}},
	{20, "Dal Rice", "ld", "vegan", []uint{5, 13}},
	{21, "Rajma Chawal", "ld", "vegan", []uint{5, 15, 2}},
	{22, "Palak Paneer with Roti", "ld", "veg", []uint{3, 10, 7}},
	{23, "Chole Roti", "ld", "vegan", []uint{15, 7, 1}},
	{24, "Chicken Curry with Rice", "ld", "meat", []uint{19, 5, 1, 2}},
	{25, "Curd Rice", "l", "veg", []uint{5, 11}},
	{30, "Fruit Bowl", "s", "vegan", []uint{16, 17}},
	{31, "Roasted Peanuts", "s", "vegan", []uint{20}},
	{32, "Banana Shake", "s", "veg", []uint{16, 12}},
	{40, "Moong Dal Khichdi", "d", "vegan", []uint{5, 14}},
	{41, "Aloo Paratha", "bd", "veg", []uint{7, 4, 11}},
	{42, "Vegetable Pulao", "ld", "vegan", []uint{5, 1, 2, 4}},
}

var demoUsers = []demoUser{
	{"6f1c2a4e-0b6d-4c59-9a51-0d1f6a3b2c01", "Asha Verma", map[string]interface{}{"diet": "vegetarian", "goal": "maintain"}},
	{"6f1c2a4e-0b6d-4c59-9a51-0d1f6a3b2c02", "Rohan Mehta", map[string]interface{}{"diet": "omnivore", "goal": "muscle gain"}},
	{"6f1c2a4e-0b6d-4c59-9a51-0d1f6a3b2c03", "Meera Iyer", map[string]interface{}{"diet": "vegan", "allergies": []string{"peanuts"}}},
}

// SeedResult reports what SeedDemoData wrote.
type SeedResult struct {
	Items    int
	Profiles []uuid.UUID
}

// SeedDemoData loads a demo catalog and a few onboarding profiles. Rows
// that already exist are left untouched, so it can be rerun safely.
func SeedDemoData(ctx context.Context, db *gorm.DB, log *zap.SugaredLogger) (*SeedResult, error) {
	result := &SeedResult{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ignore := func() *gorm.DB { return tx.Clauses(clause.OnConflict{DoNothing: true}) }

		if err := SeedMealTypes(tx); err != nil {
			return err
		}

		ingredientTypes := append([]models.MealIngredientType(nil), demoIngredientTypes...)
		if err := ignore().Create(&ingredientTypes).Error; err != nil {
			return fmt.Errorf("failed to seed ingredient types: %w", err)
		}

		ingredients := make([]models.MealIngredient, 0, len(demoIngredients))
		for _, in := range demoIngredients {
			row := models.MealIngredient{ID: in.id, Name: in.name}
			if in.typeID != 0 {
				typeID := in.typeID
				row.MealIngredientTypeID = &typeID
			}
			ingredients = append(ingredients, row)
		}
		if err := ignore().Create(&ingredients).Error; err != nil {
			return fmt.Errorf("failed to seed ingredients: %w", err)
		}

		for _, it := range demoItems {
			item := models.MealItem{
				ID:                it.id,
				Name:              it.name,
				IsBreakfast:       hasMeal(it.meals, 'b'),
				IsLunch:           hasMeal(it.meals, 'l'),
				IsSnacks:          hasMeal(it.meals, 's'),
				IsDinner:          hasMeal(it.meals, 'd'),
				CanVeganEat:       it.diet == "vegan",
				CanVegetarianEat:  it.diet == "vegan" || it.diet == "veg",
				CanEggetarianEat:  it.diet != "meat",
				CanCarnitarianEat: true,
				CanOmnitarianEat:  true,
				IsActive:          true,
			}
			res := ignore().Create(&item)
			if res.Error != nil {
				return fmt.Errorf("failed to seed meal item %s: %w", it.name, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			result.Items++

			links := make([]models.MealItemIngredient, 0, len(it.ingredients))
			for _, ingredientID := range it.ingredients {
				links = append(links, models.MealItemIngredient{
					MealItemID:       it.id,
					MealIngredientID: ingredientID,
					Quantity:         1,
					Unit:             "serving",
					IsActive:         true,
				})
			}
			if err := tx.Create(&links).Error; err != nil {
				return fmt.Errorf("failed to link ingredients of %s: %w", it.name, err)
			}
		}

		for _, u := range demoUsers {
			raw, err := json.Marshal(u.metadata)
			if err != nil {
				return err
			}
			profile := models.UserProfile{
				ID:       uuid.MustParse(u.id),
				FullName: u.name,
				Metadata: datatypes.JSON(raw),
				IsActive: true,
			}
			if err := ignore().Create(&profile).Error; err != nil {
				return fmt.Errorf("failed to seed profile %s: %w", u.name, err)
			}
			result.Profiles = append(result.Profiles, profile.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Infow("seeded demo data", "new_items", result.Items, "profiles", len(result.Profiles))
	return result, nil
}

func hasMeal(meals string, m byte) bool {
	for i := 0; i < len(meals); i++ {
		if meals[i] == m {
			return true
		}
	}
	return false
}
