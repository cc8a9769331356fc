package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"gorm.io/gorm"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

// CatalogService reads meal items and meal types.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// ListItems returns active items matching every non-nil filter, ordered by id.
func (s *CatalogService) ListItems(ctx context.Context, filters types.ItemFilters) ([]models.MealItem, error) {
	query := s.db.WithContext(ctx).Where("is_active = ?", true)

	flags := []struct {
		column string
		value  *bool
	}{
		{"can_vegetarian_eat", filters.CanVegetarianEat},
		{"can_eggetarian_eat", filters.CanEggetarianEat},
		{"can_carnitarian_eat", filters.CanCarnitarianEat},
		{"can_omnitarian_eat", filters.CanOmnitarianEat},
		{"can_vegan_eat", filters.CanVeganEat},
		{"is_breakfast", filters.IsBreakfast},
		{"is_lunch", filters.IsLunch},
		{"is_snacks", filters.IsSnacks},
		{"is_dinner", filters.IsDinner},
	}
	for _, f := range flags {
		if f.value != nil {
			query = query.Where(f.column+" = ?", *f.value)
		}
	}

	var items []models.MealItem
	if err := query.Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list meal items: %w", err)
	}
	return items, nil
}

// GetItem returns an item whether or not it is active.
func (s *CatalogService) GetItem(ctx context.Context, id uint) (*models.MealItem, error) {
	var item models.MealItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: meal item %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get meal item: %w", err)
	}
	return &item, nil
}

// ListMealTypes returns active meal types in display order.
func (s *CatalogService) ListMealTypes(ctx context.Context) ([]models.MealType, error) {
	var mealTypes []models.MealType
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order").Order("id").
		Find(&mealTypes).Error; err != nil {
		return nil, fmt.Errorf("failed to list meal types: %w", err)
	}
	return mealTypes, nil
}

// GetMealType returns a meal type whether or not it is active.
func (s *CatalogService) GetMealType(ctx context.Context, id uint) (*models.MealType, error) {
	var mt models.MealType
	if err := s.db.WithContext(ctx).First(&mt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: meal type %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get meal type: %w", err)
	}
	return &mt, nil
}

// MealTypeIndex loads the active meal types into a name resolver.
func (s *CatalogService) MealTypeIndex(ctx context.Context) (*MealTypeIndex, error) {
	mealTypes, err := s.ListMealTypes(ctx)
	if err != nil {
		return nil, err
	}
	return NewMealTypeIndex(mealTypes), nil
}

// MealTypeIndex resolves free-form meal type names, as written by the
// planner, to meal type ids. Matching uses Unicode case folding, and any name
// containing breakfast, lunch, snack or dinner resolves to that slot.
type MealTypeIndex struct {
	byKey map[string]models.MealType
}

func NewMealTypeIndex(mealTypes []models.MealType) *MealTypeIndex {
	if len(mealTypes) == 0 {
		mealTypes = models.DefaultMealTypes()
	}

	idx := &MealTypeIndex{byKey: make(map[string]models.MealType, len(mealTypes)*2)}
	for _, mt := range mealTypes {
		for _, key := range []string{foldName(mt.Name), canonicalMealKey(mt.Name)} {
			if _, taken := idx.byKey[key]; !taken {
				idx.byKey[key] = mt
			}
		}
	}
	return idx
}

// Resolve returns the meal type for name.
func (i *MealTypeIndex) Resolve(name string) (models.MealType, bool) {
	if mt, ok := i.byKey[foldName(name)]; ok {
		return mt, true
	}
	mt, ok := i.byKey[canonicalMealKey(name)]
	return mt, ok
}

func foldName(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func canonicalMealKey(name string) string {
	folded := foldName(name)
	switch {
	case strings.Contains(folded, "breakfast"):
		return "breakfast"
	case strings.Contains(folded, "lunch"):
		return "lunch"
	case strings.Contains(folded, "snack"):
		return "snacks"
	case strings.Contains(folded, "dinner"):
		return "dinner"
	default:
		return folded
	}
}
