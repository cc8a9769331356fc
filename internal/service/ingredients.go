package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/foodeasy/backend/internal/metrics"
	"github.com/foodeasy/backend/internal/types"
)

// UncategorizedIngredient is the category used when an ingredient has no type.
const UncategorizedIngredient = "Uncategorized"

// IngredientService loads ingredients for meal items from the database.
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

type ingredientRow struct {
	MealItemID uint
	Name       string
	Category   string
	Quantity   float64
	Unit       string
}

// GetIngredientsForItems returns the active ingredients of every item in
// one query. Items without ingredients are absent from the map.
func (s *IngredientService) GetIngredientsForItems(ctx context.Context, itemIDs []uint) (map[uint][]types.Ingredient, error) {
	out := make(map[uint][]types.Ingredient, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	var rows []ingredientRow
	err := s.db.WithContext(ctx).
		Table("meal_item_ingredients AS mii").
		Select(`mii.meal_item_id, ing.name,
			COALESCE(mit.name, ?) AS category,
			COALESCE(mii.quantity, 0) AS quantity,
			COALESCE(mii.unit, '') AS unit`, UncategorizedIngredient).
		Joins("JOIN meal_ingredients AS ing ON ing.id = mii.meal_ingredient_id").
		Joins("LEFT JOIN meal_ingredients_types AS mit ON mit.id = ing.meal_ingredient_type_id").
		Where("mii.meal_item_id IN ? AND mii.is_active = ?", itemIDs, true).
		Order("mii.meal_item_id").Order("mii.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredients: %w", err)
	}

	for _, r := range rows {
		out[r.MealItemID] = append(out[r.MealItemID], types.Ingredient{
			Name:     r.Name,
			Category: r.Category,
			Quantity: r.Quantity,
			Unit:     r.Unit,
		})
	}
	return out, nil
}

// CachedIngredientLookup is a read-through Redis cache in front of another
// IngredientLookup. Cache errors fall back to the wrapped lookup.
type CachedIngredientLookup struct {
	next  IngredientLookup
	redis *redis.Client
	ttl   time.Duration
	log   *zap.SugaredLogger
}

func NewCachedIngredientLookup(next IngredientLookup, client *redis.Client, ttl time.Duration, log *zap.SugaredLogger) *CachedIngredientLookup {
	return &CachedIngredientLookup{next: next, redis: client, ttl: ttl, log: log}
}

func ingredientCacheKey(itemID uint) string {
	return "ingredients:item:" + strconv.FormatUint(uint64(itemID), 10)
}

func (c *CachedIngredientLookup) GetIngredientsForItems(ctx context.Context, itemIDs []uint) (map[uint][]types.Ingredient, error) {
	out := make(map[uint][]types.Ingredient, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		keys[i] = ingredientCacheKey(id)
	}

	var missing []uint
	cached, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warnw("ingredient cache read failed", "error", err)
		missing = itemIDs
	} else {
		for i, v := range cached {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, itemIDs[i])
				continue
			}
			var ingredients []types.Ingredient
			if err := json.Unmarshal([]byte(s), &ingredients); err != nil {
				missing = append(missing, itemIDs[i])
				continue
			}
			if len(ingredients) > 0 {
				out[itemIDs[i]] = ingredients
			}
		}
	}

	metrics.IngredientCacheLookups.WithLabelValues("hit").Add(float64(len(itemIDs) - len(missing)))
	metrics.IngredientCacheLookups.WithLabelValues("miss").Add(float64(len(missing)))

	if len(missing) == 0 {
		return out, nil
	}

	loaded, err := c.next.GetIngredientsForItems(ctx, missing)
	if err != nil {
		return nil, err
	}

	pipe := c.redis.Pipeline()
	for _, id := range missing {
		ingredients := loaded[id]
		if ingredients == nil {
			ingredients = []types.Ingredient{}
		}
		data, err := json.Marshal(ingredients)
		if err != nil {
			continue
		}
		pipe.Set(ctx, ingredientCacheKey(id), data, c.ttl)
		if len(ingredients) > 0 {
			out[id] = ingredients
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warnw("ingredient cache write failed", "error", err)
	}

	return out, nil
}

var _ IngredientLookup = (*IngredientService)(nil)
var _ IngredientLookup = (*CachedIngredientLookup)(nil)

