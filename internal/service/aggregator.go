package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/foodeasy/backend/internal/types"
)

// AggregateAssignments turns flat assignment rows into the nested
// date -> meal type -> items view. Dates are ascending, meal types follow
// their sort order (ties by id), and items keep the order the rows came in.
func AggregateAssignments(rows []types.AssignmentRow) []types.DayView {
	type dayBucket struct {
		meals map[uint]*types.MealView
	}

	buckets := make(map[string]*dayBucket)
	for _, r := range rows {
		key := types.FormatDate(r.Date)
		day, ok := buckets[key]
		if !ok {
			day = &dayBucket{meals: make(map[uint]*types.MealView)}
			buckets[key] = day
		}

		meal, ok := day.meals[r.MealTypeID]
		if !ok {
			meal = &types.MealView{
				MealTypeID: r.MealTypeID,
				MealType:   r.MealTypeName,
				SortOrder:  r.MealTypeSortOrder,
			}
			day.meals[r.MealTypeID] = meal
		}
		meal.Items = append(meal.Items, types.ItemView{
			SlotID:   r.ID,
			ItemID:   r.MealItemID,
			ItemName: r.MealItemName,
		})
	}

	dates := make([]string, 0, len(buckets))
	for d := range buckets {
		dates = append(dates, d)
	}
	// YYYY-MM-DD sorts chronologically as a string.
	sort.Strings(dates)

	out := make([]types.DayView, 0, len(dates))
	for _, d := range dates {
		meals := make([]types.MealView, 0, len(buckets[d].meals))
		for _, m := range buckets[d].meals {
			meals = append(meals, *m)
		}
		sort.Slice(meals, func(i, j int) bool {
			if meals[i].SortOrder != meals[j].SortOrder {
				return meals[i].SortOrder < meals[j].SortOrder
			}
			return meals[i].MealTypeID < meals[j].MealTypeID
		})
		out = append(out, types.DayView{Date: d, Meals: meals})
	}
	return out
}

// CapDays keeps at most maxDates leading days of an aggregated view.
func CapDays(days []types.DayView, maxDates int) []types.DayView {
	if maxDates > 0 && len(days) > maxDates {
		return days[:maxDates]
	}
	return days
}

// AttachIngredients fills IngredientsByType on every item with a single
// batched lookup over the distinct item ids in the view.
func AttachIngredients(ctx context.Context, days []types.DayView, lookup IngredientLookup) error {
	ids := distinctItemIDs(days)
	if len(ids) == 0 {
		return nil
	}

	byItem, err := lookup.GetIngredientsForItems(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to attach ingredients: %w", err)
	}

	grouped := make(map[uint]map[string][]string, len(byItem))
	for id, ingredients := range byItem {
		grouped[id] = GroupIngredientsByType(ingredients)
	}

	for d := range days {
		for m := range days[d].Meals {
			items := days[d].Meals[m].Items
			for i := range items {
				if g, ok := grouped[items[i].ItemID]; ok {
					items[i].IngredientsByType = g
				} else {
					items[i].IngredientsByType = map[string][]string{}
				}
			}
		}
	}
	return nil
}

// GroupIngredientsByType maps category to ingredient names, keeping first
// appearance order and dropping duplicates.
func GroupIngredientsByType(ingredients []types.Ingredient) map[string][]string {
	out := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	for _, ing := range ingredients {
		category := ing.Category
		if category == "" {
			category = UncategorizedIngredient
		}
		if seen[category] == nil {
			seen[category] = make(map[string]bool)
		}
		if seen[category][ing.Name] {
			continue
		}
		seen[category][ing.Name] = true
		out[category] = append(out[category], ing.Name)
	}
	return out
}

func distinctItemIDs(days []types.DayView) []uint {
	seen := make(map[uint]bool)
	var ids []uint
	for _, d := range days {
		for _, m := range d.Meals {
			for _, it := range m.Items {
				if !seen[it.ItemID] {
					seen[it.ItemID] = true
					ids = append(ids, it.ItemID)
				}
			}
		}
	}
	return ids
}
