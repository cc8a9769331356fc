package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

// ValidateProposal checks a planner proposal against the plan range and the
// active catalog and flattens it into rows for BulkInsertAssignments.
//
// A proposal must carry one entry per plan day with distinct dates;
// anything else is malformed planner output and fails with ErrUpstream.
// Meal type names the index cannot resolve are skipped and returned in
// dropped. Any unknown or inactive item id, or a date outside
// [start, start+6], rejects the whole proposal with ErrValidation.
func ValidateProposal(proposal *types.Proposal, start time.Time, catalog []models.MealItem, index *MealTypeIndex) ([]types.NewAssignment, []string, error) {
	if proposal == nil || len(proposal.MealPlan) == 0 {
		return nil, nil, fmt.Errorf("%w: proposal has no meal_plan entries", ErrUpstream)
	}
	if len(proposal.MealPlan) != models.PlanLengthDays {
		return nil, nil, fmt.Errorf("%w: proposal has %d day entries, want %d", ErrUpstream,
			len(proposal.MealPlan), models.PlanLengthDays)
	}

	start = types.NormalizeDate(start)
	end := types.AddDays(start, models.PlanLengthDays-1)

	active := make(map[uint]bool, len(catalog))
	for _, item := range catalog {
		if item.IsActive {
			active[item.ID] = true
		}
	}

	type slotKey struct {
		date       time.Time
		mealTypeID uint
		itemID     uint
	}
	seen := make(map[slotKey]bool)
	seenDates := make(map[time.Time]bool, len(proposal.MealPlan))
	droppedSet := make(map[string]bool)
	var dropped []string
	var rows []types.NewAssignment

	for i, day := range proposal.MealPlan {
		date, err := proposalDate(day, start)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: day %d: %v", ErrValidation, i+1, err)
		}
		if date.Before(start) || date.After(end) {
			return nil, nil, fmt.Errorf("%w: date %s is outside %s to %s", ErrValidation,
				types.FormatDate(date), types.FormatDate(start), types.FormatDate(end))
		}
		if seenDates[date] {
			return nil, nil, fmt.Errorf("%w: date %s appears more than once", ErrUpstream, types.FormatDate(date))
		}
		seenDates[date] = true

		type resolvedMeal struct {
			name     string
			mealType models.MealType
		}
		meals := make([]resolvedMeal, 0, len(day.Meals))
		for name := range day.Meals {
			mt, ok := index.Resolve(name)
			if !ok {
				if !droppedSet[name] {
					droppedSet[name] = true
					dropped = append(dropped, name)
				}
				continue
			}
			meals = append(meals, resolvedMeal{name: name, mealType: mt})
		}
		sort.Slice(meals, func(a, b int) bool {
			if meals[a].mealType.SortOrder != meals[b].mealType.SortOrder {
				return meals[a].mealType.SortOrder < meals[b].mealType.SortOrder
			}
			if meals[a].mealType.ID != meals[b].mealType.ID {
				return meals[a].mealType.ID < meals[b].mealType.ID
			}
			return meals[a].name < meals[b].name
		})

		for _, meal := range meals {
			for _, item := range day.Meals[meal.name] {
				id := uint(item.ID)
				if !active[id] {
					return nil, nil, fmt.Errorf("%w: meal item %d on %s is unknown or inactive", ErrValidation, id, types.FormatDate(date))
				}
				key := slotKey{date: date, mealTypeID: meal.mealType.ID, itemID: id}
				if seen[key] {
					continue
				}
				seen[key] = true
				rows = append(rows, types.NewAssignment{Date: date, MealTypeID: meal.mealType.ID, MealItemID: id})
			}
		}
	}

	sort.Strings(dropped)
	if len(rows) == 0 {
		return nil, dropped, fmt.Errorf("%w: proposal contains no usable meals", ErrValidation)
	}

	// Days may arrive out of order; rows within a day are already ordered.
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].Date.Before(rows[b].Date) })
	return rows, dropped, nil
}

// proposalDate uses the explicit date when present and falls back to the
// 1-based day number.
func proposalDate(day types.ProposalDay, start time.Time) (time.Time, error) {
	if day.Date != "" {
		return types.ParseDate(day.Date)
	}
	if day.Day < 1 {
		return time.Time{}, fmt.Errorf("entry has neither date nor day number")
	}
	return types.AddDays(start, day.Day-1), nil
}
