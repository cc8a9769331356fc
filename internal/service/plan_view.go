package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

// PlanViewService renders stored plans as aggregated views.
type PlanViewService struct {
	store        *PlanStore
	ingredients  IngredientLookup
	maxViewDates int
}

func NewPlanViewService(store *PlanStore, ingredients IngredientLookup, maxViewDates int) *PlanViewService {
	return &PlanViewService{store: store, ingredients: ingredients, maxViewDates: maxViewDates}
}

// ListPlans returns the owner's plans without their assignments.
func (s *PlanViewService) ListPlans(ctx context.Context, owner uuid.UUID, filters types.PlanFilters) ([]models.MealPlan, error) {
	return s.store.ListPlans(ctx, owner, filters)
}

// PlanView renders one plan. Plans of other owners are ErrForbidden.
func (s *PlanViewService) PlanView(ctx context.Context, owner uuid.UUID, planID uint, withIngredients bool) (*types.PlanView, error) {
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.OwnerID != owner {
		return nil, fmt.Errorf("%w: meal plan %d belongs to another user", ErrForbidden, planID)
	}
	return s.render(ctx, plan, withIngredients)
}

// ActivePlanForDate renders the owner's active plan containing date.
func (s *PlanViewService) ActivePlanForDate(ctx context.Context, owner uuid.UUID, date time.Time, withIngredients bool) (*types.PlanView, error) {
	plan, err := s.store.GetActivePlan(ctx, owner, date)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, plan, withIngredients)
}

// ActivePlansView merges every active plan of the owner into one view,
// keeping the earliest maxViewDates dates.
func (s *PlanViewService) ActivePlansView(ctx context.Context, owner uuid.UUID, withIngredients bool) ([]types.DayView, error) {
	plans, err := s.store.ListActivePlansForOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return []types.DayView{}, nil
	}

	ids := make([]uint, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.ID)
	}
	rows, err := s.store.ListAssignmentRows(ctx, ids...)
	if err != nil {
		return nil, err
	}

	days := CapDays(AggregateAssignments(rows), s.maxViewDates)
	if withIngredients {
		if err := AttachIngredients(ctx, days, s.ingredients); err != nil {
			return nil, err
		}
	}
	return days, nil
}

// GroceryList collects the unique ingredients of the owner's newest active
// plan, grouped by category.
func (s *PlanViewService) GroceryList(ctx context.Context, owner uuid.UUID) (*types.GroceryList, error) {
	plans, err := s.store.ListActivePlansForOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: no active meal plan", ErrNotFound)
	}
	plan := plans[0]
	for _, p := range plans[1:] {
		if p.ID > plan.ID {
			plan = p
		}
	}

	rows, err := s.store.ListAssignmentRows(ctx, plan.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	var itemIDs []uint
	for _, r := range rows {
		if !seen[r.MealItemID] {
			seen[r.MealItemID] = true
			itemIDs = append(itemIDs, r.MealItemID)
		}
	}

	list := &types.GroceryList{
		PlanID:             plan.ID,
		StartDate:          types.FormatDate(plan.StartDate),
		EndDate:            types.FormatDate(plan.EndDate),
		GroceryItemsByType: map[string][]string{},
	}
	if len(itemIDs) == 0 {
		return list, nil
	}

	byItem, err := s.ingredients.GetIngredientsForItems(ctx, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build grocery list: %w", err)
	}

	var all []types.Ingredient
	for _, id := range itemIDs {
		all = append(all, byItem[id]...)
	}
	list.GroceryItemsByType = GroupIngredientsByType(all)

	unique := make(map[string]bool)
	for _, ing := range all {
		unique[ing.Name] = true
	}
	list.TotalUniqueIngredients = len(unique)
	return list, nil
}

// DeleteOwnerData erases all plan data of the owner.
func (s *PlanViewService) DeleteOwnerData(ctx context.Context, owner uuid.UUID) (int64, error) {
	return s.store.DeleteOwnerData(ctx, owner)
}

func (s *PlanViewService) render(ctx context.Context, plan *models.MealPlan, withIngredients bool) (*types.PlanView, error) {
	rows, err := s.store.ListAssignmentRows(ctx, plan.ID)
	if err != nil {
		return nil, err
	}

	days := AggregateAssignments(rows)
	if withIngredients {
		if err := AttachIngredients(ctx, days, s.ingredients); err != nil {
			return nil, err
		}
	}

	return &types.PlanView{
		PlanID:    plan.ID,
		OwnerID:   plan.OwnerID,
		StartDate: types.FormatDate(plan.StartDate),
		EndDate:   types.FormatDate(plan.EndDate),
		IsActive:  plan.IsActive,
		Days:      days,
	}, nil
}

var _ IPlanViewService = (*PlanViewService)(nil)
