package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/foodeasy/backend/internal/metrics"
	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

// maxHistoryDepth bounds the supersedes chain walked by SlotHistory.
const maxHistoryDepth = 500

// MutationService edits single slots of a plan. Edits never overwrite a row:
// the old row changes status and, for swaps, a new row references it.
type MutationService struct {
	db      *gorm.DB
	store   *PlanStore
	catalog *CatalogService
	log     *zap.SugaredLogger
}

func NewMutationService(db *gorm.DB, store *PlanStore, catalog *CatalogService, log *zap.SugaredLogger) *MutationService {
	return &MutationService{db: db, store: store, catalog: catalog, log: log}
}

// SwapItem replaces the item in an active slot. The old row becomes
// superseded and a new active row with the same plan, date and meal type
// points back at it. When two swaps race on one row exactly one wins; the
// other gets ErrNotFound.
func (s *MutationService) SwapItem(ctx context.Context, owner uuid.UUID, assignmentID, newItemID uint) (result *types.SwapResult, err error) {
	defer func() { recordMutation("swap", err) }()

	var old models.PlanAssignment
	if err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", assignmentID, models.AssignmentActive).
		First(&old).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: active meal plan item %d", ErrNotFound, assignmentID)
		}
		return nil, fmt.Errorf("failed to get meal plan item: %w", err)
	}

	plan, err := s.ownedPlan(ctx, owner, old.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, fmt.Errorf("%w: meal plan %d is no longer active", ErrValidation, plan.ID)
	}

	if err := s.requireActiveItem(ctx, newItemID); err != nil {
		return nil, err
	}

	replacement := models.PlanAssignment{
		PlanID:       old.PlanID,
		Date:         old.Date,
		MealTypeID:   old.MealTypeID,
		MealItemID:   newItemID,
		Status:       models.AssignmentActive,
		SupersedesID: &old.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PlanAssignment{}).
			Where("id = ? AND status = ?", old.ID, models.AssignmentActive).
			Update("status", models.AssignmentSuperseded)
		if res.Error != nil {
			return fmt.Errorf("failed to supersede meal plan item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: meal plan item %d was changed concurrently", ErrNotFound, old.ID)
		}
		if err := tx.Create(&replacement).Error; err != nil {
			return fmt.Errorf("failed to create replacement item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infow("swapped meal plan item",
		"owner", owner, "plan_id", old.PlanID, "old_detail_id", old.ID, "new_detail_id", replacement.ID,
		"old_item", old.MealItemID, "new_item", newItemID)

	return &types.SwapResult{
		OldDetailID:   old.ID,
		NewDetailID:   replacement.ID,
		OldMealItemID: old.MealItemID,
		NewMealItemID: newItemID,
		PlanID:        old.PlanID,
		Date:          types.FormatDate(old.Date),
		MealTypeID:    old.MealTypeID,
	}, nil
}

// AddItem places an item into a slot of an active plan. Slots may hold
// several active items.
func (s *MutationService) AddItem(ctx context.Context, owner uuid.UUID, planID uint, date time.Time, mealTypeID, itemID uint) (assignment *models.PlanAssignment, err error) {
	defer func() { recordMutation("add", err) }()

	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.OwnerID != owner {
		return nil, fmt.Errorf("%w: meal plan %d belongs to another user", ErrForbidden, planID)
	}
	if !plan.IsActive {
		return nil, fmt.Errorf("%w: meal plan %d is no longer active", ErrValidation, planID)
	}

	day := types.NormalizeDate(date)
	if !plan.Contains(day) {
		return nil, fmt.Errorf("%w: %s is outside the plan range %s to %s", ErrValidation,
			types.FormatDate(day), types.FormatDate(plan.StartDate), types.FormatDate(plan.EndDate))
	}

	mealType, err := s.catalog.GetMealType(ctx, mealTypeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown meal type %d", ErrValidation, mealTypeID)
		}
		return nil, err
	}
	if !mealType.IsActive {
		return nil, fmt.Errorf("%w: meal type %d is inactive", ErrValidation, mealTypeID)
	}

	if err := s.requireActiveItem(ctx, itemID); err != nil {
		return nil, err
	}

	assignment = &models.PlanAssignment{
		PlanID:     planID,
		Date:       day,
		MealTypeID: mealTypeID,
		MealItemID: itemID,
		Status:     models.AssignmentActive,
	}
	if err := s.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return nil, fmt.Errorf("failed to add meal plan item: %w", err)
	}

	s.log.Infow("added meal plan item", "owner", owner, "plan_id", planID, "detail_id", assignment.ID, "item", itemID)
	return assignment, nil
}

// RemoveItem retires an active slot. Removing a row that is already
// superseded or removed returns ErrNotFound.
func (s *MutationService) RemoveItem(ctx context.Context, owner uuid.UUID, assignmentID uint) (err error) {
	defer func() { recordMutation("remove", err) }()

	assignment, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if _, err := s.ownedPlan(ctx, owner, assignment.PlanID); err != nil {
		return err
	}
	if !assignment.IsActive() {
		return fmt.Errorf("%w: meal plan item %d is not active", ErrNotFound, assignmentID)
	}

	res := s.db.WithContext(ctx).Model(&models.PlanAssignment{}).
		Where("id = ? AND status = ?", assignmentID, models.AssignmentActive).
		Update("status", models.AssignmentRemoved)
	if res.Error != nil {
		return fmt.Errorf("failed to remove meal plan item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: meal plan item %d is not active", ErrNotFound, assignmentID)
	}

	s.log.Infow("removed meal plan item", "owner", owner, "plan_id", assignment.PlanID, "detail_id", assignmentID)
	return nil
}

// SlotHistory returns the row and every row it replaced, newest first.
func (s *MutationService) SlotHistory(ctx context.Context, owner uuid.UUID, assignmentID uint) ([]models.PlanAssignment, error) {
	current, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedPlan(ctx, owner, current.PlanID); err != nil {
		return nil, err
	}

	history := []models.PlanAssignment{*current}
	seen := map[uint]bool{current.ID: true}
	for next := current.SupersedesID; next != nil && len(history) < maxHistoryDepth; {
		if seen[*next] {
			break
		}
		prev, err := s.store.GetAssignment(ctx, *next)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				break
			}
			return nil, err
		}
		seen[prev.ID] = true
		history = append(history, *prev)
		next = prev.SupersedesID
	}
	return history, nil
}

func (s *MutationService) ownedPlan(ctx context.Context, owner uuid.UUID, planID uint) (*models.MealPlan, error) {
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if plan.OwnerID != owner {
		return nil, fmt.Errorf("%w: meal plan %d belongs to another user", ErrForbidden, planID)
	}
	return plan, nil
}

func (s *MutationService) requireActiveItem(ctx context.Context, itemID uint) error {
	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: unknown meal item %d", ErrValidation, itemID)
		}
		return err
	}
	if !item.IsActive {
		return fmt.Errorf("%w: meal item %d is inactive", ErrValidation, itemID)
	}
	return nil
}

func recordMutation(op string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.MutationsTotal.WithLabelValues(op, outcome).Inc()
}

var _ IMutationService = (*MutationService)(nil)
