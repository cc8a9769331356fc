package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

const (
	defaultPlanListLimit = 50
	maxPlanListLimit     = 200
	assignmentBatchSize  = 100
)

// PlanStore persists meal plans and their assignments.
type PlanStore struct {
	db *gorm.DB
}

func NewPlanStore(db *gorm.DB) *PlanStore {
	return &PlanStore{db: db}
}

// CreatePlan creates an active plan covering start through start+6.
// It returns ErrConflict when the owner already has a plan for that range,
// active or not.
func (s *PlanStore) CreatePlan(ctx context.Context, owner uuid.UUID, start time.Time) (*models.MealPlan, error) {
	start = types.NormalizeDate(start)
	plan := &models.MealPlan{
		OwnerID:   owner,
		StartDate: start,
		EndDate:   types.AddDays(start, models.PlanLengthDays-1),
		IsActive:  true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.MealPlan{}).
			Where("owner_id = ? AND start_date = ? AND end_date = ?", owner, plan.StartDate, plan.EndDate).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing plans: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: plan for %s to %s already exists", ErrConflict,
				types.FormatDate(plan.StartDate), types.FormatDate(plan.EndDate))
		}
		if err := tx.Create(plan).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: plan for %s already exists", ErrConflict, types.FormatDate(plan.StartDate))
			}
			return fmt.Errorf("failed to create meal plan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// CreatePlanWithAssignments creates a plan and fills it. If the assignments
// cannot be written the new plan is deleted again so no empty plan is left
// behind.
func (s *PlanStore) CreatePlanWithAssignments(ctx context.Context, owner uuid.UUID, start time.Time, rows []types.NewAssignment) (*models.MealPlan, error) {
	plan, err := s.CreatePlan(ctx, owner, start)
	if err != nil {
		return nil, err
	}

	if err := s.BulkInsertAssignments(ctx, plan.ID, rows); err != nil {
		insertErr := fmt.Errorf("failed to insert assignments for plan %d: %w", plan.ID, err)
		if delErr := s.DeletePlan(context.WithoutCancel(ctx), plan.ID); delErr != nil {
			return nil, errors.Join(insertErr, fmt.Errorf("failed to remove partial plan %d: %w", plan.ID, delErr))
		}
		return nil, insertErr
	}
	return plan, nil
}

// BulkInsertAssignments writes all rows as active assignments of planID in a
// single transaction. Either every row is written or none is.
func (s *PlanStore) BulkInsertAssignments(ctx context.Context, planID uint, rows []types.NewAssignment) error {
	if len(rows) == 0 {
		return nil
	}

	records := make([]models.PlanAssignment, 0, len(rows))
	for _, r := range rows {
		records = append(records, models.PlanAssignment{
			PlanID:     planID,
			Date:       types.NormalizeDate(r.Date),
			MealTypeID: r.MealTypeID,
			MealItemID: r.MealItemID,
			Status:     models.AssignmentActive,
		})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&records, assignmentBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert assignments: %w", err)
		}
		return nil
	})
}

// GetPlan returns the plan with the given id.
func (s *PlanStore) GetPlan(ctx context.Context, id uint) (*models.MealPlan, error) {
	var plan models.MealPlan
	if err := s.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: meal plan %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}
	return &plan, nil
}

// GetActivePlan returns the owner's active plan containing asOf. When more
// than one qualifies the most recently created wins.
func (s *PlanStore) GetActivePlan(ctx context.Context, owner uuid.UUID, asOf time.Time) (*models.MealPlan, error) {
	day := types.NormalizeDate(asOf)

	var plan models.MealPlan
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ? AND start_date <= ? AND end_date >= ?", owner, true, day, day).
		Order("created_at DESC").Order("id DESC").
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active meal plan on %s", ErrNotFound, types.FormatDate(day))
		}
		return nil, fmt.Errorf("failed to get active meal plan: %w", err)
	}
	return &plan, nil
}

// FindPlanByRange returns the owner's plan starting on start, active or not.
func (s *PlanStore) FindPlanByRange(ctx context.Context, owner uuid.UUID, start time.Time) (*models.MealPlan, error) {
	start = types.NormalizeDate(start)

	var plan models.MealPlan
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND start_date = ? AND end_date = ?", owner, start, types.AddDays(start, models.PlanLengthDays-1)).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no plan starting %s", ErrNotFound, types.FormatDate(start))
		}
		return nil, fmt.Errorf("failed to look up meal plan: %w", err)
	}
	return &plan, nil
}

// ListPlans returns the owner's plans, newest first.
func (s *PlanStore) ListPlans(ctx context.Context, owner uuid.UUID, filters types.PlanFilters) ([]models.MealPlan, error) {
	query := s.db.WithContext(ctx).Where("owner_id = ?", owner)
	if filters.Active != nil {
		query = query.Where("is_active = ?", *filters.Active)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultPlanListLimit
	}
	if limit > maxPlanListLimit {
		limit = maxPlanListLimit
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var plans []models.MealPlan
	if err := query.Order("start_date DESC").Order("id DESC").Limit(limit).Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to list meal plans: %w", err)
	}
	return plans, nil
}

// ListActivePlans returns every active plan across all owners.
func (s *PlanStore) ListActivePlans(ctx context.Context) ([]models.MealPlan, error) {
	var plans []models.MealPlan
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("owner_id").Order("start_date").Order("id").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to list active meal plans: %w", err)
	}
	return plans, nil
}

// ListActivePlansForOwner returns the owner's active plans, oldest first.
func (s *PlanStore) ListActivePlansForOwner(ctx context.Context, owner uuid.UUID) ([]models.MealPlan, error) {
	var plans []models.MealPlan
	if err := s.db.WithContext(ctx).
		Where("owner_id = ? AND is_active = ?", owner, true).
		Order("start_date").Order("id").
		Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to list active meal plans: %w", err)
	}
	return plans, nil
}

// DeactivatePlan marks a plan inactive. Deactivating an inactive plan is a no-op.
func (s *PlanStore) DeactivatePlan(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&models.MealPlan{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate meal plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: meal plan %d", ErrNotFound, id)
	}
	return nil
}

// DeletePlan hard-deletes a plan and every assignment row it ever had.
func (s *PlanStore) DeletePlan(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plan_id = ?", id).Delete(&models.PlanAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
		}
		result := tx.Delete(&models.MealPlan{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete meal plan: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: meal plan %d", ErrNotFound, id)
		}
		return nil
	})
}

// DeleteOwnerData removes all plans and assignments of an owner. It returns
// the number of plans deleted.
func (s *PlanStore) DeleteOwnerData(ctx context.Context, owner uuid.UUID) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		planIDs := tx.Model(&models.MealPlan{}).Select("id").Where("owner_id = ?", owner)
		if err := tx.Where("plan_id IN (?)", planIDs).Delete(&models.PlanAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
		}
		result := tx.Where("owner_id = ?", owner).Delete(&models.MealPlan{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete meal plans: %w", result.Error)
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}

// GetAssignment returns an assignment row regardless of its status.
func (s *PlanStore) GetAssignment(ctx context.Context, id uint) (*models.PlanAssignment, error) {
	var a models.PlanAssignment
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: meal plan item %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get meal plan item: %w", err)
	}
	return &a, nil
}

// ListAssignmentRows returns the active assignments of the given plans joined
// with meal type and item names, ordered by date then id.
func (s *PlanStore) ListAssignmentRows(ctx context.Context, planIDs ...uint) ([]types.AssignmentRow, error) {
	if len(planIDs) == 0 {
		return nil, nil
	}

	var rows []types.AssignmentRow
	err := s.db.WithContext(ctx).
		Table("user_meal_plan_details AS d").
		Select(`d.id, d.plan_id, d.date, d.meal_type_id,
			COALESCE(mt.name, '') AS meal_type_name,
			COALESCE(mt.sort_order, 0) AS meal_type_sort_order,
			d.meal_item_id,
			COALESCE(mi.name, '') AS meal_item_name`).
		Joins("LEFT JOIN meal_types AS mt ON mt.id = d.meal_type_id").
		Joins("LEFT JOIN meal_items AS mi ON mi.id = d.meal_item_id").
		Where("d.plan_id IN ? AND d.status = ?", planIDs, models.AssignmentActive).
		Order("d.date ASC").Order("d.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plan items: %w", err)
	}

	for i := range rows {
		rows[i].Date = types.NormalizeDate(rows[i].Date)
	}
	return rows, nil
}

// CountActiveAssignments returns how many active rows a plan has.
func (s *PlanStore) CountActiveAssignments(ctx context.Context, planID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.PlanAssignment{}).
		Where("plan_id = ? AND status = ?", planID, models.AssignmentActive).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count meal plan items: %w", err)
	}
	return count, nil
}
