package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

// Planner proposes a 7-day plan for one user from the active catalog.
type Planner interface {
	ProposePlan(ctx context.Context, profile *types.PlannerProfile, catalog []models.MealItem, start time.Time) (*types.Proposal, error)
}

// IngredientLookup resolves the ingredients of many items in one call.
type IngredientLookup interface {
	GetIngredientsForItems(ctx context.Context, itemIDs []uint) (map[uint][]types.Ingredient, error)
}

// EventPublisher announces newly generated plans to downstream consumers.
type EventPublisher interface {
	PublishPlanGenerated(ctx context.Context, event types.PlanGeneratedEvent) error
	Close() error
}

// ReportArchiver stores rollover summaries.
type ReportArchiver interface {
	ArchiveSummary(ctx context.Context, summary *types.RolloverSummary) error
}

// IAuthService defines the interface for token operations
type IAuthService interface {
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(userID uuid.UUID, ttl time.Duration) (string, error)
}

// IMutationService defines single-slot plan edits
type IMutationService interface {
	SwapItem(ctx context.Context, owner uuid.UUID, assignmentID, newItemID uint) (*types.SwapResult, error)
	AddItem(ctx context.Context, owner uuid.UUID, planID uint, date time.Time, mealTypeID, itemID uint) (*models.PlanAssignment, error)
	RemoveItem(ctx context.Context, owner uuid.UUID, assignmentID uint) error
	SlotHistory(ctx context.Context, owner uuid.UUID, assignmentID uint) ([]models.PlanAssignment, error)
}

// IPlanViewService defines the read side of meal plans
type IPlanViewService interface {
	ListPlans(ctx context.Context, owner uuid.UUID, filters types.PlanFilters) ([]models.MealPlan, error)
	PlanView(ctx context.Context, owner uuid.UUID, planID uint, withIngredients bool) (*types.PlanView, error)
	ActivePlanForDate(ctx context.Context, owner uuid.UUID, date time.Time, withIngredients bool) (*types.PlanView, error)
	ActivePlansView(ctx context.Context, owner uuid.UUID, withIngredients bool) ([]types.DayView, error)
	GroceryList(ctx context.Context, owner uuid.UUID) (*types.GroceryList, error)
	DeleteOwnerData(ctx context.Context, owner uuid.UUID) (int64, error)
}

// IPlanGenerator creates plans on demand
type IPlanGenerator interface {
	GeneratePlan(ctx context.Context, owner uuid.UUID, start time.Time) (*types.GeneratePlanResponse, error)
}

// ICatalogService defines catalog reads exposed over HTTP
type ICatalogService interface {
	ListItems(ctx context.Context, filters types.ItemFilters) ([]models.MealItem, error)
	ListMealTypes(ctx context.Context) ([]models.MealType, error)
}
