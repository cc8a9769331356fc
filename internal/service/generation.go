package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

// ProfileSource supplies the planner input for a user.
type ProfileSource interface {
	PlannerProfile(ctx context.Context, owner uuid.UUID) (*types.PlannerProfile, error)
}

// PlanExistsError is returned when a plan for the requested range already
// exists. It matches ErrConflict.
type PlanExistsError struct {
	PlanID    uint
	StartDate time.Time
}

func (e *PlanExistsError) Error() string {
	return fmt.Sprintf("meal plan %d already covers %s", e.PlanID, types.FormatDate(e.StartDate))
}

func (e *PlanExistsError) Unwrap() error { return ErrConflict }

// StageError attributes a generation failure to the step that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// StageOf returns the stage recorded on err, or fallback when there is none.
func StageOf(err error, fallback string) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return fallback
}

// PlanGenerator builds a plan for one user: profile, catalog, planner
// proposal, validation and persistence. It serves both on-demand requests and
// the rollover scheduler.
type PlanGenerator struct {
	store    *PlanStore
	catalog  *CatalogService
	profiles ProfileSource
	planner  Planner
	events   EventPublisher
	log      *zap.SugaredLogger
}

func NewPlanGenerator(store *PlanStore, catalog *CatalogService, profiles ProfileSource, planner Planner, events EventPublisher, log *zap.SugaredLogger) *PlanGenerator {
	return &PlanGenerator{
		store:    store,
		catalog:  catalog,
		profiles: profiles,
		planner:  planner,
		events:   events,
		log:      log,
	}
}

// GenerationResult describes a plan created by Generate.
type GenerationResult struct {
	Plan         *models.MealPlan
	Assignments  int
	DroppedMeals []string
}

// GeneratePlan creates a plan starting on start for owner. An existing plan
// for the same range yields a *PlanExistsError.
func (g *PlanGenerator) GeneratePlan(ctx context.Context, owner uuid.UUID, start time.Time) (*types.GeneratePlanResponse, error) {
	start = types.NormalizeDate(start)

	existing, err := g.store.FindPlanByRange(ctx, owner, start)
	if err == nil {
		return nil, &PlanExistsError{PlanID: existing.ID, StartDate: existing.StartDate}
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	result, err := g.Generate(ctx, owner, start, 0, "api")
	if err != nil {
		if errors.Is(err, ErrConflict) {
			if plan, findErr := g.store.FindPlanByRange(ctx, owner, start); findErr == nil {
				return nil, &PlanExistsError{PlanID: plan.ID, StartDate: plan.StartDate}
			}
		}
		return nil, err
	}

	return &types.GeneratePlanResponse{
		UserMealPlanID: result.Plan.ID,
		StartDate:      types.FormatDate(result.Plan.StartDate),
		EndDate:        types.FormatDate(result.Plan.EndDate),
		TotalMeals:     result.Assignments,
		TotalDays:      models.PlanLengthDays,
	}, nil
}

// Generate runs the full pipeline without the existence pre-check. Failures
// are wrapped in a *StageError. previousID and source are only carried into
// the published event.
func (g *PlanGenerator) Generate(ctx context.Context, owner uuid.UUID, start time.Time, previousID uint, source string) (*GenerationResult, error) {
	start = types.NormalizeDate(start)

	profile, err := g.profiles.PlannerProfile(ctx, owner)
	if err != nil {
		return nil, &StageError{Stage: types.StageProfile, Err: err}
	}

	catalog, err := g.catalog.ListItems(ctx, types.ItemFilters{})
	if err != nil {
		return nil, &StageError{Stage: types.StageCatalog, Err: err}
	}
	if len(catalog) == 0 {
		return nil, &StageError{Stage: types.StageCatalog, Err: fmt.Errorf("%w: no active meal items", ErrValidation)}
	}
	index, err := g.catalog.MealTypeIndex(ctx)
	if err != nil {
		return nil, &StageError{Stage: types.StageCatalog, Err: err}
	}

	proposal, err := g.planner.ProposePlan(ctx, profile, catalog, start)
	if err != nil {
		return nil, &StageError{Stage: types.StagePlanner, Err: err}
	}

	rows, dropped, err := ValidateProposal(proposal, start, catalog, index)
	if err != nil {
		return nil, &StageError{Stage: types.StageValidate, Err: err}
	}
	if len(dropped) > 0 {
		g.log.Warnw("dropped unknown meal types from proposal", "owner", owner, "meal_types", dropped)
	}

	plan, err := g.store.CreatePlanWithAssignments(ctx, owner, start, rows)
	if err != nil {
		return nil, &StageError{Stage: types.StagePersist, Err: err}
	}

	g.log.Infow("generated meal plan", "owner", owner, "plan_id", plan.ID,
		"start_date", types.FormatDate(plan.StartDate), "assignments", len(rows), "source", source)

	if g.events != nil {
		evt := types.PlanGeneratedEvent{
			OwnerID:     owner,
			PlanID:      plan.ID,
			PreviousID:  previousID,
			StartDate:   types.FormatDate(plan.StartDate),
			EndDate:     types.FormatDate(plan.EndDate),
			Assignments: len(rows),
			Source:      source,
		}
		if err := g.events.PublishPlanGenerated(ctx, evt); err != nil {
			// The plan is already committed; a lost event is not a failed generation.
			g.log.Warnw("failed to publish plan event", "plan_id", plan.ID, "error", err)
		}
	}

	return &GenerationResult{Plan: plan, Assignments: len(rows), DroppedMeals: dropped}, nil
}

var _ IPlanGenerator = (*PlanGenerator)(nil)
