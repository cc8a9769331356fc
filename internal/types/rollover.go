package types

import (
	"time"

	"github.com/google/uuid"
)

// Stages a rollover failure can be attributed to.
const (
	StageDeactivate = "deactivate"
	StageLookup     = "lookup"
	StageProfile    = "profile"
	StageCatalog    = "catalog"
	StagePlanner    = "planner"
	StageValidate   = "validate"
	StagePersist    = "persist"
)

// GeneratedPlan records a successor plan created by a rollover run.
type GeneratedPlan struct {
	OwnerID      uuid.UUID `json:"owner_id"`
	PreviousID   uint      `json:"previous_plan_id"`
	PlanID       uint      `json:"plan_id"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	Assignments  int       `json:"assignments"`
	DroppedMeals []string  `json:"dropped_meal_types,omitempty"`
}

// RolloverFailure records one owner-level failure. Failures never abort a run.
type RolloverFailure struct {
	OwnerID uuid.UUID `json:"owner_id"`
	PlanID  uint      `json:"plan_id"`
	Stage   string    `json:"stage"`
	Error   string    `json:"error"`
}

// RolloverSummary is the outcome of one rollover run.
type RolloverSummary struct {
	RunDate          string            `json:"run_date"`
	StartedAt        time.Time         `json:"started_at"`
	FinishedAt       time.Time         `json:"finished_at"`
	TotalActivePlans int               `json:"total_meal_plans"`
	Inactivated      int               `json:"inactivated"`
	InactivatedPlans []uint            `json:"inactivated_plans"`
	Generated        int               `json:"new_plans_generated"`
	GeneratedPlans   []GeneratedPlan   `json:"generated_plans"`
	Skipped          int               `json:"skipped"`
	Failures         []RolloverFailure `json:"failures"`
}

// PlanGeneratedEventType names the event emitted for every new plan.
const PlanGeneratedEventType = "meal_plan.generated"

// PlanGeneratedEvent announces a newly created plan to downstream consumers.
type PlanGeneratedEvent struct {
	Type        string    `json:"type"`
	OwnerID     uuid.UUID `json:"owner_id"`
	PlanID      uint      `json:"plan_id"`
	PreviousID  uint      `json:"previous_plan_id,omitempty"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Assignments int       `json:"assignments"`
	Source      string    `json:"source"`
	Timestamp   time.Time `json:"timestamp"`
}
