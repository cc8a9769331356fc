package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/foodeasy/backend/internal/metrics"
	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

// LeadDays is how many days before a plan ends its successor is generated.
const LeadDays = 2

var (
	// ErrRolloverAlreadyRunning is returned when Start is called twice
	ErrRolloverAlreadyRunning = errors.New("rollover daemon already running")
)

const (
	DefaultRolloverWorkers      = 4
	DefaultRolloverInterval     = 24 * time.Hour
	DefaultRolloverOwnerTimeout = 2 * time.Minute
)

// planGenerator is the part of PlanGenerator the scheduler depends on.
type planGenerator interface {
	Generate(ctx context.Context, owner uuid.UUID, start time.Time, previousID uint, source string) (*GenerationResult, error)
}

// RolloverConfig holds configuration for the rollover scheduler
type RolloverConfig struct {
	// Workers bounds how many owners are processed at once
	Workers int

	// OwnerTimeout bounds the work done for a single owner
	OwnerTimeout time.Duration

	// Interval is the time between daemon runs
	Interval time.Duration
}

// RolloverService retires expired plans and generates successors for plans
// about to end.
type RolloverService struct {
	store     *PlanStore
	generator planGenerator
	archiver  ReportArchiver
	config    RolloverConfig
	log       *zap.SugaredLogger
	now       func() time.Time

	stopCh   chan struct{}
	stoppedC chan struct{}
	running  bool
	mu       sync.RWMutex
}

// NewRolloverService creates a rollover scheduler. archiver may be nil.
func NewRolloverService(store *PlanStore, generator planGenerator, archiver ReportArchiver, config RolloverConfig, log *zap.SugaredLogger) *RolloverService {
	if config.Workers <= 0 {
		config.Workers = DefaultRolloverWorkers
	}
	if config.Interval <= 0 {
		config.Interval = DefaultRolloverInterval
	}
	if config.OwnerTimeout <= 0 {
		config.OwnerTimeout = DefaultRolloverOwnerTimeout
	}

	return &RolloverService{
		store:     store,
		generator: generator,
		archiver:  archiver,
		config:    config,
		log:       log,
		now:       time.Now,
	}
}

// Run processes every active plan as of today:
//   - plans with end_date < today are deactivated;
//   - plans with end_date == today+LeadDays get a successor starting the day
//     after they end, unless one already exists.
//
// Owners are processed concurrently. Failures are recorded per owner in the
// summary and never abort the run; the only error returned is a failure to
// list the active plans.
func (s *RolloverService) Run(ctx context.Context, today time.Time) (*types.RolloverSummary, error) {
	today = types.NormalizeDate(today)
	summary := &types.RolloverSummary{
		RunDate:          types.FormatDate(today),
		StartedAt:        time.Now().UTC(),
		InactivatedPlans: []uint{},
		GeneratedPlans:   []types.GeneratedPlan{},
		Failures:         []types.RolloverFailure{},
	}

	plans, err := s.store.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	summary.TotalActivePlans = len(plans)

	var owners []uuid.UUID
	byOwner := make(map[uuid.UUID][]models.MealPlan)
	for _, p := range plans {
		if _, ok := byOwner[p.OwnerID]; !ok {
			owners = append(owners, p.OwnerID)
		}
		byOwner[p.OwnerID] = append(byOwner[p.OwnerID], p)
	}

	s.log.Infow("starting rollover run", "run_date", summary.RunDate, "active_plans", len(plans), "owners", len(owners))

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.config.Workers)

	for _, owner := range owners {
		owner := owner
		ownerPlans := byOwner[owner]
		g.Go(func() error {
			outcome := s.processOwner(ctx, owner, ownerPlans, today)

			mu.Lock()
			defer mu.Unlock()
			summary.InactivatedPlans = append(summary.InactivatedPlans, outcome.inactivated...)
			summary.GeneratedPlans = append(summary.GeneratedPlans, outcome.generated...)
			summary.Skipped += outcome.skipped
			summary.Failures = append(summary.Failures, outcome.failures...)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(summary.InactivatedPlans, func(i, j int) bool { return summary.InactivatedPlans[i] < summary.InactivatedPlans[j] })
	sort.Slice(summary.GeneratedPlans, func(i, j int) bool { return summary.GeneratedPlans[i].PreviousID < summary.GeneratedPlans[j].PreviousID })
	sort.Slice(summary.Failures, func(i, j int) bool { return summary.Failures[i].PlanID < summary.Failures[j].PlanID })
	summary.Inactivated = len(summary.InactivatedPlans)
	summary.Generated = len(summary.GeneratedPlans)
	summary.FinishedAt = time.Now().UTC()

	s.record(summary)

	if s.archiver != nil {
		if err := s.archiver.ArchiveSummary(ctx, summary); err != nil {
			s.log.Warnw("failed to archive rollover summary", "run_date", summary.RunDate, "error", err)
		}
	}

	return summary, nil
}

type ownerOutcome struct {
	inactivated []uint
	generated   []types.GeneratedPlan
	skipped     int
	failures    []types.RolloverFailure
}

func (s *RolloverService) processOwner(ctx context.Context, owner uuid.UUID, plans []models.MealPlan, today time.Time) ownerOutcome {
	ctx, cancel := context.WithTimeout(ctx, s.config.OwnerTimeout)
	defer cancel()

	var out ownerOutcome
	fail := func(plan models.MealPlan, stage string, err error) {
		s.log.Errorw("rollover failed", "owner", owner, "plan_id", plan.ID, "stage", stage, "error", err)
		out.failures = append(out.failures, types.RolloverFailure{
			OwnerID: owner,
			PlanID:  plan.ID,
			Stage:   stage,
			Error:   err.Error(),
		})
	}

	trigger := types.AddDays(today, LeadDays)
	for _, plan := range plans {
		end := types.NormalizeDate(plan.EndDate)

		switch {
		case end.Before(today):
			if err := s.store.DeactivatePlan(ctx, plan.ID); err != nil {
				fail(plan, types.StageDeactivate, err)
				continue
			}
			s.log.Infow("deactivated expired meal plan", "owner", owner, "plan_id", plan.ID, "end_date", types.FormatDate(end))
			out.inactivated = append(out.inactivated, plan.ID)

		case end.Equal(trigger):
			next := types.AddDays(end, 1)
			if _, err := s.store.FindPlanByRange(ctx, owner, next); err == nil {
				out.skipped++
				continue
			} else if !errors.Is(err, ErrNotFound) {
				fail(plan, types.StageLookup, err)
				continue
			}

			result, err := s.generator.Generate(ctx, owner, next, plan.ID, "rollover")
			if err != nil {
				if errors.Is(err, ErrConflict) {
					out.skipped++
					continue
				}
				fail(plan, StageOf(err, types.StagePersist), err)
				continue
			}

			out.generated = append(out.generated, types.GeneratedPlan{
				OwnerID:      owner,
				PreviousID:   plan.ID,
				PlanID:       result.Plan.ID,
				StartDate:    types.FormatDate(result.Plan.StartDate),
				EndDate:      types.FormatDate(result.Plan.EndDate),
				Assignments:  result.Assignments,
				DroppedMeals: result.DroppedMeals,
			})
		}
	}
	return out
}

func (s *RolloverService) record(summary *types.RolloverSummary) {
	metrics.RolloverPlansTotal.WithLabelValues(metrics.OutcomeInactivated).Add(float64(summary.Inactivated))
	metrics.RolloverPlansTotal.WithLabelValues(metrics.OutcomeGenerated).Add(float64(summary.Generated))
	metrics.RolloverPlansTotal.WithLabelValues(metrics.OutcomeSkipped).Add(float64(summary.Skipped))
	metrics.RolloverPlansTotal.WithLabelValues(metrics.OutcomeFailed).Add(float64(len(summary.Failures)))
	metrics.RolloverRunDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	metrics.RolloverLastRun.Set(float64(summary.FinishedAt.Unix()))

	s.log.Infow("rollover run complete",
		"run_date", summary.RunDate,
		"total_meal_plans", summary.TotalActivePlans,
		"inactivated", summary.Inactivated,
		"generated", summary.Generated,
		"skipped", summary.Skipped,
		"failures", len(summary.Failures),
		"duration", summary.FinishedAt.Sub(summary.StartedAt))
}

// Start runs the rollover immediately and then once per interval until Stop
// is called or ctx is cancelled. A stopped daemon can be started again.
func (s *RolloverService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrRolloverAlreadyRunning
	}
	s.running = true
	stopCh := make(chan struct{})
	stoppedC := make(chan struct{})
	s.stopCh = stopCh
	s.stoppedC = stoppedC
	s.mu.Unlock()

	s.log.Infow("starting rollover daemon", "interval", s.config.Interval, "workers", s.config.Workers)

	go s.pollLoop(ctx, stopCh, stoppedC)
	return nil
}

// Stop stops the daemon and waits for an in-flight run to finish or ctx to expire.
func (s *RolloverService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stopCh, stoppedC := s.stopCh, s.stoppedC
	s.mu.Unlock()

	s.log.Info("stopping rollover daemon")
	close(stopCh)

	select {
	case <-stoppedC:
		s.log.Info("rollover daemon stopped")
	case <-ctx.Done():
		s.log.Warn("rollover daemon shutdown timed out")
		return ctx.Err()
	}
	return nil
}

// IsRunning returns whether the daemon is running
func (s *RolloverService) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *RolloverService) pollLoop(ctx context.Context, stopCh <-chan struct{}, stoppedC chan struct{}) {
	defer close(stoppedC)
	defer func() {
		// A newer Start owns running once it has replaced stoppedC.
		s.mu.Lock()
		if s.stoppedC == stoppedC {
			s.running = false
		}
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.runCycle(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *RolloverService) runCycle(ctx context.Context) {
	if _, err := s.Run(ctx, s.now()); err != nil {
		s.log.Errorw("rollover run failed", "error", err)
	}
}
