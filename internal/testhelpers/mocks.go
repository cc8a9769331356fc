package testhelpers

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

// MockPlanner is a mock implementation of the Planner interface
type MockPlanner struct {
	mock.Mock
}

func (m *MockPlanner) ProposePlan(ctx context.Context, profile *types.PlannerProfile, catalog []models.MealItem, start time.Time) (*types.Proposal, error) {
	args := m.Called(ctx, profile, catalog, start)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Proposal), args.Error(1)
}

// MockEventPublisher is a mock implementation of the EventPublisher interface
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishPlanGenerated(ctx context.Context, event types.PlanGeneratedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// WeekProposal returns a proposal for the 7 days from start with Poha for
// breakfast, Dal Rice for lunch and Khichdi for dinner each day.
func WeekProposal(start time.Time) *types.Proposal {
	p := &types.Proposal{}
	for d := 0; d < models.PlanLengthDays; d++ {
		p.MealPlan = append(p.MealPlan, types.ProposalDay{
			Day:  d + 1,
			Date: types.FormatDate(types.AddDays(start, d)),
			Meals: map[string][]types.ProposedItem{
				"breakfast": {{ID: types.FlexibleID(ItemPoha), Name: "Poha"}},
				"lunch":     {{ID: types.FlexibleID(ItemDalRice), Name: "Dal Rice"}},
				"dinner":    {{ID: types.FlexibleID(ItemKhichdi), Name: "Khichdi"}},
			},
		})
	}
	return p
}
