package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodeasy/backend/internal/logging"
	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/service"
	"github.com/foodeasy/backend/internal/testhelpers"
	"github.com/foodeasy/backend/internal/types"
)

type mutationFixture struct {
	db       *gorm.DB
	store    *service.PlanStore
	mutation *service.MutationService
	owner    uuid.UUID
	plan     *models.MealPlan
}

func setupMutationTest(t *testing.T) *mutationFixture {
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedCatalog(t, db)
	store := service.NewPlanStore(db)
	owner := uuid.New()

	return &mutationFixture{
		db:       db,
		store:    store,
		mutation: service.NewMutationService(db, store, service.NewCatalogService(db), logging.Nop()),
		owner:    owner,
		plan:     testhelpers.CreatePlan(t, db, owner, "2024-01-01", true),
	}
}

func TestSwapItemKeepsSlot(t *testing.T) {
	f := setupMutationTest(t)
	ctx := context.Background()
	old := testhelpers.AddAssignment(t, f.db, f.plan.ID, "2024-01-03", testhelpers.MealTypeLunch, testhelpers.ItemDalRice)

	result, err := f.mutation.SwapItem(ctx, f.owner, old.ID, testhelpers.ItemPaneerWrap)
	require.NoError(t, err)

	assert.Equal(t, old.ID, result.OldDetailID)
	assert.NotEqual(t, old.ID, result.NewDetailID)
	assert.Equal(t, testhelpers.ItemDalRice, result.OldMealItemID)
	assert.Equal(t, testhelpers.ItemPaneerWrap, result.NewMealItemID)
	assert.Equal(t, "2024-01-03", result.Date)

	prev, err := f.store.GetAssignment(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentSuperseded, prev.Status)

	replacement, err := f.store.GetAssignment(ctx, result.NewDetailID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentActive, replacement.Status)
	assert.Equal(t, prev.PlanID, replacement.PlanID)
	assert.Equal(t, types.FormatDate(prev.Date), types.FormatDate(replacement.Date))
	assert.Equal(t, prev.MealTypeID, replacement.MealTypeID)
	require.NotNil(t, replacement.SupersedesID)
	assert.Equal(t, old.ID, *replacement.SupersedesID)

	rows, err := f.store.ListAssignmentRows(ctx, f.plan.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, result.NewDetailID, rows[0].ID)
}

func TestSwapItemErrors(t *testing.T) {
	f := setupMutationTest(t)
	ctx := context.Background()
	slot := testhelpers.AddAssignment(t, f.db, f.plan.ID, "2024-01-03", testhelpers.MealTypeLunch, testhelpers.ItemDalRice)

	_, err := f.mutation.SwapItem(ctx, uuid.New(), slot.ID, testhelpers.ItemPaneerWrap)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.mutation.SwapItem(ctx, f.owner, slot.ID, testhelpers.ItemRetired)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.mutation.SwapItem(ctx, f.owner, slot.ID, 12345)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.mutation.SwapItem(ctx, f.owner, 9999, testhelpers.ItemPaneerWrap)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Failed swaps leave the slot untouched.
	stored, err := f.store.GetAssignment(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive())

	_, err = f.mutation.SwapItem(ctx, f.owner, slot.ID, testhelpers.ItemPaneerWrap)
	require.NoError(t, err)
	_, err = f.mutation.SwapItem(ctx, f.owner, slot.ID, testhelpers.ItemKhichdi)
	assert.ErrorIs(t, err, service.ErrNotFound, "superseded rows cannot be swapped again")
}

func TestConcurrentSwapsHaveOneWinner(t *testing.T) {
	f := setupMutationTest(t)
	ctx := context.Background()
	slot := testhelpers.AddAssignment(t, f.db, f.plan.ID, "2024-01-03", testhelpers.MealTypeLunch, testhelpers.ItemDalRice)

	const attempts = 5
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.mutation.SwapItem(ctx, f.owner, slot.ID, testhelpers.ItemPaneerWrap)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.True(t, errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, successes)

	count, err := f.store.CountActiveAssignments(ctx, f.plan.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestAddItem(t *testing.T) {
	f := setupMutationTest(t)
	ctx := context.Background()
	existing := testhelpers.AddAssignment(t, f.db, f.plan.ID, "2024-01-02", testhelpers.MealTypeLunch, testhelpers.ItemDalRice)

	added, err := f.mutation.AddItem(ctx, f.owner, f.plan.ID, testhelpers.Date(t, "2024-01-02"), testhelpers.MealTypeLunch, testhelpers.ItemPaneerWrap)
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, added.ID)

	rows, err := f.store.ListAssignmentRows(ctx, f.plan.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, added.ID, rows[1].ID)
	assert.Equal(t, testhelpers.ItemPaneerWrap, rows[1].MealItemID)
}

func TestAddItemValidation(t *testing.T) {
	f := setupMutationTest(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		owner    uuid.UUID
		planID   uint
		date     string
		mealType uint
		item     uint
		want     error
	}{
		{"unknown plan", f.owner, 9999, "2024-01-02", testhelpers.MealTypeLunch, testhelpers.ItemDalRice, service.ErrNotFound},
		{"other owner", uuid.New(), f.plan.ID, "2024-01-02", testhelpers.MealTypeLunch, testhelpers.ItemDalRice, service.ErrForbidden},
		{"date before range", f.owner, f.plan.ID, "2023-12-31", testhelpers.MealTypeLunch, testhelpers.ItemDalRice, service.ErrValidation},
		{"date after range", f.owner, f.plan.ID, "2024-01-08", testhelpers.MealTypeLunch, testhelpers.ItemDalRice, service.ErrValidation},
		{"unknown meal type", f.owner, f.plan.ID, "2024-01-02", 42, testhelpers.ItemDalRice, service.ErrValidation},
		{"inactive item", f.owner, f.plan.ID, "2024-01-02", testhelpers.MealTypeLunch, testhelpers.ItemRetired, service.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.mutation.AddItem(ctx, tt.owner, tt.planID, testhelpers.Date(t, tt.date), tt.mealType, tt.item)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	count, err := f.store.CountActiveAssignments(ctx, f.plan.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAddItemRejectsInactivePlan(t *testing.T) {
	f := setupMutationTest(t)
	require.NoError(t, f.store.DeactivatePlan(context.Background(), f.plan.ID))

	_, err := f.mutation.AddItem(context.Background(), f.owner, f.plan.ID, testhelpers.Date(t, "2024-01-02"), testhelpers.MealTypeLunch, testhelpers.ItemDalRice)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestSwapItemRejectsInactivePlan(t *testing.T) {
	f := setupMutationTest(t)
	ctx := context.Background()
	slot := testhelpers.AddAssignment(t, f.db, f.plan.ID, "2024-01-02", testhelpers.MealTypeLunch, testhelpers.ItemDalRice)
	require.NoError(t, f.store.DeactivatePlan(ctx, f.plan.ID))

	_, err := f.mutation.SwapItem(ctx, f.owner, slot.ID, testhelpers.ItemPaneerWrap)
	assert.ErrorIs(t, err, service.ErrValidation)

	stored, err := f.store.GetAssignment(ctx, slot.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive())
	assert.Equal(t, testhelpers.ItemDalRice, stored.MealItemID)
}

func TestRemoveItem(t *testing.T) {
	f := setupMutationTest(t)
	ctx := context.Background()
	keep := testhelpers.AddAssignment(t, f.db, f.plan.ID, "2024-01-02", testhelpers.MealTypeBreakfast, testhelpers.ItemPoha)
	slot := testhelpers.AddAssignment(t, f.db, f.plan.ID, "2024-01-02", testhelpers.MealTypeLunch, testhelpers.ItemDalRice)

	assert.ErrorIs(t, f.mutation.RemoveItem(ctx, uuid.New(), slot.ID), service.ErrForbidden)

	require.NoError(t, f.mutation.RemoveItem(ctx, f.owner, slot.ID))
	assert.ErrorIs(t, f.mutation.RemoveItem(ctx, f.owner, slot.ID), service.ErrNotFound)
	assert.ErrorIs(t, f.mutation.RemoveItem(ctx, f.owner, 9999), service.ErrNotFound)

	rows, err := f.store.ListAssignmentRows(ctx, f.plan.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, keep.ID, rows[0].ID)

	removed, err := f.store.GetAssignment(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentRemoved, removed.Status)
}

func TestSlotHistory(t *testing.T) {
	f := setupMutationTest(t)
	ctx := context.Background()
	first := testhelpers.AddAssignment(t, f.db, f.plan.ID, "2024-01-02", testhelpers.MealTypeDinner, testhelpers.ItemKhichdi)

	second, err := f.mutation.SwapItem(ctx, f.owner, first.ID, testhelpers.ItemDalRice)
	require.NoError(t, err)
	third, err := f.mutation.SwapItem(ctx, f.owner, second.NewDetailID, testhelpers.ItemPaneerWrap)
	require.NoError(t, err)

	history, err := f.mutation.SlotHistory(ctx, f.owner, third.NewDetailID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, third.NewDetailID, history[0].ID)
	assert.Equal(t, second.NewDetailID, history[1].ID)
	assert.Equal(t, first.ID, history[2].ID)
	assert.Equal(t, models.AssignmentActive, history[0].Status)
	assert.Equal(t, models.AssignmentSuperseded, history[2].Status)

	_, err = f.mutation.SlotHistory(ctx, uuid.New(), third.NewDetailID)
	assert.ErrorIs(t, err, service.ErrForbidden)
}
