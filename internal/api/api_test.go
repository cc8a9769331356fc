package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodeasy/backend/internal/api"
	"github.com/foodeasy/backend/internal/logging"
	"github.com/foodeasy/backend/internal/router"
	"github.com/foodeasy/backend/internal/service"
	"github.com/foodeasy/backend/internal/testhelpers"
	"github.com/foodeasy/backend/internal/types"
)

const testSecret = "test-secret"

type apiFixture struct {
	db      *gorm.DB
	router  *gin.Engine
	planner *testhelpers.MockPlanner
	owner   uuid.UUID
	token   string
}

func setupAPITest(t *testing.T) *apiFixture {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLiteDB(t)
	testhelpers.SeedCatalog(t, db)

	owner := uuid.New()
	testhelpers.CreateProfile(t, db, owner, map[string]interface{}{"diet": "vegetarian"})

	auth := service.NewAuthService(testSecret)
	token, err := auth.GenerateToken(owner, time.Hour)
	require.NoError(t, err)

	store := service.NewPlanStore(db)
	catalog := service.NewCatalogService(db)
	planner := &testhelpers.MockPlanner{}

	engine := router.SetupRouter(router.Dependencies{
		Auth:      auth,
		Catalog:   catalog,
		Views:     service.NewPlanViewService(store, service.NewIngredientService(db), 14),
		Generator: service.NewPlanGenerator(store, catalog, service.NewProfileService(db), planner, nil, logging.Nop()),
		Mutations: service.NewMutationService(db, store, catalog, logging.Nop()),
		HealthChecks: map[string]api.HealthCheck{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
		Log: logging.Nop(),
	})

	return &apiFixture{db: db, router: engine, planner: planner, owner: owner, token: token}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+f.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *apiFixture) userPath(suffix string) string {
	return "/api/v1/users/" + f.owner.String() + suffix
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func TestRequiresAuthentication(t *testing.T) {
	f := setupAPITest(t)

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, f.userPath("/meal-plans"), nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	other := f.do(t, http.MethodGet, "/api/v1/users/"+uuid.NewString()+"/meal-plans", nil)
	assert.Equal(t, http.StatusForbidden, other.Code)
}

func TestHealth(t *testing.T) {
	f := setupAPITest(t)

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","components":{"database":"ok"}}`, rr.Body.String())
}

func TestListMealItems(t *testing.T) {
	f := setupAPITest(t)

	rr := f.do(t, http.MethodGet, "/api/v1/meal-items?can_vegan_eat=true", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		MealItems []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"meal_items"`
		Count int `json:"count"`
	}
	decode(t, rr, &resp)
	assert.Equal(t, 3, resp.Count)
	for _, item := range resp.MealItems {
		assert.NotEqual(t, uint(testhelpers.ItemDalRice), item.ID)
	}

	bad := f.do(t, http.MethodGet, "/api/v1/meal-items?is_lunch=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	mealTypes := f.do(t, http.MethodGet, "/api/v1/meal-types", nil)
	assert.Equal(t, http.StatusOK, mealTypes.Code)
	assert.Contains(t, mealTypes.Body.String(), "Breakfast")
}

func TestGeneratePlanEndpoint(t *testing.T) {
	f := setupAPITest(t)
	start := testhelpers.Date(t, "2024-01-08")
	f.planner.On("ProposePlan", mock.Anything, mock.Anything, mock.Anything, start).
		Return(testhelpers.WeekProposal(start), nil).Once()

	rr := f.do(t, http.MethodPost, f.userPath("/meal-plans/generate"), gin.H{"start_date": "2024-01-08"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created types.GeneratePlanResponse
	decode(t, rr, &created)
	assert.Equal(t, "2024-01-14", created.EndDate)
	assert.Equal(t, 21, created.TotalMeals)

	again := f.do(t, http.MethodPost, f.userPath("/meal-plans/generate"), gin.H{"start_date": "2024-01-08"})
	require.Equal(t, http.StatusConflict, again.Code)
	var conflict struct {
		Error          string `json:"error"`
		UserMealPlanID uint   `json:"user_meal_plan_id"`
	}
	decode(t, again, &conflict)
	assert.Equal(t, created.UserMealPlanID, conflict.UserMealPlanID)

	f.planner.AssertExpectations(t)
}

func TestGeneratePlanErrors(t *testing.T) {
	f := setupAPITest(t)

	bad := f.do(t, http.MethodPost, f.userPath("/meal-plans/generate"), gin.H{"start_date": "2024-13-01"})
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	start := testhelpers.Date(t, "2024-02-05")
	f.planner.On("ProposePlan", mock.Anything, mock.Anything, mock.Anything, start).
		Return(nil, errors.Join(service.ErrUpstream, errors.New("model timed out"))).Once()

	upstream := f.do(t, http.MethodPost, f.userPath("/meal-plans/generate"), gin.H{"start_date": "2024-02-05"})
	assert.Equal(t, http.StatusBadGateway, upstream.Code)
}

func TestPlanReadEndpoints(t *testing.T) {
	f := setupAPITest(t)
	plan := testhelpers.CreatePlan(t, f.db, f.owner, "2024-01-01", true)
	testhelpers.FillPlan(t, f.db, plan)
	testhelpers.CreatePlan(t, f.db, f.owner, "2023-12-01", false)

	list := f.do(t, http.MethodGet, f.userPath("/meal-plans?active=true"), nil)
	require.Equal(t, http.StatusOK, list.Code)
	var plans struct {
		MealPlans []struct {
			UserMealPlanID uint   `json:"user_meal_plan_id"`
			StartDate      string `json:"start_date"`
		} `json:"meal_plans"`
	}
	decode(t, list, &plans)
	require.Len(t, plans.MealPlans, 1)
	assert.Equal(t, "2024-01-01", plans.MealPlans[0].StartDate)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, f.userPath("/meal-plans?limit=-1"), nil).Code)

	get := f.do(t, http.MethodGet, f.userPath("/meal-plans/"+itoa(plan.ID)+"?ingredients=true"), nil)
	require.Equal(t, http.StatusOK, get.Code)
	var view types.PlanView
	decode(t, get, &view)
	assert.Equal(t, plan.ID, view.PlanID)
	assert.Len(t, view.Days, 7)
	assert.Equal(t, []string{"Flattened Rice"}, view.Days[0].Meals[0].Items[0].IngredientsByType["Grains"])

	current := f.do(t, http.MethodGet, f.userPath("/meal-plans/current?date=2024-01-03"), nil)
	require.Equal(t, http.StatusOK, current.Code)

	missing := f.do(t, http.MethodGet, f.userPath("/meal-plans/current?date=2025-01-03"), nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	badDate := f.do(t, http.MethodGet, f.userPath("/meal-plans/current?date=03-01-2024"), nil)
	assert.Equal(t, http.StatusBadRequest, badDate.Code)

	merged := f.do(t, http.MethodGet, f.userPath("/meal-plans/view"), nil)
	require.Equal(t, http.StatusOK, merged.Code)
	var days struct {
		Days []types.DayView `json:"days"`
	}
	decode(t, merged, &days)
	assert.Len(t, days.Days, 7)

	grocery := f.do(t, http.MethodGet, f.userPath("/grocery"), nil)
	require.Equal(t, http.StatusOK, grocery.Code)
	var list2 types.GroceryList
	decode(t, grocery, &list2)
	assert.Equal(t, plan.ID, list2.PlanID)
	assert.Equal(t, 4, list2.TotalUniqueIngredients)
}

func TestPlanOfAnotherUserIsForbidden(t *testing.T) {
	f := setupAPITest(t)
	foreign := testhelpers.CreatePlan(t, f.db, uuid.New(), "2024-01-01", true)

	rr := f.do(t, http.MethodGet, f.userPath("/meal-plans/"+itoa(foreign.ID)), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSlotEditing(t *testing.T) {
	f := setupAPITest(t)
	plan := testhelpers.CreatePlan(t, f.db, f.owner, "2024-01-01", true)
	breakfast := testhelpers.AddAssignment(t, f.db, plan.ID, "2024-01-01", testhelpers.MealTypeBreakfast, testhelpers.ItemPoha)

	// Add item 45 to lunch on the second day.
	added := f.do(t, http.MethodPost, f.userPath("/meal-plans/"+itoa(plan.ID)+"/items"), gin.H{
		"date": "2024-01-02", "meal_type_id": testhelpers.MealTypeLunch, "meal_item_id": testhelpers.ItemPaneerWrap,
	})
	require.Equal(t, http.StatusCreated, added.Code, added.Body.String())
	var slot struct {
		SlotID uint   `json:"slot_id"`
		Date   string `json:"date"`
	}
	decode(t, added, &slot)
	assert.NotEqual(t, breakfast.ID, slot.SlotID)
	assert.Equal(t, "2024-01-02", slot.Date)

	outside := f.do(t, http.MethodPost, f.userPath("/meal-plans/"+itoa(plan.ID)+"/items"), gin.H{
		"date": "2024-01-09", "meal_type_id": testhelpers.MealTypeLunch, "meal_item_id": testhelpers.ItemPaneerWrap,
	})
	assert.Equal(t, http.StatusBadRequest, outside.Code)

	// Swap breakfast from item 10 to item 45.
	swapped := f.do(t, http.MethodPut, f.userPath("/meal-plan-items/"+itoa(breakfast.ID)+"/swap"), gin.H{"meal_item_id": testhelpers.ItemPaneerWrap})
	require.Equal(t, http.StatusOK, swapped.Code, swapped.Body.String())
	var result types.SwapResult
	decode(t, swapped, &result)
	assert.Equal(t, breakfast.ID, result.OldDetailID)
	assert.Equal(t, uint(testhelpers.ItemPoha), result.OldMealItemID)
	assert.Equal(t, uint(testhelpers.ItemPaneerWrap), result.NewMealItemID)

	stale := f.do(t, http.MethodPut, f.userPath("/meal-plan-items/"+itoa(breakfast.ID)+"/swap"), gin.H{"meal_item_id": testhelpers.ItemIdli})
	assert.Equal(t, http.StatusNotFound, stale.Code)

	history := f.do(t, http.MethodGet, f.userPath("/meal-plan-items/"+itoa(result.NewDetailID)+"/history"), nil)
	require.Equal(t, http.StatusOK, history.Code)
	var chain struct {
		History []struct {
			SlotID uint   `json:"slot_id"`
			Status string `json:"status"`
		} `json:"history"`
	}
	decode(t, history, &chain)
	require.Len(t, chain.History, 2)
	assert.Equal(t, result.NewDetailID, chain.History[0].SlotID)
	assert.Equal(t, breakfast.ID, chain.History[1].SlotID)

	removed := f.do(t, http.MethodDelete, f.userPath("/meal-plan-items/"+itoa(result.NewDetailID)), nil)
	assert.Equal(t, http.StatusNoContent, removed.Code)
	again := f.do(t, http.MethodDelete, f.userPath("/meal-plan-items/"+itoa(result.NewDetailID)), nil)
	assert.Equal(t, http.StatusNotFound, again.Code)

	get := f.do(t, http.MethodGet, f.userPath("/meal-plans/"+itoa(plan.ID)), nil)
	require.Equal(t, http.StatusOK, get.Code)
	var view types.PlanView
	decode(t, get, &view)
	require.Len(t, view.Days, 1)
	assert.Equal(t, "2024-01-02", view.Days[0].Date)
	assert.Equal(t, slot.SlotID, view.Days[0].Meals[0].Items[0].SlotID)

	badID := f.do(t, http.MethodDelete, f.userPath("/meal-plan-items/abc"), nil)
	assert.Equal(t, http.StatusBadRequest, badID.Code)
}

func TestDeleteOwnerDataEndpoint(t *testing.T) {
	f := setupAPITest(t)
	testhelpers.FillPlan(t, f.db, testhelpers.CreatePlan(t, f.db, f.owner, "2024-01-01", true))

	rr := f.do(t, http.MethodDelete, f.userPath("/meal-plans"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted_plans":1}`, rr.Body.String())

	grocery := f.do(t, http.MethodGet, f.userPath("/grocery"), nil)
	assert.Equal(t, http.StatusNotFound, grocery.Code)
}
