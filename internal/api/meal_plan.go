package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/service"
	"github.com/foodeasy/backend/internal/types"
)

const maxListLimit = 100

// planSummary is the list representation of a plan.
type planSummary struct {
	UserMealPlanID uint   `json:"user_meal_plan_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	IsActive       bool   `json:"is_active"`
}

func summarize(plans []models.MealPlan) []planSummary {
	out := make([]planSummary, 0, len(plans))
	for _, p := range plans {
		out = append(out, planSummary{
			UserMealPlanID: p.ID,
			StartDate:      types.FormatDate(p.StartDate),
			EndDate:        types.FormatDate(p.EndDate),
			IsActive:       p.IsActive,
		})
	}
	return out
}

// MealPlanHandler serves plan-level reads, generation and item additions.
type MealPlanHandler struct {
	views     service.IPlanViewService
	generator service.IPlanGenerator
	mutations service.IMutationService
	now       func() time.Time
}

func NewMealPlanHandler(views service.IPlanViewService, generator service.IPlanGenerator, mutations service.IMutationService) *MealPlanHandler {
	return &MealPlanHandler{
		views:     views,
		generator: generator,
		mutations: mutations,
		now:       time.Now,
	}
}

// RegisterRoutes mounts the handlers under a /users/:user_id group. The
// limit chain guards routes that write plans.
func (h *MealPlanHandler) RegisterRoutes(router *gin.RouterGroup, limit ...gin.HandlerFunc) {
	plans := router.Group("/meal-plans")
	{
		plans.GET("", h.ListPlans)
		plans.POST("/generate", chain(limit, h.GeneratePlan)...)
		plans.GET("/view", h.ActivePlansView)
		plans.GET("/current", h.CurrentPlan)
		plans.GET("/:plan_id", h.GetPlan)
		plans.POST("/:plan_id/items", chain(limit, h.AddItem)...)
		plans.DELETE("", h.DeleteOwnerData)
	}
	router.GET("/grocery", h.GroceryList)
}

func (h *MealPlanHandler) ListPlans(c *gin.Context) {
	var filters types.PlanFilters
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active must be true or false"})
			return
		}
		filters.Active = &active
	}
	for name, dst := range map[string]*int{"limit": &filters.Limit, "offset": &filters.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be a non-negative integer", name)})
			return
		}
		*dst = n
	}
	if filters.Limit > maxListLimit {
		filters.Limit = maxListLimit
	}

	plans, err := h.views.ListPlans(c.Request.Context(), owner(c), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal_plans": summarize(plans)})
}

// GeneratePlan creates a 7-day plan starting at start_date, or today.
func (h *MealPlanHandler) GeneratePlan(c *gin.Context) {
	var req types.GeneratePlanRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
	}

	start := types.NormalizeDate(h.now())
	if req.StartDate != "" {
		parsed, err := types.ParseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		start = parsed
	}

	resp, err := h.generator.GeneratePlan(c.Request.Context(), owner(c), start)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ActivePlansView merges every active plan of the user into one day list.
func (h *MealPlanHandler) ActivePlansView(c *gin.Context) {
	withIngredients, err := boolQuery(c, "ingredients")
	if err != nil {
		respondError(c, err)
		return
	}

	days, err := h.views.ActivePlansView(c.Request.Context(), owner(c), withIngredients)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

func (h *MealPlanHandler) CurrentPlan(c *gin.Context) {
	date, err := dateQuery(c, "date", h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	withIngredients, err := boolQuery(c, "ingredients")
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.views.ActivePlanForDate(c.Request.Context(), owner(c), date, withIngredients)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *MealPlanHandler) GetPlan(c *gin.Context) {
	planID, err := uintParam(c, "plan_id")
	if err != nil {
		respondError(c, err)
		return
	}
	withIngredients, err := boolQuery(c, "ingredients")
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.views.PlanView(c.Request.Context(), owner(c), planID, withIngredients)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *MealPlanHandler) AddItem(c *gin.Context) {
	planID, err := uintParam(c, "plan_id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req types.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	date, err := types.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.mutations.AddItem(c.Request.Context(), owner(c), planID, date, req.MealTypeID, req.MealItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"slot_id":      assignment.ID,
		"plan_id":      assignment.PlanID,
		"date":         types.FormatDate(assignment.Date),
		"meal_type_id": assignment.MealTypeID,
		"meal_item_id": assignment.MealItemID,
	})
}

func (h *MealPlanHandler) GroceryList(c *gin.Context) {
	list, err := h.views.GroceryList(c.Request.Context(), owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// DeleteOwnerData erases every plan the user owns.
func (h *MealPlanHandler) DeleteOwnerData(c *gin.Context) {
	deleted, err := h.views.DeleteOwnerData(c.Request.Context(), owner(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted_plans": deleted})
}
