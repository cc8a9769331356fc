package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/service"
	"github.com/foodeasy/backend/internal/types"
)

type historyEntry struct {
	SlotID       uint   `json:"slot_id"`
	MealItemID   uint   `json:"meal_item_id"`
	Status       string `json:"status"`
	SupersedesID *uint  `json:"supersedes_id,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// MealPlanItemHandler serves single-slot edits.
type MealPlanItemHandler struct {
	mutations service.IMutationService
}

func NewMealPlanItemHandler(mutations service.IMutationService) *MealPlanItemHandler {
	return &MealPlanItemHandler{mutations: mutations}
}

func (h *MealPlanItemHandler) RegisterRoutes(router *gin.RouterGroup, limit ...gin.HandlerFunc) {
	items := router.Group("/meal-plan-items")
	{
		items.PUT("/:detail_id/swap", chain(limit, h.SwapItem)...)
		items.DELETE("/:detail_id", chain(limit, h.RemoveItem)...)
		items.GET("/:detail_id/history", h.History)
	}
}

func (h *MealPlanItemHandler) SwapItem(c *gin.Context) {
	detailID, err := uintParam(c, "detail_id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req types.SwapItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.mutations.SwapItem(c.Request.Context(), owner(c), detailID, req.MealItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MealPlanItemHandler) RemoveItem(c *gin.Context) {
	detailID, err := uintParam(c, "detail_id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.mutations.RemoveItem(c.Request.Context(), owner(c), detailID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// History lists every version of the slot, newest first.
func (h *MealPlanItemHandler) History(c *gin.Context) {
	detailID, err := uintParam(c, "detail_id")
	if err != nil {
		respondError(c, err)
		return
	}

	chain, err := h.mutations.SlotHistory(c.Request.Context(), owner(c), detailID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": toHistory(chain)})
}

func toHistory(chain []models.PlanAssignment) []historyEntry {
	out := make([]historyEntry, 0, len(chain))
	for _, a := range chain {
		out = append(out, historyEntry{
			SlotID:       a.ID,
			MealItemID:   a.MealItemID,
			Status:       a.Status,
			SupersedesID: a.SupersedesID,
			CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
