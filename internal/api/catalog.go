package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodeasy/backend/internal/service"
	"github.com/foodeasy/backend/internal/types"
)

type CatalogHandler struct {
	catalog service.ICatalogService
}

func NewCatalogHandler(catalog service.ICatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/meal-items", h.ListItems)
	router.GET("/meal-types", h.ListMealTypes)
}

// ListItems returns active catalog items, optionally filtered by dietary and
// meal type flags.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	var filters types.ItemFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filters: " + err.Error()})
		return
	}

	items, err := h.catalog.ListItems(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal_items": items, "count": len(items)})
}

func (h *CatalogHandler) ListMealTypes(c *gin.Context) {
	mealTypes, err := h.catalog.ListMealTypes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal_types": mealTypes})
}
