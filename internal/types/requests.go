package types

// GeneratePlanRequest asks for a plan starting on StartDate, or today when empty.
type GeneratePlanRequest struct {
	StartDate string `json:"start_date" binding:"omitempty,isodate"`
}

// GeneratePlanResponse describes a freshly generated plan.
type GeneratePlanResponse struct {
	UserMealPlanID uint   `json:"user_meal_plan_id"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	TotalMeals     int    `json:"total_meals"`
	TotalDays      int    `json:"total_days"`
}

type AddItemRequest struct {
	Date       string `json:"date" binding:"required,isodate"`
	MealTypeID uint   `json:"meal_type_id" binding:"required"`
	MealItemID uint   `json:"meal_item_id" binding:"required"`
}

type SwapItemRequest struct {
	MealItemID uint `json:"meal_item_id" binding:"required"`
}
