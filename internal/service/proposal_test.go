package service_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/service"
	"github.com/foodeasy/backend/internal/testhelpers"
	"github.com/foodeasy/backend/internal/types"
)

func proposalCatalog() []models.MealItem {
	return []models.MealItem{
		{ID: testhelpers.ItemPoha, Name: "Poha", IsActive: true},
		{ID: testhelpers.ItemDalRice, Name: "Dal Rice", IsActive: true},
		{ID: testhelpers.ItemPaneerWrap, Name: "Paneer Wrap", IsActive: true},
		{ID: testhelpers.ItemKhichdi, Name: "Khichdi", IsActive: true},
		{ID: testhelpers.ItemRetired, Name: "Retired Dish", IsActive: false},
	}
}

func TestValidateProposal(t *testing.T) {
	start := testhelpers.Date(t, "2024-01-08")
	idx := service.NewMealTypeIndex(models.DefaultMealTypes())

	rows, dropped, err := service.ValidateProposal(testhelpers.WeekProposal(start), start, proposalCatalog(), idx)
	require.NoError(t, err)
	assert.Empty(t, dropped)
	require.Len(t, rows, 21)

	assert.Equal(t, "2024-01-08", types.FormatDate(rows[0].Date))
	assert.Equal(t, testhelpers.MealTypeBreakfast, rows[0].MealTypeID)
	assert.Equal(t, testhelpers.MealTypeLunch, rows[1].MealTypeID)
	assert.Equal(t, testhelpers.MealTypeDinner, rows[2].MealTypeID)
	assert.Equal(t, "2024-01-14", types.FormatDate(rows[20].Date))
}

func TestValidateProposalFlexibleShapes(t *testing.T) {
	start := testhelpers.Date(t, "2024-01-08")
	idx := service.NewMealTypeIndex(models.DefaultMealTypes())

	raw := `{
		"user_id": "abc",
		"meal_plan": [
			{"day": 1, "meals": {"Breakfast": [{"id": "10", "name": "Poha"}], "Supper": [{"id": 12}]}},
			{"day": "2", "date": "2024-01-09", "lunch": [{"id": 45, "name": "Paneer Wrap"}], "note": "light day"}
		]
	}`
	var proposal types.Proposal
	require.NoError(t, json.Unmarshal([]byte(raw), &proposal))
	proposal.MealPlan = append(proposal.MealPlan, testhelpers.WeekProposal(start).MealPlan[2:]...)

	rows, dropped, err := service.ValidateProposal(&proposal, start, proposalCatalog(), idx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Supper"}, dropped)
	require.Len(t, rows, 17)
	assert.Equal(t, "2024-01-08", types.FormatDate(rows[0].Date))
	assert.Equal(t, testhelpers.ItemPoha, rows[0].MealItemID)
	assert.Equal(t, "2024-01-09", types.FormatDate(rows[1].Date))
	assert.Equal(t, testhelpers.MealTypeLunch, rows[1].MealTypeID)
}

func TestValidateProposalRejects(t *testing.T) {
	start := testhelpers.Date(t, "2024-01-08")
	idx := service.NewMealTypeIndex(models.DefaultMealTypes())
	// week returns a full proposal whose first day is replaced by day.
	week := func(day types.ProposalDay) *types.Proposal {
		p := testhelpers.WeekProposal(start)
		p.MealPlan[0] = day
		return p
	}
	lunch := func(id uint) map[string][]types.ProposedItem {
		return map[string][]types.ProposedItem{"lunch": {{ID: types.FlexibleID(id)}}}
	}
	sameDate := testhelpers.WeekProposal(start)
	for i := range sameDate.MealPlan {
		sameDate.MealPlan[i].Date = "2024-01-08"
	}
	onlyUnknown := testhelpers.WeekProposal(start)
	for i := range onlyUnknown.MealPlan {
		onlyUnknown.MealPlan[i].Meals = map[string][]types.ProposedItem{"supper": {{ID: 12}}}
	}

	tests := []struct {
		name     string
		proposal *types.Proposal
		want     error
	}{
		{"nil proposal", nil, service.ErrUpstream},
		{"empty meal plan", &types.Proposal{}, service.ErrUpstream},
		{"single day", &types.Proposal{MealPlan: testhelpers.WeekProposal(start).MealPlan[:1]}, service.ErrUpstream},
		{"eight days", &types.Proposal{MealPlan: append(testhelpers.WeekProposal(start).MealPlan, types.ProposalDay{Day: 8, Meals: lunch(testhelpers.ItemDalRice)})}, service.ErrUpstream},
		{"repeated date", sameDate, service.ErrUpstream},
		{"unknown item", week(types.ProposalDay{Date: "2024-01-08", Meals: lunch(777)}), service.ErrValidation},
		{"inactive item", week(types.ProposalDay{Date: "2024-01-08", Meals: lunch(testhelpers.ItemRetired)}), service.ErrValidation},
		{"date outside range", week(types.ProposalDay{Date: "2024-01-15", Meals: lunch(testhelpers.ItemDalRice)}), service.ErrValidation},
		{"bad date", week(types.ProposalDay{Date: "08/01/2024", Meals: lunch(testhelpers.ItemDalRice)}), service.ErrValidation},
		{"only unknown meal types", onlyUnknown, service.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.ValidateProposal(tt.proposal, start, proposalCatalog(), idx)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseProposal(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"plain", `{"user_id":"u","meal_plan":[{"day":1,"meals":{"lunch":[{"id":12}]}}]}`},
		{"fenced", "```json\n{\"user_id\":\"u\",\"meal_plan\":[{\"day\":1,\"meals\":{\"lunch\":[{\"id\":12}]}}]}\n```"},
		{"prose", "Here is your plan: {\"meal_plan\":[{\"day\":1,\"meals\":{\"lunch\":[{\"id\":\"12\"}]}}]} Enjoy!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proposal, err := service.ParseProposal(tt.content)
			require.NoError(t, err)
			require.Len(t, proposal.MealPlan, 1)
			assert.Equal(t, types.FlexibleID(12), proposal.MealPlan[0].Meals["lunch"][0].ID)
		})
	}

	_, err := service.ParseProposal("I cannot help with that.")
	assert.ErrorIs(t, err, service.ErrUpstream)
}
