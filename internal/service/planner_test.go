package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodeasy/backend/config"
	"github.com/foodeasy/backend/internal/logging"
	"github.com/foodeasy/backend/internal/service"
	"github.com/foodeasy/backend/internal/testhelpers"
	"github.com/foodeasy/backend/internal/types"
)

func chatResponse(t *testing.T, content string) []byte {
	body, err := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestChatPlannerProposePlan(t *testing.T) {
	start := testhelpers.Date(t, "2024-01-08")
	proposalJSON, err := json.Marshal(testhelpers.WeekProposal(start))
	require.NoError(t, err)

	var got service.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write(chatResponse(t, string(proposalJSON)))
	}))
	defer server.Close()

	planner := service.NewChatPlanner("test-key", server.URL, "test-model", 5*time.Second)
	profile := &types.PlannerProfile{OwnerID: uuid.New(), Preferences: map[string]interface{}{"diet": "vegetarian"}}

	proposal, err := planner.ProposePlan(context.Background(), profile, proposalCatalog(), start)
	require.NoError(t, err)
	assert.Len(t, proposal.MealPlan, 7)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat["type"])
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "2024-01-08")
	assert.Contains(t, got.Messages[1].Content, "2024-01-14")
	assert.Contains(t, got.Messages[1].Content, "vegetarian")
	assert.Contains(t, got.Messages[1].Content, "Paneer Wrap")
}

func TestChatPlannerUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content []byte
	}{
		{"server error", http.StatusInternalServerError, []byte(`{"error":"overloaded"}`)},
		{"no choices", http.StatusOK, []byte(`{"choices":[]}`)},
		{"not json", http.StatusOK, chatResponse(t, "sorry, no plan today")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write(tt.content)
			}))
			defer server.Close()

			planner := service.NewChatPlanner("k", server.URL, "m", time.Second)
			_, err := planner.ProposePlan(context.Background(), &types.PlannerProfile{}, nil, time.Now())
			assert.ErrorIs(t, err, service.ErrUpstream)
		})
	}
}

func TestNewPlanner(t *testing.T) {
	log := logging.Nop()
	ctx := context.Background()

	p, closeFn, err := service.NewPlanner(ctx, &config.Config{PlannerProvider: "openai", PlannerAPIURL: "http://localhost", PlannerTimeout: time.Second}, log)
	require.NoError(t, err)
	assert.IsType(t, &service.ChatPlanner{}, p)
	assert.NoError(t, closeFn())

	p, _, err = service.NewPlanner(ctx, &config.Config{PlannerProvider: "none"}, log)
	require.NoError(t, err)
	_, err = p.ProposePlan(ctx, &types.PlannerProfile{}, nil, time.Now())
	assert.ErrorIs(t, err, service.ErrUpstream)

	_, _, err = service.NewPlanner(ctx, &config.Config{PlannerProvider: "carrier-pigeon"}, log)
	assert.Error(t, err)
}
