package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

// GeminiPlanner proposes plans with the Google Gemini API.
type GeminiPlanner struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiPlanner creates a Gemini-backed planner. Close must be called
// when the planner is no longer needed.
func NewGeminiPlanner(ctx context.Context, apiKey, modelName string) (*GeminiPlanner, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(plannerSystemPrompt))

	return &GeminiPlanner{client: client, model: model}, nil
}

func (p *GeminiPlanner) ProposePlan(ctx context.Context, profile *types.PlannerProfile, catalog []models.MealItem, start time.Time) (proposal *types.Proposal, err error) {
	began := time.Now()
	defer func() { observePlanner("gemini", began, err) }()

	prompt, err := BuildPlannerPrompt(profile, catalog, start)
	if err != nil {
		return nil, err
	}

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate content: %v", ErrUpstream, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no content generated", ErrUpstream)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("%w: generated content is not text", ErrUpstream)
	}

	return ParseProposal(b.String())
}

// Close closes the underlying Gemini client.
func (p *GeminiPlanner) Close() error {
	return p.client.Close()
}

var _ Planner = (*GeminiPlanner)(nil)
