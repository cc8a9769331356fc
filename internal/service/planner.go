package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foodeasy/backend/config"
	"github.com/foodeasy/backend/internal/metrics"
	"github.com/foodeasy/backend/internal/models"
	"github.com/foodeasy/backend/internal/types"
)

const plannerSystemPrompt = `You are a meal planning assistant. Build a 7-day meal plan using ONLY items from the provided catalog.
Respond only with JSON of the form:
{"user_id": "<id>", "meal_plan": [{"day": 1, "date": "YYYY-MM-DD", "meals": {"breakfast": [{"id": 1, "name": "..."}], "lunch": [], "snacks": [], "dinner": []}}]}
Use the exact catalog ids. Include all 7 days, in order.`

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat-completions request
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

// ChatPlanner asks an OpenAI-compatible chat-completions endpoint for a plan.
type ChatPlanner struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

func NewChatPlanner(apiKey, apiURL, model string, timeout time.Duration) *ChatPlanner {
	return &ChatPlanner{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// ProposePlan sends the profile and catalog to the model and parses its answer.
func (p *ChatPlanner) ProposePlan(ctx context.Context, profile *types.PlannerProfile, catalog []models.MealItem, start time.Time) (proposal *types.Proposal, err error) {
	began := time.Now()
	defer func() { observePlanner("chat", began, err) }()

	prompt, err := BuildPlannerPrompt(profile, catalog, start)
	if err != nil {
		return nil, err
	}

	reqBody := Request{
		Model: p.model,
		Messages: []Message{
			{Role: "system", Content: plannerSystemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{
			"type": "json_object",
		},
		Temperature: 0.7,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send planner request: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: planner request failed with status %d: %s", ErrUpstream, resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode planner response: %v", ErrUpstream, err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response from planner", ErrUpstream)
	}

	return ParseProposal(result.Choices[0].Message.Content)
}

type catalogEntry struct {
	ID    uint     `json:"id"`
	Name  string   `json:"name"`
	Meals []string `json:"meals"`
}

// BuildPlannerPrompt renders the user message shared by every planner backend.
func BuildPlannerPrompt(profile *types.PlannerProfile, catalog []models.MealItem, start time.Time) (string, error) {
	entries := make([]catalogEntry, 0, len(catalog))
	for _, item := range catalog {
		entry := catalogEntry{ID: item.ID, Name: item.Name}
		if item.IsBreakfast {
			entry.Meals = append(entry.Meals, "breakfast")
		}
		if item.IsLunch {
			entry.Meals = append(entry.Meals, "lunch")
		}
		if item.IsSnacks {
			entry.Meals = append(entry.Meals, "snacks")
		}
		if item.IsDinner {
			entry.Meals = append(entry.Meals, "dinner")
		}
		entries = append(entries, entry)
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("failed to marshal profile: %w", err)
	}
	catalogJSON, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to marshal catalog: %w", err)
	}

	start = types.NormalizeDate(start)
	var b strings.Builder
	fmt.Fprintf(&b, "Create a meal plan from %s to %s (7 days).\n",
		types.FormatDate(start), types.FormatDate(types.AddDays(start, models.PlanLengthDays-1)))
	fmt.Fprintf(&b, "User profile: %s\n", profileJSON)
	fmt.Fprintf(&b, "Catalog: %s\n", catalogJSON)
	return b.String(), nil
}

var (
	codeFence   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	jsonObjects = regexp.MustCompile(`(?s)\{.*\}`)
)

// ParseProposal decodes planner output. Markdown code fences and prose
// around the JSON object are tolerated; anything else is ErrUpstream.
func ParseProposal(content string) (*types.Proposal, error) {
	content = strings.TrimSpace(content)
	if m := codeFence.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}

	var proposal types.Proposal
	if err := json.Unmarshal([]byte(content), &proposal); err != nil {
		candidate := jsonObjects.FindString(content)
		if candidate == "" {
			return nil, fmt.Errorf("%w: planner output is not JSON: %v", ErrUpstream, err)
		}
		proposal = types.Proposal{}
		if err := json.Unmarshal([]byte(candidate), &proposal); err != nil {
			return nil, fmt.Errorf("%w: planner output is not valid JSON: %v", ErrUpstream, err)
		}
	}
	return &proposal, nil
}

func observePlanner(backend string, began time.Time, err error) {
	status := metrics.OutcomeSuccess
	if err != nil {
		status = metrics.OutcomeError
	}
	metrics.PlannerRequestsTotal.WithLabelValues(backend, status).Inc()
	metrics.PlannerRequestDuration.WithLabelValues(backend).Observe(time.Since(began).Seconds())
}

// NewPlanner builds the planner selected by cfg.PlannerProvider. The
// returned close function releases SDK clients and is never nil.
func NewPlanner(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (Planner, func() error, error) {
	noClose := func() error { return nil }

	switch cfg.PlannerProvider {
	case "gemini":
		p, err := NewGeminiPlanner(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noClose, err
		}
		log.Infow("using gemini planner", "model", cfg.GeminiModel)
		return p, p.Close, nil
	case "none":
		log.Warn("planner disabled, plan generation will fail")
		return DisabledPlanner{}, noClose, nil
	case "", "openai":
		log.Infow("using chat completions planner", "url", cfg.PlannerAPIURL, "model", cfg.PlannerModel)
		return NewChatPlanner(cfg.PlannerAPIKey, cfg.PlannerAPIURL, cfg.PlannerModel, cfg.PlannerTimeout), noClose, nil
	default:
		return nil, noClose, fmt.Errorf("unsupported planner provider %q", cfg.PlannerProvider)
	}
}

// DisabledPlanner rejects every request.
type DisabledPlanner struct{}

func (DisabledPlanner) ProposePlan(context.Context, *types.PlannerProfile, []models.MealItem, time.Time) (*types.Proposal, error) {
	return nil, fmt.Errorf("%w: no planner configured", ErrUpstream)
}

var (
	_ Planner = (*ChatPlanner)(nil)
	_ Planner = DisabledPlanner{}
)
