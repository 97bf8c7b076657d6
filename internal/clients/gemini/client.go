// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/roastme/internal/common"
	"github.com/bobmcallan/roastme/internal/interfaces"
	"github.com/bobmcallan/roastme/internal/models"
)

// Client implements the GenerativeClient interface
type Client struct {
	client *genai.Client
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger     *common.Logger
	baseURL    string
	httpClient *http.Client
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = baseURL
	}
}

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	o := &clientOptions{logger: common.NewSilentLogger()}
	for _, opt := range opts {
		opt(o)
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if o.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}

	genaiClient, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client: genaiClient,
		logger: o.logger,
	}, nil
}

// Generate sends one prompt and reports the text alongside the finish and block signals.
func (c *Client) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, error) {
	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch {
		case p.Image != nil:
			parts = append(parts, genai.NewPartFromBytes(p.Image.Data, p.Image.MediaType))
		case p.Text != "":
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty prompt")
	}

	config := &genai.GenerateContentConfig{
		SafetySettings: toSafetySettings(req.SafetySettings),
	}
	budget, thinks := thinkingBudget(req.Model)
	if thinks {
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(budget))}
	}
	if req.MaxOutputTokens > 0 {
		// thinking tokens are billed against the same cap as the reply
		config.MaxOutputTokens = int32(req.MaxOutputTokens + budget)
	}

	c.logger.Debug().Str("model", req.Model).Int("parts", len(parts)).Msg("Generating content")

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	return toResult(resp), nil
}

// Minimum thinking budget for models that cannot switch thinking off.
const minProThinkingBudget = 128

// thinkingBudget reports the thinking budget to request for a model. The 2.5
// family thinks by default; flash models accept a zero budget, pro models
// only go down to minProThinkingBudget. Older models have no thinking config.
func thinkingBudget(model string) (int, bool) {
	name := strings.TrimPrefix(model, "models/")
	if !strings.HasPrefix(name, "gemini-2.5") {
		return 0, false
	}
	if strings.HasPrefix(name, "gemini-2.5-pro") {
		return minProThinkingBudget, true
	}
	return 0, true
}

func toSafetySettings(settings []models.SafetySetting) []*genai.SafetySetting {
	out := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		out = append(out, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return out
}

// toResult flattens the first candidate's text parts and copies the block signals.
func toResult(resp *genai.GenerateContentResponse) *models.GenerationResult {
	result := &models.GenerationResult{}
	if resp == nil {
		return result
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" &&
		resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		result.BlockReason = string(resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return result
	}
	cand := resp.Candidates[0]
	result.FinishReason = string(cand.FinishReason)

	if cand.Content != nil {
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
		result.Text = sb.String()
	}

	return result
}

// Ensure Client implements GenerativeClient
var _ interfaces.GenerativeClient = (*Client)(nil)
