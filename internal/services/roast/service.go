// Package roast runs the gated roast generation workflow.
package roast

import (
	"context"
	"time"

	"github.com/bobmcallan/roastme/internal/common"
	"github.com/bobmcallan/roastme/internal/interfaces"
	"github.com/bobmcallan/roastme/internal/metrics"
	"github.com/bobmcallan/roastme/internal/models"
)

// Config selects models and the output cap.
type Config struct {
	TextModel       string
	VisionModel     string
	MaxOutputTokens int
}

// Service implements RoastService.
type Service struct {
	gate    interfaces.QuotaGate
	model   interfaces.GenerativeClient
	config  Config
	metrics *metrics.Metrics
	logger  *common.Logger
}

// NewService creates a roast service.
// model may be nil when no API key is configured; Generate then reports ServiceUnavailable.
func NewService(gate interfaces.QuotaGate, model interfaces.GenerativeClient, config Config, m *metrics.Metrics, logger *common.Logger) *Service {
	return &Service{
		gate:    gate,
		model:   model,
		config:  config,
		metrics: m,
		logger:  logger,
	}
}

// Generate validates, checks quota, calls the model and debits one token on success.
// Each step short-circuits; nothing is mutated and the model is not called on failure.
func (s *Service) Generate(ctx context.Context, identityRef string, input models.RoastInput) (roast *models.Roast, err error) {
	var inputType models.InputType
	if input != nil {
		inputType = input.Type()
	}
	defer func() { s.metrics.RoastOutcome(string(inputType), outcome(err)) }()

	if identityRef == "" {
		return nil, models.NewError(models.ErrUnauthorized, "Unauthorized")
	}

	if s.model == nil {
		return nil, models.NewError(models.ErrServiceUnavailable, "AI Service Unavailable: API Key missing or invalid.")
	}

	user, err := s.gate.Check(ctx, identityRef)
	if err != nil {
		return nil, err
	}

	if input == nil {
		return nil, models.NewError(models.ErrInvalidInput, "Bio text or image file is required.")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	parts, err := BuildPrompt(user.HarshnessLevel, input)
	if err != nil {
		return nil, models.WrapError(models.ErrInvalidInput, "Unsupported roast input.", err)
	}

	req := &models.GenerationRequest{
		Model:           s.modelFor(inputType),
		Parts:           parts,
		SafetySettings:  SafetySettings(),
		MaxOutputTokens: s.config.MaxOutputTokens,
	}

	start := time.Now()
	result, err := s.model.Generate(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Str("identity", identityRef).Str("model", req.Model).Msg("Model call failed")
		return nil, models.WrapError(models.ErrGenerationFailed, "Internal Server Error processing roast request.", err)
	}

	text, err := Interpret(result, inputType)
	if err != nil {
		event := s.logger.Warn().Str("identity", identityRef)
		if result != nil {
			event = event.Str("finish_reason", result.FinishReason).Str("block_reason", result.BlockReason)
		}
		event.Msg("Model response blocked or empty")
		return nil, err
	}

	s.logger.Info().
		Str("identity", identityRef).
		Str("input", string(inputType)).
		Str("model", req.Model).
		Dur("duration", time.Since(start)).
		Msg("Roast generated")

	s.gate.Debit(ctx, identityRef)

	return &models.Roast{Text: text, Input: inputType, Model: req.Model}, nil
}

func (s *Service) modelFor(input models.InputType) string {
	if input == models.InputImage {
		return s.config.VisionModel
	}
	return s.config.TextModel
}

var _ interfaces.RoastService = (*Service)(nil)
