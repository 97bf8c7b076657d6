package interfaces

import (
	"context"

	"github.com/bobmcallan/roastme/internal/models"
)

// GenerativeClient invokes a hosted generative model.
// A response with no text is not an error: the caller inspects
// FinishReason and BlockReason to learn why.
type GenerativeClient interface {
	Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, error)
}
