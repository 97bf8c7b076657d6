package roast

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/roastme/internal/models"
)

const (
	msgSafetyBlocked     = "Roast blocked: Input or potential output violated safety policies."
	msgRecitationBlocked = "Roast blocked: Output limited due to potential recitation issues."
)

// Interpret turns a model result into roast text or a classified failure.
// Only results with no usable text are inspected for block signals.
func Interpret(result *models.GenerationResult, input models.InputType) (string, error) {
	if result != nil {
		if text := strings.TrimSpace(result.Text); text != "" {
			return text, nil
		}
	}

	if result != nil {
		if result.FinishReason == models.FinishReasonSafety || result.BlockReason != "" {
			return "", models.NewError(models.ErrInvalidInput, msgSafetyBlocked)
		}
		if result.FinishReason == models.FinishReasonRecitation {
			return "", models.NewError(models.ErrInvalidInput, msgRecitationBlocked)
		}
	}

	return "", models.NewError(models.ErrGenerationFailed,
		fmt.Sprintf("Roast failed: The AI couldn't generate a roast for this %s. Try different input.", input))
}

// outcome labels a finished request for metrics.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var e *models.Error
	if errors.As(err, &e) && (e.Message == msgSafetyBlocked || e.Message == msgRecitationBlocked) {
		return "blocked"
	}
	return models.KindOf(err).String()
}
