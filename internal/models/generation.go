package models

// SafetySetting pairs a harm category with its blocking threshold.
// Values use the Gemini API enum names.
type SafetySetting struct {
	Category  string
	Threshold string
}

// PromptPart is one ordered element of a prompt: text or inline image data.
type PromptPart struct {
	Text  string
	Image *ImageInput
}

// GenerationRequest is a single model invocation.
type GenerationRequest struct {
	Model           string
	Parts           []PromptPart
	SafetySettings  []SafetySetting
	MaxOutputTokens int
}

// GenerationResult is what the model returned, before interpretation.
type GenerationResult struct {
	Text         string
	FinishReason string // e.g. "STOP", "SAFETY", "RECITATION"
	BlockReason  string // prompt feedback block reason, empty when not blocked
}

const (
	FinishReasonSafety     = "SAFETY"
	FinishReasonRecitation = "RECITATION"
)
