package roast

import (
	"fmt"

	"github.com/bobmcallan/roastme/internal/models"
)

// Gemini harm categories and thresholds applied to every call.
// Sexual content is held to a stricter threshold than the rest.
var safetySettings = []models.SafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_LOW_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// SafetySettings returns the safety configuration attached to every call.
func SafetySettings() []models.SafetySetting {
	out := make([]models.SafetySetting, len(safetySettings))
	copy(out, safetySettings)
	return out
}

const instructionTemplate = `You are RoastMe.ai, a witty AI comedian specializing in lighthearted, observational roasts.

**Harshness Level:** %[1]s. Adjust roast intensity accordingly ("Gentle Tease" is light, "Standard Snark" is playful, "Brutal Honesty" is sharper, "Inferno Mode" is savage but fair).

**Rules:**
- Generate a short, funny roast (9-11 sentences).
- Be clever and observational ONLY about the provided %[2]s. Do not invent details about the user.
- ABSOLUTELY NO roasting on sensitive topics: appearance (unless clearly intended humorously in the %[2]s), race, religion, gender identity, serious disabilities, politics, tragedies, illegal acts, promoting harm. Stay safe and appropriate.
- Match the requested Harshness Level in tone and directness.
- Output only the roast text. No greetings, sign-offs, apologies, or explanations.

**Roast the user based ONLY on the following %[2]s:**
`

const outputMarker = "\n**Roast Output:**"

// Instructions renders the fixed template for a harshness level and input type.
func Instructions(level models.HarshnessLevel, input models.InputType) string {
	return fmt.Sprintf(instructionTemplate, level, input)
}

// BuildPrompt assembles the ordered prompt parts for one input.
// Bio text is quoted inline; an image becomes its own part between the
// instructions and the output marker.
func BuildPrompt(level models.HarshnessLevel, input models.RoastInput) ([]models.PromptPart, error) {
	instructions := Instructions(level, input.Type())

	switch in := input.(type) {
	case models.BioInput:
		return []models.PromptPart{
			{Text: fmt.Sprintf("%s\n\"%s\"\n%s", instructions, in.Bio, outputMarker)},
		}, nil
	case *models.BioInput:
		return BuildPrompt(level, *in)
	case models.ImageInput:
		img := in
		return []models.PromptPart{
			{Text: instructions},
			{Image: &img},
			{Text: outputMarker},
		}, nil
	case *models.ImageInput:
		return BuildPrompt(level, *in)
	default:
		return nil, fmt.Errorf("unsupported roast input %T", input)
	}
}
