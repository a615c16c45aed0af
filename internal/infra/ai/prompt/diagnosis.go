package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/leafsense/internal/domain/ai"
	"github.com/bryanwahyu/leafsense/internal/domain/plants"
)

// GetSystemPrompt provides strict directions and schema for the JSON output.
func GetSystemPrompt() string {
	return `You are an expert botanist and plant pathologist. Examine the attached plant photo together with the environmental context and produce one valid JSON object only (no markdown, no commentary, no code fences).

Requirements:
- Output must be a single JSON object matching the schema below exactly.
- confidenceScore must be a number between 0 and 1.
- progressAssessment must be exactly one of: "Improved", "Worsened", "Unchanged", "N/A".
- If no previous analysis summary is provided in the user message, set progressAssessment to "N/A" and comparativeAnalysis to "".
- If a previous analysis summary is provided, compare the current condition against it and fill progressAssessment and comparativeAnalysis accordingly.
- If the plant is not healthy, name the most likely disease in diseaseName.
- When the user states a preference for organic treatment, prioritise organic options in treatmentSuggestions.
- Keep every list item concise; use empty lists when nothing applies.

Schema (example with empty values):
{
  "plantName": "<string>",
  "isHealthy": true,
  "diseaseName": "<string>",
  "description": "<string>",
  "treatmentSuggestions": ["<string>"],
  "benefits": ["<string>"],
  "confidenceScore": 0.0,
  "preventativeCareTips": ["<string>"],
  "progressAssessment": "<Improved|Worsened|Unchanged|N/A>",
  "comparativeAnalysis": "<string>",
  "pestIdentification": [
    {"name": "<string>", "description": "<string>", "remedy": ["<string>"]}
  ],
  "nutrientDeficiencies": [
    {"name": "<string>", "description": "<string>", "remedy": ["<string>"]}
  ]
}`
}

// GetUserPrompt builds the user message around the environmental context
// and, when present, the previous analysis summary.
func GetUserPrompt(env plants.EnvironmentalData, prev *ai.PreviousAnalysis) string {
	var b strings.Builder
	b.WriteString("Analyze the plant in the attached photo and respond with the JSON per schema.\n")
	b.WriteString("Environmental context:\n")
	writeField(&b, "sunlight", env.Sunlight)
	writeField(&b, "watering", env.Watering)
	writeField(&b, "notes", env.Notes)
	fmt.Fprintf(&b, "- prefers organic treatment: %t\n", env.OrganicPreference)
	if env.Location != nil {
		fmt.Fprintf(&b, "- photo location: %.5f, %.5f\n", env.Location.Latitude, env.Location.Longitude)
	}

	if prev == nil {
		b.WriteString("No previous analysis is available for this plant; use progressAssessment \"N/A\".\n")
		return b.String()
	}

	b.WriteString("Previous analysis summary for the same plant:\n")
	fmt.Fprintf(&b, "- date: %s\n", prev.Date.Format(time.RFC3339))
	fmt.Fprintf(&b, "- healthy: %t\n", prev.IsHealthy)
	if prev.DiseaseName != "" {
		fmt.Fprintf(&b, "- diagnosed disease: %s\n", prev.DiseaseName)
	} else {
		b.WriteString("- diagnosed disease: none\n")
	}
	b.WriteString("Compare the current photo against this summary when filling progressAssessment and comparativeAnalysis.\n")
	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	if strings.TrimSpace(value) == "" {
		fmt.Fprintf(b, "- %s: not specified\n", name)
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", name, value)
}
