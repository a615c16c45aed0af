package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/leafsense/internal/domain/ai"
	"github.com/bryanwahyu/leafsense/internal/domain/plants"
)

func TestGetSystemPrompt_NamesSchemaFields(t *testing.T) {
	p := GetSystemPrompt()
	for _, field := range []string{
		"plantName", "isHealthy", "diseaseName", "description",
		"treatmentSuggestions", "benefits", "confidenceScore",
		"preventativeCareTips", "progressAssessment", "comparativeAnalysis",
		"pestIdentification", "nutrientDeficiencies",
	} {
		assert.Contains(t, p, field)
	}
	assert.Contains(t, p, `"N/A"`)
}

func TestGetUserPrompt_WithoutPrevious(t *testing.T) {
	p := GetUserPrompt(plants.EnvironmentalData{Sunlight: "full sun"}, nil)

	assert.Contains(t, p, "sunlight: full sun")
	assert.Contains(t, p, "watering: not specified")
	assert.Contains(t, p, `"N/A"`)
	assert.NotContains(t, p, "Previous analysis summary")
}

func TestGetUserPrompt_WithPrevious(t *testing.T) {
	prev := &ai.PreviousAnalysis{
		Date:        time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		IsHealthy:   false,
		DiseaseName: "Downy mildew",
	}
	p := GetUserPrompt(plants.EnvironmentalData{OrganicPreference: true}, prev)

	assert.Contains(t, p, "Previous analysis summary")
	assert.Contains(t, p, "2025-06-01T10:00:00Z")
	assert.Contains(t, p, "Downy mildew")
	assert.Contains(t, p, "prefers organic treatment: true")
	assert.NotContains(t, p, `"N/A"`)
}

func TestGetUserPrompt_IncludesLocation(t *testing.T) {
	env := plants.EnvironmentalData{
		Location: &plants.GeoPoint{Latitude: -6.2, Longitude: 106.81667},
	}
	p := GetUserPrompt(env, nil)
	assert.Contains(t, p, "photo location: -6.20000, 106.81667")
}
