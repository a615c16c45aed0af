package diagnosis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
  "plantName": "Basil",
  "isHealthy": true,
  "diseaseName": "",
  "description": "Healthy basil plant with vigorous growth.",
  "treatmentSuggestions": [],
  "benefits": ["culinary herb", "attracts pollinators"],
  "confidenceScore": 0.92,
  "preventativeCareTips": ["keep soil moist", "pinch flower buds"],
  "progressAssessment": "N/A",
  "comparativeAnalysis": "",
  "pestIdentification": [],
  "nutrientDeficiencies": []
}`

func TestParse_ValidPayload(t *testing.T) {
	p, err := Parse(validPayload)
	require.NoError(t, err)

	assert.Equal(t, "Basil", p.PlantName)
	assert.True(t, p.IsHealthy)
	assert.Equal(t, 0.92, p.ConfidenceScore)
	assert.Equal(t, ProgressNotApplicable, p.ProgressAssessment)
	assert.Equal(t, []string{"culinary herb", "attracts pollinators"}, p.Benefits)
	assert.Empty(t, p.PestIdentification)
}

func TestParse_StripsMarkdownFences(t *testing.T) {
	p, err := Parse("```json\n" + validPayload + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "Basil", p.PlantName)
}

func TestParse_FindingsDecoded(t *testing.T) {
	payload := `{
	  "plantName": "Tomato",
	  "isHealthy": false,
	  "diseaseName": "Early blight",
	  "description": "Concentric leaf spots on lower foliage.",
	  "treatmentSuggestions": ["remove affected leaves"],
	  "benefits": [],
	  "confidenceScore": 0.81,
	  "preventativeCareTips": [],
	  "progressAssessment": "Worsened",
	  "comparativeAnalysis": "More leaves affected than in the previous analysis.",
	  "pestIdentification": [{"name": "Aphids", "description": "Clusters under leaves.", "remedy": ["neem oil spray"]}],
	  "nutrientDeficiencies": [{"name": "Nitrogen", "description": "Pale lower leaves.", "remedy": ["balanced fertilizer"]}]
	}`

	p, err := Parse(payload)
	require.NoError(t, err)
	require.Len(t, p.PestIdentification, 1)
	assert.Equal(t, "Aphids", p.PestIdentification[0].Name)
	assert.Equal(t, []string{"neem oil spray"}, p.PestIdentification[0].Remedy)
	require.Len(t, p.NutrientDeficiencies, 1)
	assert.Equal(t, ProgressWorsened, p.ProgressAssessment)
}

func TestParse_MissingRequiredField(t *testing.T) {
	payload := `{"plantName": "Basil", "isHealthy": true, "description": "x", "confidenceScore": 0.5}`

	_, err := Parse(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "progressAssessment")
}

func TestParse_ConfidenceOutOfRange(t *testing.T) {
	payload := `{"plantName": "Basil", "isHealthy": true, "description": "x",
	  "confidenceScore": 1.4, "progressAssessment": "N/A"}`

	_, err := Parse(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confidenceScore")
}

func TestParse_InvalidProgressTag(t *testing.T) {
	payload := `{"plantName": "Basil", "isHealthy": true, "description": "x",
	  "confidenceScore": 0.5, "progressAssessment": "Better"}`

	_, err := Parse(payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "progressAssessment")
}

func TestParse_NotJSON(t *testing.T) {
	_, err := Parse("I am sorry, I cannot analyze this image.")
	require.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("   ")
	require.Error(t, err)
}

func TestProgressAssessment_Valid(t *testing.T) {
	for _, p := range []ProgressAssessment{ProgressImproved, ProgressWorsened, ProgressUnchanged, ProgressNotApplicable} {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, ProgressAssessment("").Valid())
	assert.False(t, ProgressAssessment("improved").Valid())
}
