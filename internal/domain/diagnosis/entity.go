package diagnosis

// ProgressAssessment compares the current analysis with the previous one
// for the same plant. The model is only allowed to answer with one of the
// four values below.
type ProgressAssessment string

const (
	ProgressImproved      ProgressAssessment = "Improved"
	ProgressWorsened      ProgressAssessment = "Worsened"
	ProgressUnchanged     ProgressAssessment = "Unchanged"
	ProgressNotApplicable ProgressAssessment = "N/A"
)

// Valid reports whether the value is one of the four allowed tags.
func (p ProgressAssessment) Valid() bool {
	switch p {
	case ProgressImproved, ProgressWorsened, ProgressUnchanged, ProgressNotApplicable:
		return true
	}
	return false
}

// Finding is a named issue (pest or nutrient deficiency) with remedies.
type Finding struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Remedy      []string `json:"remedy"`
}

// Prediction is the structured diagnosis produced by the vision model.
// Field names match the wire schema the model is instructed to emit.
type Prediction struct {
	PlantName            string             `json:"plantName"`
	IsHealthy            bool               `json:"isHealthy"`
	DiseaseName          string             `json:"diseaseName"`
	Description          string             `json:"description"`
	TreatmentSuggestions []string           `json:"treatmentSuggestions"`
	Benefits             []string           `json:"benefits"`
	ConfidenceScore      float64            `json:"confidenceScore"`
	PreventativeCareTips []string           `json:"preventativeCareTips"`
	ProgressAssessment   ProgressAssessment `json:"progressAssessment"`
	ComparativeAnalysis  string             `json:"comparativeAnalysis"`
	PestIdentification   []Finding          `json:"pestIdentification"`
	NutrientDeficiencies []Finding          `json:"nutrientDeficiencies"`
}
