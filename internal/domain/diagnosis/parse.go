package diagnosis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// requiredFields must all be present in the model payload. The remaining
// schema fields are allowed to be empty lists / empty strings.
var requiredFields = []string{
	"plantName",
	"isHealthy",
	"description",
	"confidenceScore",
	"progressAssessment",
}

// Parse decodes and validates one complete model payload.
// Models occasionally wrap JSON in markdown fences even when told not to,
// so fences are stripped before decoding.
func Parse(raw string) (*Prediction, error) {
	payload := stripFences(raw)
	if payload == "" {
		return nil, fmt.Errorf("empty payload")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	for _, f := range requiredFields {
		if _, ok := fields[f]; !ok {
			return nil, fmt.Errorf("missing required field %q", f)
		}
	}

	var p Prediction
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("payload does not match diagnosis schema: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the semantic invariants of a decoded prediction.
func (p *Prediction) Validate() error {
	if p.ConfidenceScore < 0 || p.ConfidenceScore > 1 {
		return fmt.Errorf("confidenceScore %v outside [0,1]", p.ConfidenceScore)
	}
	if !p.ProgressAssessment.Valid() {
		return fmt.Errorf("invalid progressAssessment %q", p.ProgressAssessment)
	}
	return nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
