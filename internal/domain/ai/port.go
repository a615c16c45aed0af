package ai

import (
	"context"
	"time"

	"github.com/bryanwahyu/leafsense/internal/domain/plants"
)

// Request is one analysis exchange: the photo, the environmental context
// and, when the plant has history, a summary of the previous diagnosis so
// the backend can assess progress.
type Request struct {
	Image       []byte
	MIMEType    string
	Environment plants.EnvironmentalData
	Previous    *PreviousAnalysis
}

// PreviousAnalysis is the slice of the prior record the backend needs for
// progressAssessment / comparativeAnalysis. Nil means no prior analysis
// and the backend is instructed to answer "N/A".
type PreviousAnalysis struct {
	Date        time.Time
	IsHealthy   bool
	DiseaseName string
}

// Streamer port (interface to the generative inference backend).
//
// Stream makes exactly one attempt, no retries. Fragments arrive on the
// first channel in the order the backend produced them; both channels are
// closed when the exchange ends. An abnormal termination puts one error on
// the second channel before close; fragments already delivered stay valid
// for diagnostics.
type Streamer interface {
	Stream(ctx context.Context, req Request) (<-chan string, <-chan error)
}
