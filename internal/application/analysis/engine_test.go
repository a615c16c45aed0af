package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/leafsense/internal/domain/ai"
	"github.com/bryanwahyu/leafsense/internal/domain/plants"
)

const healthyBasil = `{
  "plantName": "Basil",
  "isHealthy": true,
  "diseaseName": "",
  "description": "Healthy basil plant.",
  "treatmentSuggestions": [],
  "benefits": ["culinary herb"],
  "confidenceScore": 0.9,
  "preventativeCareTips": ["water regularly"],
  "progressAssessment": "N/A",
  "comparativeAnalysis": "",
  "pestIdentification": [],
  "nutrientDeficiencies": []
}`

// fakeStreamer plays back a scripted stream and captures the request it
// was asked for.
type fakeStreamer struct {
	frags []string
	err   error

	lastReq ai.Request
}

func (f *fakeStreamer) Stream(_ context.Context, req ai.Request) (<-chan string, <-chan error) {
	f.lastReq = req
	frags := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(frags)
		for _, fr := range f.frags {
			frags <- fr
		}
		if f.err != nil {
			errs <- f.err
		}
	}()
	return frags, errs
}

// stalledStreamer never produces a fragment until the context is done.
type stalledStreamer struct{}

func (stalledStreamer) Stream(ctx context.Context, _ ai.Request) (<-chan string, <-chan error) {
	frags := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(errs)
		defer close(frags)
		<-ctx.Done()
	}()
	return frags, errs
}

func splitN(s string, n int) []string {
	var out []string
	for len(s) > 0 {
		end := n
		if end > len(s) {
			end = len(s)
		}
		out = append(out, s[:end])
		s = s[end:]
	}
	return out
}

func TestEngine_ConcatenatesFragmentsInOrder(t *testing.T) {
	backend := &fakeStreamer{frags: splitN(healthyBasil, 7)}
	eng := &Engine{Backend: backend}

	var seen []string
	pred, raw, err := eng.Analyze(context.Background(), []byte{0x1}, "image/jpeg",
		plants.EnvironmentalData{}, nil, func(frag string) { seen = append(seen, frag) })

	require.NoError(t, err)
	assert.Equal(t, healthyBasil, raw)
	assert.Equal(t, backend.frags, seen)
	assert.Equal(t, "Basil", pred.PlantName)
	assert.True(t, pred.IsHealthy)
}

func TestEngine_MidStreamErrorKeepsPartial(t *testing.T) {
	backend := &fakeStreamer{
		frags: []string{`{"plantName": "Ba`, `sil", "isHeal`},
		err:   errors.New("connection reset"),
	}
	eng := &Engine{Backend: backend}

	_, raw, err := eng.Analyze(context.Background(), []byte{0x1}, "image/jpeg",
		plants.EnvironmentalData{}, nil, nil)

	var te *ai.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, `{"plantName": "Basil", "isHeal`, raw)
	assert.Equal(t, raw, te.Partial)
}

func TestEngine_MalformedPayload(t *testing.T) {
	backend := &fakeStreamer{frags: []string{"Sorry, I ", "cannot help with that."}}
	eng := &Engine{Backend: backend}

	_, raw, err := eng.Analyze(context.Background(), []byte{0x1}, "image/jpeg",
		plants.EnvironmentalData{}, nil, nil)

	var me *ai.MalformedResponseError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "Sorry, I cannot help with that.", raw)
	assert.Equal(t, raw, me.Raw)
}

func TestEngine_SchemaViolationIsMalformed(t *testing.T) {
	// Valid JSON, out-of-range confidence. Must not be a transport failure.
	backend := &fakeStreamer{frags: []string{`{"plantName": "Basil", "isHealthy": true,
	  "description": "x", "confidenceScore": 2.0, "progressAssessment": "N/A"}`}}
	eng := &Engine{Backend: backend}

	_, _, err := eng.Analyze(context.Background(), []byte{0x1}, "image/jpeg",
		plants.EnvironmentalData{}, nil, nil)

	var me *ai.MalformedResponseError
	require.ErrorAs(t, err, &me)
}

func TestEngine_FragmentTimeout(t *testing.T) {
	eng := &Engine{Backend: stalledStreamer{}, FragmentTimeout: 20 * time.Millisecond}

	_, _, err := eng.Analyze(context.Background(), []byte{0x1}, "image/jpeg",
		plants.EnvironmentalData{}, nil, nil)

	var te *ai.TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, err.Error(), "no fragment received")
}

func TestEngine_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eng := &Engine{Backend: stalledStreamer{}}

	_, _, err := eng.Analyze(ctx, []byte{0x1}, "image/jpeg",
		plants.EnvironmentalData{}, nil, nil)

	var te *ai.TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, te.Err, context.Canceled)
}

func TestEngine_PreviousRecordSummarised(t *testing.T) {
	backend := &fakeStreamer{frags: []string{healthyBasil}}
	eng := &Engine{Backend: backend}

	date := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	prev := &plants.AnalysisRecord{Date: date}
	prev.IsHealthy = false
	prev.DiseaseName = "Downy mildew"

	_, _, err := eng.Analyze(context.Background(), []byte{0x1}, "image/jpeg",
		plants.EnvironmentalData{}, prev, nil)

	require.NoError(t, err)
	require.NotNil(t, backend.lastReq.Previous)
	assert.Equal(t, date, backend.lastReq.Previous.Date)
	assert.False(t, backend.lastReq.Previous.IsHealthy)
	assert.Equal(t, "Downy mildew", backend.lastReq.Previous.DiseaseName)
}

func TestEngine_FirstAnalysisHasNoPrevious(t *testing.T) {
	backend := &fakeStreamer{frags: []string{healthyBasil}}
	eng := &Engine{Backend: backend}

	_, _, err := eng.Analyze(context.Background(), []byte{0x1}, "image/jpeg",
		plants.EnvironmentalData{}, nil, nil)

	require.NoError(t, err)
	assert.Nil(t, backend.lastReq.Previous)
}
