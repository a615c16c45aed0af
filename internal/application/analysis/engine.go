package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/leafsense/internal/domain/ai"
	"github.com/bryanwahyu/leafsense/internal/domain/diagnosis"
	"github.com/bryanwahyu/leafsense/internal/domain/plants"
)

// Engine conducts exactly one analysis exchange with the inference backend
// and turns its streamed output into a validated diagnosis. It performs no
// retries; retry policy belongs to callers.
type Engine struct {
	Backend ai.Streamer

	// FragmentTimeout bounds the wait for each individual fragment.
	// Zero disables the bound. A stall beyond the bound is reported as a
	// TransportError, per the caller-facing timeout contract.
	FragmentTimeout time.Duration
}

// Analyze streams one diagnosis for the given photo. Every fragment is
// appended to the accumulated payload in arrival order and, when
// onFragment is non-nil, handed to the caller before the next fragment is
// awaited — that is the progressive-display hook. prev, when present, is
// summarised into the request so the backend can compute a progress
// assessment; when absent the backend is told to answer "N/A".
//
// The returned string is the full accumulated payload, also populated on
// failure so callers can surface it for diagnostics.
func (e *Engine) Analyze(
	ctx context.Context,
	image []byte,
	mimeType string,
	env plants.EnvironmentalData,
	prev *plants.AnalysisRecord,
	onFragment func(string),
) (*diagnosis.Prediction, string, error) {
	req := ai.Request{Image: image, MIMEType: mimeType, Environment: env}
	if prev != nil {
		req.Previous = &ai.PreviousAnalysis{
			Date:        prev.Date,
			IsHealthy:   prev.IsHealthy,
			DiseaseName: prev.DiseaseName,
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frags, errs := e.Backend.Stream(ctx, req)

	var buf strings.Builder
	for frags != nil {
		var timeoutC <-chan time.Time
		var timer *time.Timer
		if e.FragmentTimeout > 0 {
			timer = time.NewTimer(e.FragmentTimeout)
			timeoutC = timer.C
		}

		select {
		case frag, ok := <-frags:
			if !ok {
				frags = nil
				break
			}
			buf.WriteString(frag)
			if onFragment != nil {
				onFragment(frag)
			}
		case <-timeoutC:
			cancel()
			partial := buf.String()
			return nil, partial, &ai.TransportError{
				Partial: partial,
				Err:     fmt.Errorf("no fragment received within %s", e.FragmentTimeout),
			}
		case <-ctx.Done():
			partial := buf.String()
			return nil, partial, &ai.TransportError{Partial: partial, Err: ctx.Err()}
		}

		if timer != nil {
			timer.Stop()
		}
	}

	raw := buf.String()

	// The backend closes the error channel after the fragment channel, so
	// a buffered abnormal-termination error is visible here.
	if err := <-errs; err != nil {
		return nil, raw, &ai.TransportError{Partial: raw, Err: err}
	}

	pred, err := diagnosis.Parse(raw)
	if err != nil {
		return nil, raw, &ai.MalformedResponseError{Raw: raw, Err: err}
	}
	return pred, raw, nil
}
