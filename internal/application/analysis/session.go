package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bryanwahyu/leafsense/internal/application"
	"github.com/bryanwahyu/leafsense/internal/domain/ai"
	faultsdomain "github.com/bryanwahyu/leafsense/internal/domain/faults"
	"github.com/bryanwahyu/leafsense/internal/domain/plants"
)

// State of one analysis session.
type State string

const (
	StateIdle      State = "idle"
	StateStreaming State = "streaming"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// PreconditionError: required inputs missing or an attempt already in
// flight. Surfaced to the caller before any state mutation.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return "precondition failed: " + e.Reason }

// StartCommand carries everything one attempt needs.
type StartCommand struct {
	TenantID    string
	ProfileID   plants.ProfileID
	Image       []byte
	MIMEType    string
	ImageURL    string
	Environment plants.EnvironmentalData
}

// Snapshot is the externally observable view of a session. PartialText is
// live during streaming; Record/Failure are set on the terminal states.
type Snapshot struct {
	State       State                  `json:"state"`
	PartialText string                 `json:"partialText"`
	Record      *plants.AnalysisRecord `json:"record,omitempty"`
	FailureKind faultsdomain.Kind      `json:"failureKind,omitempty"`
	Failure     string                 `json:"failure,omitempty"`
}

// Session owns the lifecycle of analysis attempts for one plant:
// Idle -> Streaming -> {Succeeded, Failed}. A new attempt re-enters via
// Start, which discards the previous attempt's buffer, record and error.
//
// Concurrency policy (deliberate, applied consistently): starting while an
// attempt is Streaming is REJECTED with a PreconditionError rather than
// superseding the in-flight attempt.
type Session struct {
	engine *Engine
	repo   plants.Repository
	faults faultsdomain.Repository // optional, best-effort
	clock  application.Clock

	mu      sync.Mutex
	state   State
	partial strings.Builder
	record  *plants.AnalysisRecord
	err     error
	pending *StartCommand
}

func NewSession(engine *Engine, repo plants.Repository, faults faultsdomain.Repository, clock application.Clock) *Session {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Session{engine: engine, repo: repo, faults: faults, clock: clock, state: StateIdle}
}

// Start validates preconditions and admits one attempt, transitioning to
// Streaming and clearing the previous attempt's buffer/result/error.
// It does not consume the stream; call Run afterwards (typically from a
// background goroutine, with the snapshot polled for progress).
func (s *Session) Start(cmd StartCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStreaming {
		return &PreconditionError{Reason: "an analysis is already in progress for this plant"}
	}
	if len(cmd.Image) == 0 {
		return &PreconditionError{Reason: "no image selected"}
	}
	if cmd.ProfileID == "" {
		return &PreconditionError{Reason: "no active plant profile"}
	}

	s.state = StateStreaming
	s.partial.Reset()
	s.record = nil
	s.err = nil
	s.pending = &cmd
	return nil
}

// Run executes the attempt admitted by Start: pulls the previous record,
// streams the diagnosis while exposing the partial buffer, and only on a
// fully validated result stamps identity/timestamp and appends the record
// to the plant's history. No failure path commits anything.
func (s *Session) Run(ctx context.Context) (*plants.AnalysisRecord, error) {
	s.mu.Lock()
	cmd := s.pending
	s.pending = nil
	s.mu.Unlock()
	if cmd == nil {
		return nil, &PreconditionError{Reason: "no admitted attempt; call Start first"}
	}

	prev, err := s.repo.MostRecent(ctx, cmd.TenantID, cmd.ProfileID)
	if err != nil {
		return nil, s.fail(cmd, classify(err), err)
	}

	pred, _, err := s.engine.Analyze(ctx, cmd.Image, cmd.MIMEType, cmd.Environment, prev, s.appendFragment)
	if err != nil {
		return nil, s.fail(cmd, classify(err), err)
	}

	rec := &plants.AnalysisRecord{
		ID:          uuid.New().String(),
		Date:        s.clock.Now(),
		ImageURL:    cmd.ImageURL,
		Environment: cmd.Environment,
		Prediction:  *pred,
	}
	if _, err := s.repo.Append(ctx, cmd.TenantID, cmd.ProfileID, rec); err != nil {
		return nil, s.fail(cmd, faultsdomain.KindStore, err)
	}

	s.mu.Lock()
	s.state = StateSucceeded
	s.record = rec
	s.mu.Unlock()
	return rec, nil
}

// Snapshot returns the current observable state. Safe to call at any time,
// including mid-stream.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:       s.state,
		PartialText: s.partial.String(),
		Record:      s.record,
	}
	if s.err != nil {
		snap.FailureKind = classify(s.err)
		snap.Failure = s.err.Error()
	}
	return snap
}

func (s *Session) appendFragment(frag string) {
	s.mu.Lock()
	s.partial.WriteString(frag)
	s.mu.Unlock()
}

// fail records the terminal failure, keeping the partial buffer for
// inspection, and logs a fault row best-effort. Uses a fresh context for
// the fault write so a cancelled attempt still leaves a trace.
func (s *Session) fail(cmd *StartCommand, kind faultsdomain.Kind, err error) error {
	s.mu.Lock()
	s.state = StateFailed
	s.err = err
	partial := s.partial.String()
	s.mu.Unlock()

	if s.faults != nil {
		_ = s.faults.Save(context.Background(), &faultsdomain.Fault{
			TenantID:    cmd.TenantID,
			ProfileID:   string(cmd.ProfileID),
			Kind:        kind,
			Message:     err.Error(),
			PartialText: partial,
			CreatedAt:   s.clock.Now(),
		})
	}
	return err
}

func classify(err error) faultsdomain.Kind {
	var pe *PreconditionError
	var te *ai.TransportError
	var me *ai.MalformedResponseError
	switch {
	case errors.As(err, &pe), errors.Is(err, plants.ErrNotFound):
		return faultsdomain.KindPrecondition
	case errors.As(err, &me):
		return faultsdomain.KindMalformed
	case errors.As(err, &te):
		return faultsdomain.KindTransport
	}
	return faultsdomain.KindStore
}
