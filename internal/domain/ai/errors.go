package ai

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// TransportError: the fragment stream terminated before the backend
// signalled end-of-response. Partial holds whatever text was collected
// before the failure. The remediation for callers is "try again".
type TransportError struct {
	Partial string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("stream transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError: the stream completed but the concatenated
// payload failed structural or semantic validation. Raw holds the full
// payload for diagnostics. The remediation for callers is "report a bug",
// not "try again" — hence a distinct type from TransportError.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
