package faults

import "time"

// Kind classifies why an analysis attempt failed.
type Kind string

const (
	KindPrecondition Kind = "precondition"
	KindTransport    Kind = "transport"
	KindMalformed    Kind = "malformed"
	KindStore        Kind = "store"
)

// Fault is a persisted record of a failed analysis attempt. PartialText
// keeps whatever the stream produced before failing so that a bad exchange
// can be inspected after the fact; it is never interpreted as a result.
type Fault struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenantId"`
	ProfileID   string    `json:"profileId"`
	Kind        Kind      `json:"kind"`
	Message     string    `json:"message"`
	PartialText string    `json:"partialText,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
