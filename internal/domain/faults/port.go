package faults

import "context"

// Repository defines persistence for failed analysis attempts.
type Repository interface {
	Save(ctx context.Context, f *Fault) error
	ListByProfile(ctx context.Context, tenant, profileID string, limit int) ([]*Fault, error)
}
