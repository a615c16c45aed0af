package plants

import (
	"context"
	"io"
)

// Repository port (interface for profile/history persistence).
//
// Append is the only mutation path for history and must be atomic with
// respect to concurrent readers: a reader never observes a half-appended
// record. MostRecent returns (nil, nil) for a profile with empty history
// and ErrNotFound for an unknown profile.
type Repository interface {
	CreateProfile(ctx context.Context, tenant, name string) (*PlantProfile, error)
	GetProfile(ctx context.Context, tenant string, id ProfileID) (*PlantProfile, error)
	ListProfiles(ctx context.Context, tenant string) ([]*PlantProfile, error)
	Append(ctx context.Context, tenant string, id ProfileID, rec *AnalysisRecord) (*PlantProfile, error)
	MostRecent(ctx context.Context, tenant string, id ProfileID) (*AnalysisRecord, error)
}

// ImageStore port (interface for uploaded photo storage).
// Returns a displayable URL for the stored object.
type ImageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}
