package plants

import (
	"context"
	"strings"

	faultsdomain "github.com/bryanwahyu/leafsense/internal/domain/faults"
	domain "github.com/bryanwahyu/leafsense/internal/domain/plants"
)

// Service implements the profile/history use-cases around the repository
// port. All history mutation goes through the repository's Append; this
// service never edits or reorders what is already stored.
type Service struct {
	Repo   domain.Repository
	Faults faultsdomain.Repository
}

// CreateProfile registers a new plant with an empty history.
func (s *Service) CreateProfile(ctx context.Context, tenant, name string) (*domain.PlantProfile, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrEmptyName
	}
	return s.Repo.CreateProfile(ctx, tenant, strings.TrimSpace(name))
}

// Get returns one profile with its full ordered history.
func (s *Service) Get(ctx context.Context, tenant string, id domain.ProfileID) (*domain.PlantProfile, error) {
	return s.Repo.GetProfile(ctx, tenant, id)
}

// List returns the tenant's profiles.
func (s *Service) List(ctx context.Context, tenant string) ([]*domain.PlantProfile, error) {
	return s.Repo.ListProfiles(ctx, tenant)
}

// MostRecent returns the latest record of a profile, nil when the history
// is still empty.
func (s *Service) MostRecent(ctx context.Context, tenant string, id domain.ProfileID) (*domain.AnalysisRecord, error) {
	return s.Repo.MostRecent(ctx, tenant, id)
}

// RecentFaults lists the latest failed attempts for a profile.
func (s *Service) RecentFaults(ctx context.Context, tenant string, id domain.ProfileID, limit int) ([]*faultsdomain.Fault, error) {
	if s.Faults == nil {
		return nil, nil
	}
	return s.Faults.ListByProfile(ctx, tenant, string(id), limit)
}
