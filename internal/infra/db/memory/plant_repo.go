// Package memory provides process-lifetime implementations of the plants
// and faults repositories. Used as the test double and, via the "memory"
// database driver, for local development without a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	faultsdomain "github.com/bryanwahyu/leafsense/internal/domain/faults"
	domain "github.com/bryanwahyu/leafsense/internal/domain/plants"
)

// PlantRepository keeps all profiles in a mutex-guarded map. Reads return
// deep copies so a caller never observes a half-appended history and
// cannot mutate stored state through a returned pointer.
type PlantRepository struct {
	mu       sync.RWMutex
	profiles map[string]*domain.PlantProfile // key: tenant + "/" + id
	byTenant map[string][]domain.ProfileID
}

func NewPlantRepository() *PlantRepository {
	return &PlantRepository{
		profiles: make(map[string]*domain.PlantProfile),
		byTenant: make(map[string][]domain.ProfileID),
	}
}

func key(tenant string, id domain.ProfileID) string { return tenant + "/" + string(id) }

func (r *PlantRepository) CreateProfile(_ context.Context, tenant, name string) (*domain.PlantProfile, error) {
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	p := &domain.PlantProfile{
		ID:              domain.ProfileID(uuid.New().String()),
		TenantID:        tenant,
		Name:            name,
		CreatedAt:       time.Now().UTC(),
		AnalysisHistory: []*domain.AnalysisRecord{},
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[key(tenant, p.ID)] = p
	r.byTenant[tenant] = append(r.byTenant[tenant], p.ID)
	return copyProfile(p), nil
}

func (r *PlantRepository) GetProfile(_ context.Context, tenant string, id domain.ProfileID) (*domain.PlantProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[key(tenant, id)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyProfile(p), nil
}

func (r *PlantRepository) ListProfiles(_ context.Context, tenant string) ([]*domain.PlantProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.PlantProfile
	for _, id := range r.byTenant[tenant] {
		if p, ok := r.profiles[key(tenant, id)]; ok {
			out = append(out, copyProfile(p))
		}
	}
	return out, nil
}

// Append is the only mutation path for history. The write lock makes the
// append atomic with respect to concurrent readers.
func (r *PlantRepository) Append(_ context.Context, tenant string, id domain.ProfileID, rec *domain.AnalysisRecord) (*domain.PlantProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[key(tenant, id)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	stored := *rec
	p.AnalysisHistory = append(p.AnalysisHistory, &stored)
	return copyProfile(p), nil
}

func (r *PlantRepository) MostRecent(_ context.Context, tenant string, id domain.ProfileID) (*domain.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[key(tenant, id)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if len(p.AnalysisHistory) == 0 {
		return nil, nil
	}
	last := *p.AnalysisHistory[len(p.AnalysisHistory)-1]
	return &last, nil
}

func copyProfile(p *domain.PlantProfile) *domain.PlantProfile {
	cp := *p
	cp.AnalysisHistory = make([]*domain.AnalysisRecord, len(p.AnalysisHistory))
	for i, rec := range p.AnalysisHistory {
		r := *rec
		cp.AnalysisHistory[i] = &r
	}
	return &cp
}

// FaultRepository is the in-memory twin of the SQL fault repositories.
type FaultRepository struct {
	mu     sync.Mutex
	nextID int64
	faults []*faultsdomain.Fault
}

func NewFaultRepository() *FaultRepository { return &FaultRepository{} }

func (r *FaultRepository) Save(_ context.Context, f *faultsdomain.Fault) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := *f
	stored.ID = r.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	r.faults = append(r.faults, &stored)
	return nil
}

func (r *FaultRepository) ListByProfile(_ context.Context, tenant, profileID string, limit int) ([]*faultsdomain.Fault, error) {
	if limit <= 0 {
		limit = 20
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*faultsdomain.Fault
	for i := len(r.faults) - 1; i >= 0 && len(out) < limit; i-- {
		f := r.faults[i]
		if f.TenantID == tenant && f.ProfileID == profileID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}
