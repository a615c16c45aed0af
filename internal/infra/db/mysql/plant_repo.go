package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/leafsense/internal/domain/diagnosis"
	domain "github.com/bryanwahyu/leafsense/internal/domain/plants"
)

// PlantRepository persists profiles and their append-only analysis history.
// Env/prediction payloads are stored as JSON columns next to the indexed
// fields so records round-trip without a schema change per model field.
type PlantRepository struct {
	db *sql.DB
}

func NewPlantRepository(db *sql.DB) *PlantRepository {
	return &PlantRepository{db: db}
}

func (r *PlantRepository) CreateProfile(ctx context.Context, tenant, name string) (*domain.PlantProfile, error) {
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

	const q = `
INSERT INTO plant_profiles (id, tenant_id, name, created_at)
VALUES (?,?,?,?);
`
	if _, err := r.db.ExecContext(ctx, q, p.ID, tenant, p.Name, p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PlantRepository) GetProfile(ctx context.Context, tenant string, id domain.ProfileID) (*domain.PlantProfile, error) {
	const q = `
SELECT id, tenant_id, name, created_at
FROM plant_profiles
WHERE tenant_id=? AND id=? LIMIT 1;
`
	var p domain.PlantProfile
	err := r.db.QueryRowContext(ctx, q, tenant, id).Scan(&p.ID, &p.TenantID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	history, err := r.history(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	p.AnalysisHistory = history
	return &p, nil
}

func (r *PlantRepository) ListProfiles(ctx context.Context, tenant string) ([]*domain.PlantProfile, error) {
	const q = `
SELECT id, tenant_id, name, created_at
FROM plant_profiles
WHERE tenant_id=?
ORDER BY created_at DESC, id DESC;
`
	rows, err := r.db.QueryContext(ctx, q, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.PlantProfile
	for rows.Next() {
		var p domain.PlantProfile
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.AnalysisHistory = []*domain.AnalysisRecord{}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Append inserts one record inside a transaction so readers either see the
// record in full or not at all. Arrival order is preserved by the
// (created_at, id) ordering used on every read.
func (r *PlantRepository) Append(ctx context.Context, tenant string, id domain.ProfileID, rec *domain.AnalysisRecord) (*domain.PlantProfile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM plant_profiles WHERE tenant_id=? AND id=? LIMIT 1;`, tenant, id,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	envJSON, err := json.Marshal(rec.Environment)
	if err != nil {
		return nil, fmt.Errorf("marshal environment: %w", err)
	}
	predJSON, err := json.Marshal(rec.Prediction)
	if err != nil {
		return nil, fmt.Errorf("marshal prediction: %w", err)
	}

	created := rec.Date
	if created.IsZero() {
		created = time.Now().UTC()
	}

	const q = `
INSERT INTO plant_analyses
  (id, tenant_id, profile_id, created_at, image_url, env_json, prediction_json)
VALUES (?,?,?,?,?,?,?);
`
	if _, err := tx.ExecContext(ctx, q,
		rec.ID, tenant, id, created, rec.ImageURL, envJSON, predJSON,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetProfile(ctx, tenant, id)
}

func (r *PlantRepository) MostRecent(ctx context.Context, tenant string, id domain.ProfileID) (*domain.AnalysisRecord, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM plant_profiles WHERE tenant_id=? AND id=? LIMIT 1;`, tenant, id,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	const q = `
SELECT id, created_at, image_url, env_json, prediction_json
FROM plant_analyses
WHERE tenant_id=? AND profile_id=?
ORDER BY created_at DESC, id DESC
LIMIT 1;
`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, tenant, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *PlantRepository) history(ctx context.Context, tenant string, id domain.ProfileID) ([]*domain.AnalysisRecord, error) {
	const q = `
SELECT id, created_at, image_url, env_json, prediction_json
FROM plant_analyses
WHERE tenant_id=? AND profile_id=?
ORDER BY created_at ASC, id ASC;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.AnalysisRecord, error) {
	var rec domain.AnalysisRecord
	var envJSON, predJSON []byte
	if err := row.Scan(&rec.ID, &rec.Date, &rec.ImageURL, &envJSON, &predJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(envJSON, &rec.Environment); err != nil {
		return nil, fmt.Errorf("unmarshal environment: %w", err)
	}
	var pred diagnosis.Prediction
	if err := json.Unmarshal(predJSON, &pred); err != nil {
		return nil, fmt.Errorf("unmarshal prediction: %w", err)
	}
	rec.Prediction = pred
	return &rec, nil
}
