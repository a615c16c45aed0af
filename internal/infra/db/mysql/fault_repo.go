package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/leafsense/internal/domain/faults"
)

type FaultRepository struct {
	db *sql.DB
}

func NewFaultRepository(db *sql.DB) *FaultRepository { return &FaultRepository{db: db} }

func (r *FaultRepository) Save(ctx context.Context, f *domain.Fault) error {
	const q = `
INSERT INTO analysis_faults
  (tenant_id, profile_id, kind, message, partial_text, created_at)
VALUES (?,?,?,?,?,?);
`
	tenant := stringOrDash(f.TenantID)
	profile := stringOrDash(f.ProfileID)
	kind := stringOrDash(string(f.Kind))
	msg := f.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, tenant, profile, kind, msg, f.PartialText, created)
	return err
}

func (r *FaultRepository) ListByProfile(ctx context.Context, tenant, profileID string, limit int) ([]*domain.Fault, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, profile_id, kind, message, partial_text, created_at
FROM analysis_faults
WHERE tenant_id=? AND profile_id=?
ORDER BY created_at DESC, id DESC
LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, profileID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Fault
	for rows.Next() {
		var f domain.Fault
		if err := rows.Scan(&f.ID, &f.TenantID, &f.ProfileID, &f.Kind, &f.Message, &f.PartialText, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
