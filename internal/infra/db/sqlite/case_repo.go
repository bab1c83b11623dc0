package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/IvanGD/engine-diagnostic-site/internal/domain/cases"
)

type CaseRepository struct {
	db *sql.DB
}

func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// Timestamps are stored as RFC 3339 text, the portable representation for
// SQLite's dynamic typing.
func (r *CaseRepository) Insert(ctx context.Context, c *domain.Case) (domain.CaseID, error) {
	const q = `
INSERT INTO cases (owner_id, engine_type, symptoms, image_ref, diagnosis_report, created_at)
VALUES (?,?,?,?,?,?);
`
	res, err := r.db.ExecContext(ctx, q,
		c.OwnerID, c.EngineType, c.Symptoms, c.ImageRef, c.DiagnosisReport,
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return domain.CaseID(id), nil
}

func (r *CaseRepository) GetByOwner(ctx context.Context, id domain.CaseID, ownerID int64) (*domain.Case, error) {
	const q = `
SELECT id, owner_id, engine_type, symptoms, image_ref, diagnosis_report, created_at
FROM cases
WHERE id=? AND owner_id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, id, ownerID)

	c, err := scanCase(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *CaseRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Case, error) {
	const q = `
SELECT id, owner_id, engine_type, symptoms, image_ref, diagnosis_report, created_at
FROM cases
WHERE owner_id=? ORDER BY id DESC;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Case
	for rows.Next() {
		c, err := scanCase(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCase(scan func(dest ...any) error) (*domain.Case, error) {
	var c domain.Case
	var created string
	if err := scan(
		&c.ID, &c.OwnerID, &c.EngineType, &c.Symptoms, &c.ImageRef, &c.DiagnosisReport, &created,
	); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = ts
	return &c, nil
}
