package mysql

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/IvanGD/engine-diagnostic-site/internal/domain/cases"
)

type CaseRepository struct {
	db *sql.DB
}

func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// Insert stores a new case; the id comes from AUTO_INCREMENT so concurrent
// submissions never collide.
func (r *CaseRepository) Insert(ctx context.Context, c *domain.Case) (domain.CaseID, error) {
	const q = `
INSERT INTO cases (owner_id, engine_type, symptoms, image_ref, diagnosis_report, created_at)
VALUES (?,?,?,?,?,?);
`
	res, err := r.db.ExecContext(ctx, q,
		c.OwnerID, c.EngineType, c.Symptoms, c.ImageRef, c.DiagnosisReport, c.CreatedAt,
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

// GetByOwner fetches one case scoped to its owner. A miss and a foreign-owned
// case both come back as ErrNotFound.
func (r *CaseRepository) GetByOwner(ctx context.Context, id domain.CaseID, ownerID int64) (*domain.Case, error) {
	const q = `
SELECT id, owner_id, engine_type, symptoms, image_ref, diagnosis_report, created_at
FROM cases
WHERE id=? AND owner_id=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, id, ownerID)

	var c domain.Case
	if err := row.Scan(
		&c.ID, &c.OwnerID, &c.EngineType, &c.Symptoms, &c.ImageRef, &c.DiagnosisReport, &c.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListByOwner returns all cases of one owner, newest first.
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
		var c domain.Case
		if err := rows.Scan(
			&c.ID, &c.OwnerID, &c.EngineType, &c.Symptoms, &c.ImageRef, &c.DiagnosisReport, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
