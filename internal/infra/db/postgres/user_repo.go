package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	domain "github.com/IvanGD/engine-diagnostic-site/internal/domain/users"
)

// Postgres error class 23505: unique_violation.
const pgUniqueViolation = "23505"

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	const q = `
INSERT INTO users (username, password_hash, created_at)
VALUES ($1,$2,$3)
RETURNING id;
`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, u.Username, u.PasswordHash, u.CreatedAt).Scan(&id); err != nil {
		var pe *pq.Error
		if errors.As(err, &pe) && string(pe.Code) == pgUniqueViolation {
			return 0, domain.ErrUsernameTaken
		}
		return 0, err
	}
	return id, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const q = `
SELECT id, username, password_hash, created_at
FROM users
WHERE username=$1 LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, username)

	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
