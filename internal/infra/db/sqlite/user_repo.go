package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	domain "github.com/IvanGD/engine-diagnostic-site/internal/domain/users"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	const q = `
INSERT INTO users (username, password_hash, created_at)
VALUES (?,?,?);
`
	res, err := r.db.ExecContext(ctx, q,
		u.Username, u.PasswordHash, u.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		// modernc.org/sqlite surfaces constraint failures as plain errors;
		// SQLITE_CONSTRAINT_UNIQUE carries this message text.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, domain.ErrUsernameTaken
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const q = `
SELECT id, username, password_hash, created_at
FROM users
WHERE username=? LIMIT 1;
`
	row := r.db.QueryRowContext(ctx, q, username)

	var u domain.User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = ts
	return &u, nil
}
