package mysql

import (
	"context"
	"database/sql"
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"

	domain "github.com/IvanGD/engine-diagnostic-site/internal/domain/users"
)

// MySQL error 1062: duplicate entry for a unique key.
const erDupEntry = 1062

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
	res, err := r.db.ExecContext(ctx, q, u.Username, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var me *mysqldriver.MySQLError
		if errors.As(err, &me) && me.Number == erDupEntry {
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
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
