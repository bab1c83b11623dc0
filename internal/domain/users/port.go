package users

import "context"

// Repository port for identity persistence.
type Repository interface {
	Create(ctx context.Context, u *User) (int64, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
