package admin

import (
	"context"

	"github.com/google/uuid"
)

type LabRepository interface {
	Create(ctx context.Context, l *Lab) error
	// Primary returns the oldest lab.
	Primary(ctx context.Context) (*Lab, error)
	Update(ctx context.Context, l *Lab) error
	// List returns labs newest first. limit 0 means all rows.
	List(ctx context.Context, limit, offset int) ([]*Lab, int, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// UpdateProfile writes full name, phone and role.
	UpdateProfile(ctx context.Context, u *User) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateCredentials(ctx context.Context, id uuid.UUID, email, hash string) error
	Count(ctx context.Context) (int, error)
}
