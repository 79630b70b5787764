package repository

import (
	"context"
	"errors"

	"taskflow/internal/domain/entity"
)

// ErrNotFound is returned when a record does not exist. For tasks it also
// covers "exists but owned by someone else" so callers cannot distinguish
// the two cases.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned when the users unique email constraint trips.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
