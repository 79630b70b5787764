package repository

import (
	"context"

	"taskflow/internal/domain/entity"
)

// TaskRepository defines the interface for task-related database operations.
// Every method takes the owning user's ID; a task that exists under another
// owner behaves exactly like a missing one (ErrNotFound).
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	GetByID(ctx context.Context, id, userID string) (*entity.Task, error)
	ListByUserID(ctx context.Context, userID string, filter entity.TaskFilter) ([]*entity.Task, error)
	Update(ctx context.Context, t *entity.Task) error
	Delete(ctx context.Context, id, userID string) error
}
