package ports

import (
	"context"

	"github.com/lmt/todolist/internal/domain"
)

// TaskFields is a partial update. Nil fields are left untouched.
type TaskFields struct {
	Text   *string
	Status *domain.TaskStatus
}

func (f TaskFields) Empty() bool {
	return f.Text == nil && f.Status == nil
}

// TaskRepository persists tasks. Implementations assign Task.ID on Create and
// return domain.ErrNotFound for ids that do not exist.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	GetAll(ctx context.Context) ([]domain.Task, error)
	Update(ctx context.Context, id string, fields TaskFields) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}
