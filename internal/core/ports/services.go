package ports

import (
	"context"

	"github.com/lmt/todolist/internal/domain"
)

type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type CreateTaskInput struct {
	Text   string
	Status domain.TaskStatus // empty means pending
}

type UpdateTaskInput struct {
	Text   *string
	Status *domain.TaskStatus
}
