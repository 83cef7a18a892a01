package db

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lmt/todolist/internal/core/ports"
	"github.com/lmt/todolist/internal/domain"
	"github.com/lmt/todolist/internal/infrastructure/logger"
)

type memoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
	order []string
	log   *logger.Logger
}

// NewMemoryTaskRepository keeps tasks in process memory. Nothing survives a
// restart.
func NewMemoryTaskRepository(log *logger.Logger) ports.TaskRepository {
	return &memoryTaskRepository{
		tasks: make(map[string]*domain.Task),
		log:   log,
	}
}

func (r *memoryTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()

	task.ID = uuid.New().String()
	task.CreatedAt = now
	task.UpdatedAt = now

	stored := *task
	r.tasks[task.ID] = &stored
	r.order = append(r.order, task.ID)
	r.log.Infow("todo_repo_create_ok", "id", task.ID, "driver", "memory")
	return nil
}

func (r *memoryTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	task := *stored
	return &task, nil
}

func (r *memoryTaskRepository) GetAll(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]domain.Task, 0, len(r.order))
	for _, id := range r.order {
		tasks = append(tasks, *r.tasks[id])
	}
	return tasks, nil
}

func (r *memoryTaskRepository) Update(ctx context.Context, id string, fields ports.TaskFields) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if fields.Text != nil {
		stored.Text = *fields.Text
	}
	if fields.Status != nil {
		stored.Status = *fields.Status
	}
	if !fields.Empty() {
		stored.UpdatedAt = time.Now().UTC()
	}

	task := *stored
	r.log.Infow("todo_repo_update_ok", "id", id, "driver", "memory")
	return &task, nil
}

func (r *memoryTaskRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tasks, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.log.Infow("todo_repo_delete_ok", "id", id, "driver", "memory")
	return nil
}
