package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lmt/todolist/internal/core/ports"
	"github.com/lmt/todolist/internal/domain"
	"github.com/lmt/todolist/internal/infrastructure/logger"
)

type taskService struct {
	repo        ports.TaskRepository
	events      *EventHub
	logger      *logger.Logger
	mu          sync.Mutex
	locks       map[string]*sync.Mutex
	enableLocks bool
}

type TaskServiceConfig struct {
	Repository  ports.TaskRepository
	Events      *EventHub
	Logger      *logger.Logger
	EnableLocks bool
}

func NewTaskService(cfg TaskServiceConfig) ports.TaskService {
	return &taskService{
		repo:        cfg.Repository,
		events:      cfg.Events,
		logger:      cfg.Logger,
		locks:       make(map[string]*sync.Mutex),
		enableLocks: cfg.EnableLocks,
	}
}

// lockKeys serializes mutations per task id when locks are enabled. Without
// them concurrent writes to one id are last-write-wins.
func (s *taskService) lockKeys(keys ...string) func() {
	if !s.enableLocks {
		return func() {}
	}
	if len(keys) == 0 {
		return func() {}
	}
	sort.Strings(keys)
	s.mu.Lock()
	acquired := make([]*sync.Mutex, 0, len(keys))
	for _, k := range keys {
		m := s.locks[k]
		if m == nil {
			m = &sync.Mutex{}
			s.locks[k] = m
		}
		acquired = append(acquired, m)
	}
	s.mu.Unlock()
	for _, m := range acquired {
		m.Lock()
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}

func (s *taskService) forget(key string) {
	if !s.enableLocks {
		return
	}
	s.mu.Lock()
	delete(s.locks, key)
	s.mu.Unlock()
}

func normalizeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("%w: task text is required", ErrTaskInvalidInput)
	}
	return trimmed, nil
}

func validateStatus(status domain.TaskStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrTaskInvalidInput, status)
	}
	return nil
}

// storeError maps repository failures onto the service's error taxonomy.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrTaskNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

func (s *taskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	text, err := normalizeText(input.Text)
	if err != nil {
		s.logger.WithContext(ctx).Warnw("todo_create_invalid", "error", err)
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.TaskStatusPending
	}
	if err := validateStatus(status); err != nil {
		s.logger.WithContext(ctx).Warnw("todo_create_invalid", "error", err)
		return nil, err
	}

	task := &domain.Task{Text: text, Status: status}
	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.WithContext(ctx).Errorw("todo_create_failed", "error", err)
		return nil, storeError("create task", err)
	}

	s.logger.WithContext(ctx).Infow("todo_create_ok", "id", task.ID, "status", task.Status)
	s.events.Publish(TaskEvent{Type: TaskEventCreated, ID: task.ID, Task: task})
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Errorw("todo_list_failed", "error", err)
		return nil, storeError("list tasks", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

func (s *taskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get task", err)
	}
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, id string, input ports.UpdateTaskInput) (*domain.Task, error) {
	fields := ports.TaskFields{}
	if input.Text != nil {
		text, err := normalizeText(*input.Text)
		if err != nil {
			s.logger.WithContext(ctx).Warnw("todo_update_invalid", "id", id, "error", err)
			return nil, err
		}
		fields.Text = &text
	}
	if input.Status != nil {
		if err := validateStatus(*input.Status); err != nil {
			s.logger.WithContext(ctx).Warnw("todo_update_invalid", "id", id, "error", err)
			return nil, err
		}
		status := *input.Status
		fields.Status = &status
	}

	if fields.Empty() {
		return s.GetTask(ctx, id)
	}

	unlock := s.lockKeys("task:" + id)
	defer unlock()

	task, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WithContext(ctx).Warnw("todo_update_not_found", "id", id)
		} else {
			s.logger.WithContext(ctx).Errorw("todo_update_failed", "id", id, "error", err)
		}
		return nil, storeError("update task", err)
	}

	s.logger.WithContext(ctx).Infow("todo_update_ok", "id", task.ID, "status", task.Status)
	s.events.Publish(TaskEvent{Type: TaskEventUpdated, ID: task.ID, Task: task})
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id string) error {
	unlock := s.lockKeys("task:" + id)
	err := s.repo.Delete(ctx, id)
	unlock()

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WithContext(ctx).Warnw("todo_delete_not_found", "id", id)
		} else {
			s.logger.WithContext(ctx).Errorw("todo_delete_failed", "id", id, "error", err)
		}
		return storeError("delete task", err)
	}
	s.forget("task:" + id)

	s.logger.WithContext(ctx).Infow("todo_delete_ok", "id", id)
	s.events.Publish(TaskEvent{Type: TaskEventDeleted, ID: id})
	return nil
}
