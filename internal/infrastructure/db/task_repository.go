package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lmt/todolist/internal/core/ports"
	"github.com/lmt/todolist/internal/domain"
	"github.com/lmt/todolist/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepository(db *gorm.DB, log *logger.Logger) ports.TaskRepository {
	return &taskRepository{db: db, log: log}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	task.ID = uuid.New().String()
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.log.Errorw("todo_repo_create_failed", "error", err)
		return err
	}
	r.log.Infow("todo_repo_create_ok", "id", task.ID)
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		r.log.Errorw("todo_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) GetAll(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&tasks).Error; err != nil {
		r.log.Errorw("todo_repo_list_failed", "error", err)
		return nil, err
	}
	r.log.Infow("todo_repo_list_ok", "count", len(tasks))
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, id string, fields ports.TaskFields) (*domain.Task, error) {
	updates := map[string]interface{}{}
	if fields.Text != nil {
		updates["task"] = *fields.Text
	}
	if fields.Status != nil {
		updates["status"] = *fields.Status
	}
	if len(updates) == 0 {
		return r.GetByID(ctx, id)
	}

	res := r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		r.log.Errorw("todo_repo_update_failed", "id", id, "error", res.Error)
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	r.log.Infow("todo_repo_update_ok", "id", id)
	return r.GetByID(ctx, id)
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Task{})
	if res.Error != nil {
		r.log.Errorw("todo_repo_delete_failed", "id", id, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.log.Infow("todo_repo_delete_ok", "id", id)
	return nil
}
