package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmt/todolist/internal/core/ports"
	"github.com/lmt/todolist/internal/domain"
	"github.com/lmt/todolist/internal/infrastructure/logger"

	_ "modernc.org/sqlite"
)

// Fixed width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// NewSQLiteConnection opens (creating if needed) the database at path and
// applies pending migrations. ":memory:" gives a private in-memory database.
func NewSQLiteConnection(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One connection: sqlite serializes writers anyway, and every pooled
	// connection to ":memory:" would otherwise see its own empty database.
	database.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := database.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := RunSQLiteMigrations(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run sqlite migrations: %w", err)
	}
	return database, nil
}

type sqliteTaskRepository struct {
	db  *sql.DB
	log *logger.Logger
}

func NewSQLiteTaskRepository(db *sql.DB, log *logger.Logger) ports.TaskRepository {
	return &sqliteTaskRepository{db: db, log: log}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task      domain.Task
		status    string
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&task.ID, &task.Text, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	task.Status = domain.TaskStatus(status)

	var err error
	if task.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if task.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &task, nil
}

func (r *sqliteTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	task.ID = uuid.New().String()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO todos (id, task, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		task.ID, task.Text, string(task.Status), now.Format(sqliteTimeLayout), now.Format(sqliteTimeLayout),
	)
	if err != nil {
		r.log.Errorw("todo_repo_create_failed", "error", err, "driver", "sqlite")
		return err
	}
	r.log.Infow("todo_repo_create_ok", "id", task.ID, "driver", "sqlite")
	return nil
}

func (r *sqliteTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, task, status, created_at, updated_at FROM todos WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.log.Errorw("todo_repo_get_failed", "id", id, "error", err, "driver", "sqlite")
		return nil, err
	}
	return task, nil
}

func (r *sqliteTaskRepository) GetAll(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, task, status, created_at, updated_at FROM todos ORDER BY created_at, rowid`)
	if err != nil {
		r.log.Errorw("todo_repo_list_failed", "error", err, "driver", "sqlite")
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.log.Infow("todo_repo_list_ok", "count", len(tasks), "driver", "sqlite")
	return tasks, nil
}

func (r *sqliteTaskRepository) Update(ctx context.Context, id string, fields ports.TaskFields) (*domain.Task, error) {
	if fields.Empty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	if fields.Text != nil {
		sets = append(sets, "task = ?")
		args = append(args, *fields.Text)
	}
	if fields.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*fields.Status))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(sqliteTimeLayout), id)

	query := "UPDATE todos SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Errorw("todo_repo_update_failed", "id", id, "error", err, "driver", "sqlite")
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}
	r.log.Infow("todo_repo_update_ok", "id", id, "driver", "sqlite")
	return r.GetByID(ctx, id)
}

func (r *sqliteTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		r.log.Errorw("todo_repo_delete_failed", "id", id, "error", err, "driver", "sqlite")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	r.log.Infow("todo_repo_delete_ok", "id", id, "driver", "sqlite")
	return nil
}
