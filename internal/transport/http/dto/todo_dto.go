package dto

import (
	"github.com/lmt/todolist/internal/domain"
)

// TodoResponse is the wire form of a task.
type TodoResponse struct {
	ID     string            `json:"id"`
	Task   string            `json:"task"`
	Status domain.TaskStatus `json:"status"`
}

func TodoToResponse(task *domain.Task) TodoResponse {
	return TodoResponse{
		ID:     task.ID,
		Task:   task.Text,
		Status: task.Status,
	}
}

func TodosToResponse(tasks []domain.Task) []TodoResponse {
	out := make([]TodoResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, TodoToResponse(&tasks[i]))
	}
	return out
}

type CreateTodoRequest struct {
	Task   string  `json:"task"`
	Status *string `json:"status,omitempty"`
}

func (r *CreateTodoRequest) GetStatus() domain.TaskStatus {
	if r.Status == nil {
		return ""
	}
	return domain.TaskStatus(*r.Status)
}

// UpdateTodoRequest is a partial update: absent fields stay untouched.
type UpdateTodoRequest struct {
	Task   *string `json:"task,omitempty"`
	Status *string `json:"status,omitempty"`
}

func (r *UpdateTodoRequest) GetStatus() *domain.TaskStatus {
	if r.Status == nil {
		return nil
	}
	s := domain.TaskStatus(*r.Status)
	return &s
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
