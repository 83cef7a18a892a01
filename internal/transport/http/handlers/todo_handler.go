package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lmt/todolist/internal/core/ports"
	"github.com/lmt/todolist/internal/core/services"
	"github.com/lmt/todolist/internal/infrastructure/logger"
	"github.com/lmt/todolist/internal/transport/http/dto"
)

const (
	msgFetchFailed  = "Error fetching todos"
	msgCreateFailed = "Error creating todo"
	msgUpdateFailed = "Error updating todo"
	msgDeleteFailed = "Error deleting todo"
	msgNotFound     = "Todo not found"
	msgDeleted      = "Todo deleted"
)

type TodoHandler struct {
	service ports.TaskService
	logger  *logger.Logger
}

func NewTodoHandler(service ports.TaskService, logger *logger.Logger) *TodoHandler {
	return &TodoHandler{service: service, logger: logger}
}

func (h *TodoHandler) GetTodos(c *fiber.Ctx) error {
	tasks, err := h.service.ListTasks(c.UserContext())
	if err != nil {
		h.logger.Errorw("todo_list_request_failed", "error", err)
		return h.fail(c, err, msgFetchFailed)
	}
	h.logger.Debugw("todo_list_success", "count", len(tasks))
	return c.JSON(dto.TodosToResponse(tasks))
}

func (h *TodoHandler) CreateTodo(c *fiber.Ctx) error {
	req, details := dto.DecodeCreateTodo(c.Body())
	if len(details) > 0 {
		h.logger.Warnw("todo_create_body_rejected", "details", details)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: msgCreateFailed, Details: details})
	}

	task, err := h.service.CreateTask(c.UserContext(), ports.CreateTaskInput{
		Text:   req.Task,
		Status: req.GetStatus(),
	})
	if err != nil {
		return h.fail(c, err, msgCreateFailed)
	}

	h.logger.Infow("todo_create_success", "id", task.ID)
	return c.JSON(dto.TodoToResponse(task))
}

func (h *TodoHandler) UpdateTodo(c *fiber.Ctx) error {
	id := c.Params("id")
	req, details := dto.DecodeUpdateTodo(c.Body())
	if len(details) > 0 {
		h.logger.Warnw("todo_update_body_rejected", "id", id, "details", details)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: msgUpdateFailed, Details: details})
	}

	task, err := h.service.UpdateTask(c.UserContext(), id, ports.UpdateTaskInput{
		Text:   req.Task,
		Status: req.GetStatus(),
	})
	if err != nil {
		return h.fail(c, err, msgUpdateFailed)
	}

	h.logger.Infow("todo_update_success", "id", task.ID)
	return c.JSON(dto.TodoToResponse(task))
}

func (h *TodoHandler) DeleteTodo(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteTask(c.UserContext(), id); err != nil {
		return h.fail(c, err, msgDeleteFailed)
	}

	h.logger.Infow("todo_delete_success", "id", id)
	return c.JSON(dto.SuccessResponse{Message: msgDeleted})
}

// fail renders err with the route's fixed message. Internal error text is
// logged, never sent.
func (h *TodoHandler) fail(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: msgNotFound})
	case errors.Is(err, services.ErrTaskInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: message})
	default:
		h.logger.Errorw("todo_request_failed", "path", c.Path(), "method", c.Method(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: message})
	}
}
