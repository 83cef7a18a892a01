package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/lmt/todolist/internal/config"
	"github.com/lmt/todolist/internal/core/ports"
	"github.com/lmt/todolist/internal/core/services"
	"github.com/lmt/todolist/internal/infrastructure/logger"
	"github.com/lmt/todolist/internal/transport/http/handlers"
)

const Greeting = "Hello My dear Friend LMT TO do list is ready, Kindly proceed with frontend."

type RouterConfig struct {
	Repository ports.TaskRepository
	Events     *services.EventHub
	Logger     *logger.Logger
	Config     *config.Config
}

// SetupRoutes wires the task service over the given repository and registers
// every route. The service is returned for callers that need it directly.
func SetupRoutes(app *fiber.App, cfg RouterConfig) ports.TaskService {
	events := cfg.Events
	if events == nil {
		events = services.NewEventHub(cfg.Config.Features.EventBuffer, cfg.Logger)
	}

	taskService := services.NewTaskService(services.TaskServiceConfig{
		Repository:  cfg.Repository,
		Events:      events,
		Logger:      cfg.Logger,
		EnableLocks: cfg.Config.Features.EnableLocks,
	})

	todoHandler := handlers.NewTodoHandler(taskService, cfg.Logger)
	eventsHandler := handlers.NewEventsHandler(events, cfg.Logger)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(Greeting)
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	todos := app.Group("/todos")
	todos.Get("/", todoHandler.GetTodos)
	todos.Post("/", todoHandler.CreateTodo)
	todos.Put("/:id", todoHandler.UpdateTodo)
	todos.Delete("/:id", todoHandler.DeleteTodo)

	// Change feed
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws/todos", websocket.New(eventsHandler.Stream))

	return taskService
}
