package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/lmt/todolist/internal/config"
	"github.com/lmt/todolist/internal/core/ports"
	"github.com/lmt/todolist/internal/domain"
	"github.com/lmt/todolist/internal/infrastructure/db"
	"github.com/lmt/todolist/internal/infrastructure/logger"
	transporthttp "github.com/lmt/todolist/internal/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	url     string
	service ports.TaskService
	dir     string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewNop()
	cfg := &config.Config{Features: config.FeaturesConfig{EventBuffer: 4}}
	app := transporthttp.NewApp(cfg, log)
	svc := transporthttp.SetupRoutes(app, transporthttp.RouterConfig{
		Repository: db.NewMemoryTaskRepository(log),
		Logger:     log,
		Config:     cfg,
	})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return &testEnv{url: srv.URL, service: svc, dir: t.TempDir()}
}

// run executes todoctl with args against the test server and returns stdout.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	cmd := root.Command()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(e.dir, "missing.yaml"),
		"--api-url", e.url,
		"--log-file", filepath.Join(e.dir, "todoctl.log"),
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e *testEnv) seed(t *testing.T, text string) *domain.Task {
	t.Helper()
	task, err := e.service.CreateTask(context.Background(), ports.CreateTaskInput{Text: text})
	require.NoError(t, err)
	return task
}

func TestListCommand(t *testing.T) {
	env := setupTestEnv(t)

	out, err := env.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks yet.")

	task := env.seed(t, "Buy milk")

	out, err = env.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, task.ID)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Pending")

	out, err = env.run(t, "", "ls", "--json")
	require.NoError(t, err)
	var tasks []domain.Task
	require.NoError(t, json.Unmarshal([]byte(out), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
	assert.Equal(t, domain.TaskStatusPending, tasks[0].Status)
}

func TestAddCommand(t *testing.T) {
	env := setupTestEnv(t)

	out, err := env.run(t, "", "add", "Buy", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, "Task added successfully!")
	assert.Contains(t, out, "Buy milk")

	out, err = env.run(t, "", "add", "--status", "in-progress", "Ship it")
	require.NoError(t, err)
	assert.Contains(t, out, "In Progress")

	_, err = env.run(t, "", "add", "--status", "done", "x")
	assert.ErrorContains(t, err, "invalid status")

	_, err = env.run(t, "", "add", "   ")
	assert.ErrorContains(t, err, "task text is required")

	tasks, err := env.service.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestStatusAndEditCommands(t *testing.T) {
	env := setupTestEnv(t)
	task := env.seed(t, "Buy milk")

	out, err := env.run(t, "", "status", task.ID, "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Task status updated!")

	out, err = env.run(t, "", "edit", task.ID, "Buy", "bread")
	require.NoError(t, err)
	assert.Contains(t, out, "Task updated successfully!")

	got, err := env.service.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy bread", got.Text)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)

	_, err = env.run(t, "", "status", "missing", "completed")
	assert.ErrorContains(t, err, "Failed to update task status: Todo not found")

	_, err = env.run(t, "", "edit", "missing", "x")
	assert.ErrorContains(t, err, "Failed to update task: Todo not found")
}

func TestRemoveCommand(t *testing.T) {
	env := setupTestEnv(t)
	task := env.seed(t, "Buy milk")

	out, err := env.run(t, "n\n", "rm", task.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `Delete "Buy milk"? [y/N]`)
	assert.Contains(t, out, "Delete cancelled.")
	_, err = env.service.GetTask(context.Background(), task.ID)
	require.NoError(t, err)

	out, err = env.run(t, "y\n", "rm", task.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Task deleted successfully!")

	_, err = env.run(t, "", "rm", "--yes", task.ID)
	assert.ErrorContains(t, err, "Failed to delete task: Todo not found")
}

func TestPingCommand(t *testing.T) {
	env := setupTestEnv(t)

	out, err := env.run(t, "", "ping")
	require.NoError(t, err)
	assert.Contains(t, out, transporthttp.Greeting)
}

func TestInvalidAPIURL(t *testing.T) {
	env := setupTestEnv(t)
	root := NewRootCommand()
	root.Command().SetArgs([]string{
		"--config", filepath.Join(env.dir, "missing.yaml"),
		"--api-url", "not a url",
		"--log-file", filepath.Join(env.dir, "todoctl.log"),
		"list",
	})
	assert.ErrorContains(t, root.Execute(), "invalid api base url")
}

func TestAPIURLFromEnvironment(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t, "from env")
	t.Setenv("TODO_API_URL", env.url)

	root := NewRootCommand()
	var out bytes.Buffer
	root.Command().SetOut(&out)
	root.Command().SetArgs([]string{
		"--config", filepath.Join(env.dir, "missing.yaml"),
		"--log-file", filepath.Join(env.dir, "todoctl.log"),
		"list",
	})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "from env")
}

func TestServerSettingsDoNotBlockClient(t *testing.T) {
	env := setupTestEnv(t)
	env.seed(t, "still listed")
	t.Setenv("TODO_DATABASE_DRIVER", "mongo")
	t.Setenv("TODO_SERVER_PORT", "0")

	out, err := env.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "still listed")
}
