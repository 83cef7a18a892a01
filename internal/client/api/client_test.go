package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/lmt/todolist/internal/config"
	"github.com/lmt/todolist/internal/domain"
	"github.com/lmt/todolist/internal/infrastructure/db"
	"github.com/lmt/todolist/internal/infrastructure/logger"
	transporthttp "github.com/lmt/todolist/internal/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	log := logger.NewNop()
	cfg := &config.Config{Features: config.FeaturesConfig{EventBuffer: 4}}
	app := transporthttp.NewApp(cfg, log)
	transporthttp.SetupRoutes(app, transporthttp.RouterConfig{
		Repository: db.NewMemoryTaskRepository(log),
		Logger:     log,
		Config:     cfg,
	})

	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "localhost:5000"})
	assert.Error(t, err)

	c, err := NewClient(ClientConfig{BaseURL: " http://api.example.com/ "})
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.BaseURL())
}

func TestClient_RoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	greeting, err := client.Ping(ctx)
	require.NoError(t, err)
	assert.Equal(t, transporthttp.Greeting, greeting)

	tasks, err := client.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	created, err := client.CreateTask(ctx, "Buy milk", "")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Text)
	assert.Equal(t, domain.TaskStatusPending, created.Status)

	updated, err := client.UpdateStatus(ctx, created.ID, domain.TaskStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, updated.Status)

	updated, err = client.UpdateText(ctx, created.ID, "Buy bread")
	require.NoError(t, err)
	assert.Equal(t, "Buy bread", updated.Text)
	assert.Equal(t, domain.TaskStatusInProgress, updated.Status)

	tasks, err = client.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)

	require.NoError(t, client.DeleteTask(ctx, created.ID))

	err = client.DeleteTask(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Todo not found", apiErr.Message)
}

func TestClient_ValidationError(t *testing.T) {
	client := newTestClient(t)

	_, err := client.CreateTask(context.Background(), "   ", "")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Error creating todo", apiErr.Message)
	assert.NotEmpty(t, apiErr.Details)
	assert.False(t, IsNotFound(err))
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewClient(ClientConfig{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.ListTasks(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not API errors")
}
