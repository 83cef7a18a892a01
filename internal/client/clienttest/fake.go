// Package clienttest provides an in-memory task client for view and command
// tests.
package clienttest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lmt/todolist/internal/domain"
)

var ErrNotFound = errors.New("not found")

// FakeClient keeps tasks in memory and lets tests inject a failure per call.
type FakeClient struct {
	mu     sync.Mutex
	tasks  []domain.Task
	nextID int
	calls  []string

	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

func NewFakeClient(texts ...string) *FakeClient {
	f := &FakeClient{}
	for _, text := range texts {
		f.Add(text, domain.TaskStatusPending)
	}
	return f
}

// Add seeds a task without recording a call.
func (f *FakeClient) Add(text string, status domain.TaskStatus) domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t := domain.Task{ID: fmt.Sprintf("t%d", f.nextID), Text: text, Status: status}
	f.tasks = append(f.tasks, t)
	return t
}

// Calls returns the method names invoked so far, in order.
func (f *FakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeClient) Tasks() []domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Task(nil), f.tasks...)
}

func (f *FakeClient) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *FakeClient) ListTasks(ctx context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTasks")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]domain.Task{}, f.tasks...), nil
}

func (f *FakeClient) CreateTask(ctx context.Context, text string, status domain.TaskStatus) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTask")
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	if status == "" {
		status = domain.TaskStatusPending
	}
	f.nextID++
	t := domain.Task{ID: fmt.Sprintf("t%d", f.nextID), Text: strings.TrimSpace(text), Status: status}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *FakeClient) update(id string, apply func(*domain.Task)) (*domain.Task, error) {
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			apply(&f.tasks[i])
			t := f.tasks[i]
			return &t, nil
		}
	}
	return nil, ErrNotFound
}

func (f *FakeClient) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateStatus")
	return f.update(id, func(t *domain.Task) { t.Status = status })
}

func (f *FakeClient) UpdateText(ctx context.Context, id, text string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateText")
	return f.update(id, func(t *domain.Task) { t.Text = strings.TrimSpace(text) })
}

func (f *FakeClient) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTask")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
