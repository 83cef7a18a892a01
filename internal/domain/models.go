package domain

import (
	"strings"
	"time"
)

// ==================== ENUMS ====================

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusCompleted,
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusPending:
		return "Pending"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Next returns the status that follows s, wrapping around after completed.
// Unknown statuses restart the cycle at pending.
func (s TaskStatus) Next() TaskStatus {
	for i, st := range TaskStatuses {
		if st == s {
			return TaskStatuses[(i+1)%len(TaskStatuses)]
		}
	}
	return TaskStatusPending
}

// Prev is the inverse of Next.
func (s TaskStatus) Prev() TaskStatus {
	for i, st := range TaskStatuses {
		if st == s {
			return TaskStatuses[(i+len(TaskStatuses)-1)%len(TaskStatuses)]
		}
	}
	return TaskStatusPending
}

// ParseTaskStatus accepts the wire form ("in_progress") as well as the
// hyphenated and spaced spellings people type on the command line.
func ParseTaskStatus(raw string) (TaskStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	s := TaskStatus(normalized)
	return s, s.Valid()
}

// ==================== ENTITIES ====================

type Task struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Text      string     `gorm:"column:task;type:text;not null" json:"task"`
	Status    TaskStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt time.Time  `gorm:"index" json:"-"`
	UpdatedAt time.Time  `json:"-"`
}

func (Task) TableName() string {
	return "todos"
}
