// Package state holds the task view's state and the single reducer that
// changes it. Network calls happen elsewhere: Reduce only describes the
// request to send and later folds the matching Response back in.
package state

import (
	"strings"

	"github.com/lmt/todolist/internal/domain"
)

const (
	MsgFetchFailed   = "Failed to fetch todos"
	MsgCreated       = "Task added successfully!"
	MsgCreateFailed  = "Failed to add task"
	MsgStatusUpdated = "Task status updated!"
	MsgStatusFailed  = "Failed to update task status"
	MsgUpdated       = "Task updated successfully!"
	MsgUpdateFailed  = "Failed to update task"
	MsgDeleted       = "Task deleted successfully!"
	MsgDeleteFailed  = "Failed to delete task"
)

type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is the transient message line. Seq identifies one notice so a
// delayed dismissal cannot clear a newer one.
type Notice struct {
	Kind NoticeKind
	Text string
	Seq  int
}

type Edit struct {
	ID    string
	Draft string
}

type RequestKind int

const (
	RequestList RequestKind = iota
	RequestCreate
	RequestUpdateStatus
	RequestUpdateText
	RequestDelete
)

func (k RequestKind) String() string {
	switch k {
	case RequestList:
		return "list"
	case RequestCreate:
		return "create"
	case RequestUpdateStatus:
		return "update_status"
	case RequestUpdateText:
		return "update_text"
	case RequestDelete:
		return "delete"
	}
	return "unknown"
}

// Request is what the caller must send. Its Token comes back on the Response.
type Request struct {
	Token  int
	Kind   RequestKind
	ID     string
	Text   string
	Status domain.TaskStatus
}

type State struct {
	Tasks         []domain.Task
	Loading       bool
	Input         string
	Editing       *Edit
	PendingDelete string
	Notice        Notice
	InFlight      *Request

	token     int
	noticeSeq int
}

// Init returns the empty view together with the initial fetch.
func Init() (State, *Request) {
	return Reduce(State{Tasks: []domain.Task{}}, Load{})
}

// CanSubmit reports whether the create form would accept a submit.
func (s State) CanSubmit() bool {
	return strings.TrimSpace(s.Input) != "" && !s.Loading && s.Editing == nil
}

func (s State) CanSave() bool {
	return s.Editing != nil && strings.TrimSpace(s.Editing.Draft) != "" && !s.Loading
}

func (s State) Task(id string) (domain.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}
