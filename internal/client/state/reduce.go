package state

import (
	"github.com/lmt/todolist/internal/domain"
)

// Action is anything the view can feed into Reduce.
type Action interface {
	isAction()
}

type (
	Load     struct{}
	SetInput struct{ Text string }
	// SubmitCreate creates a task from the current Input.
	SubmitCreate struct{}
	ChangeStatus struct {
		ID     string
		Status domain.TaskStatus
	}
	// StartEdit enters edit mode for ID, replacing any edit already open.
	StartEdit  struct{ ID string }
	SetDraft   struct{ Text string }
	SaveEdit   struct{}
	CancelEdit struct{}
	// AskDelete opens the delete confirmation for ID. Nothing is sent until
	// ConfirmDelete.
	AskDelete     struct{ ID string }
	CancelDelete  struct{}
	ConfirmDelete struct{}
	// Response reports the outcome of the request carrying Token. Task is set
	// for create and update, Tasks for list.
	Response struct {
		Token int
		Task  *domain.Task
		Tasks []domain.Task
		Err   error
	}
	DismissNotice struct{ Seq int }
)

func (Load) isAction()          {}
func (SetInput) isAction()      {}
func (SubmitCreate) isAction()  {}
func (ChangeStatus) isAction()  {}
func (StartEdit) isAction()     {}
func (SetDraft) isAction()      {}
func (SaveEdit) isAction()      {}
func (CancelEdit) isAction()    {}
func (AskDelete) isAction()     {}
func (CancelDelete) isAction()  {}
func (ConfirmDelete) isAction() {}
func (Response) isAction()      {}
func (DismissNotice) isAction() {}

// Reduce applies a to s. The returned request, when non-nil, must be sent and
// its outcome fed back as a Response with the same token. Actions that a guard
// rejects return s unchanged and no request.
func Reduce(s State, a Action) (State, *Request) {
	switch a := a.(type) {
	case Load:
		if s.Loading {
			return s, nil
		}
		return s.issue(Request{Kind: RequestList})

	case SetInput:
		s.Input = a.Text
		return s, nil

	case SubmitCreate:
		if !s.CanSubmit() {
			return s, nil
		}
		return s.issue(Request{Kind: RequestCreate, Text: s.Input})

	case ChangeStatus:
		if s.Loading || !a.Status.Valid() {
			return s, nil
		}
		task, ok := s.Task(a.ID)
		if !ok || task.Status == a.Status {
			return s, nil
		}
		return s.issue(Request{Kind: RequestUpdateStatus, ID: a.ID, Status: a.Status})

	case StartEdit:
		if s.Loading {
			return s, nil
		}
		task, ok := s.Task(a.ID)
		if !ok {
			return s, nil
		}
		s.Editing = &Edit{ID: task.ID, Draft: task.Text}
		return s, nil

	case SetDraft:
		if s.Editing == nil {
			return s, nil
		}
		s.Editing = &Edit{ID: s.Editing.ID, Draft: a.Text}
		return s, nil

	case SaveEdit:
		if !s.CanSave() {
			return s, nil
		}
		return s.issue(Request{Kind: RequestUpdateText, ID: s.Editing.ID, Text: s.Editing.Draft})

	case CancelEdit:
		if s.Loading {
			return s, nil
		}
		s.Editing = nil
		return s, nil

	case AskDelete:
		if s.Loading {
			return s, nil
		}
		if _, ok := s.Task(a.ID); !ok {
			return s, nil
		}
		s.PendingDelete = a.ID
		return s, nil

	case CancelDelete:
		if s.Loading {
			return s, nil
		}
		s.PendingDelete = ""
		return s, nil

	case ConfirmDelete:
		if s.Loading || s.PendingDelete == "" {
			return s, nil
		}
		return s.issue(Request{Kind: RequestDelete, ID: s.PendingDelete})

	case Response:
		return s.settle(a), nil

	case DismissNotice:
		if s.Notice.Seq == a.Seq {
			s.Notice = Notice{Seq: s.Notice.Seq}
		}
		return s, nil
	}
	return s, nil
}

func (s State) issue(req Request) (State, *Request) {
	s.token++
	req.Token = s.token
	s.Loading = true
	s.InFlight = &req
	out := req
	return s, &out
}

func (s State) notify(kind NoticeKind, text string) State {
	s.noticeSeq++
	s.Notice = Notice{Kind: kind, Text: text, Seq: s.noticeSeq}
	return s
}

// settle folds a response into s. Responses for anything but the outstanding
// request are stale and dropped.
func (s State) settle(r Response) State {
	if s.InFlight == nil || s.InFlight.Token != r.Token {
		return s
	}
	req := *s.InFlight
	s.InFlight = nil
	s.Loading = false

	switch req.Kind {
	case RequestList:
		if r.Err != nil {
			return s.notify(NoticeError, MsgFetchFailed)
		}
		s.Tasks = append([]domain.Task{}, r.Tasks...)
		return s

	case RequestCreate:
		if r.Err != nil || r.Task == nil {
			return s.notify(NoticeError, MsgCreateFailed)
		}
		tasks := make([]domain.Task, 0, len(s.Tasks)+1)
		tasks = append(tasks, s.Tasks...)
		s.Tasks = append(tasks, *r.Task)
		s.Input = ""
		return s.notify(NoticeSuccess, MsgCreated)

	case RequestUpdateStatus:
		if r.Err != nil || r.Task == nil {
			return s.notify(NoticeError, MsgStatusFailed)
		}
		s.Tasks = replaceTask(s.Tasks, *r.Task)
		return s.notify(NoticeSuccess, MsgStatusUpdated)

	case RequestUpdateText:
		if r.Err != nil || r.Task == nil {
			return s.notify(NoticeError, MsgUpdateFailed)
		}
		s.Tasks = replaceTask(s.Tasks, *r.Task)
		if s.Editing != nil && s.Editing.ID == req.ID {
			s.Editing = nil
		}
		return s.notify(NoticeSuccess, MsgUpdated)

	case RequestDelete:
		if r.Err != nil {
			return s.notify(NoticeError, MsgDeleteFailed)
		}
		s.Tasks = removeTask(s.Tasks, req.ID)
		s.PendingDelete = ""
		if s.Editing != nil && s.Editing.ID == req.ID {
			s.Editing = nil
		}
		return s.notify(NoticeSuccess, MsgDeleted)
	}
	return s
}

func replaceTask(tasks []domain.Task, task domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		if out[i].ID == task.ID {
			out[i] = task
		}
	}
	return out
}

func removeTask(tasks []domain.Task, id string) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
