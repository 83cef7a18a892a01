package state

import (
	"errors"
	"testing"

	"github.com/lmt/todolist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func task(id, text string, status domain.TaskStatus) domain.Task {
	return domain.Task{ID: id, Text: text, Status: status}
}

// loaded returns a settled state holding tasks.
func loaded(t *testing.T, tasks ...domain.Task) State {
	t.Helper()
	s, req := Init()
	require.NotNil(t, req)
	s, _ = Reduce(s, Response{Token: req.Token, Tasks: tasks})
	require.False(t, s.Loading)
	return s
}

func TestInit(t *testing.T) {
	s, req := Init()
	require.NotNil(t, req)
	assert.Equal(t, RequestList, req.Kind)
	assert.True(t, s.Loading)
	assert.Equal(t, req.Token, s.InFlight.Token)

	// A second mount while the fetch is outstanding sends nothing.
	again, req2 := Reduce(s, Load{})
	assert.Nil(t, req2)
	assert.Equal(t, s, again)
}

func TestLoadFailure(t *testing.T) {
	s, req := Init()
	s, _ = Reduce(s, Response{Token: req.Token, Err: errBoom})

	assert.False(t, s.Loading)
	assert.NotNil(t, s.Tasks)
	assert.Empty(t, s.Tasks)
	assert.Equal(t, NoticeError, s.Notice.Kind)
	assert.Equal(t, MsgFetchFailed, s.Notice.Text)
}

func TestLoadSuccessHasNoNotice(t *testing.T) {
	s := loaded(t, task("1", "a", domain.TaskStatusPending))
	assert.Len(t, s.Tasks, 1)
	assert.Equal(t, NoticeNone, s.Notice.Kind)
}

func TestReloadFailureKeepsTasks(t *testing.T) {
	before := []domain.Task{
		task("1", "Buy milk", domain.TaskStatusPending),
		task("2", "Walk dog", domain.TaskStatusCompleted),
	}
	s := loaded(t, before...)

	s, req := Reduce(s, Load{})
	require.NotNil(t, req)
	assert.Equal(t, RequestList, req.Kind)

	s, _ = Reduce(s, Response{Token: req.Token, Err: errBoom})
	assert.False(t, s.Loading)
	assert.Equal(t, before, s.Tasks)
	assert.Equal(t, NoticeError, s.Notice.Kind)
	assert.Equal(t, MsgFetchFailed, s.Notice.Text)
}

func TestSubmitCreate(t *testing.T) {
	s := loaded(t)

	t.Run("blank input is ignored", func(t *testing.T) {
		for _, in := range []string{"", "   ", "\t"} {
			next, _ := Reduce(s, SetInput{Text: in})
			after, req := Reduce(next, SubmitCreate{})
			assert.Nil(t, req)
			assert.Equal(t, next, after)
			assert.False(t, next.CanSubmit())
		}
	})

	t.Run("success appends and clears input", func(t *testing.T) {
		next, _ := Reduce(s, SetInput{Text: "Buy milk"})
		require.True(t, next.CanSubmit())
		next, req := Reduce(next, SubmitCreate{})
		require.NotNil(t, req)
		assert.Equal(t, RequestCreate, req.Kind)
		assert.Equal(t, "Buy milk", req.Text)
		assert.True(t, next.Loading)

		created := task("1", "Buy milk", domain.TaskStatusPending)
		next, _ = Reduce(next, Response{Token: req.Token, Task: &created})
		assert.Equal(t, []domain.Task{created}, next.Tasks)
		assert.Empty(t, next.Input)
		assert.Equal(t, MsgCreated, next.Notice.Text)
		assert.Equal(t, NoticeSuccess, next.Notice.Kind)
		assert.Empty(t, s.Tasks, "reduce does not mutate its input")
	})

	t.Run("failure keeps list and input", func(t *testing.T) {
		next, _ := Reduce(s, SetInput{Text: "Buy milk"})
		next, req := Reduce(next, SubmitCreate{})
		next, _ = Reduce(next, Response{Token: req.Token, Err: errBoom})
		assert.Empty(t, next.Tasks)
		assert.Equal(t, "Buy milk", next.Input)
		assert.Equal(t, MsgCreateFailed, next.Notice.Text)
		assert.Equal(t, NoticeError, next.Notice.Kind)
	})

	t.Run("double submit sends once", func(t *testing.T) {
		next, _ := Reduce(s, SetInput{Text: "once"})
		next, first := Reduce(next, SubmitCreate{})
		require.NotNil(t, first)
		_, second := Reduce(next, SubmitCreate{})
		assert.Nil(t, second)
	})

	t.Run("disabled while editing", func(t *testing.T) {
		base := loaded(t, task("1", "a", domain.TaskStatusPending))
		next, _ := Reduce(base, StartEdit{ID: "1"})
		next, _ = Reduce(next, SetInput{Text: "new"})
		assert.False(t, next.CanSubmit())
		_, req := Reduce(next, SubmitCreate{})
		assert.Nil(t, req)
	})
}

func TestChangeStatus(t *testing.T) {
	s := loaded(t,
		task("1", "a", domain.TaskStatusPending),
		task("2", "b", domain.TaskStatusPending),
	)

	next, req := Reduce(s, ChangeStatus{ID: "1", Status: domain.TaskStatusCompleted})
	require.NotNil(t, req)
	assert.Equal(t, RequestUpdateStatus, req.Kind)
	assert.Equal(t, domain.TaskStatusCompleted, req.Status)

	// No optimistic update.
	assert.Equal(t, domain.TaskStatusPending, next.Tasks[0].Status)

	updated := task("1", "a", domain.TaskStatusCompleted)
	done, _ := Reduce(next, Response{Token: req.Token, Task: &updated})
	assert.Equal(t, domain.TaskStatusCompleted, done.Tasks[0].Status)
	assert.Equal(t, domain.TaskStatusPending, done.Tasks[1].Status)
	assert.Equal(t, MsgStatusUpdated, done.Notice.Text)

	failed, _ := Reduce(next, Response{Token: req.Token, Err: errBoom})
	assert.Equal(t, s.Tasks, failed.Tasks)
	assert.Equal(t, MsgStatusFailed, failed.Notice.Text)

	_, req = Reduce(s, ChangeStatus{ID: "1", Status: domain.TaskStatusPending})
	assert.Nil(t, req, "same status sends nothing")
	_, req = Reduce(s, ChangeStatus{ID: "missing", Status: domain.TaskStatusCompleted})
	assert.Nil(t, req)
	_, req = Reduce(s, ChangeStatus{ID: "1", Status: "archived"})
	assert.Nil(t, req)
}

func TestEdit(t *testing.T) {
	s := loaded(t,
		task("1", "Buy milk", domain.TaskStatusPending),
		task("2", "Walk dog", domain.TaskStatusInProgress),
	)

	s, _ = Reduce(s, StartEdit{ID: "1"})
	require.NotNil(t, s.Editing)
	assert.Equal(t, Edit{ID: "1", Draft: "Buy milk"}, *s.Editing)

	t.Run("starting another edit replaces the draft", func(t *testing.T) {
		next, _ := Reduce(s, StartEdit{ID: "2"})
		assert.Equal(t, Edit{ID: "2", Draft: "Walk dog"}, *next.Editing)
		assert.Equal(t, "1", s.Editing.ID)
	})

	t.Run("blank draft cannot be saved", func(t *testing.T) {
		next, _ := Reduce(s, SetDraft{Text: "  "})
		assert.False(t, next.CanSave())
		_, req := Reduce(next, SaveEdit{})
		assert.Nil(t, req)
	})

	t.Run("cancel discards the draft", func(t *testing.T) {
		next, _ := Reduce(s, SetDraft{Text: "changed"})
		next, _ = Reduce(next, CancelEdit{})
		assert.Nil(t, next.Editing)
		assert.Equal(t, "Buy milk", next.Tasks[0].Text)
	})

	t.Run("save success exits edit mode", func(t *testing.T) {
		next, _ := Reduce(s, SetDraft{Text: "Buy bread"})
		next, req := Reduce(next, SaveEdit{})
		require.NotNil(t, req)
		assert.Equal(t, RequestUpdateText, req.Kind)
		assert.Equal(t, "1", req.ID)
		assert.Equal(t, "Buy bread", req.Text)

		updated := task("1", "Buy bread", domain.TaskStatusPending)
		next, _ = Reduce(next, Response{Token: req.Token, Task: &updated})
		assert.Nil(t, next.Editing)
		assert.Equal(t, "Buy bread", next.Tasks[0].Text)
		assert.Equal(t, MsgUpdated, next.Notice.Text)
	})

	t.Run("save failure keeps edit mode", func(t *testing.T) {
		next, _ := Reduce(s, SetDraft{Text: "Buy bread"})
		next, req := Reduce(next, SaveEdit{})
		next, _ = Reduce(next, Response{Token: req.Token, Err: errBoom})
		require.NotNil(t, next.Editing)
		assert.Equal(t, "Buy bread", next.Editing.Draft)
		assert.Equal(t, "Buy milk", next.Tasks[0].Text)
		assert.Equal(t, MsgUpdateFailed, next.Notice.Text)
	})

	t.Run("set draft outside edit mode is ignored", func(t *testing.T) {
		next, _ := Reduce(s, CancelEdit{})
		after, _ := Reduce(next, SetDraft{Text: "x"})
		assert.Nil(t, after.Editing)
	})
}

func TestDelete(t *testing.T) {
	s := loaded(t,
		task("1", "a", domain.TaskStatusPending),
		task("2", "b", domain.TaskStatusPending),
	)

	_, req := Reduce(s, ConfirmDelete{})
	assert.Nil(t, req, "confirm without a pending target does nothing")

	s, req = Reduce(s, AskDelete{ID: "1"})
	assert.Nil(t, req, "asking for confirmation sends nothing")
	assert.Equal(t, "1", s.PendingDelete)

	cancelled, _ := Reduce(s, CancelDelete{})
	assert.Empty(t, cancelled.PendingDelete)
	assert.Len(t, cancelled.Tasks, 2)

	next, req := Reduce(s, ConfirmDelete{})
	require.NotNil(t, req)
	assert.Equal(t, RequestDelete, req.Kind)
	assert.Equal(t, "1", req.ID)

	done, _ := Reduce(next, Response{Token: req.Token})
	assert.Equal(t, []domain.Task{task("2", "b", domain.TaskStatusPending)}, done.Tasks)
	assert.Empty(t, done.PendingDelete)
	assert.Equal(t, MsgDeleted, done.Notice.Text)

	failed, _ := Reduce(next, Response{Token: req.Token, Err: errBoom})
	assert.Len(t, failed.Tasks, 2)
	assert.Equal(t, "1", failed.PendingDelete)
	assert.Equal(t, MsgDeleteFailed, failed.Notice.Text)

	_, req = Reduce(s, AskDelete{ID: "missing"})
	assert.Nil(t, req)
}

func TestStaleResponsesAreIgnored(t *testing.T) {
	s := loaded(t, task("1", "a", domain.TaskStatusPending))

	next, first := Reduce(s, ChangeStatus{ID: "1", Status: domain.TaskStatusCompleted})
	require.NotNil(t, first)

	stale := task("1", "a", domain.TaskStatusInProgress)
	after, _ := Reduce(next, Response{Token: first.Token - 1, Task: &stale})
	assert.Equal(t, next, after)

	updated := task("1", "a", domain.TaskStatusCompleted)
	settled, _ := Reduce(next, Response{Token: first.Token, Task: &updated})
	assert.False(t, settled.Loading)

	// The same response delivered twice only counts once.
	replay, _ := Reduce(settled, Response{Token: first.Token, Task: &stale})
	assert.Equal(t, settled, replay)
}

func TestMutationsIgnoredWhileLoading(t *testing.T) {
	s := loaded(t, task("1", "a", domain.TaskStatusPending))
	s, _ = Reduce(s, SetInput{Text: "b"})
	s, req := Reduce(s, SubmitCreate{})
	require.NotNil(t, req)

	for _, a := range []Action{
		Load{},
		SubmitCreate{},
		ChangeStatus{ID: "1", Status: domain.TaskStatusCompleted},
		StartEdit{ID: "1"},
		AskDelete{ID: "1"},
		ConfirmDelete{},
	} {
		next, r := Reduce(s, a)
		assert.Nil(t, r, "%T", a)
		assert.Equal(t, s, next, "%T", a)
	}

	// Typing stays possible.
	next, _ := Reduce(s, SetInput{Text: "bc"})
	assert.Equal(t, "bc", next.Input)
}

func TestTokensAreMonotonic(t *testing.T) {
	s := loaded(t, task("1", "a", domain.TaskStatusPending))
	last := s.token

	for _, st := range []domain.TaskStatus{domain.TaskStatusInProgress, domain.TaskStatusCompleted} {
		var req *Request
		s, req = Reduce(s, ChangeStatus{ID: "1", Status: st})
		require.NotNil(t, req)
		assert.Greater(t, req.Token, last)
		last = req.Token
		updated := task("1", "a", st)
		s, _ = Reduce(s, Response{Token: req.Token, Task: &updated})
	}
}

func TestDismissNotice(t *testing.T) {
	s, req := Init()
	s, _ = Reduce(s, Response{Token: req.Token, Err: errBoom})
	first := s.Notice.Seq

	s, _ = Reduce(s, SetInput{Text: "x"})
	s, req = Reduce(s, SubmitCreate{})
	created := task("1", "x", domain.TaskStatusPending)
	s, _ = Reduce(s, Response{Token: req.Token, Task: &created})
	require.NotEqual(t, first, s.Notice.Seq)

	// An old timer firing leaves the newer notice alone.
	kept, _ := Reduce(s, DismissNotice{Seq: first})
	assert.Equal(t, MsgCreated, kept.Notice.Text)

	cleared, _ := Reduce(s, DismissNotice{Seq: s.Notice.Seq})
	assert.Equal(t, NoticeNone, cleared.Notice.Kind)
	assert.Empty(t, cleared.Notice.Text)
}

func TestRequestKindString(t *testing.T) {
	assert.Equal(t, "list", RequestList.String())
	assert.Equal(t, "delete", RequestDelete.String())
	assert.Equal(t, "unknown", RequestKind(99).String())
}
