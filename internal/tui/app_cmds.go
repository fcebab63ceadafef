package tui

import (
	"context"
	"errors"
	"strconv"
	"time"

	"dayplan-cli/internal/api"
	"dayplan-cli/internal/history"
	"dayplan-cli/internal/model"
	"dayplan-cli/internal/planner"
	"dayplan-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

const requestTimeout = 60 * time.Second

func reqContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (m *appModel) fetchTodosCmd() tea.Cmd {
	m.todosSeq++
	m.loadingTodos = true
	seq := m.todosSeq
	client := m.client
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		todos, err := client.Todos(ctx)
		if err != nil {
			return todosMsg{seq: seq, errMsg: err.Error(), unauthorized: errors.Is(err, api.ErrUnauthorized)}
		}
		return todosMsg{seq: seq, todos: todos}
	}
}

func (m *appModel) fetchPlansCmd() tea.Cmd {
	m.plansSeq++
	m.loadingPlans = true
	seq := m.plansSeq
	client := m.client
	userID := m.sess.UserID()
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		plans, err := client.Plans(ctx, userID)
		if err != nil {
			return plansMsg{seq: seq, errMsg: err.Error(), unauthorized: errors.Is(err, api.ErrUnauthorized)}
		}
		return plansMsg{seq: seq, plans: plans}
	}
}

func loginCmd(client *api.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		token, err := client.Login(ctx, email, password)
		if err != nil {
			return loginMsg{errMsg: err.Error()}
		}
		client.SetToken(token)
		user, err := client.Me(ctx)
		if err != nil {
			return loginMsg{errMsg: err.Error()}
		}
		return loginMsg{token: token, user: user}
	}
}

func (m *appModel) createTodoCmd(in model.CreateTodo) tea.Cmd {
	m.mutateSeq++
	m.mutating = true
	seq := m.mutateSeq
	client := m.client
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		todo, err := client.CreateTodo(ctx, in)
		if err != nil {
			return todoMutatedMsg{seq: seq, errMsg: err.Error(), unauthorized: errors.Is(err, api.ErrUnauthorized)}
		}
		recordEvent(ctx, history.KindTodoCreate, todo)
		return todoMutatedMsg{seq: seq, todo: todo}
	}
}

func (m *appModel) updateTodoCmd(id int, in model.UpdateTodo) tea.Cmd {
	m.mutateSeq++
	m.mutating = true
	seq := m.mutateSeq
	client := m.client
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		todo, err := client.UpdateTodo(ctx, id, in)
		if err != nil {
			return todoMutatedMsg{seq: seq, errMsg: err.Error(), unauthorized: errors.Is(err, api.ErrUnauthorized)}
		}
		recordEvent(ctx, history.KindTodoUpdate, todo)
		return todoMutatedMsg{seq: seq, todo: todo}
	}
}

func (m *appModel) toggleTodoCmd(todo model.Todo) tea.Cmd {
	m.mutateSeq++
	m.mutating = true
	seq := m.mutateSeq
	client := m.client
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		updated, err := client.ToggleTodo(ctx, todo)
		if err != nil {
			return todoMutatedMsg{seq: seq, errMsg: err.Error(), unauthorized: errors.Is(err, api.ErrUnauthorized)}
		}
		recordEvent(ctx, history.KindTodoToggle, updated)
		return todoMutatedMsg{seq: seq, todo: updated}
	}
}

func (m *appModel) deleteTodoCmd(id int) tea.Cmd {
	m.mutateSeq++
	m.mutating = true
	seq := m.mutateSeq
	client := m.client
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		if err := client.DeleteTodo(ctx, id); err != nil {
			return todoMutatedMsg{seq: seq, errMsg: err.Error(), unauthorized: errors.Is(err, api.ErrUnauthorized)}
		}
		recordEvent(ctx, history.KindTodoDelete, model.Todo{ID: id})
		return todoMutatedMsg{seq: seq, deletedID: id}
	}
}

// sendChatCmd ships the planner transcript snapshot. The sequence comes from
// planner.BeginSend; FinishSend drops the result if a newer send was issued.
func (m *appModel) sendChatCmd(seq int, transcript []model.ChatMessage) tea.Cmd {
	client := m.client
	userID := m.sess.UserID()
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		reply, err := client.ChatPlan(ctx, userID, transcript)
		if err != nil {
			return chatMsg{seq: seq, errMsg: err.Error(), unauthorized: errors.Is(err, api.ErrUnauthorized)}
		}
		return chatMsg{seq: seq, reply: reply}
	}
}

// savePlanCmd saves the staged batch and converts each task into a todo.
// Per-task create failures are counted, not fatal.
func (m *appModel) savePlanCmd(batch []model.TaskData) tea.Cmd {
	m.saveSeq++
	m.saving = true
	seq := m.saveSeq
	client := m.client
	userID := m.sess.UserID()
	return func() tea.Msg {
		ctx, cancel := reqContext()
		defer cancel()
		msg, err := client.SaveStructuredPlan(ctx, userID, batch)
		if err != nil {
			return savePlanMsg{seq: seq, errMsg: err.Error(), unauthorized: errors.Is(err, api.ErrUnauthorized)}
		}
		recordEvent(ctx, history.KindPlanSave, nil)
		created, failures := convertBatch(ctx, client, batch)
		return savePlanMsg{seq: seq, message: msg, created: created, failed: failures}
	}
}

func (m *appModel) flashCmd(text string, isErr bool) tea.Cmd {
	m.flashText = text
	m.flashErr = isErr
	m.flashSeq++
	seq := m.flashSeq
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return flashDoneMsg{seq: seq} })
}

// recordEvent appends to the local activity log. Diagnostics only; failures
// are ignored.
func recordEvent(ctx context.Context, kind string, todo any) {
	dir, err := session.ConfigDir()
	if err != nil {
		return
	}
	log, err := history.Open(ctx, dir)
	if err != nil {
		return
	}
	defer log.Close()
	subject, detail := "", ""
	if t, ok := todo.(model.Todo); ok {
		subject = strconv.Itoa(t.ID)
		detail = t.Title
	}
	_ = log.Append(ctx, kind, subject, detail)
}

func convertBatch(ctx context.Context, client *api.Client, batch []model.TaskData) (created, failed int) {
	ok, failures := planner.ConvertAll(ctx, client, batch)
	return len(ok), len(failures)
}
