// Package planner holds the AI planner chat session: an append-only
// transcript, the staged task batch awaiting user confirmation, and the
// conversion of confirmed tasks into todos.
//
// The session is idle → sending → idle|error. Responses are applied through
// a monotonic sequence guard: when sends overlap, only the reply to the most
// recently issued request lands; earlier replies are dropped as stale.
package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dayplan-cli/internal/api"
	"dayplan-cli/internal/model"
)

// Greeting opens every chat session.
const Greeting = `Hi! I'm your AI planning assistant. Tell me what you want to accomplish and I'll help you create a structured plan with tasks, timing, and scheduling. For example: "I need to prepare for a job interview next week" or "Help me plan my workout routine for this month".`

// Apology is appended when a send fails; the user's message stays visible.
const Apology = "Sorry, I encountered an error. Please try again."

// SavedConfirmation is appended after a successful plan save.
const SavedConfirmation = "Great! I've saved your structured plan. The tasks have been added to your task list. Is there anything else you'd like to plan?"

type State int

const (
	StateIdle State = iota
	StateSending
)

// API is the slice of the backend the planner needs.
type API interface {
	ChatPlan(ctx context.Context, userID string, messages []model.ChatMessage) (api.ChatReply, error)
	SaveStructuredPlan(ctx context.Context, userID string, tasks []model.TaskData) (string, error)
}

// TodoCreator converts confirmed tasks; satisfied by *api.Client.
type TodoCreator interface {
	CreateTodo(ctx context.Context, in model.CreateTodo) (model.Todo, error)
}

type Session struct {
	api    API
	userID string
	loc    *time.Location
	now    func() time.Time

	messages []model.ChatMessage
	staged   []model.TaskData
	state    State
	seq      int
}

type Option func(*Session)

// WithClock overrides the session clock (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func NewSession(backend API, userID string, loc *time.Location, opts ...Option) *Session {
	if loc == nil {
		loc = time.Local
	}
	s := &Session{
		api:      backend,
		userID:   userID,
		loc:      loc,
		now:      time.Now,
		messages: []model.ChatMessage{{Role: model.RoleAssistant, Content: Greeting}},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State { return s.state }

// Messages returns the transcript. The slice is shared; callers must not
// mutate it.
func (s *Session) Messages() []model.ChatMessage { return s.messages }

// Staged returns the task batch awaiting confirmation.
func (s *Session) Staged() []model.TaskData { return s.staged }

func (s *Session) CanSave() bool { return len(s.staged) > 0 && s.state == StateIdle }

// contextBlock prepends the current-date context so the remote model can
// resolve relative date language. One timezone policy everywhere: the
// session's location, same as the calendar views.
func (s *Session) contextBlock(text string) string {
	now := s.now().In(s.loc)
	today := now.Format("2006-01-02")
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	return fmt.Sprintf(`IMPORTANT CONTEXT:
- Current date and time: %s
- Today's date (use this for "today"): %s
- When user says "today", use: %s
- When user says "tomorrow", use: %s

User request: %s`,
		now.Format("Monday, 2 January 2006 15:04 MST"),
		today, today, tomorrow, text)
}

// BeginSend appends the augmented user message and marks the session
// sending. The returned sequence must be passed back to FinishSend; the
// returned transcript snapshot is what goes on the wire.
func (s *Session) BeginSend(text string) (int, []model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil, fmt.Errorf("empty message")
	}
	s.messages = append(s.messages, model.ChatMessage{
		Role:    model.RoleUser,
		Content: s.contextBlock(text),
	})
	s.state = StateSending
	s.seq++
	snapshot := make([]model.ChatMessage, len(s.messages))
	copy(snapshot, s.messages)
	return s.seq, snapshot, nil
}

// FinishSend applies the outcome of one send. Stale sequences (a newer send
// was issued meanwhile) are dropped entirely and false is returned. On
// failure the transcript keeps the user's message and gains the fixed
// apology; the staged batch is untouched. On success the reply is appended
// and a non-empty task list replaces (never merges with) the staged batch.
func (s *Session) FinishSend(seq int, reply api.ChatReply, sendErr error) bool {
	if seq != s.seq {
		return false
	}
	s.state = StateIdle
	if sendErr != nil {
		s.messages = append(s.messages, model.ChatMessage{Role: model.RoleAssistant, Content: Apology})
		return true
	}
	s.messages = append(s.messages, model.ChatMessage{Role: model.RoleAssistant, Content: reply.Reply})
	if len(reply.Tasks) > 0 {
		s.staged = reply.Tasks
	}
	return true
}

// Send is the synchronous convenience used by the CLI: one begin/finish
// round trip.
func (s *Session) Send(ctx context.Context, text string) (api.ChatReply, error) {
	seq, msgs, err := s.BeginSend(text)
	if err != nil {
		return api.ChatReply{}, err
	}
	reply, sendErr := s.api.ChatPlan(ctx, s.userID, msgs)
	s.FinishSend(seq, reply, sendErr)
	return reply, sendErr
}

// BeginSave snapshots the staged batch for submission. The session itself is
// untouched until FinishSave reports the outcome.
func (s *Session) BeginSave() ([]model.TaskData, error) {
	if len(s.staged) == 0 {
		return nil, fmt.Errorf("nothing staged to save")
	}
	batch := make([]model.TaskData, len(s.staged))
	copy(batch, s.staged)
	return batch, nil
}

// FinishSave applies a save outcome. On failure everything stays staged; on
// success the batch is cleared and the confirmation message appended.
func (s *Session) FinishSave(saveErr error) {
	if saveErr != nil {
		return
	}
	s.staged = nil
	s.messages = append(s.messages, model.ChatMessage{Role: model.RoleAssistant, Content: SavedConfirmation})
}

// Save submits the staged batch. On success the batch is cleared and the
// confirmation message appended; the cleared batch is returned so the caller
// can convert it into todos. On failure everything stays staged.
func (s *Session) Save(ctx context.Context) ([]model.TaskData, string, error) {
	batch, err := s.BeginSave()
	if err != nil {
		return nil, "", err
	}
	msg, err := s.api.SaveStructuredPlan(ctx, s.userID, batch)
	if err != nil {
		s.FinishSave(err)
		return nil, "", err
	}
	s.FinishSave(nil)
	return batch, msg, nil
}

// ConvertTask maps one confirmed AI task onto a todo create request: title
// verbatim, description synthesized from the duration, due date from the
// scheduled-for timestamp.
func ConvertTask(t model.TaskData) model.CreateTodo {
	due := t.ScheduledFor
	return model.CreateTodo{
		Title:       t.Title,
		Description: fmt.Sprintf("Estimated time: %d minutes", t.ExpectedTimeMinutes),
		DueDate:     &due,
	}
}

// ConvertAll creates one todo per task through independent create calls.
// A failed conversion is recorded and the rest continue; there is no
// atomicity across the batch.
func ConvertAll(ctx context.Context, creator TodoCreator, tasks []model.TaskData) ([]model.Todo, []error) {
	var created []model.Todo
	var failures []error
	for _, task := range tasks {
		todo, err := creator.CreateTodo(ctx, ConvertTask(task))
		if err != nil {
			failures = append(failures, fmt.Errorf("create todo %q: %w", task.Title, err))
			continue
		}
		created = append(created, todo)
	}
	return created, failures
}
