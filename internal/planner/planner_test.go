package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"dayplan-cli/internal/api"
	"dayplan-cli/internal/model"
)

type fakeBackend struct {
	chatReply api.ChatReply
	chatErr   error
	saveMsg   string
	saveErr   error

	chatCalls [][]model.ChatMessage
	saveTasks [][]model.TaskData
}

func (f *fakeBackend) ChatPlan(_ context.Context, _ string, msgs []model.ChatMessage) (api.ChatReply, error) {
	f.chatCalls = append(f.chatCalls, msgs)
	return f.chatReply, f.chatErr
}

func (f *fakeBackend) SaveStructuredPlan(_ context.Context, _ string, tasks []model.TaskData) (string, error) {
	f.saveTasks = append(f.saveTasks, tasks)
	return f.saveMsg, f.saveErr
}

func fixedClock(s string) func() time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func task(title, scheduled string, minutes int) model.TaskData {
	ts, err := model.ParseTimestamp(scheduled)
	if err != nil {
		panic(err)
	}
	return model.TaskData{Title: title, ScheduledFor: ts, ExpectedTimeMinutes: minutes, Status: "pending"}
}

func TestNewSessionStartsWithGreeting(t *testing.T) {
	s := NewSession(&fakeBackend{}, "7", time.UTC)
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].Role != model.RoleAssistant || msgs[0].Content != Greeting {
		t.Fatalf("expected greeting transcript, got %+v", msgs)
	}
	if s.State() != StateIdle {
		t.Fatalf("expected idle, got %v", s.State())
	}
	if s.CanSave() {
		t.Fatal("nothing staged yet")
	}
}

func TestSend_InjectsDateContext(t *testing.T) {
	backend := &fakeBackend{chatReply: api.ChatReply{Reply: "ok"}}
	s := NewSession(backend, "7", time.UTC, WithClock(fixedClock("2024-03-15T14:30:00Z")))

	if _, err := s.Send(context.Background(), "plan my week"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(backend.chatCalls) != 1 {
		t.Fatalf("expected 1 chat call, got %d", len(backend.chatCalls))
	}
	sent := backend.chatCalls[0]
	last := sent[len(sent)-1]
	if last.Role != model.RoleUser {
		t.Fatalf("expected user turn last, got %v", last.Role)
	}
	for _, want := range []string{
		"IMPORTANT CONTEXT:",
		`Today's date (use this for "today"): 2024-03-15`,
		`When user says "tomorrow", use: 2024-03-16`,
		"User request: plan my week",
	} {
		if !strings.Contains(last.Content, want) {
			t.Fatalf("context block missing %q:\n%s", want, last.Content)
		}
	}
}

func TestSend_AppendsReplyAndStagesTasks(t *testing.T) {
	tasks := []model.TaskData{task("Prep", "2024-03-15T09:00:00Z", 30)}
	backend := &fakeBackend{chatReply: api.ChatReply{Reply: "Here is a plan.", Tasks: tasks}}
	s := NewSession(backend, "7", time.UTC)

	if _, err := s.Send(context.Background(), "interview prep"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msgs := s.Messages()
	if msgs[len(msgs)-1].Content != "Here is a plan." {
		t.Fatalf("expected reply appended, got %+v", msgs[len(msgs)-1])
	}
	if len(s.Staged()) != 1 || s.Staged()[0].Title != "Prep" {
		t.Fatalf("expected staged batch, got %+v", s.Staged())
	}
	if !s.CanSave() {
		t.Fatal("expected CanSave after staging")
	}
}

func TestSend_EmptyTaskListKeepsPriorStagedBatch(t *testing.T) {
	backend := &fakeBackend{chatReply: api.ChatReply{
		Reply: "plan", Tasks: []model.TaskData{task("First", "2024-03-15T09:00:00Z", 15)},
	}}
	s := NewSession(backend, "7", time.UTC)
	if _, err := s.Send(context.Background(), "stage something"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	backend.chatReply = api.ChatReply{Reply: "just chatting"}
	if _, err := s.Send(context.Background(), "thanks"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(s.Staged()) != 1 || s.Staged()[0].Title != "First" {
		t.Fatalf("empty reply must not clear staged batch, got %+v", s.Staged())
	}
}

func TestSend_NonEmptyTaskListReplacesStagedBatch(t *testing.T) {
	backend := &fakeBackend{chatReply: api.ChatReply{
		Reply: "v1", Tasks: []model.TaskData{task("Old", "2024-03-15T09:00:00Z", 15)},
	}}
	s := NewSession(backend, "7", time.UTC)
	if _, err := s.Send(context.Background(), "first"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	backend.chatReply = api.ChatReply{Reply: "v2", Tasks: []model.TaskData{
		task("New A", "2024-03-16T09:00:00Z", 20),
		task("New B", "2024-03-16T10:00:00Z", 20),
	}}
	if _, err := s.Send(context.Background(), "redo"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	staged := s.Staged()
	if len(staged) != 2 || staged[0].Title != "New A" {
		t.Fatalf("expected replacement, not merge: %+v", staged)
	}
}

func TestSend_FailureKeepsUserMessageAndAppendsApology(t *testing.T) {
	backend := &fakeBackend{
		chatReply: api.ChatReply{Reply: "ok", Tasks: []model.TaskData{task("Keep", "2024-03-15T09:00:00Z", 10)}},
	}
	s := NewSession(backend, "7", time.UTC)
	if _, err := s.Send(context.Background(), "stage"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	before := len(s.Messages())

	backend.chatErr = errors.New("network down")
	if _, err := s.Send(context.Background(), "will fail"); err == nil {
		t.Fatal("expected send error")
	}

	msgs := s.Messages()
	if len(msgs) != before+2 {
		t.Fatalf("expected user message + apology appended, got %d -> %d", before, len(msgs))
	}
	if !strings.Contains(msgs[len(msgs)-2].Content, "will fail") {
		t.Fatalf("user message missing from transcript: %+v", msgs[len(msgs)-2])
	}
	if msgs[len(msgs)-1].Content != Apology {
		t.Fatalf("expected apology, got %q", msgs[len(msgs)-1].Content)
	}
	if s.State() != StateIdle {
		t.Fatalf("expected idle after failure, got %v", s.State())
	}
	if len(s.Staged()) != 1 || s.Staged()[0].Title != "Keep" {
		t.Fatalf("staged batch must be unchanged by a failed send: %+v", s.Staged())
	}
}

func TestFinishSend_DropsStaleResponses(t *testing.T) {
	s := NewSession(&fakeBackend{}, "7", time.UTC)

	seq1, _, err := s.BeginSend("first")
	if err != nil {
		t.Fatalf("BeginSend: %v", err)
	}
	seq2, _, err := s.BeginSend("second")
	if err != nil {
		t.Fatalf("BeginSend: %v", err)
	}

	if applied := s.FinishSend(seq1, api.ChatReply{Reply: "stale"}, nil); applied {
		t.Fatal("stale response must be dropped")
	}
	if s.State() != StateSending {
		t.Fatal("stale response must not leave sending state")
	}
	if applied := s.FinishSend(seq2, api.ChatReply{Reply: "fresh"}, nil); !applied {
		t.Fatal("latest response must apply")
	}
	msgs := s.Messages()
	if msgs[len(msgs)-1].Content != "fresh" {
		t.Fatalf("expected only fresh reply in transcript, got %q", msgs[len(msgs)-1].Content)
	}
	for _, m := range msgs {
		if m.Content == "stale" {
			t.Fatal("stale reply leaked into transcript")
		}
	}
}

func TestSave_ClearsBatchAndAppendsConfirmation(t *testing.T) {
	backend := &fakeBackend{
		chatReply: api.ChatReply{Reply: "plan", Tasks: []model.TaskData{
			task("A", "2024-03-15T09:00:00Z", 30),
			task("B", "2024-03-15T11:00:00Z", 45),
		}},
		saveMsg: "saved",
	}
	s := NewSession(backend, "7", time.UTC)
	if _, err := s.Send(context.Background(), "stage"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	saved, msg, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if msg != "saved" || len(saved) != 2 {
		t.Fatalf("unexpected save result: %q, %d tasks", msg, len(saved))
	}
	if len(s.Staged()) != 0 || s.CanSave() {
		t.Fatalf("staged batch must clear after save: %+v", s.Staged())
	}
	last := s.Messages()[len(s.Messages())-1]
	if last.Content != SavedConfirmation {
		t.Fatalf("expected confirmation message, got %q", last.Content)
	}
	if len(backend.saveTasks) != 1 || len(backend.saveTasks[0]) != 2 {
		t.Fatalf("unexpected save payload: %+v", backend.saveTasks)
	}
}

func TestSave_FailureKeepsBatchStaged(t *testing.T) {
	backend := &fakeBackend{
		chatReply: api.ChatReply{Reply: "plan", Tasks: []model.TaskData{task("A", "2024-03-15T09:00:00Z", 30)}},
		saveErr:   errors.New("boom"),
	}
	s := NewSession(backend, "7", time.UTC)
	if _, err := s.Send(context.Background(), "stage"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if _, _, err := s.Save(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if len(s.Staged()) != 1 {
		t.Fatalf("failed save must keep batch staged: %+v", s.Staged())
	}
}

func TestSave_EmptyBatchRejected(t *testing.T) {
	s := NewSession(&fakeBackend{}, "7", time.UTC)
	if _, _, err := s.Save(context.Background()); err == nil {
		t.Fatal("expected error saving empty batch")
	}
}

type fakeCreator struct {
	failOn map[string]bool
	calls  []model.CreateTodo
}

func (f *fakeCreator) CreateTodo(_ context.Context, in model.CreateTodo) (model.Todo, error) {
	f.calls = append(f.calls, in)
	if f.failOn[in.Title] {
		return model.Todo{}, fmt.Errorf("rejected %q", in.Title)
	}
	return model.Todo{ID: len(f.calls), Title: in.Title, Description: in.Description, DueDate: in.DueDate}, nil
}

func TestConvertTask(t *testing.T) {
	in := task("Prep interview", "2024-03-15T09:00:00Z", 45)
	got := ConvertTask(in)
	if got.Title != "Prep interview" {
		t.Fatalf("title must copy verbatim, got %q", got.Title)
	}
	if got.Description != "Estimated time: 45 minutes" {
		t.Fatalf("unexpected description: %q", got.Description)
	}
	if got.DueDate == nil || !got.DueDate.Time.Equal(in.ScheduledFor.Time) {
		t.Fatalf("due date must copy scheduled_for, got %+v", got.DueDate)
	}
}

func TestConvertAll_PartialFailureContinues(t *testing.T) {
	tasks := []model.TaskData{
		task("one", "2024-03-15T09:00:00Z", 10),
		task("two", "2024-03-15T10:00:00Z", 20),
		task("three", "2024-03-15T11:00:00Z", 30),
	}
	creator := &fakeCreator{failOn: map[string]bool{"two": true}}

	created, failures := ConvertAll(context.Background(), creator, tasks)
	if len(creator.calls) != 3 {
		t.Fatalf("expected 3 create calls, got %d", len(creator.calls))
	}
	if len(created) != 2 || created[0].Title != "one" || created[1].Title != "three" {
		t.Fatalf("expected first and third created, got %+v", created)
	}
	if len(failures) != 1 || !strings.Contains(failures[0].Error(), "two") {
		t.Fatalf("expected one failure naming task two, got %v", failures)
	}
}

func TestBeginSend_RejectsEmptyText(t *testing.T) {
	s := NewSession(&fakeBackend{}, "7", time.UTC)
	if _, _, err := s.BeginSend("   "); err == nil {
		t.Fatal("expected error for blank message")
	}
	if len(s.Messages()) != 1 {
		t.Fatalf("blank send must not touch transcript: %d messages", len(s.Messages()))
	}
}
