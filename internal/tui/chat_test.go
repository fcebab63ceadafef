package tui

import (
	"strings"
	"testing"

	"dayplan-cli/internal/api"
	"dayplan-cli/internal/model"
	"dayplan-cli/internal/planner"

	tea "github.com/charmbracelet/bubbletea"
)

func TestDisplayContentStripsContextBlock(t *testing.T) {
	msg := model.ChatMessage{
		Role:    model.RoleUser,
		Content: "IMPORTANT CONTEXT:\n- Current date and time: whatever\n\nUser request: plan my tuesday",
	}
	if got := displayContent(msg); got != "plan my tuesday" {
		t.Fatalf("expected stripped user text, got %q", got)
	}

	// Assistant messages pass through untouched.
	reply := model.ChatMessage{Role: model.RoleAssistant, Content: "User request: not stripped"}
	if got := displayContent(reply); got != reply.Content {
		t.Fatalf("assistant content must pass through, got %q", got)
	}

	// A user message without the marker (shouldn't happen) passes through.
	plain := model.ChatMessage{Role: model.RoleUser, Content: "hello"}
	if got := displayContent(plain); got != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}
}

func TestChatEnterSendsAndReplyStagesTasks(t *testing.T) {
	m := newTestModel(t)
	m.view = viewChat
	m.chatInput.SetValue("plan my week")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected a send command")
	}
	if m.planner.State() != planner.StateSending {
		t.Fatalf("expected sending state")
	}
	if !m.busy() {
		t.Fatalf("expected the model busy while the planner is sending")
	}
	if m.chatInput.Value() != "" {
		t.Fatalf("expected input cleared after send")
	}
	msgs := m.planner.Messages()
	last := msgs[len(msgs)-1]
	if last.Role != model.RoleUser || !strings.Contains(last.Content, "plan my week") {
		t.Fatalf("expected outgoing user message, got %+v", last)
	}

	tasks := []model.TaskData{
		{Title: "Prep slides", ScheduledFor: mustDate(t, "2030-01-02"), ExpectedTimeMinutes: 45, Status: "pending"},
		{Title: "Review notes", ScheduledFor: mustDate(t, "2030-01-03"), ExpectedTimeMinutes: 30, Status: "pending"},
	}
	m = update(t, m, chatMsg{seq: 1, reply: api.ChatReply{Reply: "Here is a plan.", Tasks: tasks}})
	if m.planner.State() != planner.StateIdle {
		t.Fatalf("expected idle after reply")
	}
	if got := len(m.planner.Staged()); got != 2 {
		t.Fatalf("expected 2 staged tasks, got %d", got)
	}
	if !m.planner.CanSave() {
		t.Fatalf("expected CanSave with staged tasks")
	}
}

func TestChatSendFailureKeepsStagedBatch(t *testing.T) {
	m := newTestModel(t)
	m.view = viewChat
	stageTasks(t, &m, 1)

	m.chatInput.SetValue("and something else")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(appModel)

	next, cmd := m.Update(chatMsg{seq: 2, errMsg: "backend returned 500: boom"})
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected an error flash command")
	}
	msgs := m.planner.Messages()
	if got := msgs[len(msgs)-1].Content; got != planner.Apology {
		t.Fatalf("expected apology after failure, got %q", got)
	}
	if m.flashText == "" || !m.flashErr {
		t.Fatalf("expected an error flash alongside the apology, got %q err=%v", m.flashText, m.flashErr)
	}
	if got := len(m.planner.Staged()); got != 1 {
		t.Fatalf("failure must not drop the staged batch, got %d", got)
	}
}

func TestChatCtrlSConfirmThenSaveClearsBatch(t *testing.T) {
	m := newTestModel(t)
	m.view = viewChat
	stageTasks(t, &m, 2)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.modal != modalConfirmSavePlan {
		t.Fatalf("expected save confirmation, got modal %v", m.modal)
	}
	if m.confirmFocus != confirmFocusConfirm {
		t.Fatalf("save confirmation defaults to Confirm")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected a save command")
	}
	if m.modal != modalNone {
		t.Fatalf("expected modal closed once save is in flight")
	}
	if m.saveSeq != 1 || !m.saving {
		t.Fatalf("expected save in flight, seq=%d saving=%v", m.saveSeq, m.saving)
	}
	// Staged batch survives until the backend confirms.
	if got := len(m.planner.Staged()); got != 2 {
		t.Fatalf("expected batch still staged, got %d", got)
	}

	next, cmd = m.Update(savePlanMsg{seq: 1, message: "Plan saved successfully", created: 2})
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected a refetch after save")
	}
	if m.saving {
		t.Fatalf("expected saving cleared")
	}
	if got := len(m.planner.Staged()); got != 0 {
		t.Fatalf("expected batch cleared after save, got %d", got)
	}
	msgs := m.planner.Messages()
	if got := msgs[len(msgs)-1].Content; got != planner.SavedConfirmation {
		t.Fatalf("expected confirmation message, got %q", got)
	}
	if m.todosSeq == 0 || m.plansSeq == 0 {
		t.Fatalf("expected todos and plans refetch issued")
	}
}

func TestSavePlanFailureKeepsBatch(t *testing.T) {
	m := newTestModel(t)
	m.view = viewChat
	stageTasks(t, &m, 1)
	m.saveSeq = 1
	m.saving = true

	m = update(t, m, savePlanMsg{seq: 1, errMsg: "backend returned 500: nope"})
	if m.saving {
		t.Fatalf("expected saving cleared")
	}
	if got := len(m.planner.Staged()); got != 1 {
		t.Fatalf("failed save must keep the batch staged, got %d", got)
	}
	if m.flashText == "" || !m.flashErr {
		t.Fatalf("expected an error flash, got %q err=%v", m.flashText, m.flashErr)
	}
}

func TestChatCtrlSWithoutBatchDoesNothing(t *testing.T) {
	m := newTestModel(t)
	m.view = viewChat

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.modal != modalNone {
		t.Fatalf("no staged batch must not open the save modal")
	}
}

// stageTasks runs one chat round trip that leaves n tasks staged.
func stageTasks(t *testing.T, m *appModel, n int) {
	t.Helper()
	seq, _, err := m.planner.BeginSend("plan something")
	if err != nil {
		t.Fatalf("BeginSend: %v", err)
	}
	tasks := make([]model.TaskData, n)
	for i := range tasks {
		tasks[i] = model.TaskData{Title: "Task", ScheduledFor: mustDate(t, "2030-01-02"), ExpectedTimeMinutes: 15, Status: "pending"}
	}
	if !m.planner.FinishSend(seq, api.ChatReply{Reply: "ok", Tasks: tasks}, nil) {
		t.Fatalf("FinishSend dropped a current sequence")
	}
}

func mustDate(t *testing.T, s string) model.Timestamp {
	t.Helper()
	ts, err := model.ParseTimestamp(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}
