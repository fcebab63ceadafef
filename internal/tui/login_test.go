package tui

import (
	"testing"

	"dayplan-cli/internal/model"
	"dayplan-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

func TestLoginRequiresBothFields(t *testing.T) {
	t.Setenv("DAYPLAN_CONFIG_DIR", t.TempDir())
	m := newAppModel(&session.GlobalConfig{}, nil)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(appModel)
	if cmd != nil {
		t.Fatalf("blank credentials must not issue a login command")
	}
	if m.loginErr == "" {
		t.Fatalf("expected a validation error")
	}
}

func TestLoginTabTogglesFocus(t *testing.T) {
	t.Setenv("DAYPLAN_CONFIG_DIR", t.TempDir())
	m := newAppModel(&session.GlobalConfig{}, nil)

	if !m.emailInput.Focused() {
		t.Fatalf("email field should start focused")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.passwordInput.Focused() || m.emailInput.Focused() {
		t.Fatalf("expected focus on password after tab")
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if !m.emailInput.Focused() {
		t.Fatalf("expected focus back on email")
	}
}

func TestLoginSubmitIssuesCommand(t *testing.T) {
	t.Setenv("DAYPLAN_CONFIG_DIR", t.TempDir())
	m := newAppModel(&session.GlobalConfig{}, nil)
	m.emailInput.SetValue("pat@example.com")
	m.passwordInput.SetValue("hunter2")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected a login command")
	}
	if !m.loggingIn {
		t.Fatalf("expected loggingIn set")
	}

	// A second enter while in flight is a no-op.
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("expected repeated enter ignored while logging in")
	}
}

func TestLoginMsgSuccessEntersAppAndPersists(t *testing.T) {
	t.Setenv("DAYPLAN_CONFIG_DIR", t.TempDir())
	m := newAppModel(&session.GlobalConfig{}, nil)
	m.loggingIn = true

	user := model.User{ID: 12, Email: "pat@example.com", Username: "pat"}
	next, cmd := m.Update(loginMsg{token: "tok-fresh", user: user})
	m = next.(appModel)
	if cmd == nil {
		t.Fatalf("expected initial fetches after login")
	}
	if m.view != viewDashboard {
		t.Fatalf("expected dashboard after login, got %v", m.view)
	}
	if m.planner == nil {
		t.Fatalf("expected planner session created")
	}
	if m.sess == nil || m.sess.Token != "tok-fresh" {
		t.Fatalf("expected session on the model, got %+v", m.sess)
	}
	if m.todosSeq != 1 || m.plansSeq != 1 {
		t.Fatalf("expected first fetches issued, todosSeq=%d plansSeq=%d", m.todosSeq, m.plansSeq)
	}

	stored, err := session.Load()
	if err != nil || stored == nil {
		t.Fatalf("load session: %v, %v", stored, err)
	}
	if stored.User.ID != 12 || stored.Token != "tok-fresh" {
		t.Fatalf("persisted session mismatch: %+v", stored)
	}
}

func TestLoginMsgFailureShowsError(t *testing.T) {
	t.Setenv("DAYPLAN_CONFIG_DIR", t.TempDir())
	m := newAppModel(&session.GlobalConfig{}, nil)
	m.loggingIn = true

	m = update(t, m, loginMsg{errMsg: "backend returned 401: Invalid credentials"})
	if m.loggingIn {
		t.Fatalf("expected loggingIn cleared")
	}
	if m.view != viewLogin {
		t.Fatalf("expected to stay on the login form")
	}
	if m.loginErr == "" {
		t.Fatalf("expected the error surfaced")
	}
	if s, err := session.Load(); err != nil || s != nil {
		t.Fatalf("failed login must not persist a session, got %v, %v", s, err)
	}
}
