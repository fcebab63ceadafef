package tui

import (
	"dayplan-cli/internal/api"
	"dayplan-cli/internal/model"
)

type view int

const (
	viewLogin view = iota
	viewDashboard
	viewCalendar
	viewPlans
	viewChat
	viewProfile
)

func viewToString(v view) string {
	switch v {
	case viewLogin:
		return "login"
	case viewDashboard:
		return "dashboard"
	case viewCalendar:
		return "calendar"
	case viewPlans:
		return "plans"
	case viewChat:
		return "chat"
	case viewProfile:
		return "profile"
	default:
		return "unknown"
	}
}

func viewFromString(s string) (view, bool) {
	switch s {
	case "dashboard":
		return viewDashboard, true
	case "calendar":
		return viewCalendar, true
	case "plans":
		return viewPlans, true
	case "chat":
		return viewChat, true
	case "profile":
		return viewProfile, true
	default:
		return viewDashboard, false
	}
}

type modalKind int

const (
	modalNone modalKind = iota
	modalNewTodo
	modalEditTodo
	modalConfirmDelete
	modalConfirmSavePlan
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

type todoFormFocus int

const (
	formFocusTitle todoFormFocus = iota
	formFocusDescription
	formFocusDue
)

// Async fetch results. All carry the sequence they were issued with; stale
// sequences are dropped in Update so an old in-flight response can never
// overwrite newer state.

type todosMsg struct {
	seq          int
	todos        []model.Todo
	errMsg       string
	unauthorized bool
}

type plansMsg struct {
	seq          int
	plans        []model.Plan
	errMsg       string
	unauthorized bool
}

type chatMsg struct {
	seq          int
	reply        api.ChatReply
	errMsg       string
	unauthorized bool
}

type savePlanMsg struct {
	seq          int
	message      string
	created      int
	failed       int
	errMsg       string
	unauthorized bool
}

type loginMsg struct {
	token  string
	user   model.User
	errMsg string
}

// todoMutatedMsg reports one confirmed create/update/delete/toggle. The
// local list is only patched after this arrives (never speculatively).
type todoMutatedMsg struct {
	seq          int
	todo         model.Todo
	deletedID    int
	errMsg       string
	unauthorized bool
}

type flashDoneMsg struct{ seq int }

// initLoadMsg triggers the first fetch round after startup. Issued from Init
// so the sequence counters live on the model that bubbletea keeps.
type initLoadMsg struct{}
