package tui

import (
	"errors"
	"strings"

	"dayplan-cli/internal/agenda"
	"dayplan-cli/internal/planner"
	"dayplan-cli/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Init() tea.Cmd {
	if m.sess == nil {
		return textinput.Blink
	}
	return func() tea.Msg { return initLoadMsg{} }
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.seenWindowSize = true
		m.resizeLayout()
		return m, nil

	case initLoadMsg:
		return m, tea.Batch(m.fetchTodosCmd(), m.fetchPlansCmd(), m.spin.Tick)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case flashDoneMsg:
		if msg.seq == m.flashSeq {
			m.flashText = ""
		}
		return m, nil

	case loginMsg:
		m.loggingIn = false
		if msg.errMsg != "" {
			m.loginErr = msg.errMsg
			return m, nil
		}
		sess := session.New(msg.user, msg.token)
		if err := session.Save(sess); err != nil {
			m.loginErr = err.Error()
			return m, nil
		}
		m.sess = sess
		m.loginErr = ""
		m.passwordInput.Reset()
		m.enterSignedIn()
		return m, tea.Batch(m.fetchTodosCmd(), m.fetchPlansCmd(), m.spin.Tick)

	case todosMsg:
		if msg.seq != m.todosSeq {
			// A newer fetch is in flight; this response is stale.
			return m, nil
		}
		m.loadingTodos = false
		if msg.unauthorized {
			m.signOut("Session expired. Sign in again.")
			return m, nil
		}
		if msg.errMsg != "" {
			return m, m.flashCmd(msg.errMsg, true)
		}
		m.todos = msg.todos
		m.refreshTodosList()
		return m, nil

	case plansMsg:
		if msg.seq != m.plansSeq {
			return m, nil
		}
		m.loadingPlans = false
		if msg.unauthorized {
			m.signOut("Session expired. Sign in again.")
			return m, nil
		}
		if msg.errMsg != "" {
			return m, m.flashCmd(msg.errMsg, true)
		}
		m.plans = msg.plans
		return m, nil

	case chatMsg:
		if msg.unauthorized {
			m.signOut("Session expired. Sign in again.")
			return m, nil
		}
		if m.planner != nil {
			if applied := m.planner.FinishSend(msg.seq, msg.reply, errFrom(msg.errMsg)); applied {
				m.chatScroll = 0
				if msg.errMsg != "" {
					return m, m.flashCmd("Failed to get a reply: "+msg.errMsg, true)
				}
			}
		}
		return m, nil

	case savePlanMsg:
		if msg.seq != m.saveSeq {
			return m, nil
		}
		m.saving = false
		if msg.unauthorized {
			m.signOut("Session expired. Sign in again.")
			return m, nil
		}
		if msg.errMsg != "" {
			if m.planner != nil {
				m.planner.FinishSave(errors.New(msg.errMsg))
			}
			return m, m.flashCmd("Save failed: "+msg.errMsg, true)
		}
		if m.planner != nil {
			m.planner.FinishSave(nil)
		}
		m.lastSaved = msg.message
		m.chatScroll = 0
		flash := "Plan saved"
		if msg.failed > 0 {
			flash = "Plan saved; some todos failed to create"
		}
		// The converted todos now live on the backend; refetch.
		return m, tea.Batch(m.flashCmd(flash, msg.failed > 0), m.fetchTodosCmd(), m.fetchPlansCmd())

	case todoMutatedMsg:
		if msg.seq != m.mutateSeq {
			return m, nil
		}
		m.mutating = false
		if msg.unauthorized {
			m.signOut("Session expired. Sign in again.")
			return m, nil
		}
		if msg.errMsg != "" {
			if m.modal == modalNewTodo || m.modal == modalEditTodo {
				m.formErr = msg.errMsg
				return m, nil
			}
			return m, m.flashCmd(msg.errMsg, true)
		}
		m.applyConfirmedMutation(msg)
		if m.modal == modalNewTodo || m.modal == modalEditTodo || m.modal == modalConfirmDelete {
			m.closeModal()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeToFocused(msg)
}

// applyConfirmedMutation patches the local todo copy after the backend
// confirmed the change.
func (m *appModel) applyConfirmedMutation(msg todoMutatedMsg) {
	if msg.deletedID != 0 {
		keep := m.todos[:0]
		for _, t := range m.todos {
			if t.ID != msg.deletedID {
				keep = append(keep, t)
			}
		}
		m.todos = keep
	} else {
		replaced := false
		for i, t := range m.todos {
			if t.ID == msg.todo.ID {
				m.todos[i] = msg.todo
				replaced = true
				break
			}
		}
		if !replaced {
			m.todos = append(m.todos, msg.todo)
		}
	}
	m.refreshTodosList()
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits.
	if msg.String() == "ctrl+c" {
		m.persistUIState()
		return m, tea.Quit
	}

	if m.modal != modalNone {
		return m.handleModalKey(msg)
	}

	switch m.view {
	case viewLogin:
		return m.handleLoginKey(msg)
	case viewDashboard:
		return m.handleDashboardKey(msg)
	case viewCalendar:
		return m.handleCalendarKey(msg)
	case viewPlans:
		return m.handlePlansKey(msg)
	case viewChat:
		return m.handleChatKey(msg)
	case viewProfile:
		return m.handleProfileKey(msg)
	}
	return m, nil
}

// handleGlobalKey covers keys shared by all signed-in views when no text
// input has focus. Returns handled=false when the key should fall through.
func (m appModel) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		m.persistUIState()
		return m, tea.Quit, true
	case "tab":
		m.view = nextView(m.view, 1)
		return m, nil, true
	case "shift+tab":
		m.view = nextView(m.view, -1)
		return m, nil, true
	case "1":
		m.view = viewDashboard
		return m, nil, true
	case "2":
		m.view = viewCalendar
		return m, nil, true
	case "3":
		m.view = viewPlans
		return m, nil, true
	case "4":
		m.view = viewChat
		return m, nil, true
	case "5":
		m.view = viewProfile
		return m, nil, true
	case "r":
		return m, tea.Batch(m.fetchTodosCmd(), m.fetchPlansCmd(), m.spin.Tick), true
	}
	return m, nil, false
}

func nextView(v view, delta int) view {
	order := []view{viewDashboard, viewCalendar, viewPlans, viewChat, viewProfile}
	for i, o := range order {
		if o == v {
			return order[(i+delta+len(order))%len(order)]
		}
	}
	return viewDashboard
}

func (m appModel) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.emailInput.Focus()
			m.passwordInput.Blur()
		} else {
			m.passwordInput.Focus()
			m.emailInput.Blur()
		}
		return m, textinput.Blink
	case "enter":
		email := strings.TrimSpace(m.emailInput.Value())
		password := m.passwordInput.Value()
		if email == "" || password == "" {
			m.loginErr = "Email and password are required."
			return m, nil
		}
		if m.loggingIn {
			return m, nil
		}
		m.loggingIn = true
		m.loginErr = ""
		return m, tea.Batch(loginCmd(m.client, email, password), m.spin.Tick)
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m appModel) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		case "esc", "ctrl+g":
			m.searching = false
			m.searchInput.Blur()
			m.searchInput.Reset()
			m.refreshTodosList()
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.refreshTodosList()
		return m, cmd
	}

	if next, cmd, handled := m.handleGlobalKey(msg); handled {
		return next, cmd
	}

	switch msg.String() {
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case "esc":
		if m.searchInput.Value() != "" {
			m.searchInput.Reset()
			m.refreshTodosList()
		}
		return m, nil
	case "f":
		m.filter = nextFilter(m.filter)
		m.refreshTodosList()
		return m, nil
	case "n":
		m.openTodoForm(nil, "")
		return m, textinput.Blink
	case "e":
		if todo, ok := m.selectedTodo(); ok {
			m.openTodoForm(&todo, "")
		}
		return m, textinput.Blink
	case "x", "backspace", "delete":
		if todo, ok := m.selectedTodo(); ok {
			m.modal = modalConfirmDelete
			m.deleteID = todo.ID
			m.confirmFocus = confirmFocusCancel
		}
		return m, nil
	case "enter", " ":
		if todo, ok := m.selectedTodo(); ok && !m.mutating {
			return m, tea.Batch(m.toggleTodoCmd(todo), m.spin.Tick)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.todosList, cmd = m.todosList.Update(msg)
	return m, cmd
}

func nextFilter(f agenda.Filter) agenda.Filter {
	switch f {
	case agenda.FilterAll:
		return agenda.FilterActive
	case agenda.FilterActive:
		return agenda.FilterCompleted
	default:
		return agenda.FilterAll
	}
}

func (m appModel) handleCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, handled := m.handleGlobalKey(msg); handled {
		return next, cmd
	}

	switch msg.String() {
	case "left", "h":
		m.calDay = m.calDay.AddDate(0, 0, -1)
	case "right", "l":
		m.calDay = m.calDay.AddDate(0, 0, 1)
	case "up", "k":
		m.calDay = m.calDay.AddDate(0, 0, -7)
	case "down", "j":
		m.calDay = m.calDay.AddDate(0, 0, 7)
	case "[":
		m.calDay = m.calDay.AddDate(0, -1, 0)
	case "]":
		m.calDay = m.calDay.AddDate(0, 1, 0)
	case "t":
		m.calDay = dayStart(m.now().In(m.loc))
	case "n":
		// Prefill the form with the selected day.
		m.openTodoForm(nil, m.calDay.Format("2006-01-02"))
		return m, textinput.Blink
	}
	return m, nil
}

func (m appModel) handlePlansKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, handled := m.handleGlobalKey(msg); handled {
		return next, cmd
	}

	switch msg.String() {
	case "left", "h":
		if m.weekIdx > 0 {
			m.weekIdx--
		}
	case "right", "l":
		if m.weekIdx < 6 {
			m.weekIdx++
		}
	case "t":
		m.weekIdx = 0
	}
	return m, nil
}

func (m appModel) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.view = viewDashboard
		return m, nil
	case "pgup":
		m.chatScroll += 5
		return m, nil
	case "pgdown":
		if m.chatScroll > 0 {
			m.chatScroll -= 5
			if m.chatScroll < 0 {
				m.chatScroll = 0
			}
		}
		return m, nil
	case "ctrl+s":
		if m.planner != nil && m.planner.CanSave() && !m.saving {
			m.modal = modalConfirmSavePlan
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "enter":
		if m.planner == nil || m.saving {
			return m, nil
		}
		seq, transcript, err := m.planner.BeginSend(m.chatInput.Value())
		if err != nil {
			// Blank message: nothing to send.
			return m, nil
		}
		m.chatInput.Reset()
		m.chatScroll = 0
		return m, tea.Batch(m.sendChatCmd(seq, transcript), m.spin.Tick)
	case "ctrl+j":
		m.chatInput.InsertString("\n")
		return m, nil
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m appModel) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, handled := m.handleGlobalKey(msg); handled {
		return next, cmd
	}
	return m, nil
}

func (m appModel) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalNewTodo, modalEditTodo:
		return m.handleTodoFormKey(msg)
	case modalConfirmDelete:
		return m.handleConfirmKey(msg, func(m appModel) (tea.Model, tea.Cmd) {
			id := m.deleteID
			return m, tea.Batch(m.deleteTodoCmd(id), m.spin.Tick)
		})
	case modalConfirmSavePlan:
		return m.handleConfirmKey(msg, func(m appModel) (tea.Model, tea.Cmd) {
			batch, err := m.planner.BeginSave()
			if err != nil {
				m.closeModal()
				return m, nil
			}
			m.closeModal()
			return m, tea.Batch(m.savePlanCmd(batch), m.spin.Tick)
		})
	}
	return m, nil
}

func (m appModel) handleConfirmKey(msg tea.KeyMsg, confirm func(appModel) (tea.Model, tea.Cmd)) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g", "n":
		m.closeModal()
		return m, nil
	case "tab", "left", "right":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "y":
		return confirm(m)
	case "enter":
		if m.confirmFocus == confirmFocusConfirm {
			return confirm(m)
		}
		m.closeModal()
		return m, nil
	}
	return m, nil
}

func (m appModel) handleTodoFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.closeModal()
		return m, nil
	case "tab", "down":
		m.setFormFocus((m.formFocus + 1) % 3)
		return m, textinput.Blink
	case "shift+tab", "up":
		m.setFormFocus((m.formFocus + 2) % 3)
		return m, textinput.Blink
	case "enter":
		return m.submitTodoForm()
	}

	var cmd tea.Cmd
	switch m.formFocus {
	case formFocusTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case formFocusDescription:
		m.descInput, cmd = m.descInput.Update(msg)
	case formFocusDue:
		m.dueInput, cmd = m.dueInput.Update(msg)
	}
	return m, cmd
}

// routeToFocused forwards non-key messages (cursor blink and the like) to
// whichever text component currently has focus.
func (m appModel) routeToFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == viewLogin && m.loginFocus == 0:
		m.emailInput, cmd = m.emailInput.Update(msg)
	case m.view == viewLogin:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	case m.modal == modalNewTodo || m.modal == modalEditTodo:
		switch m.formFocus {
		case formFocusTitle:
			m.titleInput, cmd = m.titleInput.Update(msg)
		case formFocusDescription:
			m.descInput, cmd = m.descInput.Update(msg)
		case formFocusDue:
			m.dueInput, cmd = m.dueInput.Update(msg)
		}
	case m.searching:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case m.view == viewChat:
		m.chatInput, cmd = m.chatInput.Update(msg)
	}
	return m, cmd
}

func (m *appModel) persistUIState() {
	if m.sess == nil {
		return
	}
	_ = session.SaveUIState(m.savedUIState())
}

func (m *appModel) signOut(reason string) {
	_ = session.Clear()
	m.sess = nil
	m.planner = nil
	m.view = viewLogin
	m.modal = modalNone
	m.loginErr = reason
	m.loginFocus = 0
	m.passwordInput.Reset()
	m.passwordInput.Blur()
	m.emailInput.Focus()
}

func (m appModel) busy() bool {
	if m.loggingIn || m.loadingTodos || m.loadingPlans || m.mutating || m.saving {
		return true
	}
	return m.planner != nil && m.planner.State() == planner.StateSending
}

func errFrom(s string) error {
	if s == "" {
		return nil
	}
	return errors.New(s)
}
