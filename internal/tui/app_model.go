package tui

import (
	"time"

	"dayplan-cli/internal/agenda"
	"dayplan-cli/internal/api"
	"dayplan-cli/internal/model"
	"dayplan-cli/internal/planner"
	"dayplan-cli/internal/session"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
)

type appModel struct {
	cfg    *session.GlobalConfig
	sess   *session.Session
	client *api.Client
	loc    *time.Location
	now    func() time.Time

	width  int
	height int
	// We treat the very first WindowSizeMsg as "initial sizing" rather than
	// a user-driven resize.
	seenWindowSize bool

	view  view
	modal modalKind

	// Login form. Gates everything else while no session exists.
	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int
	loggingIn     bool
	loginErr      string

	// Server data. Only patched after a confirmed backend response.
	todos []model.Todo
	plans []model.Plan

	todosSeq     int
	plansSeq     int
	loadingTodos bool
	loadingPlans bool

	// Dashboard.
	todosList   list.Model
	filter      agenda.Filter
	searchInput textinput.Model
	searching   bool

	// Todo create/edit form modal.
	titleInput textinput.Model
	descInput  textinput.Model
	dueInput   textinput.Model
	formFocus  todoFormFocus
	formErr    string
	editID     int

	// Delete confirmation modal.
	confirmFocus confirmModalFocus
	deleteID     int

	mutateSeq int
	mutating  bool

	// Calendar: the selected day, normalized to midnight in loc.
	calDay time.Time

	// Plans week strip.
	weekIdx int

	// Planner chat.
	planner    *planner.Session
	chatInput  textarea.Model
	chatScroll int
	saveSeq    int
	saving     bool
	lastSaved  string

	spin spinner.Model

	flashText string
	flashErr  bool
	flashSeq  int
}

func newAppModel(cfg *session.GlobalConfig, sess *session.Session) appModel {
	if cfg == nil {
		cfg = &session.GlobalConfig{}
	}
	var opts []api.Option
	if sess != nil {
		opts = append(opts, api.WithToken(sess.Token))
	}
	client := api.NewClient(cfg.BaseURL, opts...)

	m := appModel{
		cfg:    cfg,
		sess:   sess,
		client: client,
		loc:    cfg.Location(),
		now:    time.Now,
		view:   viewLogin,
		filter: agenda.FilterAll,
	}
	m.calDay = dayStart(m.now().In(m.loc))

	m.emailInput = textinput.New()
	m.emailInput.Placeholder = "you@example.com"
	m.emailInput.CharLimit = 200
	m.emailInput.Width = 40
	m.passwordInput = textinput.New()
	m.passwordInput.Placeholder = "password"
	m.passwordInput.CharLimit = 200
	m.passwordInput.Width = 40
	m.passwordInput.EchoMode = textinput.EchoPassword

	m.todosList = newList("Todos", "todo", []list.Item{})
	m.todosList.SetDelegate(newCompactItemDelegate())

	m.searchInput = textinput.New()
	m.searchInput.Placeholder = "Search todos"
	m.searchInput.CharLimit = 200
	m.searchInput.Width = 32

	m.titleInput = textinput.New()
	m.titleInput.Placeholder = "Title"
	m.titleInput.CharLimit = 200
	m.titleInput.Width = 48
	m.descInput = textinput.New()
	m.descInput.Placeholder = "Description (optional)"
	m.descInput.CharLimit = 500
	m.descInput.Width = 48
	m.dueInput = textinput.New()
	m.dueInput.Placeholder = "Due YYYY-MM-DD (optional)"
	m.dueInput.CharLimit = 32
	m.dueInput.Width = 48

	m.chatInput = textarea.New()
	m.chatInput.Placeholder = "Describe what you want to plan…"
	m.chatInput.CharLimit = 0
	m.chatInput.SetWidth(72)
	m.chatInput.SetHeight(3)
	m.chatInput.ShowLineNumbers = false

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot

	if sess != nil {
		m.enterSignedIn()
		// Best-effort: restore the last screen/filter.
		if st, err := session.LoadUIState(); err == nil && st != nil {
			m.applySavedUIState(st)
		}
	} else {
		m.emailInput.Focus()
	}
	return m
}

// enterSignedIn switches from the login gate to the app proper.
func (m *appModel) enterSignedIn() {
	m.view = viewDashboard
	m.planner = planner.NewSession(m.client, m.sess.UserID(), m.loc)
	m.chatInput.Focus()
	m.chatScroll = 0
}

func (m *appModel) applySavedUIState(st *session.UIState) {
	if v, ok := viewFromString(st.View); ok {
		m.view = v
	}
	if f, ok := agenda.ParseFilter(st.Filter); ok {
		m.filter = f
	}
}

func (m appModel) savedUIState() *session.UIState {
	return &session.UIState{
		View:   viewToString(m.view),
		Filter: string(m.filter),
	}
}

// refreshTodosList rebuilds the dashboard list from the server copy with the
// current filter and search applied, keeping the selection when possible.
func (m *appModel) refreshTodosList() {
	curID := 0
	if it, ok := m.todosList.SelectedItem().(todoItem); ok {
		curID = it.todo.ID
	}
	visible := agenda.Apply(m.todos, m.filter, m.searchInput.Value())
	items := make([]list.Item, 0, len(visible))
	for _, t := range visible {
		items = append(items, todoItem{todo: t})
	}
	m.todosList.SetItems(items)
	if curID != 0 {
		for i, it := range items {
			if it.(todoItem).todo.ID == curID {
				m.todosList.Select(i)
				break
			}
		}
	}
}

func (m appModel) selectedTodo() (model.Todo, bool) {
	it, ok := m.todosList.SelectedItem().(todoItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

func (m *appModel) resizeLayout() {
	// Leave room for header, status line and footer.
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.todosList.SetSize(w-2, h)
	chatW := w - 4
	if chatW > 80 {
		chatW = 80
	}
	m.chatInput.SetWidth(chatW)
}

func dayStart(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
