package tui

import (
	"strings"

	"dayplan-cli/internal/agenda"
	"dayplan-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// openTodoForm prepares the create/edit modal. A nil todo means create;
// prefillDue seeds the due field (used from the calendar).
func (m *appModel) openTodoForm(todo *model.Todo, prefillDue string) {
	m.titleInput.Reset()
	m.descInput.Reset()
	m.dueInput.Reset()
	m.formErr = ""
	m.editID = 0

	if todo != nil {
		m.modal = modalEditTodo
		m.editID = todo.ID
		m.titleInput.SetValue(todo.Title)
		m.descInput.SetValue(todo.Description)
		if todo.DueDate != nil {
			m.dueInput.SetValue(todo.DueDate.String())
		}
	} else {
		m.modal = modalNewTodo
		if prefillDue != "" {
			m.dueInput.SetValue(prefillDue)
		}
	}
	m.setFormFocus(formFocusTitle)
}

func (m *appModel) setFormFocus(f todoFormFocus) {
	m.formFocus = f
	m.titleInput.Blur()
	m.descInput.Blur()
	m.dueInput.Blur()
	switch f {
	case formFocusTitle:
		m.titleInput.Focus()
	case formFocusDescription:
		m.descInput.Focus()
	case formFocusDue:
		m.dueInput.Focus()
	}
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.formErr = ""
	m.editID = 0
	m.deleteID = 0
	m.titleInput.Blur()
	m.descInput.Blur()
	m.dueInput.Blur()
}

// validateTodoForm enforces what the form promises: a title, and a due date
// that parses and is not behind today.
func (m *appModel) validateTodoForm() (title, desc string, due *model.Timestamp, ok bool) {
	title = strings.TrimSpace(m.titleInput.Value())
	desc = strings.TrimSpace(m.descInput.Value())
	if title == "" {
		m.formErr = "Title is required."
		return "", "", nil, false
	}
	raw := strings.TrimSpace(m.dueInput.Value())
	if raw != "" {
		ts, err := model.ParseTimestamp(raw)
		if err != nil {
			m.formErr = "Due date must be YYYY-MM-DD."
			return "", "", nil, false
		}
		today := agenda.DayKey(model.NewTimestamp(m.now()), m.loc)
		if agenda.DayKey(ts, m.loc) < today {
			m.formErr = "Due date must not be in the past."
			return "", "", nil, false
		}
		due = &ts
	}
	m.formErr = ""
	return title, desc, due, true
}

func (m appModel) submitTodoForm() (tea.Model, tea.Cmd) {
	if m.mutating {
		return m, nil
	}
	title, desc, due, ok := m.validateTodoForm()
	if !ok {
		return m, nil
	}

	if m.modal == modalEditTodo {
		in := model.UpdateTodo{
			Title:       &title,
			Description: &desc,
			DueDate:     due,
		}
		return m, tea.Batch(m.updateTodoCmd(m.editID, in), m.spin.Tick)
	}

	in := model.CreateTodo{
		Title:       title,
		Description: desc,
		DueDate:     due,
	}
	return m, tea.Batch(m.createTodoCmd(in), m.spin.Tick)
}
