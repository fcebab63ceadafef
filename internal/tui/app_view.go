package tui

import (
	"fmt"
	"strings"

	"dayplan-cli/internal/agenda"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.view == viewLogin {
		return m.viewLoginPage()
	}

	var body string
	switch m.view {
	case viewDashboard:
		body = m.viewDashboardPage()
	case viewCalendar:
		body = m.viewCalendarPage()
	case viewPlans:
		body = m.viewPlansPage()
	case viewChat:
		body = m.viewChatPage()
	case viewProfile:
		body = m.viewProfilePage()
	}

	page := strings.Join([]string{m.viewHeader(), body, m.viewFooter()}, "\n\n")

	switch m.modal {
	case modalNewTodo, modalEditTodo:
		return m.placeCentered(m.viewTodoFormModal())
	case modalConfirmDelete:
		return m.placeCentered(m.viewConfirmModal("Delete todo", "Delete the selected todo? This cannot be undone.", "Delete", "Cancel"))
	case modalConfirmSavePlan:
		n := 0
		if m.planner != nil {
			n = len(m.planner.Staged())
		}
		return m.placeCentered(m.viewConfirmModal("Save plan",
			fmt.Sprintf("Save %d planned task(s) and add them to your todos?", n), "Save", "Cancel"))
	}
	return page
}

func (m appModel) viewHeader() string {
	name := ""
	if m.sess != nil {
		name = m.sess.User.DisplayName()
	}

	tabs := make([]string, 0, 5)
	for i, v := range []view{viewDashboard, viewCalendar, viewPlans, viewChat, viewProfile} {
		label := fmt.Sprintf("%d %s", i+1, viewToString(v))
		if v == m.view {
			tabs = append(tabs, lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(label))
		} else {
			tabs = append(tabs, styleMuted().Render(label))
		}
	}

	left := lipgloss.NewStyle().Bold(true).Render("dayplan")
	right := styleMuted().Render(name)
	line := left + "  " + strings.Join(tabs, "  ")
	if name != "" {
		line += "  " + right
	}
	if m.busy() {
		line += "  " + m.spin.View()
	}
	return line
}

func (m appModel) viewFooter() string {
	var help string
	switch m.view {
	case viewDashboard:
		help = "enter: toggle  n: new  e: edit  x: delete  f: filter  /: search  tab: next view  q: quit"
	case viewCalendar:
		help = "arrows: day  [/]: month  t: today  n: new todo on day  tab: next view  q: quit"
	case viewPlans:
		help = "left/right: day  t: today  r: refresh  tab: next view  q: quit"
	case viewChat:
		help = "enter: send  ctrl+j: newline  ctrl+s: save plan  pgup/pgdn: scroll  esc: back"
	default:
		help = "tab: next view  q: quit"
	}

	footer := styleMuted().Render(help)
	if m.flashText != "" {
		st := styleMuted()
		if m.flashErr {
			st = styleError()
		}
		footer = st.Render(m.flashText) + "\n" + footer
	}
	return footer
}

func (m appModel) viewLoginPage() string {
	title := lipgloss.NewStyle().Bold(true).Render("dayplan " + glyphDot() + " sign in")

	lines := []string{
		title,
		"",
		"Email",
		m.emailInput.View(),
		"",
		"Password",
		m.passwordInput.View(),
		"",
	}
	if m.loggingIn {
		lines = append(lines, m.spin.View()+" Signing in…")
	} else {
		lines = append(lines, styleMuted().Render("tab: switch field  enter: sign in  ctrl+c: quit"))
	}
	if m.loginErr != "" {
		lines = append(lines, "", styleError().Render(m.loginErr))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorChromeMutedFg).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
	return m.placeCentered(box)
}

func (m appModel) viewDashboardPage() string {
	var head []string
	head = append(head, "Filter: "+filterLabel(m.filter))
	if m.searching {
		head = append(head, "Search: "+m.searchInput.View())
	} else if q := m.searchInput.Value(); q != "" {
		head = append(head, "Search: "+q+styleMuted().Render("  (esc clears)"))
	}

	listView := m.todosList.View()
	if len(m.todosList.Items()) == 0 {
		if m.loadingTodos {
			listView = styleMuted().Render("Loading todos…")
		} else {
			listView = styleMuted().Render("No todos. Press n to add one.")
		}
	}

	return strings.Join(head, "  ") + "\n\n" + listView
}

func filterLabel(f agenda.Filter) string {
	switch f {
	case agenda.FilterActive:
		return "active"
	case agenda.FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

func (m appModel) viewProfilePage() string {
	if m.sess == nil {
		return ""
	}
	stats := agenda.Summarize(m.todos)

	rows := []string{
		lipgloss.NewStyle().Bold(true).Render(m.sess.User.DisplayName()),
		styleMuted().Render(m.sess.User.Email),
		"",
		fmt.Sprintf("Total todos      %d", stats.Total),
		fmt.Sprintf("Completed        %d", stats.Completed),
		fmt.Sprintf("Pending          %d", stats.Pending),
		fmt.Sprintf("Completion       %d%%", stats.CompletionPercent()),
		"",
		styleMuted().Render("Session expires " + m.sess.ExpiresAt.In(m.loc).Format("2006-01-02 15:04")),
	}
	return strings.Join(rows, "\n")
}

func (m appModel) viewTodoFormModal() string {
	title := "New todo"
	if m.modal == modalEditTodo {
		title = "Edit todo"
	}

	lines := []string{
		"Title",
		m.titleInput.View(),
		"",
		"Description",
		m.descInput.View(),
		"",
		"Due date",
		m.dueInput.View(),
		"",
	}
	if m.formErr != "" {
		lines = append(lines, styleError().Render(m.formErr), "")
	}
	if m.mutating {
		lines = append(lines, m.spin.View()+" Saving…")
	} else {
		lines = append(lines, styleMuted().Render("tab: next field  enter: save  esc: cancel"))
	}
	return renderModalBox(m.width, title, strings.Join(lines, "\n"))
}

func (m appModel) viewConfirmModal(title, body, confirmLabel, cancelLabel string) string {
	// Avoid borders on the buttons: some terminals show background artifacts
	// when nesting bordered components inside a modal.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if m.confirmFocus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	} else {
		cancel = btnActive.Render(cancelLabel)
	}

	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, sep, cancel)

	bodyW := modalBodyWidth(m.width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   y/n   esc: cancel")

	content := strings.Join([]string{body, "", controls, "", help}, "\n")
	return renderModalBox(m.width, title, content)
}
