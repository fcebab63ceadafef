package tui

import (
	"fmt"
	"strings"

	"dayplan-cli/internal/agenda"

	"github.com/charmbracelet/lipgloss"
)

// viewPlansPage renders the rolling 7-day strip (today first) and the agenda
// of AI-planned tasks for the selected day.
func (m appModel) viewPlansPage() string {
	days := agenda.Week(m.now(), m.loc)
	counts := agenda.TaskCounts(m.plans, days, m.loc)

	idx := m.weekIdx
	if idx < 0 {
		idx = 0
	}
	if idx > 6 {
		idx = 6
	}

	selStyle := lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	todayStyle := lipgloss.NewStyle().Foreground(colorTodayFg).Background(colorTodayBg).Bold(true)

	cells := make([]string, 0, 7)
	for i, d := range days {
		label := d.Format("Mon 2")
		if i == 0 {
			label = "Today"
		}
		dot := " "
		if counts[i] > 0 {
			dot = glyphDot()
		}
		cell := fmt.Sprintf(" %s %s ", label, dot)
		switch {
		case i == idx:
			cell = selStyle.Render(cell)
		case i == 0:
			cell = todayStyle.Render(cell)
		default:
			cell = styleMuted().Render(cell)
		}
		cells = append(cells, cell)
	}
	strip := strings.Join(cells, " ")

	day := days[idx]
	tasks := agenda.PlanTasksOn(m.plans, day, m.loc)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(day.Format("Monday, 2 January")) + "\n\n")
	switch {
	case m.loadingPlans && len(m.plans) == 0:
		b.WriteString(styleMuted().Render("Loading plans…"))
	case len(tasks) == 0:
		b.WriteString(styleMuted().Render("No planned tasks for this day. Ask the planner (view 4)."))
	default:
		for _, t := range tasks {
			line := glyphDot() + " "
			// Date-only schedules carry no time worth printing.
			if !t.ScheduledFor.DateOnly {
				line += t.ScheduledFor.Time.In(m.loc).Format("15:04") + "  "
			}
			line += t.Title
			if t.ExpectedTimeMinutes > 0 {
				line += styleMuted().Render(fmt.Sprintf("  %d min", t.ExpectedTimeMinutes))
			}
			if t.Status != "" {
				line += styleMuted().Render("  " + t.Status)
			}
			b.WriteString(line + "\n")
		}
	}

	return strip + "\n\n" + b.String()
}
