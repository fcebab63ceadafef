package tui

import (
	"fmt"
	"strings"
	"time"

	"dayplan-cli/internal/agenda"

	"github.com/charmbracelet/lipgloss"
)

// monthWeeks lays out the month containing day as calendar rows. Each row has
// seven entries; zero time values pad the leading/trailing cells. Weeks start
// on Sunday.
func monthWeeks(day time.Time) [][]time.Time {
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	offset := int(first.Weekday())

	var weeks [][]time.Time
	row := make([]time.Time, 7)
	col := offset
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		row[col] = d
		col++
		if col == 7 {
			weeks = append(weeks, row)
			row = make([]time.Time, 7)
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, row)
	}
	return weeks
}

func (m appModel) viewCalendarPage() string {
	today := dayStart(m.now().In(m.loc))
	marked := agenda.DaysWithTodos(m.todos, m.loc)

	title := lipgloss.NewStyle().Bold(true).Render(m.calDay.Format("January 2006"))

	var b strings.Builder
	b.WriteString(title + "\n\n")
	b.WriteString(styleMuted().Render(" Su  Mo  Tu  We  Th  Fr  Sa") + "\n")

	selStyle := lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	todayStyle := lipgloss.NewStyle().Foreground(colorTodayFg).Background(colorTodayBg).Bold(true)

	for _, week := range monthWeeks(m.calDay) {
		cells := make([]string, 0, 7)
		for _, d := range week {
			if d.IsZero() {
				cells = append(cells, "    ")
				continue
			}
			label := fmt.Sprintf("%2d", d.Day())
			mark := " "
			if marked[d.Format("2006-01-02")] {
				mark = glyphDot()
			}
			cell := label + mark
			switch {
			case d.Equal(m.calDay):
				cell = selStyle.Render(cell)
			case d.Equal(today):
				cell = todayStyle.Render(cell)
			default:
				cell = lipgloss.NewStyle().Render(cell)
			}
			cells = append(cells, " "+cell)
		}
		b.WriteString(strings.Join(cells, "") + "\n")
	}

	left := b.String()

	// Selected-day panel.
	dayTodos := agenda.TodosOn(m.todos, m.calDay, m.loc)
	var panel strings.Builder
	panel.WriteString(lipgloss.NewStyle().Bold(true).Render(m.calDay.Format("Mon, 2 Jan")) + "\n\n")
	if len(dayTodos) == 0 {
		panel.WriteString(styleMuted().Render("Nothing due this day."))
	} else {
		for _, t := range dayTodos {
			box := glyphCheckboxOpen()
			st := lipgloss.NewStyle()
			if t.Completed {
				box = glyphCheckboxDone()
				st = st.Foreground(colorDoneFg).Strikethrough(true)
			}
			panel.WriteString(st.Render(box+" "+t.Title) + "\n")
		}
	}

	leftW := 32
	rightW := m.width - leftW - 4
	if rightW < 20 {
		rightW = 20
	}
	h := strings.Count(left, "\n") + 1
	return lipgloss.JoinHorizontal(lipgloss.Top,
		normalizePane(left, leftW, h),
		normalizePane(panel.String(), rightW, h),
	)
}
