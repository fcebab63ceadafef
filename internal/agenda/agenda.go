// Package agenda holds the pure view-building logic shared by the CLI and
// TUI: completion/search filtering of the todo list, calendar-day bucketing,
// and day-bucketing of plan tasks across the rolling week.
//
// Everything here is a pure function of its inputs. Day comparisons are
// calendar-day comparisons in an explicit location, never instant equality.
package agenda

import (
	"sort"
	"strings"
	"time"

	"dayplan-cli/internal/model"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter normalizes a user-supplied filter name. Unknown values fall
// back to "all" with ok=false so callers can decide whether to complain.
func ParseFilter(s string) (Filter, bool) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterAll, "":
		return FilterAll, true
	case FilterActive:
		return FilterActive, true
	case FilterCompleted, "done":
		return FilterCompleted, true
	}
	return FilterAll, false
}

func (f Filter) keeps(t model.Todo) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	}
	return true
}

// Apply returns the todos matching both the completion filter and the
// case-insensitive search query, preserving source order. The query matches
// substrings of the title or description; todos without a description only
// match on title.
func Apply(todos []model.Todo, f Filter, query string) []model.Todo {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if !f.keeps(t) {
			continue
		}
		if query != "" && !matchesQuery(t, query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesQuery(t model.Todo, lowered string) bool {
	if strings.Contains(strings.ToLower(t.Title), lowered) {
		return true
	}
	return t.Description != "" && strings.Contains(strings.ToLower(t.Description), lowered)
}

// DayKey renders the calendar day of ts in loc as YYYY-MM-DD. Date-only
// values keep their literal day; they carry no time to shift across zones.
func DayKey(ts model.Timestamp, loc *time.Location) string {
	if ts.DateOnly {
		return ts.Time.Format("2006-01-02")
	}
	return ts.Time.In(loc).Format("2006-01-02")
}

// SameDay reports whether ts falls on the calendar day of day (in loc).
func SameDay(ts model.Timestamp, day time.Time, loc *time.Location) bool {
	return DayKey(ts, loc) == day.In(loc).Format("2006-01-02")
}

// TodosOn returns every todo due on the given calendar day, in source order.
func TodosOn(todos []model.Todo, day time.Time, loc *time.Location) []model.Todo {
	var out []model.Todo
	for _, t := range todos {
		if t.DueDate == nil {
			continue
		}
		if SameDay(*t.DueDate, day, loc) {
			out = append(out, t)
		}
	}
	return out
}

// DaysWithTodos returns the set of calendar days (as YYYY-MM-DD keys) that
// have at least one due todo. Used to mark days, nothing else.
func DaysWithTodos(todos []model.Todo, loc *time.Location) map[string]bool {
	days := map[string]bool{}
	for _, t := range todos {
		if t.DueDate == nil {
			continue
		}
		days[DayKey(*t.DueDate, loc)] = true
	}
	return days
}

// PlanTasksOn gathers every task across every plan scheduled on the given
// calendar day, sorted ascending by scheduled time. The sort is stable so
// same-instant tasks keep plan order.
func PlanTasksOn(plans []model.Plan, day time.Time, loc *time.Location) []model.TaskData {
	var out []model.TaskData
	for _, p := range plans {
		for _, task := range p.Tasks {
			if SameDay(task.ScheduledFor, day, loc) {
				out = append(out, task)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledFor.Time.Before(out[j].ScheduledFor.Time)
	})
	return out
}

// Week returns today plus the next six calendar days, each at midnight in loc.
func Week(now time.Time, loc *time.Location) []time.Time {
	y, m, d := now.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	days := make([]time.Time, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

// TaskCounts maps each day of the week strip to the number of plan tasks
// scheduled on it, via the same bucketing as PlanTasksOn.
func TaskCounts(plans []model.Plan, days []time.Time, loc *time.Location) []int {
	counts := make([]int, len(days))
	for i, day := range days {
		counts[i] = len(PlanTasksOn(plans, day, loc))
	}
	return counts
}

// Stats summarizes completion for the profile panel.
type Stats struct {
	Total     int
	Completed int
	Pending   int
}

func Summarize(todos []model.Todo) Stats {
	st := Stats{Total: len(todos)}
	for _, t := range todos {
		if t.Completed {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}

// CompletionPercent is 0 when there are no todos.
func (s Stats) CompletionPercent() int {
	if s.Total == 0 {
		return 0
	}
	return int(float64(s.Completed)/float64(s.Total)*100 + 0.5)
}
