package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dayplan-cli/internal/agenda"
	"dayplan-cli/internal/api"
	"dayplan-cli/internal/history"
	"dayplan-cli/internal/model"

	"github.com/spf13/cobra"
)

func newTodosCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todos",
		Short: "Todo commands",
	}
	cmd.AddCommand(newTodosListCmd(app))
	cmd.AddCommand(newTodosAddCmd(app))
	cmd.AddCommand(newTodosShowCmd(app))
	cmd.AddCommand(newTodosUpdateCmd(app))
	cmd.AddCommand(newTodosDeleteCmd(app))
	cmd.AddCommand(newTodosToggleCmd(app))
	return cmd
}

func newTodosListCmd(app *App) *cobra.Command {
	var filter, search, due string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos (optionally filtered)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := agenda.ParseFilter(filter)
			if !ok {
				return writeErr(cmd, errInvalid("filter", fmt.Sprintf("%q (want all|active|completed)", filter)))
			}
			c, _, err := requireSignIn(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			todos, err := c.Todos(cmd.Context())
			if err != nil {
				return writeErr(cmd, demote401(err))
			}
			todos = agenda.Apply(todos, f, search)
			if due != "" {
				loc := app.config().Location()
				day, err := time.ParseInLocation("2006-01-02", due, loc)
				if err != nil {
					return writeErr(cmd, errInvalid("due", fmt.Sprintf("%q (want YYYY-MM-DD)", due)))
				}
				todos = agenda.TodosOn(todos, day, loc)
			}
			return writeOut(cmd, app, map[string]any{"data": todos})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "all", "Completion filter (all|active|completed)")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive title/description substring")
	cmd.Flags().StringVar(&due, "due", "", "Only todos due on this day (YYYY-MM-DD)")
	return cmd
}

func newTodosAddCmd(app *App) *cobra.Command {
	var title, description, due string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a todo",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := app.config().Location()
			in := model.CreateTodo{
				Title:       strings.TrimSpace(title),
				Description: strings.TrimSpace(description),
			}
			if in.Title == "" {
				return writeErr(cmd, errInvalid("title", "must not be empty"))
			}
			if due != "" {
				ts, err := parseDue(due, loc)
				if err != nil {
					return writeErr(cmd, err)
				}
				in.DueDate = &ts
			}
			c, _, err := requireSignIn(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			todo, err := c.CreateTodo(cmd.Context(), in)
			if err != nil {
				return writeErr(cmd, demote401(err))
			}
			recordEvent(cmd.Context(), history.KindTodoCreate, strconv.Itoa(todo.ID), todo.Title)
			return writeOut(cmd, app, map[string]any{"data": todo})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Todo title")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTodosShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := requireSignIn(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			todo, err := findTodo(cmd.Context(), c, args[0])
			if err != nil {
				return writeErr(cmd, demote401(err))
			}
			return writeOut(cmd, app, map[string]any{"data": todo})
		},
	}
	return cmd
}

func newTodosUpdateCmd(app *App) *cobra.Command {
	var title, description, due string
	var completed bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTodoID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			loc := app.config().Location()

			var in model.UpdateTodo
			if cmd.Flags().Changed("title") {
				t := strings.TrimSpace(title)
				if t == "" {
					return writeErr(cmd, errInvalid("title", "must not be empty"))
				}
				in.Title = &t
			}
			if cmd.Flags().Changed("description") {
				d := strings.TrimSpace(description)
				in.Description = &d
			}
			if cmd.Flags().Changed("due") {
				ts, err := parseDue(due, loc)
				if err != nil {
					return writeErr(cmd, err)
				}
				in.DueDate = &ts
			}
			if cmd.Flags().Changed("completed") {
				in.Completed = &completed
			}
			if in.Title == nil && in.Description == nil && in.DueDate == nil && in.Completed == nil {
				return writeErr(cmd, errInvalid("update", "nothing to change"))
			}

			c, _, err := requireSignIn(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			todo, err := c.UpdateTodo(cmd.Context(), id, in)
			if err != nil {
				return writeErr(cmd, demote401(err))
			}
			recordEvent(cmd.Context(), history.KindTodoUpdate, strconv.Itoa(todo.ID), todo.Title)
			return writeOut(cmd, app, map[string]any{"data": todo})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description (empty string clears it)")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().BoolVar(&completed, "completed", false, "Completion state")
	return cmd
}

func newTodosDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTodoID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, _, err := requireSignIn(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.DeleteTodo(cmd.Context(), id); err != nil {
				return writeErr(cmd, demote401(err))
			}
			recordEvent(cmd.Context(), history.KindTodoDelete, strconv.Itoa(id), "")
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}
	return cmd
}

func newTodosToggleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a todo between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := requireSignIn(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			todo, err := findTodo(cmd.Context(), c, args[0])
			if err != nil {
				return writeErr(cmd, demote401(err))
			}
			updated, err := c.ToggleTodo(cmd.Context(), todo)
			if err != nil {
				return writeErr(cmd, demote401(err))
			}
			recordEvent(cmd.Context(), history.KindTodoToggle, strconv.Itoa(updated.ID), strconv.FormatBool(updated.Completed))
			return writeOut(cmd, app, map[string]any{"data": updated})
		},
	}
	return cmd
}

func parseTodoID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 0 {
		return 0, errInvalid("todo id", fmt.Sprintf("%q (want a number)", s))
	}
	return id, nil
}

// findTodo lists and scans; the backend has no single-todo endpoint.
func findTodo(ctx context.Context, c *api.Client, rawID string) (model.Todo, error) {
	id, err := parseTodoID(rawID)
	if err != nil {
		return model.Todo{}, err
	}
	todos, err := c.Todos(ctx)
	if err != nil {
		return model.Todo{}, err
	}
	for _, t := range todos {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Todo{}, errNotFound("todo", rawID)
}

// parseDue accepts a date or instant and rejects days already behind us.
func parseDue(s string, loc *time.Location) (model.Timestamp, error) {
	ts, err := model.ParseTimestamp(strings.TrimSpace(s))
	if err != nil {
		return model.Timestamp{}, errInvalid("due", fmt.Sprintf("%q (want YYYY-MM-DD or RFC 3339)", s))
	}
	today := agenda.DayKey(model.NewTimestamp(time.Now()), loc)
	if agenda.DayKey(ts, loc) < today {
		return model.Timestamp{}, errInvalid("due", "must not be in the past")
	}
	return ts, nil
}
