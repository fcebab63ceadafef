package cli

import (
	"fmt"
	"time"

	"dayplan-cli/internal/agenda"

	"github.com/spf13/cobra"
)

func newPlansCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Saved AI plan commands",
	}
	cmd.AddCommand(newPlansListCmd(app))
	cmd.AddCommand(newPlansDayCmd(app))
	cmd.AddCommand(newPlansWeekCmd(app))
	return cmd
}

func newPlansListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sess, err := requireSignIn(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			plans, err := c.Plans(cmd.Context(), sess.UserID())
			if err != nil {
				return writeErr(cmd, demote401(err))
			}
			return writeOut(cmd, app, map[string]any{"data": plans})
		},
	}
	return cmd
}

func newPlansDayCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Planned tasks for one day (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := app.config().Location()
			day := time.Now().In(loc)
			if len(args) == 1 {
				d, err := time.ParseInLocation("2006-01-02", args[0], loc)
				if err != nil {
					return writeErr(cmd, errInvalid("day", fmt.Sprintf("%q (want YYYY-MM-DD)", args[0])))
				}
				day = d
			}
			c, sess, err := requireSignIn(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			plans, err := c.Plans(cmd.Context(), sess.UserID())
			if err != nil {
				return writeErr(cmd, demote401(err))
			}
			tasks := agenda.PlanTasksOn(plans, day, loc)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"day":   day.Format("2006-01-02"),
				"tasks": tasks,
			}})
		},
	}
	return cmd
}

func newPlansWeekCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Task counts for the next 7 days",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := app.config().Location()
			c, sess, err := requireSignIn(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			plans, err := c.Plans(cmd.Context(), sess.UserID())
			if err != nil {
				return writeErr(cmd, demote401(err))
			}
			days := agenda.Week(time.Now(), loc)
			counts := agenda.TaskCounts(plans, days, loc)
			out := make([]map[string]any, len(days))
			for i, d := range days {
				out[i] = map[string]any{
					"day":   d.Format("2006-01-02"),
					"tasks": counts[i],
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	return cmd
}
