package cli

import (
	"strings"

	"dayplan-cli/internal/history"
	"dayplan-cli/internal/planner"

	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "plan <message...>",
		Short: "Ask the AI planner for a plan (one chat turn)",
		Long: strings.TrimSpace(`
Sends one message to the AI planner and prints the reply. With --save the
proposed tasks are saved as a plan and each one is also created as a todo.
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, sess, err := requireSignIn(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			loc := app.config().Location()

			ps := planner.NewSession(c, sess.UserID(), loc)
			reply, err := ps.Send(ctx, strings.Join(args, " "))
			if err != nil {
				return writeErr(cmd, demote401(err))
			}

			out := map[string]any{
				"reply": reply.Reply,
				"tasks": reply.Tasks,
			}
			if save {
				if len(reply.Tasks) == 0 {
					return writeErr(cmd, errInvalid("save", "the reply proposed no tasks"))
				}
				tasks, msg, err := ps.Save(ctx)
				if err != nil {
					return writeErr(cmd, demote401(err))
				}
				created, failures := planner.ConvertAll(ctx, c, tasks)
				recordEvent(ctx, history.KindPlanSave, sess.UserID(), msg)
				out["saved"] = msg
				out["created_todos"] = len(created)
				if len(failures) > 0 {
					errs := make([]string, len(failures))
					for i, e := range failures {
						errs[i] = e.Error()
					}
					out["failed_todos"] = errs
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save the proposed tasks and create todos from them")
	return cmd
}
