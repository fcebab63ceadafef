package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"dayplan-cli/internal/api"
	"dayplan-cli/internal/format"
	"dayplan-cli/internal/history"
	"dayplan-cli/internal/session"
	"dayplan-cli/internal/tui"

	"github.com/spf13/cobra"
)

const defaultBaseURL = "https://aitodo.onrender.com"

type App struct {
	BaseURL    string
	Timezone   string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "dayplan",
		Short:        "AI day-planner client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  dayplan

  # Scriptable commands
  dayplan todos list --filter active

  # Ask the planner for a plan and save it
  dayplan plan "plan my exam prep for tomorrow" --save

  # Direct todo lookup (shortcut for: dayplan todos show <id>)
  dayplan 42
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", envOr("DAYPLAN_BASE_URL", ""), "Backend base URL (overrides config.json)")
	cmd.PersistentFlags().StringVar(&app.Timezone, "timezone", envOr("DAYPLAN_TIMEZONE", ""), "IANA timezone for day bucketing (overrides config.json; default: device-local)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("DAYPLAN_FORMAT", "json"), "Output format (json)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTodosCmd(app))
	cmd.AddCommand(newPlansCmd(app))
	cmd.AddCommand(newPlanCmd(app))
	cmd.AddCommand(newHistoryCmd(app))

	return cmd
}

func runTUI(app *App) error {
	cfg := app.config()
	sess, err := session.Load()
	if err != nil {
		return err
	}
	return tui.Run(cfg, sess)
}

// config merges flag overrides on top of config.json. A missing or broken
// config file degrades to defaults rather than blocking the command.
func (app *App) config() *session.GlobalConfig {
	cfg, err := session.LoadConfig()
	if err != nil || cfg == nil {
		cfg = &session.GlobalConfig{}
	}
	if app.BaseURL != "" {
		cfg.BaseURL = app.BaseURL
	}
	if app.Timezone != "" {
		cfg.Timezone = app.Timezone
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return cfg
}

func newClient(app *App) (*api.Client, *session.Session, error) {
	cfg := app.config()
	sess, err := session.Load()
	if err != nil {
		return nil, nil, err
	}
	var opts []api.Option
	if sess != nil {
		opts = append(opts, api.WithToken(sess.Token))
	}
	return api.NewClient(cfg.BaseURL, opts...), sess, nil
}

func requireSignIn(app *App) (*api.Client, *session.Session, error) {
	c, sess, err := newClient(app)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		return nil, nil, errNotSignedIn
	}
	return c, sess, nil
}

// demote401 turns a rejected token into a signed-out state so the next
// command prompts for login instead of failing the same way again.
func demote401(err error) error {
	if errors.Is(err, api.ErrUnauthorized) {
		_ = session.Clear()
		return errSessionExpired
	}
	return err
}

// recordEvent appends to the local activity log. Best effort: the log is
// diagnostics, never a reason to fail a command that already succeeded.
func recordEvent(ctx context.Context, kind, subject, detail string) {
	dir, err := session.ConfigDir()
	if err != nil {
		return
	}
	log, err := history.Open(ctx, dir)
	if err != nil {
		return
	}
	defer log.Close()
	_ = log.Append(ctx, kind, subject, detail)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
