package cli

import (
	"strings"

	"dayplan-cli/internal/history"
	"dayplan-cli/internal/session"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return writeErr(cmd, errInvalid("email", "must not be empty"))
			}
			ctx := cmd.Context()
			c, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			token, err := c.Login(ctx, email, password)
			if err != nil {
				return writeErr(cmd, err)
			}
			c.SetToken(token)
			user, err := c.Me(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			sess := session.New(user, token)
			if err := session.Save(sess); err != nil {
				return writeErr(cmd, err)
			}
			recordEvent(ctx, history.KindLogin, sess.UserID(), user.Email)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"user":       user,
				"expires_at": sess.ExpiresAt,
			}})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var email, password, username string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (sign in afterwards with `dayplan login`)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return writeErr(cmd, errInvalid("email", "must not be empty"))
			}
			c, _, err := newClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.Register(cmd.Context(), email, password, username); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"registered": true,
				"email":      email,
			}})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&username, "username", "", "Display name (optional)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := session.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := session.Clear(); err != nil {
				return writeErr(cmd, err)
			}
			if sess != nil {
				recordEvent(cmd.Context(), history.KindLogout, sess.UserID(), sess.User.Email)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"signed_in": false}})
		},
	}
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user (verifies the token with the backend)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, sess, err := requireSignIn(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			user, err := c.Me(cmd.Context())
			if err != nil {
				return writeErr(cmd, demote401(err))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"user":       user,
				"expires_at": sess.ExpiresAt,
			}})
		},
	}
	return cmd
}
