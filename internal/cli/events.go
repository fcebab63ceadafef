package cli

import (
	"dayplan-cli/internal/history"
	"dayplan-cli/internal/session"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent local activity (logins, todo edits, saved plans)",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := session.ConfigDir()
			if err != nil {
				return writeErr(cmd, err)
			}
			log, err := history.Open(cmd.Context(), dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer log.Close()
			events, err := log.Recent(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": events})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum events to show")
	return cmd
}
