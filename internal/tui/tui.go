package tui

import (
	"dayplan-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(cfg *session.GlobalConfig, sess *session.Session) error {
	applyColorProfilePreference()
	applyThemePreference()
	glyphPref := ""
	if cfg != nil && cfg.TUI != nil {
		glyphPref = cfg.TUI.Glyphs
	}
	applyGlyphPreference(glyphPref)

	m := newAppModel(cfg, sess)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
