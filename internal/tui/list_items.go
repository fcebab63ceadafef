package tui

import (
	"strings"

	"dayplan-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

type todoItem struct {
	todo model.Todo
}

func (i todoItem) FilterValue() string {
	return strings.TrimSpace(i.todo.Title + " " + i.todo.Description)
}

func (i todoItem) Title() string {
	box := glyphCheckboxOpen()
	if i.todo.Completed {
		box = glyphCheckboxDone()
	}
	line := box + " " + i.todo.Title
	if i.todo.DueDate != nil {
		line += styleMuted().Render("  due " + i.todo.DueDate.String())
	}
	return line
}

func (i todoItem) done() bool { return i.todo.Completed }

func newList(title, itemName string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	// We render our own global header + footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName(itemName, itemName+"s")
	// Bubble list defaults to quitting on ESC; here ESC is "back/cancel".
	l.KeyMap.Quit.SetKeys("q")
	// Emacs-style navigation aliases.
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}
