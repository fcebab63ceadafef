package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const uiStateFileName = "ui_state.json"

// UIState stores small, user-facing UI state for restoring the last screen
// on relaunch. Intentionally best effort: callers tolerate missing or
// invalid data.
type UIState struct {
	Version int `json:"version"`

	// View is one of: dashboard|calendar|plans|chat|profile
	View string `json:"view,omitempty"`

	// Filter is one of: all|active|completed
	Filter string `json:"filter,omitempty"`
}

func uiStatePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, uiStateFileName), nil
}

func LoadUIState() (*UIState, error) {
	path, err := uiStatePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &UIState{Version: 1}, nil
		}
		return nil, err
	}
	var st UIState
	if err := json.Unmarshal(b, &st); err != nil {
		return &UIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func SaveUIState(st *UIState) error {
	if st == nil {
		return errors.New("nil ui state")
	}
	path, err := uiStatePath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "ui_state.json.*.tmp", path, b, 0o644)
}
