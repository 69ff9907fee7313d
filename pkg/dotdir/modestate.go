package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	modeStateFile = "mode.json"
)

// ModeState represents the persisted embedding-mode state.
type ModeState struct {
	// Active is the name of the active embedding mode.
	Active string `json:"active"`

	// Previous is the mode that was active before the last switch, if any.
	Previous string `json:"previous,omitempty"`

	// SwitchedAt records when the active mode was last changed.
	SwitchedAt time.Time `json:"switched_at"`
}

// LoadModeState loads the mode state from a target .localmem/mode.json.
// Returns nil, nil if no mode state exists (fresh install, defaults apply).
// If overrideDir is non-empty, it is used instead of the default ~/.localmem/ location.
func (m *Manager) LoadModeState(overrideDir string) (*ModeState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, modeStateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading mode state: %w", err)
	}

	state := &ModeState{}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing mode state: %w", err)
	}

	return state, nil
}

// SaveModeState persists the mode state to a target .localmem/mode.json.
func (m *Manager) SaveModeState(state *ModeState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil mode state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	if state.SwitchedAt.IsZero() {
		state.SwitchedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling mode state: %w", err)
	}

	path := filepath.Join(dir, modeStateFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing mode state: %w", err)
	}

	return nil
}

// ClearModeState removes the mode state file so the next start falls back
// to the configured default mode.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearModeState(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, modeStateFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing mode state: %w", err)
	}

	return nil
}
