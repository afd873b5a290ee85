// Package state persists the small session state that survives restarts:
// the active backend, the cached repository resolution, and the selected
// profile. The file is rewritten wholesale on every change.
package state

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// State represents ~/.vscode-sync/state.yaml.
type State struct {
	Provider          string `yaml:"provider,omitempty"`
	Owner             string `yaml:"owner,omitempty"`
	Branch            string `yaml:"branch,omitempty"`
	ActiveProfileID   string `yaml:"active_profile_id,omitempty"`
	ActiveProfileName string `yaml:"active_profile_name,omitempty"`
}

// Load reads state.yaml from path. A missing file yields zero state
// without error.
func Load(path string) (State, error) {
	var st State

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return State{}, fmt.Errorf("reading state: %w", err)
	}

	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parsing state: %w", err)
	}
	return st, nil
}

// Save writes the state to path, creating parent directories as needed.
func Save(st State, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

// HasActiveProfile reports whether a profile is currently selected.
func (s State) HasActiveProfile() bool {
	return s.ActiveProfileID != ""
}
