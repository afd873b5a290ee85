// Package secrets stores backend access tokens in a JSON file with mode
// 0600. There is no encryption beyond file permissions.
package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	var tokens map[string]string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if tokens == nil {
		tokens = map[string]string{}
	}
	return tokens, nil
}

func store(path string, tokens map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// Get returns the stored token for a backend kind, or "" when none is
// stored.
func Get(path, kind string) (string, error) {
	tokens, err := load(path)
	if err != nil {
		return "", err
	}
	return tokens[kind], nil
}

// Set stores a token for a backend kind, creating the file if needed.
func Set(path, kind, token string) error {
	tokens, err := load(path)
	if err != nil {
		return err
	}
	tokens[kind] = token
	return store(path, tokens)
}

// Delete removes the stored token for a backend kind.
func Delete(path, kind string) error {
	tokens, err := load(path)
	if err != nil {
		return err
	}
	delete(tokens, kind)
	return store(path, tokens)
}
