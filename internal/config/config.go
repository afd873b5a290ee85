package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultRepository is the sync repository name used when config.toml
	// carries no override. Other clients of the same account find their
	// data under this name.
	DefaultRepository = "vscode-settings-sync"

	// DefaultBasePath is the repository directory all profile subtrees
	// live under.
	DefaultBasePath = "profiles"
)

// Config represents ~/.vscode-sync/config.toml. Every field is an optional
// override; the zero value plus defaults is a working configuration.
type Config struct {
	Repository string `toml:"repository,omitempty"`
	Owner      string `toml:"owner,omitempty"`
	BasePath   string `toml:"base_path,omitempty"`
	Public     bool   `toml:"public,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Repository: DefaultRepository,
		BasePath:   DefaultBasePath,
	}
}

// Load reads config.toml from path. A missing file yields the defaults
// without error; present fields override them.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Repository == "" {
		cfg.Repository = DefaultRepository
	}
	if cfg.BasePath == "" {
		cfg.BasePath = DefaultBasePath
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Private reports whether the sync repository should be created private.
// Repositories are private unless the user opts out.
func (c Config) Private() bool {
	return !c.Public
}
