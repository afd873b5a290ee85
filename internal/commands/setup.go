package commands

import (
	"context"
	"fmt"

	"github.com/tilwick/vscode-sync/internal/config"
	"github.com/tilwick/vscode-sync/internal/paths"
	"github.com/tilwick/vscode-sync/internal/remote"
	"github.com/tilwick/vscode-sync/internal/secrets"
	"github.com/tilwick/vscode-sync/internal/state"
)

// SetupOptions carries the values collected by the setup form, plus the
// paths the result is persisted to.
type SetupOptions struct {
	Kind       remote.Kind
	Token      string
	Repository string // empty keeps the configured or default name

	ConfigPath      string
	StatePath       string
	CredentialsPath string
}

// DefaultSetupPaths fills the persistence paths with the standard
// locations under the sync directory.
func (o SetupOptions) DefaultSetupPaths() SetupOptions {
	if o.ConfigPath == "" {
		o.ConfigPath = paths.ConfigFile()
	}
	if o.StatePath == "" {
		o.StatePath = paths.StateFile()
	}
	if o.CredentialsPath == "" {
		o.CredentialsPath = paths.CredentialsFile()
	}
	return o
}

// Setup verifies the token against the backend, then persists the
// credential, configuration, and session state. Nothing is written when
// verification fails. Returns the authenticated login.
func Setup(ctx context.Context, reg *remote.Registry, opts SetupOptions) (string, error) {
	if opts.Token == "" {
		return "", fmt.Errorf("token must not be empty")
	}
	provider, err := reg.New(opts.Kind, opts.Token)
	if err != nil {
		return "", err
	}
	login, err := provider.Login(ctx)
	if err != nil {
		return "", err
	}

	if err := secrets.Set(opts.CredentialsPath, string(opts.Kind), opts.Token); err != nil {
		return "", err
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return "", err
	}
	if opts.Repository != "" && opts.Repository != cfg.Repository {
		cfg.Repository = opts.Repository
		if err := config.Save(cfg, opts.ConfigPath); err != nil {
			return "", err
		}
	}

	st, err := state.Load(opts.StatePath)
	if err != nil {
		return "", err
	}
	st.Provider = string(opts.Kind)
	st.Owner = login
	// A different backend or account means the cached branch no longer
	// applies; it is re-resolved on the next remote contact.
	st.Branch = ""
	if err := state.Save(st, opts.StatePath); err != nil {
		return "", err
	}
	return login, nil
}
