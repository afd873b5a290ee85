// Package commands implements the operations behind the CLI: session
// resolution against the sync repository, upload, download, profile
// management, status, and setup.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tilwick/vscode-sync/internal/config"
	"github.com/tilwick/vscode-sync/internal/paths"
	"github.com/tilwick/vscode-sync/internal/remote"
	"github.com/tilwick/vscode-sync/internal/remote/gitee"
	"github.com/tilwick/vscode-sync/internal/remote/github"
	"github.com/tilwick/vscode-sync/internal/secrets"
	"github.com/tilwick/vscode-sync/internal/state"
)

// DefaultRegistry returns a registry with both supported backends.
func DefaultRegistry() *remote.Registry {
	reg := remote.NewRegistry()
	reg.Register(remote.GitHub, func(token string) remote.Provider { return github.New(token) })
	reg.Register(remote.Gitee, func(token string) remote.Provider { return gitee.New(token) })
	return reg
}

// Session carries everything one invocation needs to talk to the sync
// repository: the provider, the resolved target, and the persisted state
// it may update along the way.
type Session struct {
	Provider remote.Provider
	Ref      remote.RepoRef
	BasePath string
	Config   config.Config
	State    state.State

	// StatePath is where state updates are written. Empty disables
	// persistence.
	StatePath string
}

// Open loads the local configuration and constructs the provider recorded
// by setup.
func Open(reg *remote.Registry) (*Session, error) {
	cfg, err := config.Load(paths.ConfigFile())
	if err != nil {
		return nil, err
	}
	st, err := state.Load(paths.StateFile())
	if err != nil {
		return nil, err
	}
	if st.Provider == "" {
		return nil, fmt.Errorf("vscode-sync is not set up. Run 'vscode-sync setup'")
	}
	token, err := secrets.Get(paths.CredentialsFile(), st.Provider)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("no token stored for %s. Run 'vscode-sync setup'", st.Provider)
	}
	provider, err := reg.New(remote.Kind(st.Provider), token)
	if err != nil {
		return nil, err
	}

	return &Session{
		Provider:  provider,
		BasePath:  cfg.BasePath,
		Config:    cfg,
		State:     st,
		StatePath: paths.StateFile(),
	}, nil
}

// EnsureRemoteReady resolves the owner, repository, and branch the session
// targets, creating the repository on first contact. Resolved values are
// cached in state so later runs skip the extra round-trips.
func (s *Session) EnsureRemoteReady(ctx context.Context) error {
	return s.resolveRemote(ctx, true)
}

// ResolveRemote resolves the same coordinates without creating the
// repository, for read-only operations. A missing repository resolves to
// the backend's fallback branch and reads as absent files.
func (s *Session) ResolveRemote(ctx context.Context) error {
	return s.resolveRemote(ctx, false)
}

func (s *Session) resolveRemote(ctx context.Context, createRepo bool) error {
	owner := s.Config.Owner
	if owner == "" {
		owner = s.State.Owner
	}
	if owner == "" {
		login, err := s.Provider.Login(ctx)
		if err != nil {
			return err
		}
		owner = login
	}

	repo := s.Config.Repository
	if repo == "" {
		repo = config.DefaultRepository
	}

	if createRepo {
		if err := s.Provider.EnsureRepo(ctx, owner, repo, s.Config.Private()); err != nil {
			return err
		}
	}

	branch := s.State.Branch
	if branch == "" {
		resolved, err := s.Provider.DefaultBranch(ctx, owner, repo)
		if err != nil {
			return err
		}
		branch = resolved
	}

	s.Ref = remote.RepoRef{Owner: owner, Repo: repo, Branch: branch}
	s.State.Owner = owner
	s.State.Branch = branch
	log.Debug().Str("owner", owner).Str("repo", repo).Str("branch", branch).Msg("remote resolved")
	return s.saveState()
}

// WriteFile writes through the provider, retrying branch rejections
// against the conventional default branch names. A fallback that succeeds
// becomes the session's branch and is persisted, so the probing happens at
// most once per repository.
func (s *Session) WriteFile(ctx context.Context, path, content, message string) error {
	err := s.Provider.WriteFile(ctx, s.Ref, path, content, message)
	if err == nil {
		return nil
	}
	var mismatch *remote.BranchMismatchError
	if !errors.As(err, &mismatch) {
		return err
	}

	for _, branch := range fallbackBranches(s.Ref.Branch) {
		ref := s.Ref
		ref.Branch = branch
		retryErr := s.Provider.WriteFile(ctx, ref, path, content, message)
		if retryErr == nil {
			log.Debug().Str("branch", branch).Msg("write landed on fallback branch")
			s.Ref.Branch = branch
			s.State.Branch = branch
			if saveErr := s.saveState(); saveErr != nil {
				return saveErr
			}
			return nil
		}
		if !errors.As(retryErr, &mismatch) {
			return retryErr
		}
	}

	// Every candidate was rejected the same way; the first failure names
	// the branch the session actually resolved.
	return err
}

// fallbackBranches returns the conventional default branch names to retry
// after rejected was refused, in order, without repeating it.
func fallbackBranches(rejected string) []string {
	var out []string
	for _, b := range []string{"main", "master"} {
		if b != rejected {
			out = append(out, b)
		}
	}
	return out
}

func (s *Session) saveState() error {
	if s.StatePath == "" {
		return nil
	}
	return state.Save(s.State, s.StatePath)
}
