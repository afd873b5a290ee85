package commands

import (
	"context"

	"github.com/tilwick/vscode-sync/internal/extensions"
	"github.com/tilwick/vscode-sync/internal/profiles"
	"github.com/tilwick/vscode-sync/internal/vscode"
)

// StatusResult summarizes the session plus an extensions diff against the
// active profile's remote snapshot.
type StatusResult struct {
	Backend   string
	Owner     string
	Repo      string
	Branch    string
	Profile   string
	ProfileID string

	// HasSnapshot reports whether the profile has an extensions.json to
	// diff against.
	HasSnapshot bool
	Synced      []string
	Missing     []string // in the snapshot, not installed locally
	Untracked   []string // installed locally, not in the snapshot
}

// Status reports the resolved session and, when a profile is active, how
// the local extension set compares to its last uploaded snapshot. It never
// writes to the repository; the only side effect is caching the resolved
// owner and branch in local state.
func Status(ctx context.Context, s *Session, editor *vscode.Editor) (*StatusResult, error) {
	if err := s.ResolveRemote(ctx); err != nil {
		return nil, err
	}

	result := &StatusResult{
		Backend:   s.Provider.DisplayName(),
		Owner:     s.Ref.Owner,
		Repo:      s.Ref.Repo,
		Branch:    s.Ref.Branch,
		Profile:   s.State.ActiveProfileName,
		ProfileID: s.State.ActiveProfileID,
	}
	if !s.State.HasActiveProfile() {
		return result, nil
	}

	file, err := s.Provider.ReadFile(ctx, s.Ref, profiles.ExtensionsPath(s.BasePath, s.State.ActiveProfileID))
	if err != nil {
		return nil, err
	}
	if file == nil {
		return result, nil
	}
	snapshot, err := extensions.Parse([]byte(file.Content))
	if err != nil {
		return nil, err
	}
	installed, err := editor.InstalledExtensions(ctx)
	if err != nil {
		return nil, err
	}

	diff := extensions.ComputeDiff(snapshot, installed)
	result.HasSnapshot = true
	result.Synced = diff.Synced
	result.Missing = diff.Missing
	result.Untracked = diff.Untracked
	return result, nil
}
