package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tilwick/vscode-sync/internal/extensions"
	"github.com/tilwick/vscode-sync/internal/profiles"
	"github.com/tilwick/vscode-sync/internal/remote"
	"github.com/tilwick/vscode-sync/internal/vscode"
)

// DownloadResult reports where a download came from and what it changed.
// Installed and Failed carry per-extension outcomes; FailedSnippets the
// snippets that could not be fetched.
type DownloadResult struct {
	Backend string
	Owner   string
	Repo    string
	Branch  string
	Profile string

	Applied        []string // local files overwritten, in apply order
	FailedSnippets []string
	Installed      []string
	Failed         []string
}

// Download applies the active profile's remote configuration locally.
// Core files absent remotely leave the local file untouched. Snippet
// fetches and extension installs are best-effort per item and never abort
// the run.
func Download(ctx context.Context, s *Session, editor *vscode.Editor) (*DownloadResult, error) {
	if !s.State.HasActiveProfile() {
		return nil, fmt.Errorf("no active profile. Run 'vscode-sync profile use <name>'")
	}
	if err := s.EnsureRemoteReady(ctx); err != nil {
		return nil, err
	}

	id := s.State.ActiveProfileID

	settings, err := s.Provider.ReadFile(ctx, s.Ref, profiles.SettingsPath(s.BasePath, id))
	if err != nil {
		return nil, err
	}
	keybindings, err := s.Provider.ReadFile(ctx, s.Ref, profiles.KeybindingsPath(s.BasePath, id))
	if err != nil {
		return nil, err
	}
	extFile, err := s.Provider.ReadFile(ctx, s.Ref, profiles.ExtensionsPath(s.BasePath, id))
	if err != nil {
		return nil, err
	}
	snippets, err := s.Provider.ListDir(ctx, s.Ref, profiles.SnippetsPath(s.BasePath, id))
	if err != nil {
		return nil, err
	}

	result := &DownloadResult{
		Backend: s.Provider.DisplayName(),
		Owner:   s.Ref.Owner,
		Repo:    s.Ref.Repo,
		Branch:  s.Ref.Branch,
		Profile: s.State.ActiveProfileName,
	}

	if settings != nil {
		if err := editor.WriteSettings(settings.Content); err != nil {
			return nil, err
		}
		result.Applied = append(result.Applied, profiles.SettingsFile)
	}
	if keybindings != nil {
		if err := editor.WriteKeybindings(keybindings.Content); err != nil {
			return nil, err
		}
		result.Applied = append(result.Applied, profiles.KeybindingsFile)
	}

	for _, entry := range snippets {
		if entry.Kind != remote.EntryFile {
			continue
		}
		file, err := s.Provider.ReadFile(ctx, s.Ref, entry.Path)
		if err != nil || file == nil {
			log.Warn().Str("snippet", entry.Name).Err(err).Msg("skipping snippet")
			result.FailedSnippets = append(result.FailedSnippets, entry.Name)
			continue
		}
		if err := editor.WriteSnippet(entry.Name, file.Content); err != nil {
			log.Warn().Str("snippet", entry.Name).Err(err).Msg("skipping snippet")
			result.FailedSnippets = append(result.FailedSnippets, entry.Name)
			continue
		}
		result.Applied = append(result.Applied, profiles.SnippetsDir+"/"+entry.Name)
	}

	if extFile != nil {
		snapshot, err := extensions.Parse([]byte(extFile.Content))
		if err != nil {
			return nil, err
		}
		for _, ext := range snapshot.Extensions {
			if err := editor.InstallExtension(ctx, ext.ID); err != nil {
				log.Warn().Str("extension", ext.ID).Err(err).Msg("install failed")
				result.Failed = append(result.Failed, ext.ID)
				continue
			}
			result.Installed = append(result.Installed, ext.ID)
		}
	}

	return result, nil
}
