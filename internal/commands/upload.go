package commands

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tilwick/vscode-sync/internal/extensions"
	"github.com/tilwick/vscode-sync/internal/profiles"
	"github.com/tilwick/vscode-sync/internal/vscode"
)

// Defaults written when a local core file is absent, so a fresh machine
// uploads a valid document instead of nothing.
const (
	emptySettings    = "{}"
	emptyKeybindings = "[]"
)

type uploadFile struct {
	name    string // profile-relative, used in the commit message
	path    string
	content string
}

// UploadResult reports where an upload landed and what it wrote.
type UploadResult struct {
	Backend string
	Owner   string
	Repo    string
	Branch  string
	Profile string
	Written []string // repository paths in write order
}

// Upload publishes the active profile's local configuration: metadata,
// settings, keybindings, the extensions snapshot, then each snippet.
// Writes are sequential and fail-fast; files already written stay written.
func Upload(ctx context.Context, s *Session, editor *vscode.Editor) (*UploadResult, error) {
	if !s.State.HasActiveProfile() {
		return nil, fmt.Errorf("no active profile. Run 'vscode-sync profile create <name>'")
	}
	if err := s.EnsureRemoteReady(ctx); err != nil {
		return nil, err
	}

	id := s.State.ActiveProfileID
	label := s.State.ActiveProfileName

	settings, present, err := editor.ReadSettings()
	if err != nil {
		return nil, err
	}
	if !present {
		settings = emptySettings
	}
	keybindings, present, err := editor.ReadKeybindings()
	if err != nil {
		return nil, err
	}
	if !present {
		keybindings = emptyKeybindings
	}
	snippetNames, err := editor.ListSnippets()
	if err != nil {
		return nil, err
	}
	installed, err := editor.InstalledExtensions(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snapshot, err := extensions.Marshal(extensions.NewSnapshot(installed, now))
	if err != nil {
		return nil, err
	}
	meta := profiles.Metadata{
		SchemaVersion: profiles.SchemaVersion,
		ID:            id,
		DisplayName:   label,
		CreatedAt:     now,
		Platform:      runtime.GOOS,
		EditorVersion: editor.EditorVersion(ctx),
	}
	metaData, err := profiles.MarshalMetadata(meta.WithLastSync(now))
	if err != nil {
		return nil, err
	}

	files := []uploadFile{
		{profiles.MetaFile, profiles.MetaPath(s.BasePath, id), string(metaData)},
		{profiles.SettingsFile, profiles.SettingsPath(s.BasePath, id), settings},
		{profiles.KeybindingsFile, profiles.KeybindingsPath(s.BasePath, id), keybindings},
		{profiles.ExtensionsFile, profiles.ExtensionsPath(s.BasePath, id), string(snapshot)},
	}
	for _, name := range snippetNames {
		text, ok, err := editor.ReadSnippet(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		files = append(files, uploadFile{
			name:    profiles.SnippetsDir + "/" + name,
			path:    profiles.SnippetPath(s.BasePath, id, name),
			content: text,
		})
	}

	result := &UploadResult{Profile: label}
	for _, f := range files {
		log.Debug().Str("path", f.path).Msg("uploading")
		if err := s.WriteFile(ctx, f.path, f.content, commitMessage(f.name, label)); err != nil {
			return nil, err
		}
		result.Written = append(result.Written, f.path)
	}

	result.Backend = s.Provider.DisplayName()
	result.Owner = s.Ref.Owner
	result.Repo = s.Ref.Repo
	result.Branch = s.Ref.Branch
	return result, nil
}

func commitMessage(file, label string) string {
	return fmt.Sprintf("Sync %s (profile %s)", file, label)
}
