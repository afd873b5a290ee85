package profiles

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tilwick/vscode-sync/internal/remote"
)

// SchemaVersion is the metadata schema understood by this client. Remote
// directories whose meta.json carries a different version are not treated
// as profiles.
const SchemaVersion = 1

// Remote file names under a profile subtree. Shared with every other
// client of the same repository, so they never change.
const (
	MetaFile        = "meta.json"
	SettingsFile    = "settings.json"
	KeybindingsFile = "keybindings.json"
	ExtensionsFile  = "extensions.json"
	SnippetsDir     = "snippets"
)

// Metadata identifies one configuration bucket inside the sync repository.
// The id is generated once and never reused; the display name is
// user-chosen, may collide across profiles, and is display-only.
type Metadata struct {
	SchemaVersion int        `json:"schemaVersion"`
	ID            string     `json:"id"`
	DisplayName   string     `json:"displayName"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastSyncAt    *time.Time `json:"lastSyncAt,omitempty"`
	Platform      string     `json:"platform,omitempty"`
	EditorVersion string     `json:"editorVersion,omitempty"`
}

// NewMetadata builds metadata for a fresh profile with a random id.
func NewMetadata(displayName, platform, editorVersion string) Metadata {
	return Metadata{
		SchemaVersion: SchemaVersion,
		ID:            uuid.NewString(),
		DisplayName:   displayName,
		CreatedAt:     time.Now().UTC(),
		Platform:      platform,
		EditorVersion: editorVersion,
	}
}

// WithLastSync returns a copy of the metadata stamped with a sync time.
func (m Metadata) WithLastSync(t time.Time) Metadata {
	utc := t.UTC()
	m.LastSyncAt = &utc
	return m
}

// ParseMetadata parses meta.json bytes, requiring the current schema
// version and a non-empty id.
func ParseMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("parsing profile metadata: %w", err)
	}
	if m.SchemaVersion != SchemaVersion {
		return Metadata{}, fmt.Errorf("unsupported metadata schema version %d", m.SchemaVersion)
	}
	if m.ID == "" {
		return Metadata{}, fmt.Errorf("profile metadata has no id")
	}
	return m, nil
}

// MarshalMetadata serializes metadata to the interoperable meta.json form.
func MarshalMetadata(m Metadata) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding profile metadata: %w", err)
	}
	return append(data, '\n'), nil
}

// Subtree returns the repository directory holding one profile's files.
// No two profiles ever share a prefix component below basePath.
func Subtree(basePath, profileID string) string {
	return remote.JoinPath(basePath, profileID)
}

// MetaPath returns <basePath>/<profileID>/meta.json.
func MetaPath(basePath, profileID string) string {
	return remote.JoinPath(basePath, profileID, MetaFile)
}

// SettingsPath returns <basePath>/<profileID>/settings.json.
func SettingsPath(basePath, profileID string) string {
	return remote.JoinPath(basePath, profileID, SettingsFile)
}

// KeybindingsPath returns <basePath>/<profileID>/keybindings.json.
func KeybindingsPath(basePath, profileID string) string {
	return remote.JoinPath(basePath, profileID, KeybindingsFile)
}

// ExtensionsPath returns <basePath>/<profileID>/extensions.json.
func ExtensionsPath(basePath, profileID string) string {
	return remote.JoinPath(basePath, profileID, ExtensionsFile)
}

// SnippetsPath returns <basePath>/<profileID>/snippets.
func SnippetsPath(basePath, profileID string) string {
	return remote.JoinPath(basePath, profileID, SnippetsDir)
}

// SnippetPath returns <basePath>/<profileID>/snippets/<name>. The name is
// kept exactly as the local filename so round trips preserve it.
func SnippetPath(basePath, profileID, name string) string {
	return remote.JoinPath(basePath, profileID, SnippetsDir, name)
}
