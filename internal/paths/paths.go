package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

func home() string {
	h, _ := os.UserHomeDir()
	return h
}

// SyncDir returns ~/.vscode-sync.
func SyncDir() string {
	return filepath.Join(home(), ".vscode-sync")
}

// ConfigFile returns ~/.vscode-sync/config.toml.
func ConfigFile() string {
	return filepath.Join(SyncDir(), "config.toml")
}

// StateFile returns ~/.vscode-sync/state.yaml.
func StateFile() string {
	return filepath.Join(SyncDir(), "state.yaml")
}

// CredentialsFile returns ~/.vscode-sync/credentials.json.
func CredentialsFile() string {
	return filepath.Join(SyncDir(), "credentials.json")
}

// CodeUserDir returns the VS Code user configuration directory for the
// current platform.
func CodeUserDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home(), "Library", "Application Support", "Code", "User")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Code", "User")
	default:
		return filepath.Join(home(), ".config", "Code", "User")
	}
}

// SnippetsDir returns the snippets directory under the VS Code user dir.
func SnippetsDir() string {
	return filepath.Join(CodeUserDir(), "snippets")
}
