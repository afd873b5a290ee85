package vscode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/tilwick/vscode-sync/internal/extensions"
	"github.com/tilwick/vscode-sync/internal/paths"
)

// CLI abstracts the code command line tool.
type CLI interface {
	ListExtensions(ctx context.Context) (string, error)
	InstallExtension(ctx context.Context, id string) error
	Version(ctx context.Context) (string, error)
}

// Editor reads and writes the local VS Code installation: the files under
// the per-platform user directory, plus extensions via the code CLI.
type Editor struct {
	Fs      afero.Fs
	UserDir string
	CLI     CLI
}

// New returns an Editor for the current platform backed by the real
// filesystem and the code binary on PATH.
func New() *Editor {
	return &Editor{Fs: afero.NewOsFs(), UserDir: paths.CodeUserDir(), CLI: CodeCLI{}}
}

// ReadSettings returns the contents of settings.json.
// An absent file reports present=false with no error.
func (e *Editor) ReadSettings() (string, bool, error) {
	return e.readFile("settings.json")
}

// WriteSettings replaces settings.json.
func (e *Editor) WriteSettings(text string) error {
	return e.writeFile("settings.json", text)
}

// ReadKeybindings returns the contents of keybindings.json.
func (e *Editor) ReadKeybindings() (string, bool, error) {
	return e.readFile("keybindings.json")
}

// WriteKeybindings replaces keybindings.json.
func (e *Editor) WriteKeybindings(text string) error {
	return e.writeFile("keybindings.json", text)
}

// ListSnippets returns the snippet file names, sorted.
// A missing snippets directory is an empty list.
func (e *Editor) ListSnippets() ([]string, error) {
	infos, err := afero.ReadDir(e.Fs, filepath.Join(e.UserDir, "snippets"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing snippets: %w", err)
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ReadSnippet returns the contents of one snippet file.
func (e *Editor) ReadSnippet(name string) (string, bool, error) {
	return e.readFile(filepath.Join("snippets", name))
}

// WriteSnippet writes one snippet file. Names containing path separators
// are rejected.
func (e *Editor) WriteSnippet(name, text string) error {
	if name == "" || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid snippet name %q", name)
	}
	return e.writeFile(filepath.Join("snippets", name), text)
}

// InstalledExtensions enumerates installed extensions via the code CLI.
func (e *Editor) InstalledExtensions(ctx context.Context) ([]extensions.Extension, error) {
	out, err := e.CLI.ListExtensions(ctx)
	if err != nil {
		return nil, err
	}
	return parseExtensionList(out), nil
}

// InstallExtension installs one extension by id.
func (e *Editor) InstallExtension(ctx context.Context, id string) error {
	return e.CLI.InstallExtension(ctx, id)
}

// EditorVersion reports the VS Code version, or "" when the CLI is
// unavailable.
func (e *Editor) EditorVersion(ctx context.Context) string {
	v, err := e.CLI.Version(ctx)
	if err != nil {
		return ""
	}
	return v
}

func (e *Editor) readFile(name string) (string, bool, error) {
	data, err := afero.ReadFile(e.Fs, filepath.Join(e.UserDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), true, nil
}

func (e *Editor) writeFile(name, text string) error {
	full := filepath.Join(e.UserDir, name)
	if err := e.Fs.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(full), err)
	}
	if err := afero.WriteFile(e.Fs, full, []byte(text), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// parseExtensionList parses "publisher.name@version" lines as printed by
// code --list-extensions --show-versions.
func parseExtensionList(out string) []extensions.Extension {
	var exts []extensions.Extension
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		id, version, _ := strings.Cut(line, "@")
		exts = append(exts, extensions.Extension{ID: id, Version: version})
	}
	return exts
}

// CodeCLI invokes the code binary. The zero value uses "code" from PATH.
type CodeCLI struct {
	Bin string
}

func (c CodeCLI) bin() string {
	if c.Bin != "" {
		return c.Bin
	}
	return "code"
}

// ListExtensions returns the raw output of code --list-extensions --show-versions.
func (c CodeCLI) ListExtensions(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, c.bin(), "--list-extensions", "--show-versions").Output()
	if err != nil {
		return "", fmt.Errorf("listing extensions: %w", err)
	}
	return string(out), nil
}

// InstallExtension installs an extension. Failures carry the CLI output.
func (c CodeCLI) InstallExtension(ctx context.Context, id string) error {
	out, err := exec.CommandContext(ctx, c.bin(), "--install-extension", id).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return fmt.Errorf("installing %s: %w", id, err)
		}
		return fmt.Errorf("installing %s: %s", id, msg)
	}
	return nil
}

// Version returns the first line of code --version.
func (c CodeCLI) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, c.bin(), "--version").Output()
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}
