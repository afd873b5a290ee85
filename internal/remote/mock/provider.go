// Package mock provides an in-memory remote.Provider for tests.
package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tilwick/vscode-sync/internal/remote"
)

// Write records one WriteFile call.
type Write struct {
	Path    string
	Content string
	Message string
	Branch  string
}

// Provider implements remote.Provider on an in-memory file map. Revision
// tags are bumped on every write. Zero-value error fields mean success.
type Provider struct {
	KindValue remote.Kind
	LoginName string
	Branch    string // reported by DefaultBranch

	// Branches lists the branches that accept writes. Empty means any
	// branch is accepted.
	Branches []string

	Files map[string]string
	SHAs  map[string]string
	rev   int

	// Error simulation
	LoginErr      error
	EnsureRepoErr error
	ReadErrs      map[string]error
	WriteErrs     map[string]error
	ListErr       error

	// Call tracking
	ReposCreated []string
	LastPrivate  bool
	Reads        []string
	Writes       []Write
}

// New returns a mock provider with one accepted branch "main" and an empty
// file tree.
func New() *Provider {
	return &Provider{
		KindValue: remote.GitHub,
		LoginName: "octocat",
		Branch:    "main",
		Files:     map[string]string{},
		SHAs:      map[string]string{},
		ReadErrs:  map[string]error{},
		WriteErrs: map[string]error{},
	}
}

// SetFile seeds a remote file with a generated revision tag.
func (p *Provider) SetFile(path, content string) {
	p.rev++
	p.Files[path] = content
	p.SHAs[path] = fmt.Sprintf("sha-%d", p.rev)
}

// WrittenPaths returns the paths of all recorded writes in order.
func (p *Provider) WrittenPaths() []string {
	paths := make([]string, 0, len(p.Writes))
	for _, w := range p.Writes {
		paths = append(paths, w.Path)
	}
	return paths
}

func (p *Provider) Kind() remote.Kind { return p.KindValue }

func (p *Provider) DisplayName() string { return "Mock" }

func (p *Provider) Login(ctx context.Context) (string, error) {
	if p.LoginErr != nil {
		return "", p.LoginErr
	}
	return p.LoginName, nil
}

func (p *Provider) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	return p.Branch, nil
}

func (p *Provider) EnsureRepo(ctx context.Context, owner, repo string, private bool) error {
	if p.EnsureRepoErr != nil {
		return p.EnsureRepoErr
	}
	p.ReposCreated = append(p.ReposCreated, owner+"/"+repo)
	p.LastPrivate = private
	return nil
}

func (p *Provider) ReadFile(ctx context.Context, ref remote.RepoRef, path string) (*remote.File, error) {
	if err := p.ReadErrs[path]; err != nil {
		return nil, err
	}
	p.Reads = append(p.Reads, path)
	content, ok := p.Files[path]
	if !ok {
		return nil, nil
	}
	return &remote.File{Content: content, SHA: p.SHAs[path]}, nil
}

func (p *Provider) WriteFile(ctx context.Context, ref remote.RepoRef, path, content, message string) error {
	if err := p.WriteErrs[path]; err != nil {
		return err
	}
	if len(p.Branches) > 0 && !contains(p.Branches, ref.Branch) {
		return &remote.BranchMismatchError{Branch: ref.Branch, Message: "branch does not exist"}
	}
	p.rev++
	p.Files[path] = content
	p.SHAs[path] = fmt.Sprintf("sha-%d", p.rev)
	p.Writes = append(p.Writes, Write{Path: path, Content: content, Message: message, Branch: ref.Branch})
	return nil
}

func (p *Provider) ListDir(ctx context.Context, ref remote.RepoRef, dir string) ([]remote.Entry, error) {
	if p.ListErr != nil {
		return nil, p.ListErr
	}
	prefix := strings.TrimSuffix(dir, "/") + "/"

	kinds := map[string]remote.EntryKind{}
	for path := range p.Files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		name, _, nested := strings.Cut(rest, "/")
		if nested {
			kinds[name] = remote.EntryDir
		} else if _, ok := kinds[name]; !ok {
			kinds[name] = remote.EntryFile
		}
	}

	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]remote.Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, remote.Entry{Name: name, Path: prefix + name, Kind: kinds[name]})
	}
	return entries, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
