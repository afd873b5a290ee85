package remote

import "context"

// Kind identifies one of the supported hosting backends.
type Kind string

const (
	GitHub Kind = "github"
	Gitee  Kind = "gitee"
)

// RepoRef identifies exactly one writable location on a backend.
type RepoRef struct {
	Owner  string
	Repo   string
	Branch string
}

// File is one remote file's decoded text content plus the backend's
// revision tag. The tag is a content hash assigned by the backend and is
// opaque to everything outside the provider implementations.
type File struct {
	Content string
	SHA     string
}

// EntryKind distinguishes files from directories in a listing.
type EntryKind string

const (
	EntryFile EntryKind = "file"
	EntryDir  EntryKind = "dir"
)

// Entry is one immediate child of a listed directory.
type Entry struct {
	Name string
	Path string
	Kind EntryKind
}

// Provider is the capability contract implemented once per backend.
// Providers implement ONLY the backend-specific primitives; repository and
// branch resolution, profile layout, and sync orchestration are generic and
// live in the callers.
type Provider interface {
	// Kind returns the backend identifier ("github", "gitee").
	Kind() Kind

	// DisplayName returns a human-readable backend name for reports.
	DisplayName() string

	// Login returns the authenticated user's login name.
	// Fails with *AuthError when the credential is missing or rejected.
	Login(ctx context.Context) (string, error)

	// DefaultBranch returns the repository's default branch, falling back
	// to the backend's conventional name when the repository metadata
	// doesn't carry one.
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)

	// EnsureRepo creates the repository if it does not exist. Existing
	// repositories are left untouched. Creation failures are reported as
	// *RepoCreateError.
	EnsureRepo(ctx context.Context, owner, repo string, private bool) error

	// ReadFile fetches one file's decoded content and revision tag.
	// Returns (nil, nil) when the file does not exist.
	ReadFile(ctx context.Context, ref RepoRef, path string) (*File, error)

	// WriteFile creates or overwrites one file. The current revision tag is
	// re-resolved immediately before the write so concurrent external edits
	// are respected; a create racing an existing file is transparently
	// retried as an update. A write against a branch the backend rejects
	// returns *BranchMismatchError so the caller can retry elsewhere.
	WriteFile(ctx context.Context, ref RepoRef, path, content, message string) error

	// ListDir lists the immediate children of a directory. Returns an empty
	// slice (not an error) when the directory does not exist.
	ListDir(ctx context.Context, ref RepoRef, path string) ([]Entry, error)
}
