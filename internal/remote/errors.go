package remote

import "fmt"

// AuthError indicates a missing, invalid, or under-scoped credential.
type AuthError struct {
	Backend Kind
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s authentication failed: %s", e.Backend, e.Message)
}

// RepoCreateError indicates the sync repository could not be created.
// StatusCode is zero when creation was refused without a request.
type RepoCreateError struct {
	Repo       string
	StatusCode int
	Message    string
}

func (e *RepoCreateError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("creating repository %s: %s", e.Repo, e.Message)
	}
	return fmt.Sprintf("creating repository %s: HTTP %d: %s", e.Repo, e.StatusCode, e.Message)
}

// BranchMismatchError indicates a write was rejected because the target
// branch does not exist on the remote.
type BranchMismatchError struct {
	Branch  string
	Message string
}

func (e *BranchMismatchError) Error() string {
	return fmt.Sprintf("branch %q rejected by remote: %s", e.Branch, e.Message)
}

// ConflictError indicates a write lost an optimistic-concurrency race: the
// revision tag sent with the write no longer matched the remote file.
type ConflictError struct {
	Path    string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting update to %s: %s", e.Path, e.Message)
}

// RemoteIOError covers any other failed remote interaction. StatusCode is
// zero when the request never produced a response.
type RemoteIOError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteIOError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("remote request failed: %s", e.Message)
	}
	return fmt.Sprintf("remote request failed: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *RemoteIOError) Unwrap() error { return e.Err }

// DecodeError indicates a fetched payload could not be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding content of %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
