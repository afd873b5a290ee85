// Package github implements the remote provider contract against the
// GitHub REST API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tilwick/vscode-sync/internal/remote"
)

const (
	apiBase = "https://api.github.com"

	fallbackBranch  = "main"
	repoDescription = "VS Code settings synced by vscode-sync"
)

// Provider talks to a GitHub-shaped contents API. Create and update share
// one PUT verb, disambiguated by the presence of a revision tag.
type Provider struct {
	baseURL string
	client  *http.Client
}

// New returns a Provider for api.github.com authenticated with token.
func New(token string) *Provider {
	return NewWithBaseURL(token, apiBase)
}

// NewWithBaseURL returns a Provider against a custom API root. Tests point
// this at a local server.
func NewWithBaseURL(token, baseURL string) *Provider {
	client := remote.NewHTTPClient(func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
		r.Header.Set("Accept", "application/vnd.github+json")
	})
	return &Provider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (p *Provider) Kind() remote.Kind { return remote.GitHub }

func (p *Provider) DisplayName() string { return "GitHub" }

// Login returns the token owner's login name.
func (p *Provider) Login(ctx context.Context) (string, error) {
	resp, err := p.get(ctx, p.baseURL+"/user")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(resp.Body)
		return "", &remote.AuthError{Backend: remote.GitHub, Message: apiMessage(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", responseError(resp)
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decoding user response: %w", err)
	}
	return user.Login, nil
}

// DefaultBranch returns the repository's default branch, or "main" when the
// repository is missing or its metadata carries no branch field.
func (p *Provider) DefaultBranch(ctx context.Context, owner, repo string) (string, error) {
	resp, err := p.get(ctx, fmt.Sprintf("%s/repos/%s/%s", p.baseURL, owner, repo))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fallbackBranch, nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", responseError(resp)
	}

	var info struct {
		DefaultBranch string `json:"default_branch"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decoding repo info: %w", err)
	}
	if info.DefaultBranch == "" {
		return fallbackBranch, nil
	}
	return info.DefaultBranch, nil
}

// EnsureRepo creates owner/repo if the existence check reports it missing.
// Repositories are only created in the token owner's namespace; a missing
// repository under any other owner is an error, not a create.
func (p *Provider) EnsureRepo(ctx context.Context, owner, repo string, private bool) error {
	resp, err := p.get(ctx, fmt.Sprintf("%s/repos/%s/%s", p.baseURL, owner, repo))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode != http.StatusNotFound {
		return responseError(resp)
	}

	login, err := p.Login(ctx)
	if err != nil {
		return err
	}
	if login != owner {
		return &remote.RepoCreateError{
			Repo:    repo,
			Message: fmt.Sprintf("%s/%s does not exist and this token only creates repositories for %s; create it manually", owner, repo, login),
		}
	}

	payload := struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Private     bool   `json:"private"`
		AutoInit    bool   `json:"auto_init"`
	}{repo, repoDescription, private, true}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/user/repos", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	createResp, err := p.client.Do(req)
	if err != nil {
		return &remote.RemoteIOError{Message: err.Error(), Err: err}
	}
	defer createResp.Body.Close()

	if createResp.StatusCode == http.StatusCreated {
		return nil
	}
	respBody, _ := io.ReadAll(createResp.Body)
	msg := apiMessage(respBody)
	// Lost a create race: someone else made the repo after the existence check.
	if createResp.StatusCode == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "already exists") {
		return nil
	}
	return &remote.RepoCreateError{Repo: repo, StatusCode: createResp.StatusCode, Message: msg}
}

// ReadFile fetches one file's decoded content and revision tag.
// Absent files yield (nil, nil).
func (p *Provider) ReadFile(ctx context.Context, ref remote.RepoRef, path string) (*remote.File, error) {
	clean := remote.NormalizePath(path)
	resp, err := p.get(ctx, p.contentsURL(ref, clean))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading contents response: %w", err)
	}
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		return nil, &remote.RemoteIOError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("%s is a directory", clean)}
	}

	var file struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("decoding contents response: %w", err)
	}
	text, err := remote.DecodeContent(clean, file.Content)
	if err != nil {
		return nil, err
	}
	return &remote.File{Content: text, SHA: file.SHA}, nil
}

// WriteFile creates or overwrites one file. The current revision tag is
// fetched immediately before the PUT; a tag race is retried once with the
// winner's tag.
func (p *Provider) WriteFile(ctx context.Context, ref remote.RepoRef, path, content, message string) error {
	clean := remote.NormalizePath(path)
	sha, err := p.currentSHA(ctx, ref, clean)
	if err != nil {
		return err
	}

	err = p.putContents(ctx, ref, clean, content, message, sha)
	var conflict *remote.ConflictError
	if !errors.As(err, &conflict) {
		return err
	}

	sha, rerr := p.currentSHA(ctx, ref, clean)
	if rerr != nil {
		return rerr
	}
	return p.putContents(ctx, ref, clean, content, message, sha)
}

// ListDir lists the immediate children of a directory. An absent directory
// yields an empty slice.
func (p *Provider) ListDir(ctx context.Context, ref remote.RepoRef, path string) ([]remote.Entry, error) {
	clean := remote.NormalizePath(path)
	resp, err := p.get(ctx, p.contentsURL(ref, clean))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []remote.Entry{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, responseError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading contents response: %w", err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		return nil, &remote.RemoteIOError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("%s is not a directory", clean)}
	}

	var items []struct {
		Name string `json:"name"`
		Path string `json:"path"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decoding directory listing: %w", err)
	}

	entries := make([]remote.Entry, 0, len(items))
	for _, item := range items {
		kind := remote.EntryFile
		if item.Type == "dir" {
			kind = remote.EntryDir
		}
		entries = append(entries, remote.Entry{Name: item.Name, Path: item.Path, Kind: kind})
	}
	return entries, nil
}

func (p *Provider) currentSHA(ctx context.Context, ref remote.RepoRef, path string) (string, error) {
	file, err := p.ReadFile(ctx, ref, path)
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", nil
	}
	return file.SHA, nil
}

func (p *Provider) putContents(ctx context.Context, ref remote.RepoRef, path, content, message, sha string) error {
	payload := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		Branch  string `json:"branch,omitempty"`
		SHA     string `json:"sha,omitempty"`
	}{message, remote.EncodeContent(content), ref.Branch, sha}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	target := fmt.Sprintf("%s/repos/%s/%s/contents/%s", p.baseURL, ref.Owner, ref.Repo, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return &remote.RemoteIOError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	msg := apiMessage(respBody)
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "branch"):
		return &remote.BranchMismatchError{Branch: ref.Branch, Message: msg}
	case resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity && strings.Contains(lower, "sha"):
		return &remote.ConflictError{Path: path, Message: msg}
	}
	return &remote.RemoteIOError{StatusCode: resp.StatusCode, Message: msg}
}

func (p *Provider) contentsURL(ref remote.RepoRef, path string) string {
	target := fmt.Sprintf("%s/repos/%s/%s/contents/%s", p.baseURL, ref.Owner, ref.Repo, path)
	if ref.Branch != "" {
		target += "?ref=" + url.QueryEscape(ref.Branch)
	}
	return target
}

func (p *Provider) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &remote.RemoteIOError{Message: err.Error(), Err: err}
	}
	return resp, nil
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &remote.RemoteIOError{StatusCode: resp.StatusCode, Message: apiMessage(body)}
}

// apiMessage extracts the backend's human-readable message from an error
// response body, falling back to the raw text.
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}
