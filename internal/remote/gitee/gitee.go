// Package gitee implements the remote provider contract against the Gitee
// REST API (api v5).
package gitee

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
	apiBase = "https://gitee.com/api/v5"

	fallbackBranch  = "master"
	repoDescription = "VS Code settings synced by vscode-sync"
)

// Provider talks to a Gitee-shaped contents API. Unlike GitHub, create and
// update are distinct verbs: POST creates (no revision tag) and PUT updates
// (tag required). A create that hits an existing path is reconciled to an
// update instead of failing.
type Provider struct {
	baseURL string
	client  *http.Client
}

// New returns a Provider for gitee.com authenticated with token.
func New(token string) *Provider {
	return NewWithBaseURL(token, apiBase)
}

// NewWithBaseURL returns a Provider against a custom API root. Tests point
// this at a local server.
func NewWithBaseURL(token, baseURL string) *Provider {
	// Gitee takes the credential as a query parameter, not a header.
	client := remote.NewHTTPClient(func(r *http.Request) {
		q := r.URL.Query()
		q.Set("access_token", token)
		r.URL.RawQuery = q.Encode()
	})
	return &Provider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

func (p *Provider) Kind() remote.Kind { return remote.Gitee }

func (p *Provider) DisplayName() string { return "Gitee" }

// Login returns the token owner's login name.
func (p *Provider) Login(ctx context.Context) (string, error) {
	resp, err := p.get(ctx, p.baseURL+"/user")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		body, _ := io.ReadAll(resp.Body)
		return "", &remote.AuthError{Backend: remote.Gitee, Message: apiMessage(body)}
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

// DefaultBranch returns the repository's default branch, or "master" when
// the repository is missing or its metadata carries no branch field.
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
	if alreadyExists(msg) {
		return nil
	}
	return &remote.RepoCreateError{Repo: repo, StatusCode: createResp.StatusCode, Message: msg}
}

// ReadFile fetches one file's decoded content and revision tag.
// Absent files yield (nil, nil); Gitee reports some missing paths as a 200
// with an empty array, which is normalized the same way.
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
	trimmed := bytes.TrimSpace(body)
	if bytes.Equal(trimmed, []byte("[]")) {
		return nil, nil
	}
	if bytes.HasPrefix(trimmed, []byte("[")) {
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

// WriteFile creates or overwrites one file. The file's current state is
// fetched immediately before writing to pick the verb and revision tag; a
// lost race (create hit an existing path, or the tag went stale) is retried
// once from fresh state.
func (p *Provider) WriteFile(ctx context.Context, ref remote.RepoRef, path, content, message string) error {
	clean := remote.NormalizePath(path)
	err := p.writeOnce(ctx, ref, clean, content, message)
	var conflict *remote.ConflictError
	if !errors.As(err, &conflict) {
		return err
	}
	return p.writeOnce(ctx, ref, clean, content, message)
}

func (p *Provider) writeOnce(ctx context.Context, ref remote.RepoRef, path, content, message string) error {
	current, err := p.ReadFile(ctx, ref, path)
	if err != nil {
		return err
	}
	if current == nil {
		return p.sendContents(ctx, http.MethodPost, ref, path, content, message, "")
	}
	return p.sendContents(ctx, http.MethodPut, ref, path, content, message, current.SHA)
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

func (p *Provider) sendContents(ctx context.Context, method string, ref remote.RepoRef, path, content, message, sha string) error {
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
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
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
	switch {
	case missingBranch(msg):
		return &remote.BranchMismatchError{Branch: ref.Branch, Message: msg}
	case alreadyExists(msg), resp.StatusCode == http.StatusConflict, staleSHA(msg):
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

// Gitee localizes some error text, so both English and Chinese forms are
// recognized.

func alreadyExists(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "already exist") || strings.Contains(msg, "已存在")
}

func missingBranch(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "branch") || strings.Contains(msg, "分支")
}

func staleSHA(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "sha")
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
