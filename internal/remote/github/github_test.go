package github_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tilwick/vscode-sync/internal/remote"
	"github.com/tilwick/vscode-sync/internal/remote/github"
)

// newTestServer routes requests by "METHOD path", falling back to 404 with
// a GitHub-shaped body for anything unhandled.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := routes[r.Method+" "+r.URL.Path]; ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
	}))
}

func wrapBase64(text string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(text))
	// GitHub wraps payloads at 60 columns.
	var wrapped string
	for len(enc) > 60 {
		wrapped += enc[:60] + "\n"
		enc = enc[60:]
	}
	return wrapped + enc + "\n"
}

func testRef() remote.RepoRef {
	return remote.RepoRef{Owner: "octocat", Repo: "vscode-settings-sync", Branch: "main"}
}

func TestLogin(t *testing.T) {
	t.Run("returns viewer login", func(t *testing.T) {
		var gotAuth, gotAccept string
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /user": func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotAccept = r.Header.Get("Accept")
				json.NewEncoder(w).Encode(map[string]string{"login": "octocat"})
			},
		})
		defer srv.Close()

		p := github.NewWithBaseURL("tok-123", srv.URL)
		login, err := p.Login(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "octocat", login)
		assert.Equal(t, "Bearer tok-123", gotAuth)
		assert.Equal(t, "application/vnd.github+json", gotAccept)
	})

	t.Run("bad credentials", func(t *testing.T) {
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /user": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "Bad credentials"})
			},
		})
		defer srv.Close()

		_, err := github.NewWithBaseURL("bad", srv.URL).Login(context.Background())
		var authErr *remote.AuthError
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, remote.GitHub, authErr.Backend)
		assert.Contains(t, authErr.Message, "Bad credentials")
	})
}

func TestDefaultBranch(t *testing.T) {
	t.Run("reported by repo metadata", func(t *testing.T) {
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /repos/octocat/vscode-settings-sync": func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"default_branch": "trunk"})
			},
		})
		defer srv.Close()

		branch, err := github.NewWithBaseURL("tok", srv.URL).DefaultBranch(context.Background(), "octocat", "vscode-settings-sync")
		require.NoError(t, err)
		assert.Equal(t, "trunk", branch)
	})

	t.Run("falls back to main when field absent", func(t *testing.T) {
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /repos/octocat/vscode-settings-sync": func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"name": "vscode-settings-sync"})
			},
		})
		defer srv.Close()

		branch, err := github.NewWithBaseURL("tok", srv.URL).DefaultBranch(context.Background(), "octocat", "vscode-settings-sync")
		require.NoError(t, err)
		assert.Equal(t, "main", branch)
	})

	t.Run("falls back to main when repo missing", func(t *testing.T) {
		srv := newTestServer(t, nil)
		defer srv.Close()

		branch, err := github.NewWithBaseURL("tok", srv.URL).DefaultBranch(context.Background(), "octocat", "missing")
		require.NoError(t, err)
		assert.Equal(t, "main", branch)
	})
}

func TestEnsureRepo(t *testing.T) {
	t.Run("existing repo is a no-op", func(t *testing.T) {
		created := false
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /repos/octocat/vscode-settings-sync": func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"name": "vscode-settings-sync"})
			},
			"POST /user/repos": func(w http.ResponseWriter, r *http.Request) {
				created = true
			},
		})
		defer srv.Close()

		err := github.NewWithBaseURL("tok", srv.URL).EnsureRepo(context.Background(), "octocat", "vscode-settings-sync", true)
		require.NoError(t, err)
		assert.False(t, created, "must not create an existing repo")
	})

	t.Run("creates private repo when absent", func(t *testing.T) {
		var payload struct {
			Name     string `json:"name"`
			Private  bool   `json:"private"`
			AutoInit bool   `json:"auto_init"`
		}
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /user": func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"login": "octocat"})
			},
			"POST /user/repos": func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				w.WriteHeader(http.StatusCreated)
			},
		})
		defer srv.Close()

		err := github.NewWithBaseURL("tok", srv.URL).EnsureRepo(context.Background(), "octocat", "vscode-settings-sync", true)
		require.NoError(t, err)
		assert.Equal(t, "vscode-settings-sync", payload.Name)
		assert.True(t, payload.Private)
		assert.True(t, payload.AutoInit, "repo must be initialized so the default branch exists")
	})

	t.Run("lost create race is a no-op", func(t *testing.T) {
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /user": func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"login": "octocat"})
			},
			"POST /user/repos": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				json.NewEncoder(w).Encode(map[string]string{"message": "name already exists on this account"})
			},
		})
		defer srv.Close()

		err := github.NewWithBaseURL("tok", srv.URL).EnsureRepo(context.Background(), "octocat", "vscode-settings-sync", true)
		assert.NoError(t, err)
	})

	t.Run("rejected creation", func(t *testing.T) {
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /user": func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"login": "octocat"})
			},
			"POST /user/repos": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{"message": "Resource not accessible by personal access token"})
			},
		})
		defer srv.Close()

		err := github.NewWithBaseURL("tok", srv.URL).EnsureRepo(context.Background(), "octocat", "vscode-settings-sync", true)
		var createErr *remote.RepoCreateError
		require.True(t, errors.As(err, &createErr))
		assert.Equal(t, "vscode-settings-sync", createErr.Repo)
		assert.Equal(t, http.StatusForbidden, createErr.StatusCode)
		assert.Contains(t, createErr.Message, "not accessible")
	})

	t.Run("failed existence check keeps the backend message", func(t *testing.T) {
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /repos/octocat/vscode-settings-sync": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				json.NewEncoder(w).Encode(map[string]string{"message": "API rate limit exceeded for installation."})
			},
		})
		defer srv.Close()

		err := github.NewWithBaseURL("tok", srv.URL).EnsureRepo(context.Background(), "octocat", "vscode-settings-sync", true)
		var ioErr *remote.RemoteIOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, http.StatusForbidden, ioErr.StatusCode)
		assert.Contains(t, ioErr.Message, "rate limit")
	})

	t.Run("missing repo under another owner is not created", func(t *testing.T) {
		created := false
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /user": func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"login": "octocat"})
			},
			"POST /user/repos": func(w http.ResponseWriter, r *http.Request) {
				created = true
				w.WriteHeader(http.StatusCreated)
			},
		})
		defer srv.Close()

		err := github.NewWithBaseURL("tok", srv.URL).EnsureRepo(context.Background(), "some-org", "vscode-settings-sync", true)
		var createErr *remote.RepoCreateError
		require.True(t, errors.As(err, &createErr))
		assert.Contains(t, createErr.Message, "some-org")
		assert.Contains(t, createErr.Message, "create it manually")
		assert.False(t, created, "must not create under the token owner instead")
	})
}

func TestReadFile(t *testing.T) {
	t.Run("decodes wrapped content and keeps the tag", func(t *testing.T) {
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /repos/octocat/vscode-settings-sync/contents/profiles/abc/settings.json": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "main", r.URL.Query().Get("ref"))
				json.NewEncoder(w).Encode(map[string]string{
					"type":    "file",
					"content": wrapBase64(`{"editor.fontSize": 14, "files.autoSave": "afterDelay"}`),
					"sha":     "abc123",
				})
			},
		})
		defer srv.Close()

		file, err := github.NewWithBaseURL("tok", srv.URL).ReadFile(context.Background(), testRef(), "profiles/abc/settings.json")
		require.NoError(t, err)
		require.NotNil(t, file)
		assert.Equal(t, `{"editor.fontSize": 14, "files.autoSave": "afterDelay"}`, file.Content)
		assert.Equal(t, "abc123", file.SHA)
	})

	t.Run("absent file yields nil without error", func(t *testing.T) {
		srv := newTestServer(t, nil)
		defer srv.Close()

		file, err := github.NewWithBaseURL("tok", srv.URL).ReadFile(context.Background(), testRef(), "profiles/abc/settings.json")
		require.NoError(t, err)
		assert.Nil(t, file)
	})

	t.Run("malformed payload", func(t *testing.T) {
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /repos/octocat/vscode-settings-sync/contents/meta.json": func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"type": "file", "content": "!!not-base64!!", "sha": "x"})
			},
		})
		defer srv.Close()

		_, err := github.NewWithBaseURL("tok", srv.URL).ReadFile(context.Background(), testRef(), "meta.json")
		var decodeErr *remote.DecodeError
		require.True(t, errors.As(err, &decodeErr))
		assert.Equal(t, "meta.json", decodeErr.Path)
	})
}

func TestWriteFile(t *testing.T) {
	type putBody struct {
		Message string `json:"message"`
		Content string `json:"content"`
		Branch  string `json:"branch"`
		SHA     string `json:"sha"`
	}

	t.Run("fresh create sends no tag", func(t *testing.T) {
		var got putBody
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"PUT /repos/octocat/vscode-settings-sync/contents/profiles/abc/meta.json": func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(http.StatusCreated)
			},
		})
		defer srv.Close()

		err := github.NewWithBaseURL("tok", srv.URL).WriteFile(context.Background(), testRef(), "profiles/abc/meta.json", `{"id":"abc"}`, "Sync meta.json")
		require.NoError(t, err)
		assert.Empty(t, got.SHA)
		assert.Equal(t, "main", got.Branch)
		assert.Equal(t, "Sync meta.json", got.Message)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(`{"id":"abc"}`)), got.Content)
	})

	t.Run("overwrite re-fetches the current tag", func(t *testing.T) {
		var got putBody
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /repos/octocat/vscode-settings-sync/contents/settings.json": func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"type": "file", "content": wrapBase64("{}"), "sha": "current-sha"})
			},
			"PUT /repos/octocat/vscode-settings-sync/contents/settings.json": func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(http.StatusOK)
			},
		})
		defer srv.Close()

		err := github.NewWithBaseURL("tok", srv.URL).WriteFile(context.Background(), testRef(), "settings.json", "{}", "Sync settings.json")
		require.NoError(t, err)
		assert.Equal(t, "current-sha", got.SHA)
	})

	t.Run("tag race retries once with the winner's tag", func(t *testing.T) {
		shas := []string{"stale", "fresh"}
		var reads, sentSHAs []string
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /repos/octocat/vscode-settings-sync/contents/settings.json": func(w http.ResponseWriter, r *http.Request) {
				sha := shas[0]
				if len(shas) > 1 {
					shas = shas[1:]
				}
				reads = append(reads, sha)
				json.NewEncoder(w).Encode(map[string]string{"type": "file", "content": wrapBase64("{}"), "sha": sha})
			},
			"PUT /repos/octocat/vscode-settings-sync/contents/settings.json": func(w http.ResponseWriter, r *http.Request) {
				var body putBody
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				sentSHAs = append(sentSHAs, body.SHA)
				if body.SHA != "fresh" {
					w.WriteHeader(http.StatusConflict)
					json.NewEncoder(w).Encode(map[string]string{"message": "settings.json does not match " + body.SHA})
					return
				}
				w.WriteHeader(http.StatusOK)
			},
		})
		defer srv.Close()

		err := github.NewWithBaseURL("tok", srv.URL).WriteFile(context.Background(), testRef(), "settings.json", "{}", "Sync settings.json")
		require.NoError(t, err)
		assert.Equal(t, []string{"stale", "fresh"}, sentSHAs)
		assert.Len(t, reads, 2, "tag must be re-fetched before the retry")
	})

	t.Run("missing branch is distinguishable", func(t *testing.T) {
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"PUT /repos/octocat/vscode-settings-sync/contents/settings.json": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				json.NewEncoder(w).Encode(map[string]string{"message": `Branch "develop" not found`})
			},
		})
		defer srv.Close()

		ref := testRef()
		ref.Branch = "develop"
		err := github.NewWithBaseURL("tok", srv.URL).WriteFile(context.Background(), ref, "settings.json", "{}", "Sync settings.json")
		var branchErr *remote.BranchMismatchError
		require.True(t, errors.As(err, &branchErr))
		assert.Equal(t, "develop", branchErr.Branch)
	})

	t.Run("other rejections carry status and message", func(t *testing.T) {
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"PUT /repos/octocat/vscode-settings-sync/contents/settings.json": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"message": "Service Unavailable"})
			},
		})
		defer srv.Close()

		err := github.NewWithBaseURL("tok", srv.URL).WriteFile(context.Background(), testRef(), "settings.json", "{}", "Sync settings.json")
		var ioErr *remote.RemoteIOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, http.StatusServiceUnavailable, ioErr.StatusCode)
		assert.Contains(t, ioErr.Message, "Service Unavailable")
	})
}

func TestListDir(t *testing.T) {
	t.Run("maps entries and kinds", func(t *testing.T) {
		srv := newTestServer(t, map[string]http.HandlerFunc{
			"GET /repos/octocat/vscode-settings-sync/contents/profiles": func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode([]map[string]string{
					{"name": "abc123", "path": "profiles/abc123", "type": "dir"},
					{"name": "readme.md", "path": "profiles/readme.md", "type": "file"},
				})
			},
		})
		defer srv.Close()

		entries, err := github.NewWithBaseURL("tok", srv.URL).ListDir(context.Background(), testRef(), "profiles")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, remote.Entry{Name: "abc123", Path: "profiles/abc123", Kind: remote.EntryDir}, entries[0])
		assert.Equal(t, remote.Entry{Name: "readme.md", Path: "profiles/readme.md", Kind: remote.EntryFile}, entries[1])
	})

	t.Run("absent directory yields empty listing", func(t *testing.T) {
		srv := newTestServer(t, nil)
		defer srv.Close()

		entries, err := github.NewWithBaseURL("tok", srv.URL).ListDir(context.Background(), testRef(), "profiles/abc/snippets")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

var _ remote.Provider = (*github.Provider)(nil)
