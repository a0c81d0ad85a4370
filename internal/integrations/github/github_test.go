package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

func newTestIntegration() *Integration {
	return New(restclient.Options{})
}

func TestExtractCredentials(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    Credentials
		ok      bool
	}{
		{"bearer", map[string]string{"Authorization": "Bearer ghp_a"}, Credentials{Token: "ghp_a", APIURL: defaultAPIURL}, true},
		{"vendor header wins", map[string]string{"Authorization": "Bearer ghp_a", "x-github-token": "ghp_b"}, Credentials{Token: "ghp_b", APIURL: defaultAPIURL}, true},
		{"enterprise", map[string]string{"x-github-token": "t", "x-github-api-url": "https://ghe.example.com/api/v3/"}, Credentials{Token: "t", APIURL: "https://ghe.example.com/api/v3"}, true},
		{"missing", map[string]string{}, Credentials{}, false},
		{"basic is not bearer", map[string]string{"Authorization": "Basic Zm9vOmJhcg=="}, Credentials{}, false},
		{"bad api url", map[string]string{"x-github-token": "t", "x-github-api-url": "ftp://host"}, Credentials{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			got, ok := extractCredentials(h).Get()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGetRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/hello", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"full_name":"octo/hello","default_branch":"main","stargazers_count":42,"private":false,"topics":["mcp"]}`))
	})
	mux.HandleFunc("GET /repos/octo/hello/languages", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Go":750,"Shell":250}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, err := newTestIntegration().getRepository(context.Background(),
		Credentials{Token: "tok", APIURL: srv.URL}, RepoInput{Owner: "octo", Repo: "hello"})
	require.NoError(t, err)

	summary := out.(RepositorySummary)
	assert.Equal(t, "octo/hello", summary.FullName)
	assert.Equal(t, 42, summary.Stars)
	assert.Equal(t, map[string]float64{"Go": 75, "Shell": 25}, summary.Languages)
}

func TestGetRepositoryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found","documentation_url":"https://docs.github.com"}`))
	}))
	defer srv.Close()

	_, err := newTestIntegration().getRepository(context.Background(),
		Credentials{Token: "tok", APIURL: srv.URL}, RepoInput{Owner: "octo", Repo: "missing"})
	require.Error(t, err)
	assert.True(t, restclient.IsStatus(err, http.StatusNotFound))
	assert.Contains(t, err.Error(), "Not Found")
}

func TestGetRepositoryValidatesInput(t *testing.T) {
	_, err := newTestIntegration().getRepository(context.Background(), Credentials{Token: "t", APIURL: defaultAPIURL}, RepoInput{Owner: "octo"})
	assert.EqualError(t, err, "repo is required")
}

func TestListIssuesSkipsPullRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/hello/issues", r.URL.Path)
		assert.Equal(t, "closed", r.URL.Query().Get("state"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[
			{"number":1,"title":"bug","state":"closed","user":{"login":"alice"},"labels":[{"name":"bug"}]},
			{"number":2,"title":"pr","state":"closed","user":{"login":"bob"},"pull_request":{"url":"x"}}
		]`))
	}))
	defer srv.Close()

	out, err := newTestIntegration().listIssues(context.Background(),
		Credentials{Token: "tok", APIURL: srv.URL}, ListIssuesInput{Owner: "octo", Repo: "hello", State: "closed", PerPage: 500})
	require.NoError(t, err)

	res := out.(map[string]any)
	assert.Equal(t, 1, res["count"])
	issues := res["issues"].([]IssueSummary)
	assert.Equal(t, "alice", issues[0].Author)
	assert.Equal(t, []string{"bug"}, issues[0].Labels)
}

func TestListIssuesRejectsBadState(t *testing.T) {
	_, err := newTestIntegration().listIssues(context.Background(),
		Credentials{Token: "tok", APIURL: defaultAPIURL}, ListIssuesInput{Owner: "o", Repo: "r", State: "merged"})
	assert.Error(t, err)
}

func TestCreateIssue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Crash on start", body["title"])
		assert.Equal(t, []any{"bug"}, body["labels"])
		assert.NotContains(t, body, "assignees")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"number":7,"state":"open","html_url":"https://github.com/octo/hello/issues/7"}`))
	}))
	defer srv.Close()

	out, err := newTestIntegration().createIssue(context.Background(),
		Credentials{Token: "tok", APIURL: srv.URL}, CreateIssueInput{Owner: "octo", Repo: "hello", Title: "Crash on start", Labels: []string{"bug"}})
	require.NoError(t, err)
	assert.Equal(t, 7, out.(map[string]any)["number"])
}

func pktLine(s string) string {
	return fmt.Sprintf("%04x%s", len(s)+4, s)
}

func fakeGitServer(t *testing.T) *httptest.Server {
	const (
		mainSHA = "1111111111111111111111111111111111111111"
		devSHA  = "2222222222222222222222222222222222222222"
	)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/octo/hello.git/info/refs" || r.URL.Query().Get("service") != "git-upload-pack" {
			http.NotFound(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "x-access-token" || pass != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/x-git-upload-pack-advertisement")
		body := pktLine("# service=git-upload-pack\n") + "0000" +
			pktLine(mainSHA+" HEAD\x00multi_ack side-band-64k ofs-delta symref=HEAD:refs/heads/main agent=git/2.43.0\n") +
			pktLine(devSHA+" refs/heads/dev\n") +
			pktLine(mainSHA+" refs/heads/main\n") +
			pktLine(mainSHA+" refs/tags/v1.0.0\n") +
			"0000"
		_, _ = w.Write([]byte(body))
	}))
}

func TestListBranches(t *testing.T) {
	srv := fakeGitServer(t)
	defer srv.Close()

	out, err := newTestIntegration().listBranches(context.Background(),
		Credentials{Token: "tok", APIURL: srv.URL}, BranchesInput{Owner: "octo", Repo: "hello"})
	require.NoError(t, err)

	list := out.(BranchList)
	assert.Equal(t, []string{"dev", "main"}, list.Branches)
	assert.Equal(t, "main", list.DefaultBranch)
	assert.Equal(t, 1, list.Tags)
}

func TestListBranchesBadToken(t *testing.T) {
	srv := fakeGitServer(t)
	defer srv.Close()

	_, err := newTestIntegration().listBranches(context.Background(),
		Credentials{Token: "wrong", APIURL: srv.URL}, BranchesInput{Owner: "octo", Repo: "hello"})
	assert.Error(t, err)
}

func TestListBranchesUsesIntegrationClient(t *testing.T) {
	var requests atomic.Int32
	git := fakeGitServer(t)
	defer git.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		git.Config.Handler.ServeHTTP(w, r)
	}))
	defer srv.Close()

	g := New(restclient.Options{RateLimit: 0.001, RateBurst: 1})
	creds := Credentials{Token: "tok", APIURL: srv.URL}
	in := BranchesInput{Owner: "octo", Repo: "hello"}

	_, err := g.listBranches(context.Background(), creds, in)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.listBranches(ctx, creds, in)
	assert.Error(t, err, "the second ls-remote waits on the integration rate limit")
	assert.Equal(t, int32(1), requests.Load())
}

func TestCloneURL(t *testing.T) {
	tests := []struct {
		api  string
		want string
	}{
		{"https://api.github.com", "https://github.com/o/r.git"},
		{"https://ghe.example.com/api/v3", "https://ghe.example.com/o/r.git"},
		{"http://127.0.0.1:9999", "http://127.0.0.1:9999/o/r.git"},
	}
	for _, tt := range tests {
		got, err := cloneURL(tt.api, "o", "r")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestToolsOverMCP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/octo/hello":
			_, _ = w.Write([]byte(`{"full_name":"octo/hello"}`))
		case "/repos/octo/hello/languages":
			_, _ = w.Write([]byte(`{}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("GITHUB_API_URL", srv.URL)

	ctx := context.Background()
	session, err := mcpserver.InMemorySession(ctx, newTestIntegration(), mcpserver.ServerOptions{StaticCredentials: true})
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_repository",
		Arguments: map[string]any{"owner": "octo", "repo": "hello"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, `"full_name": "octo/hello"`)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_repository",
		Arguments: map[string]any{"owner": "octo", "repo": "nope"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
