package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

func header(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestExtractCredentials(t *testing.T) {
	const base = "https://example.atlassian.net"

	t.Run("api token", func(t *testing.T) {
		got, ok := extractCredentials(header("x-jira-base-url", base+"/", "x-jira-username", "me@example.com", "x-jira-api-token", "tok")).Get()
		require.True(t, ok)
		assert.Equal(t, Credentials{BaseURL: base, Username: "me@example.com", Secret: "tok", VerifySSL: true}, got)
	})

	t.Run("password", func(t *testing.T) {
		got, ok := extractCredentials(header("x-jira-base-url", base, "x-jira-username", "me", "x-jira-password", "pw")).Get()
		require.True(t, ok)
		assert.Equal(t, "pw", got.Secret)
	})

	t.Run("personal access token", func(t *testing.T) {
		got, ok := extractCredentials(header("x-jira-base-url", base, "x-jira-token", "pat", "x-jira-verify-ssl", "false")).Get()
		require.True(t, ok)
		assert.Equal(t, "pat", got.Token)
		assert.False(t, got.VerifySSL)
	})

	failures := map[string]http.Header{
		"no base url":        header("x-jira-token", "pat"),
		"bad base url":       header("x-jira-base-url", "example.atlassian.net", "x-jira-token", "pat"),
		"username only":      header("x-jira-base-url", base, "x-jira-username", "me"),
		"secret only":        header("x-jira-base-url", base, "x-jira-api-token", "tok"),
		"nothing":            header("x-jira-base-url", base),
		"bad verify flag":    header("x-jira-base-url", base, "x-jira-token", "pat", "x-jira-verify-ssl", "maybe"),
		"blank token header": header("x-jira-base-url", base, "x-jira-token", "  "),
	}
	for name, h := range failures {
		t.Run(name, func(t *testing.T) {
			res := extractCredentials(h)
			assert.False(t, res.OK())
			assert.NotEmpty(t, res.Reason())
		})
	}
}

func TestGetIssue(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/2/issue/PROJ-1", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "me", user)
		assert.Equal(t, "tok", pass)
		assert.Contains(t, r.URL.Query().Get("fields"), "description")
		_, _ = w.Write([]byte(`{"key":"PROJ-1","fields":{"summary":"Broken build","status":{"name":"Open"},"assignee":{"displayName":"Alice"},"priority":null}}`))
	})
	mux.HandleFunc("GET /rest/api/2/issue/PROJ-1/comment", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		_, _ = w.Write([]byte(`{"total":1,"comments":[{"id":"100","author":{"displayName":"Bob"},"body":"on it","created":"2024-01-01"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, err := New(restclient.Options{}).getIssue(context.Background(),
		Credentials{BaseURL: srv.URL, Username: "me", Secret: "tok", VerifySSL: true}, IssueInput{IssueKey: "proj-1"})
	require.NoError(t, err)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "PROJ-1", got["key"])
	assert.Equal(t, "Open", got["status"])
	assert.Equal(t, "Alice", got["assignee"])
	assert.NotContains(t, got, "priority")
	assert.Equal(t, float64(1), got["comment_count"])
	assert.Equal(t, "Bob", got["comments"].([]any)[0].(map[string]any)["author"])
}

func TestGetIssueRejectsBadKey(t *testing.T) {
	_, err := New(restclient.Options{}).getIssue(context.Background(), Credentials{BaseURL: "https://x"}, IssueInput{IssueKey: "not a key"})
	assert.ErrorContains(t, err, "invalid issue key")
}

func TestSearchIssuesUsesBearerForPAT(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/search", r.URL.Path)
		assert.Equal(t, "Bearer pat", r.Header.Get("Authorization"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "project = PROJ", body["jql"])
		assert.Equal(t, float64(100), body["maxResults"])
		_, _ = w.Write([]byte(`{"total":2,"startAt":0,"issues":[{"key":"PROJ-1","fields":{"summary":"a"}},{"key":"PROJ-2","fields":{"summary":"b","issuetype":{"name":"Bug"}}}]}`))
	}))
	defer srv.Close()

	out, err := New(restclient.Options{}).searchIssues(context.Background(),
		Credentials{BaseURL: srv.URL, Token: "pat", VerifySSL: true}, SearchInput{JQL: "project = PROJ", MaxResults: 1000})
	require.NoError(t, err)

	res := out.(SearchResult)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, "Bug", res.Issues[1].Type)
}

func TestSearchIssuesVendorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessages":["Error in the JQL Query"],"errors":{}}`))
	}))
	defer srv.Close()

	_, err := New(restclient.Options{}).searchIssues(context.Background(),
		Credentials{BaseURL: srv.URL, Token: "pat"}, SearchInput{JQL: "bad ="})
	require.Error(t, err)
	assert.True(t, restclient.IsStatus(err, http.StatusBadRequest))
	assert.Contains(t, err.Error(), "Error in the JQL Query")
}

func TestAddCommentOverMCP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/issue/PROJ-9/comment", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Deployed", body["body"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"5","author":{"displayName":"Me"},"body":"Deployed"}`))
	}))
	defer srv.Close()

	t.Setenv("JIRA_BASE_URL", srv.URL)
	t.Setenv("JIRA_USERNAME", "me")
	t.Setenv("JIRA_API_TOKEN", "tok")
	t.Setenv("JIRA_PERSONAL_TOKEN", "")
	t.Setenv("JIRA_VERIFY_SSL", "")

	ctx := context.Background()
	session, err := mcpserver.InMemorySession(ctx, New(restclient.Options{}), mcpserver.ServerOptions{StaticCredentials: true})
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "add_comment",
		Arguments: map[string]any{"issue_key": "PROJ-9", "body": "Deployed"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.True(t, strings.Contains(res.Content[0].(*mcp.TextContent).Text, `"id": "5"`))
}
