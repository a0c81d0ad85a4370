package jira

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
)

const apiPrefix = "/rest/api/2"

var issueKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-[0-9]+$`)

var summaryFields = []string{"summary", "status", "assignee", "reporter", "priority", "issuetype", "created", "updated", "labels"}

type user struct {
	DisplayName string `json:"displayName"`
}

type named struct {
	Name string `json:"name"`
}

type issueFields struct {
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Status      *named   `json:"status"`
	Priority    *named   `json:"priority"`
	IssueType   *named   `json:"issuetype"`
	Assignee    *user    `json:"assignee"`
	Reporter    *user    `json:"reporter"`
	Labels      []string `json:"labels"`
	Created     string   `json:"created"`
	Updated     string   `json:"updated"`
}

type rawIssue struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type IssueSummary struct {
	Key         string   `json:"key"`
	Summary     string   `json:"summary"`
	Status      string   `json:"status,omitempty"`
	Type        string   `json:"type,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	Reporter    string   `json:"reporter,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Created     string   `json:"created,omitempty"`
	Updated     string   `json:"updated,omitempty"`
	Description string   `json:"description,omitempty"`
}

func summarize(is rawIssue) IssueSummary {
	f := is.Fields
	s := IssueSummary{
		Key:         is.Key,
		Summary:     f.Summary,
		Labels:      f.Labels,
		Created:     f.Created,
		Updated:     f.Updated,
		Description: f.Description,
	}
	if f.Status != nil {
		s.Status = f.Status.Name
	}
	if f.IssueType != nil {
		s.Type = f.IssueType.Name
	}
	if f.Priority != nil {
		s.Priority = f.Priority.Name
	}
	if f.Assignee != nil {
		s.Assignee = f.Assignee.DisplayName
	}
	if f.Reporter != nil {
		s.Reporter = f.Reporter.DisplayName
	}
	return s
}

func validateKey(key string) (string, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	if !issueKeyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid issue key %q, expected PROJECT-123", key)
	}
	return key, nil
}

type IssueInput struct {
	IssueKey    string `json:"issue_key" jsonschema:"issue key such as PROJ-123"`
	MaxComments int    `json:"max_comments,omitempty" jsonschema:"number of recent comments to include, at most 50"`
}

type Comment struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Body    string `json:"body"`
	Created string `json:"created"`
}

type rawComment struct {
	ID      string `json:"id"`
	Author  *user  `json:"author"`
	Body    string `json:"body"`
	Created string `json:"created"`
}

func (c rawComment) summary() Comment {
	out := Comment{ID: c.ID, Body: c.Body, Created: c.Created}
	if c.Author != nil {
		out.Author = c.Author.DisplayName
	}
	return out
}

func (j *Integration) getIssue(ctx context.Context, creds Credentials, in IssueInput) (any, error) {
	key, err := validateKey(in.IssueKey)
	if err != nil {
		return nil, err
	}
	c, err := j.client(creds)
	if err != nil {
		return nil, err
	}

	var (
		issue    rawIssue
		comments struct {
			Total    int          `json:"total"`
			Comments []rawComment `json:"comments"`
		}
	)
	issueQuery := url.Values{"fields": {strings.Join(append(summaryFields, "description"), ",")}}
	commentQuery := url.Values{
		"maxResults": {fmt.Sprint(mcpserver.Limit(in.MaxComments, 10, 50))},
		"orderBy":    {"-created"},
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return c.Get(ctx, apiPrefix+"/issue/"+key, issueQuery, &issue)
	})
	group.Go(func() error {
		return c.Get(ctx, apiPrefix+"/issue/"+key+"/comment", commentQuery, &comments)
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := struct {
		IssueSummary
		CommentCount int       `json:"comment_count"`
		Comments     []Comment `json:"comments"`
	}{IssueSummary: summarize(issue), CommentCount: comments.Total, Comments: []Comment{}}
	for _, cm := range comments.Comments {
		out.Comments = append(out.Comments, cm.summary())
	}
	return out, nil
}

type SearchInput struct {
	JQL        string `json:"jql" jsonschema:"JQL query, e.g. project = PROJ AND status = Open"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"at most 100"`
	StartAt    int    `json:"start_at,omitempty"`
}

type SearchResult struct {
	Total   int            `json:"total"`
	StartAt int            `json:"start_at"`
	Issues  []IssueSummary `json:"issues"`
}

func (j *Integration) searchIssues(ctx context.Context, creds Credentials, in SearchInput) (any, error) {
	if err := mcpserver.Require("jql", in.JQL); err != nil {
		return nil, err
	}
	c, err := j.client(creds)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"jql":        in.JQL,
		"startAt":    max(in.StartAt, 0),
		"maxResults": mcpserver.Limit(in.MaxResults, 20, 100),
		"fields":     summaryFields,
	}
	var resp struct {
		Total   int        `json:"total"`
		StartAt int        `json:"startAt"`
		Issues  []rawIssue `json:"issues"`
	}
	if err := c.Post(ctx, apiPrefix+"/search", body, &resp); err != nil {
		return nil, err
	}

	out := SearchResult{Total: resp.Total, StartAt: resp.StartAt, Issues: make([]IssueSummary, 0, len(resp.Issues))}
	for _, is := range resp.Issues {
		out.Issues = append(out.Issues, summarize(is))
	}
	return out, nil
}

type CommentInput struct {
	IssueKey string `json:"issue_key"`
	Body     string `json:"body" jsonschema:"comment text in Jira wiki markup"`
}

func (j *Integration) addComment(ctx context.Context, creds Credentials, in CommentInput) (any, error) {
	key, err := validateKey(in.IssueKey)
	if err != nil {
		return nil, err
	}
	if err := mcpserver.Require("body", in.Body); err != nil {
		return nil, err
	}
	c, err := j.client(creds)
	if err != nil {
		return nil, err
	}

	var created rawComment
	if err := c.Post(ctx, apiPrefix+"/issue/"+key+"/comment", map[string]string{"body": in.Body}, &created); err != nil {
		return nil, err
	}
	return map[string]any{"issue_key": key, "comment": created.summary()}, nil
}
