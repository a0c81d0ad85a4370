package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
)

type RepoInput struct {
	Owner string `json:"owner" jsonschema:"repository owner (user or organization)"`
	Repo  string `json:"repo" jsonschema:"repository name"`
}

type repository struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	Private       bool     `json:"private"`
	Fork          bool     `json:"fork"`
	Archived      bool     `json:"archived"`
	DefaultBranch string   `json:"default_branch"`
	Language      string   `json:"language"`
	Topics        []string `json:"topics"`
	Stars         int      `json:"stargazers_count"`
	Forks         int      `json:"forks_count"`
	OpenIssues    int      `json:"open_issues_count"`
	HTMLURL       string   `json:"html_url"`
	CloneURL      string   `json:"clone_url"`
	PushedAt      string   `json:"pushed_at"`
	UpdatedAt     string   `json:"updated_at"`
}

type RepositorySummary struct {
	repository
	Languages map[string]float64 `json:"languages"`
}

func (g *Integration) getRepository(ctx context.Context, creds Credentials, in RepoInput) (any, error) {
	if err := mcpserver.Require("owner", in.Owner, "repo", in.Repo); err != nil {
		return nil, err
	}
	c, err := g.client(creds)
	if err != nil {
		return nil, err
	}

	var (
		repo      repository
		langBytes map[string]int64
	)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return c.Get(ctx, repoPath(in.Owner, in.Repo), nil, &repo)
	})
	group.Go(func() error {
		return c.Get(ctx, repoPath(in.Owner, in.Repo)+"/languages", nil, &langBytes)
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return RepositorySummary{repository: repo, Languages: languageShares(langBytes)}, nil
}

// languageShares converts byte counts into percentages rounded to 0.1.
func languageShares(counts map[string]int64) map[string]float64 {
	var total int64
	for _, n := range counts {
		total += n
	}
	shares := make(map[string]float64, len(counts))
	if total == 0 {
		return shares
	}
	for lang, n := range counts {
		shares[lang] = float64(n*1000/total) / 10
	}
	return shares
}

type ListIssuesInput struct {
	Owner   string `json:"owner"`
	Repo    string `json:"repo"`
	State   string `json:"state,omitempty" jsonschema:"open, closed or all (default open)"`
	Labels  string `json:"labels,omitempty" jsonschema:"comma separated label names"`
	PerPage int    `json:"per_page,omitempty" jsonschema:"page size, at most 100"`
	Page    int    `json:"page,omitempty"`
}

type issue struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	State     string `json:"state"`
	HTMLURL   string `json:"html_url"`
	Comments  int    `json:"comments"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

type IssueSummary struct {
	Number    int      `json:"number"`
	Title     string   `json:"title"`
	State     string   `json:"state"`
	Author    string   `json:"author"`
	Labels    []string `json:"labels,omitempty"`
	Comments  int      `json:"comments"`
	URL       string   `json:"url"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func (g *Integration) listIssues(ctx context.Context, creds Credentials, in ListIssuesInput) (any, error) {
	if err := mcpserver.Require("owner", in.Owner, "repo", in.Repo); err != nil {
		return nil, err
	}
	if err := mcpserver.OneOf("state", in.State, "open", "closed", "all"); err != nil {
		return nil, err
	}
	c, err := g.client(creds)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("per_page", strconv.Itoa(mcpserver.Limit(in.PerPage, 30, 100)))
	if in.State != "" {
		q.Set("state", in.State)
	}
	if in.Labels != "" {
		q.Set("labels", in.Labels)
	}
	if in.Page > 0 {
		q.Set("page", strconv.Itoa(in.Page))
	}

	var raw []issue
	if err := c.Get(ctx, repoPath(in.Owner, in.Repo)+"/issues", q, &raw); err != nil {
		return nil, err
	}

	issues := make([]IssueSummary, 0, len(raw))
	for _, is := range raw {
		if is.PullRequest != nil {
			continue
		}
		s := IssueSummary{
			Number:    is.Number,
			Title:     is.Title,
			State:     is.State,
			Author:    is.User.Login,
			Comments:  is.Comments,
			URL:       is.HTMLURL,
			CreatedAt: is.CreatedAt,
			UpdatedAt: is.UpdatedAt,
		}
		for _, l := range is.Labels {
			s.Labels = append(s.Labels, l.Name)
		}
		issues = append(issues, s)
	}
	return map[string]any{"count": len(issues), "issues": issues}, nil
}

type CreateIssueInput struct {
	Owner     string   `json:"owner"`
	Repo      string   `json:"repo"`
	Title     string   `json:"title"`
	Body      string   `json:"body,omitempty" jsonschema:"markdown body"`
	Labels    []string `json:"labels,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

func (g *Integration) createIssue(ctx context.Context, creds Credentials, in CreateIssueInput) (any, error) {
	if err := mcpserver.Require("owner", in.Owner, "repo", in.Repo, "title", in.Title); err != nil {
		return nil, err
	}
	c, err := g.client(creds)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"title": in.Title}
	if in.Body != "" {
		body["body"] = in.Body
	}
	if len(in.Labels) > 0 {
		body["labels"] = in.Labels
	}
	if len(in.Assignees) > 0 {
		body["assignees"] = in.Assignees
	}

	var created issue
	if err := c.Post(ctx, repoPath(in.Owner, in.Repo)+"/issues", body, &created); err != nil {
		return nil, err
	}
	return map[string]any{
		"number": created.Number,
		"state":  created.State,
		"url":    created.HTMLURL,
	}, nil
}

func repoPath(owner, repo string) string {
	return fmt.Sprintf("/repos/%s/%s", url.PathEscape(strings.TrimSpace(owner)), url.PathEscape(strings.TrimSpace(repo)))
}
