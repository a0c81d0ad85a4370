package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
)

type BranchesInput struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

type BranchList struct {
	DefaultBranch string   `json:"default_branch,omitempty"`
	Branches      []string `json:"branches"`
	Tags          int      `json:"tags"`
}

// listBranches asks the git endpoint for its advertised refs, which avoids
// paging through the REST branches API.
func (g *Integration) listBranches(ctx context.Context, creds Credentials, in BranchesInput) (any, error) {
	if err := mcpserver.Require("owner", in.Owner, "repo", in.Repo); err != nil {
		return nil, err
	}
	cloneURL, err := cloneURL(creds.APIURL, in.Owner, in.Repo)
	if err != nil {
		return nil, err
	}

	endpoint, err := transport.NewEndpoint(cloneURL)
	if err != nil {
		return nil, fmt.Errorf("invalid git endpoint %q: %w", cloneURL, err)
	}
	session, err := g.git.NewUploadPackSession(endpoint,
		&githttp.BasicAuth{Username: "x-access-token", Password: creds.Token})
	if err != nil {
		return nil, fmt.Errorf("open git session for %s/%s: %w", in.Owner, in.Repo, err)
	}
	defer session.Close()

	refs, err := advertisedRefs(ctx, session)
	switch {
	case errors.Is(err, transport.ErrEmptyRemoteRepository):
		return BranchList{Branches: []string{}}, nil
	case err != nil:
		return nil, fmt.Errorf("list refs of %s/%s: %w", in.Owner, in.Repo, err)
	}

	out := BranchList{Branches: []string{}}
	for _, ref := range refs {
		name := ref.Name()
		switch {
		case name == plumbing.HEAD && ref.Type() == plumbing.SymbolicReference:
			out.DefaultBranch = ref.Target().Short()
		case name.IsBranch():
			out.Branches = append(out.Branches, name.Short())
		case name.IsTag():
			out.Tags++
		}
	}
	sort.Strings(out.Branches)
	return out, nil
}

func advertisedRefs(ctx context.Context, session transport.UploadPackSession) (memory.ReferenceStorage, error) {
	ar, err := session.AdvertisedReferencesContext(ctx)
	if err != nil {
		return nil, err
	}
	return ar.AllReferences()
}

// cloneURL derives the git endpoint from the REST API URL: api.github.com
// serves github.com, and Enterprise hosts serve the API under /api/v3.
func cloneURL(apiURL, owner, repo string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid API URL %q: %w", apiURL, err)
	}
	u.Host = strings.TrimPrefix(u.Host, "api.")
	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/api/v3")
	u.Path = fmt.Sprintf("%s/%s/%s.git", u.Path, owner, repo)
	u.RawQuery, u.Fragment = "", ""
	return u.String(), nil
}
