// Package integrations lists the vendor integrations this binary can serve.
package integrations

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Zentre-Ai/mcp-servers/internal/integrations/bamboohr"
	"github.com/Zentre-Ai/mcp-servers/internal/integrations/datadog"
	"github.com/Zentre-Ai/mcp-servers/internal/integrations/github"
	"github.com/Zentre-Ai/mcp-servers/internal/integrations/jira"
	"github.com/Zentre-Ai/mcp-servers/internal/integrations/miro"
	"github.com/Zentre-Ai/mcp-servers/internal/integrations/slack"
	"github.com/Zentre-Ai/mcp-servers/internal/integrations/stripe"
	"github.com/Zentre-Ai/mcp-servers/internal/integrations/xero"
	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

type factory func(restclient.Options) mcpserver.Integration

var factories = map[string]factory{
	"bamboohr": func(o restclient.Options) mcpserver.Integration { return bamboohr.New(o) },
	"datadog":  func(o restclient.Options) mcpserver.Integration { return datadog.New(o) },
	"github":   func(o restclient.Options) mcpserver.Integration { return github.New(o) },
	"jira":     func(o restclient.Options) mcpserver.Integration { return jira.New(o) },
	"miro":     func(o restclient.Options) mcpserver.Integration { return miro.New(o) },
	"slack":    func(o restclient.Options) mcpserver.Integration { return slack.New(o) },
	"stripe":   func(o restclient.Options) mcpserver.Integration { return stripe.New(o) },
	"xero":     func(o restclient.Options) mcpserver.Integration { return xero.New(o) },
}

// Names returns the registered integration names in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the named integration.
func Lookup(name string, opts restclient.Options) (mcpserver.Integration, error) {
	f, ok := factories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown integration %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return f(opts), nil
}

// All builds every integration, sorted by name.
func All(opts restclient.Options) []mcpserver.Integration {
	out := make([]mcpserver.Integration, 0, len(factories))
	for _, name := range Names() {
		out = append(out, factories[name](opts))
	}
	return out
}

// Summary describes one integration for listings.
type Summary struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Headers     []string `json:"headers"`
	Tools       []Tool   `json:"tools"`
}

type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Describe lists the headers and tools of integ by connecting to it in
// memory.
func Describe(ctx context.Context, integ mcpserver.Integration) (Summary, error) {
	tools, err := mcpserver.ListTools(ctx, integ)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", integ.Name(), err)
	}

	s := Summary{
		Name:        integ.Name(),
		Description: integ.Description(),
		Headers:     integ.Binder().Headers(),
		Tools:       make([]Tool, 0, len(tools)),
	}
	for _, t := range tools {
		s.Tools = append(s.Tools, Tool{Name: t.Name, Description: t.Description})
	}
	sort.Slice(s.Tools, func(i, j int) bool { return s.Tools[i].Name < s.Tools[j].Name })
	return s, nil
}
