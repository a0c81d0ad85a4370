package integrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"bamboohr", "datadog", "github", "jira", "miro", "slack", "stripe", "xero"}, Names())
}

func TestLookup(t *testing.T) {
	integ, err := Lookup(" GitHub ", restclient.Options{})
	require.NoError(t, err)
	assert.Equal(t, "github", integ.Name())

	_, err = Lookup("gitlab", restclient.Options{})
	assert.ErrorContains(t, err, `unknown integration "gitlab"`)
	assert.ErrorContains(t, err, "stripe")
}

func TestEveryIntegrationDescribesItself(t *testing.T) {
	want := map[string][]string{
		"bamboohr": {"get_directory", "get_employee", "list_time_off"},
		"datadog":  {"list_monitors", "mute_monitor", "query_metrics"},
		"github":   {"create_issue", "get_repository", "list_branches", "list_issues"},
		"jira":     {"add_comment", "get_issue", "search_issues"},
		"miro":     {"create_sticky_note", "list_boards"},
		"slack":    {"list_channels", "post_message"},
		"stripe":   {"create_refund", "get_balance", "list_customers"},
		"xero":     {"list_contacts", "list_invoices"},
	}

	for _, integ := range All(restclient.Options{}) {
		t.Run(integ.Name(), func(t *testing.T) {
			s, err := Describe(context.Background(), integ)
			require.NoError(t, err)

			names := make([]string, 0, len(s.Tools))
			for _, tool := range s.Tools {
				names = append(names, tool.Name)
				assert.NotEmpty(t, tool.Description, tool.Name)
			}
			assert.Equal(t, want[integ.Name()], names)
			assert.NotEmpty(t, s.Headers)
			assert.Equal(t, integ.Name(), integ.Binder().Integration())
		})
	}
}
