package xero

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

const tenant = "7a0d6b1c-2f3e-4d5a-9b8c-0e1f2a3b4c5d"

func newTestIntegration(url string) *Integration {
	x := New(restclient.Options{})
	x.apiURL = url
	return x
}

func TestExtractCredentials(t *testing.T) {
	got, ok := extractCredentials(http.Header{"Authorization": {"Bearer tok"}, "X-Xero-Tenant-Id": {tenant}}).Get()
	require.True(t, ok)
	assert.Equal(t, Credentials{Token: "tok", TenantID: tenant}, got)

	res := extractCredentials(http.Header{"Authorization": {"Bearer tok"}})
	assert.False(t, res.OK())
	assert.Contains(t, res.Reason(), "x-xero-tenant-id")

	assert.False(t, extractCredentials(http.Header{"X-Xero-Tenant-Id": {tenant}}).OK())
}

func TestListInvoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Invoices", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, tenant, r.Header.Get("Xero-Tenant-Id"))
		assert.Equal(t, "AUTHORISED,PAID", r.URL.Query().Get("Statuses"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"Invoices":[{"InvoiceID":"i-1","InvoiceNumber":"INV-001","Type":"ACCREC","Status":"PAID",
			"CurrencyCode":"NZD","Total":115.0,"AmountDue":0,"DateString":"2024-01-31T00:00:00","Contact":{"Name":"ACME"}}]}`))
	}))
	defer srv.Close()

	out, err := newTestIntegration(srv.URL).listInvoices(context.Background(), Credentials{Token: "tok", TenantID: tenant},
		ListInvoicesInput{Statuses: []string{"authorised", " paid"}})
	require.NoError(t, err)

	invoices := out.(map[string]any)["invoices"].([]Invoice)
	require.Len(t, invoices, 1)
	assert.Equal(t, "ACME", invoices[0].Contact)
	assert.Equal(t, "2024-01-31", invoices[0].Date)
	assert.Equal(t, 115.0, invoices[0].Total)
}

func TestListInvoicesValidation(t *testing.T) {
	x := newTestIntegration("http://127.0.0.1:1")
	creds := Credentials{Token: "tok", TenantID: tenant}

	_, err := x.listInvoices(context.Background(), creds, ListInvoicesInput{Statuses: []string{"OPEN"}})
	assert.ErrorContains(t, err, "status must be one of")

	_, err = x.listInvoices(context.Background(), creds, ListInvoicesInput{ContactID: "acme"})
	assert.ErrorContains(t, err, "GUID")
}

func TestListContactsOverMCP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acme", r.URL.Query().Get("searchTerm"))
		_, _ = w.Write([]byte(`{"Contacts":[{"ContactID":"c-1","Name":"ACME Ltd","EmailAddress":"ap@acme.test","ContactStatus":"ACTIVE","IsCustomer":true}]}`))
	}))
	defer srv.Close()
	t.Setenv("XERO_ACCESS_TOKEN", "tok")
	t.Setenv("XERO_TENANT_ID", tenant)

	ctx := context.Background()
	session, err := mcpserver.InMemorySession(ctx, newTestIntegration(srv.URL), mcpserver.ServerOptions{StaticCredentials: true})
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "list_contacts",
		Arguments: map[string]any{"search_term": "acme"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, `"name": "ACME Ltd"`)
}

func TestUnauthorizedTenant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"Type":null,"Title":"Forbidden","Status":403,"Detail":"AuthenticationUnsuccessful"}`))
	}))
	defer srv.Close()

	_, err := newTestIntegration(srv.URL).listContacts(context.Background(), Credentials{Token: "tok", TenantID: tenant}, ListContactsInput{})
	require.Error(t, err)
	assert.True(t, restclient.IsStatus(err, http.StatusForbidden))
	assert.Contains(t, err.Error(), "AuthenticationUnsuccessful")
}
