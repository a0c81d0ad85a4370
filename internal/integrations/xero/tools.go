package xero

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
)

var guidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

var invoiceStatuses = []string{"DRAFT", "SUBMITTED", "AUTHORISED", "PAID", "VOIDED", "DELETED"}

type ListInvoicesInput struct {
	Statuses  []string `json:"statuses,omitempty" jsonschema:"DRAFT, SUBMITTED, AUTHORISED, PAID, VOIDED or DELETED"`
	ContactID string   `json:"contact_id,omitempty" jsonschema:"contact GUID"`
	Page      int      `json:"page,omitempty" jsonschema:"1-based page of 100 invoices"`
}

type Invoice struct {
	ID        string  `json:"id"`
	Number    string  `json:"number"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	Contact   string  `json:"contact"`
	Currency  string  `json:"currency"`
	Total     float64 `json:"total"`
	AmountDue float64 `json:"amount_due"`
	Date      string  `json:"date,omitempty"`
	DueDate   string  `json:"due_date,omitempty"`
}

type rawInvoice struct {
	InvoiceID     string  `json:"InvoiceID"`
	InvoiceNumber string  `json:"InvoiceNumber"`
	Type          string  `json:"Type"`
	Status        string  `json:"Status"`
	CurrencyCode  string  `json:"CurrencyCode"`
	Total         float64 `json:"Total"`
	AmountDue     float64 `json:"AmountDue"`
	DateString    string  `json:"DateString"`
	DueDateString string  `json:"DueDateString"`
	Contact       struct {
		Name string `json:"Name"`
	} `json:"Contact"`
}

func (x *Integration) listInvoices(ctx context.Context, creds Credentials, in ListInvoicesInput) (any, error) {
	statuses := make([]string, 0, len(in.Statuses))
	for _, s := range in.Statuses {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if err := mcpserver.OneOf("status", s, invoiceStatuses...); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	if in.ContactID != "" && !guidPattern.MatchString(in.ContactID) {
		return nil, fmt.Errorf("contact_id must be a GUID, got %q", in.ContactID)
	}
	c, err := x.client(creds)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(max(in.Page, 1)))
	if len(statuses) > 0 {
		q.Set("Statuses", strings.Join(statuses, ","))
	}
	if in.ContactID != "" {
		q.Set("ContactIDs", in.ContactID)
	}

	var resp struct {
		Invoices []rawInvoice `json:"Invoices"`
	}
	if err := c.Get(ctx, "/Invoices", q, &resp); err != nil {
		return nil, err
	}
	out := make([]Invoice, 0, len(resp.Invoices))
	for _, inv := range resp.Invoices {
		out = append(out, Invoice{
			ID:        inv.InvoiceID,
			Number:    inv.InvoiceNumber,
			Type:      inv.Type,
			Status:    inv.Status,
			Contact:   inv.Contact.Name,
			Currency:  inv.CurrencyCode,
			Total:     inv.Total,
			AmountDue: inv.AmountDue,
			Date:      dateOnly(inv.DateString),
			DueDate:   dateOnly(inv.DueDateString),
		})
	}
	return map[string]any{"page": max(in.Page, 1), "count": len(out), "invoices": out}, nil
}

type ListContactsInput struct {
	SearchTerm string `json:"search_term,omitempty" jsonschema:"matches name, email or account number"`
	Page       int    `json:"page,omitempty"`
}

type Contact struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Status     string `json:"status"`
	IsCustomer bool   `json:"is_customer"`
	IsSupplier bool   `json:"is_supplier"`
}

func (x *Integration) listContacts(ctx context.Context, creds Credentials, in ListContactsInput) (any, error) {
	c, err := x.client(creds)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(max(in.Page, 1)))
	if term := strings.TrimSpace(in.SearchTerm); term != "" {
		q.Set("searchTerm", term)
	}

	var resp struct {
		Contacts []struct {
			ContactID     string `json:"ContactID"`
			Name          string `json:"Name"`
			EmailAddress  string `json:"EmailAddress"`
			ContactStatus string `json:"ContactStatus"`
			IsCustomer    bool   `json:"IsCustomer"`
			IsSupplier    bool   `json:"IsSupplier"`
		} `json:"Contacts"`
	}
	if err := c.Get(ctx, "/Contacts", q, &resp); err != nil {
		return nil, err
	}
	out := make([]Contact, 0, len(resp.Contacts))
	for _, ct := range resp.Contacts {
		out = append(out, Contact{
			ID:         ct.ContactID,
			Name:       ct.Name,
			Email:      ct.EmailAddress,
			Status:     ct.ContactStatus,
			IsCustomer: ct.IsCustomer,
			IsSupplier: ct.IsSupplier,
		})
	}
	return map[string]any{"count": len(out), "contacts": out}, nil
}

// dateOnly trims Xero's "2024-01-31T00:00:00" strings to the date.
func dateOnly(s string) string {
	d, _, _ := strings.Cut(s, "T")
	return d
}
