package stripe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
)

type ListCustomersInput struct {
	Email         string `json:"email,omitempty" jsonschema:"exact email address"`
	Limit         int    `json:"limit,omitempty" jsonschema:"at most 100"`
	StartingAfter string `json:"starting_after,omitempty" jsonschema:"customer id to page after"`
}

type Customer struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Created  int64  `json:"created"`
	Currency string `json:"currency,omitempty"`
	Balance  int64  `json:"balance"`
	Livemode bool   `json:"livemode"`
}

type list[T any] struct {
	Data    []T  `json:"data"`
	HasMore bool `json:"has_more"`
}

func (s *Integration) listCustomers(ctx context.Context, creds Credentials, in ListCustomersInput) (any, error) {
	c, err := s.client(creds)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(mcpserver.Limit(in.Limit, 10, 100)))
	if in.Email != "" {
		q.Set("email", in.Email)
	}
	if in.StartingAfter != "" {
		q.Set("starting_after", in.StartingAfter)
	}

	var resp list[Customer]
	if err := c.Get(ctx, "/v1/customers", q, &resp); err != nil {
		return nil, err
	}
	out := map[string]any{"customers": resp.Data, "has_more": resp.HasMore}
	if resp.HasMore && len(resp.Data) > 0 {
		out["next_starting_after"] = resp.Data[len(resp.Data)-1].ID
	}
	return out, nil
}

type BalanceInput struct{}

type Amount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Balance struct {
	Available []Amount `json:"available"`
	Pending   []Amount `json:"pending"`
	Livemode  bool     `json:"livemode"`
}

func (s *Integration) getBalance(ctx context.Context, creds Credentials, _ BalanceInput) (any, error) {
	c, err := s.client(creds)
	if err != nil {
		return nil, err
	}
	var b Balance
	if err := c.Get(ctx, "/v1/balance", nil, &b); err != nil {
		return nil, err
	}
	return b, nil
}

type RefundInput struct {
	PaymentIntent  string `json:"payment_intent,omitempty" jsonschema:"payment intent id (pi_...)"`
	Charge         string `json:"charge,omitempty" jsonschema:"charge id (ch_...)"`
	Amount         int64  `json:"amount,omitempty" jsonschema:"amount in the smallest currency unit; full refund when empty"`
	Reason         string `json:"reason,omitempty" jsonschema:"duplicate, fraudulent or requested_by_customer"`
	IdempotencyKey string `json:"idempotency_key,omitempty" jsonschema:"reuse to retry safely; generated when empty"`
}

type Refund struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	PaymentIntent  string `json:"payment_intent,omitempty"`
	Charge         string `json:"charge,omitempty"`
	Reason         string `json:"reason,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (s *Integration) createRefund(ctx context.Context, creds Credentials, in RefundInput) (any, error) {
	in.PaymentIntent = strings.TrimSpace(in.PaymentIntent)
	in.Charge = strings.TrimSpace(in.Charge)
	if (in.PaymentIntent == "") == (in.Charge == "") {
		return nil, fmt.Errorf("exactly one of payment_intent or charge is required")
	}
	if in.Amount < 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if err := mcpserver.OneOf("reason", in.Reason, "duplicate", "fraudulent", "requested_by_customer"); err != nil {
		return nil, err
	}
	c, err := s.client(creds)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	if in.PaymentIntent != "" {
		form.Set("payment_intent", in.PaymentIntent)
	} else {
		form.Set("charge", in.Charge)
	}
	if in.Amount > 0 {
		form.Set("amount", strconv.FormatInt(in.Amount, 10))
	}
	if in.Reason != "" {
		form.Set("reason", in.Reason)
	}

	key := in.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	header := http.Header{}
	header.Set("Idempotency-Key", key)

	var refund Refund
	if err := c.PostForm(ctx, "/v1/refunds", form, header, &refund); err != nil {
		return nil, err
	}
	refund.IdempotencyKey = key
	return refund, nil
}
