package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

const maxErrorBody = 64 << 10

// Auth describes how a Client authenticates. At most one of BearerToken and
// BasicUser is used; Header is applied in either case.
type Auth struct {
	BearerToken   string
	BasicUser     string
	BasicPassword string
	Header        http.Header
}

// Config is the per-request client configuration.
type Config struct {
	BaseURL       string
	Auth          Auth
	SkipTLSVerify bool
}

// Client issues JSON calls against one vendor base URL with one caller's
// credentials. Clients are cheap and built per tool call.
type Client struct {
	base    *Base
	baseURL *url.URL
	auth    Auth
	http    *http.Client

	limiterKey string
}

func (b *Base) Client(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: invalid base URL %q", b.vendor, cfg.BaseURL)
	}

	var rt http.RoundTripper = &limitedTransport{limiters: b.limiters, next: b.roundTripper(cfg.SkipTLSVerify)}
	if cfg.Auth.BearerToken != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Auth.BearerToken, TokenType: "Bearer"}),
			Base:   rt,
		}
	}

	return &Client{
		base:    b,
		baseURL: u,
		auth:    cfg.Auth,
		http:    &http.Client{Transport: rt, Timeout: b.opts.Timeout},

		limiterKey: cfg.Auth.limiterKey(),
	}, nil
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Do sends body (if non-nil) as JSON.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request body: %w", c.base.vendor, err)
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, query, reader, contentType, nil, out)
}

// PostForm sends form url-encoded, as required by form-based APIs.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, header http.Header, out any) error {
	return c.send(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", header, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, header http.Header, out any) error {
	target := c.resolve(path, query)

	req, err := http.NewRequestWithContext(withLimiterKey(ctx, c.limiterKey), method, target, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.base.vendor, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.base.opts.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range c.auth.Header {
		req.Header[http.CanonicalHeaderKey(k)] = vs
	}
	for k, vs := range header {
		req.Header[http.CanonicalHeaderKey(k)] = vs
	}
	if c.auth.BearerToken == "" && c.auth.BasicUser != "" {
		req.SetBasicAuth(c.auth.BasicUser, c.auth.BasicPassword)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %s %s: %w", c.base.vendor, method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(c.base.vendor, method, req.URL.Path, resp.StatusCode, raw)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%s: decode %s response: %w", c.base.vendor, req.URL.Path, err)
	}
	return nil
}

// resolve joins path, which callers pass already escaped, onto the base URL.
func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	joined := strings.TrimRight(u.EscapedPath(), "/") + "/" + strings.TrimLeft(path, "/")
	if unescaped, err := url.PathUnescape(joined); err == nil {
		u.Path, u.RawPath = unescaped, joined
	} else {
		u.Path, u.RawPath = joined, ""
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}
