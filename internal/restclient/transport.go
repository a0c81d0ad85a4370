// Package restclient is the outbound HTTP layer shared by the vendor
// integrations.
package restclient

import (
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options tune outbound calls for one integration.
type Options struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables limiting
	RateBurst int
	UserAgent string
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.RateLimit > 0 && o.RateBurst < 1 {
		o.RateBurst = 1
	}
	if o.UserAgent == "" {
		o.UserAgent = "mcp-servers"
	}
	return o
}

// Base owns the connection pools and rate limiters of one integration. It
// holds no credentials and is shared by all requests; per-request auth is
// layered on in Client. The rate limit applies per caller credential.
type Base struct {
	vendor   string
	opts     Options
	limiters *limiterSet

	secure http.RoundTripper

	insecureOnce sync.Once
	insecure     http.RoundTripper
}

func NewBase(vendor string, opts Options) *Base {
	opts = opts.withDefaults()
	b := &Base{
		vendor: vendor,
		opts:   opts,
		secure: instrument(vendor, http.DefaultTransport.(*http.Transport).Clone()),
	}
	if opts.RateLimit > 0 {
		b.limiters = newLimiterSet(opts.RateLimit, opts.RateBurst)
	}
	return b
}

func (b *Base) Vendor() string {
	return b.vendor
}

// HTTPClient returns an instrumented client without auth, for SDKs that
// attach credentials themselves.
func (b *Base) HTTPClient(skipTLSVerify bool) *http.Client {
	return &http.Client{
		Transport: &limitedTransport{limiters: b.limiters, next: b.roundTripper(skipTLSVerify)},
		Timeout:   b.opts.Timeout,
	}
}

func (b *Base) roundTripper(skipTLSVerify bool) http.RoundTripper {
	if !skipTLSVerify {
		return b.secure
	}
	b.insecureOnce.Do(func() {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		b.insecure = instrument(b.vendor, t)
	})
	return b.insecure
}

func instrument(vendor string, next http.RoundTripper) http.RoundTripper {
	return otelhttp.NewTransport(next,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return vendor + " " + r.Method
		}),
	)
}

type limitedTransport struct {
	limiters *limiterSet
	next     http.RoundTripper
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiters != nil {
		if err := t.limiters.get(requestKey(req)).Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.next.RoundTrip(req)
}
