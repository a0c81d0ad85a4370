package credctx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
)

// ErrNoCredentials is returned when a request carries no usable credentials.
var ErrNoCredentials = errors.New("no credentials available")

// Binder attaches an integration's credentials to a context. Transports use it
// without knowing the credential type.
type Binder interface {
	// Integration names the integration the credentials belong to.
	Integration() string
	// Bind extracts credentials from h. On success the returned context carries
	// them and release clears them; the caller must defer release.
	Bind(ctx context.Context, h http.Header) (bound context.Context, release func(), err error)
	// BindStatic binds credentials configured in the process environment.
	BindStatic(ctx context.Context) (bound context.Context, release func(), err error)
	// Headers lists the header names a caller can use to authenticate.
	Headers() []string
	// Fingerprint identifies the credentials in h without revealing them.
	// Equal credentials give equal fingerprints.
	Fingerprint(h http.Header) (string, error)
}

// Scheme describes how one integration reads its credentials.
type Scheme[T any] struct {
	Name string

	// HeaderNames is advertised in errors and help output.
	HeaderNames []string

	// Extract turns request headers into credentials. It must not panic.
	Extract func(h http.Header) Result[T]

	// EnvHeaders maps header names to the environment variables consulted by
	// BindStatic, e.g. "x-github-token" -> "GITHUB_TOKEN".
	EnvHeaders map[string]string

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

var _ Binder = (*Scheme[struct{}])(nil)

func (s *Scheme[T]) Integration() string {
	return s.Name
}

func (s *Scheme[T]) Headers() []string {
	return s.HeaderNames
}

// ExtractFromHeaders runs Extract, treating a nil extractor as no credentials.
func (s *Scheme[T]) ExtractFromHeaders(h http.Header) Result[T] {
	if s.Extract == nil {
		return Missing[T]("%s has no credential extractor", s.Name)
	}
	if h == nil {
		h = http.Header{}
	}
	return s.Extract(h)
}

func (s *Scheme[T]) Bind(ctx context.Context, h http.Header) (context.Context, func(), error) {
	return s.bind(ctx, s.ExtractFromHeaders(h))
}

func (s *Scheme[T]) BindStatic(ctx context.Context) (context.Context, func(), error) {
	return s.bind(ctx, s.ExtractFromHeaders(s.EnvHeader()))
}

func (s *Scheme[T]) Fingerprint(h http.Header) (string, error) {
	res := s.ExtractFromHeaders(h)
	v, ok := res.Get()
	if !ok {
		return "", fmt.Errorf("%w for %s: %s", ErrNoCredentials, s.Name, res.Reason())
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s credentials: %w", s.Name, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// EnvHeader builds the header set that BindStatic extracts from.
func (s *Scheme[T]) EnvHeader() http.Header {
	lookup := s.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	h := http.Header{}
	for header, key := range s.EnvHeaders {
		if v, ok := lookup(key); ok && v != "" {
			h.Set(header, v)
		}
	}
	return h
}

func (s *Scheme[T]) bind(ctx context.Context, res Result[T]) (context.Context, func(), error) {
	v, ok := res.Get()
	if !ok {
		return ctx, func() {}, fmt.Errorf("%w for %s: %s", ErrNoCredentials, s.Name, res.Reason())
	}
	bound, release := Scope(ctx, v)
	return bound, release, nil
}
