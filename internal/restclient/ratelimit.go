package restclient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/time/rate"
)

// maxLimiters bounds the number of callers tracked per integration. The least
// recently used caller's bucket is dropped first.
const maxLimiters = 1024

type limiterKeyCtx struct{}

func withLimiterKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, limiterKeyCtx{}, key)
}

// limiterSet hands out one token bucket per caller credential, so callers of
// a shared integration do not drain each other's budget.
type limiterSet struct {
	limit rate.Limit
	burst int

	mu    sync.Mutex
	cache *lru.Cache
}

func newLimiterSet(limit float64, burst int) *limiterSet {
	return &limiterSet{limit: rate.Limit(limit), burst: burst, cache: lru.New(maxLimiters)}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(key); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(s.limit, s.burst)
	s.cache.Add(key, l)
	return l
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// requestKey identifies the caller of req. Client requests carry the key of
// their Auth; requests from SDK clients are keyed by their Authorization header.
func requestKey(req *http.Request) string {
	if key, ok := req.Context().Value(limiterKeyCtx{}).(string); ok {
		return key
	}
	return fingerprint(req.Header.Values("Authorization")...)
}

func (a Auth) limiterKey() string {
	parts := []string{a.BearerToken, a.BasicUser, a.BasicPassword}
	keys := make([]string, 0, len(a.Header))
	for k := range a.Header {
		keys = append(keys, http.CanonicalHeaderKey(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k)
		parts = append(parts, a.Header.Values(k)...)
	}
	return fingerprint(parts...)
}

func fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
