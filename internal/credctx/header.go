package credctx

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// HeaderKind tells how many times a header was sent.
type HeaderKind int

const (
	HeaderAbsent HeaderKind = iota
	HeaderSingle
	HeaderMultiple
)

func (k HeaderKind) String() string {
	switch k {
	case HeaderAbsent:
		return "absent"
	case HeaderSingle:
		return "single"
	case HeaderMultiple:
		return "multiple"
	default:
		return "unknown"
	}
}

// HeaderValue is the raw result of looking up one header name.
type HeaderValue struct {
	Kind   HeaderKind
	Values []string
}

// LookupHeader reads name from h. Header names are matched case-insensitively.
func LookupHeader(h http.Header, name string) HeaderValue {
	if h == nil {
		return HeaderValue{Kind: HeaderAbsent}
	}
	values := h.Values(name)
	switch len(values) {
	case 0:
		return HeaderValue{Kind: HeaderAbsent}
	case 1:
		return HeaderValue{Kind: HeaderSingle, Values: values}
	default:
		return HeaderValue{Kind: HeaderMultiple, Values: values}
	}
}

// Value resolves the header to a single trimmed value. A repeated header
// resolves to its first non-blank occurrence. Blank values count as absent.
func (v HeaderValue) Value() (string, bool) {
	switch v.Kind {
	case HeaderSingle:
		s := strings.TrimSpace(v.Values[0])
		return s, s != ""
	case HeaderMultiple:
		for _, raw := range v.Values {
			if s := strings.TrimSpace(raw); s != "" {
				return s, true
			}
		}
		return "", false
	case HeaderAbsent:
		return "", false
	default:
		return "", false
	}
}

// HeaderString is shorthand for LookupHeader(h, name).Value().
func HeaderString(h http.Header, name string) (string, bool) {
	return LookupHeader(h, name).Value()
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(h http.Header) (string, bool) {
	raw, ok := HeaderString(h, "Authorization")
	if !ok {
		return "", false
	}
	scheme, token, found := strings.Cut(raw, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// HeaderBool parses a boolean header, returning def when it is absent.
func HeaderBool(h http.Header, name string, def bool) (bool, error) {
	raw, ok := HeaderString(h, name)
	if !ok {
		return def, nil
	}
	switch strings.ToLower(raw) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("header %s: invalid boolean %q", name, raw)
	}
	return b, nil
}

// ParseBaseURL validates an absolute http(s) URL and strips trailing slashes.
func ParseBaseURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL %q has no host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}
