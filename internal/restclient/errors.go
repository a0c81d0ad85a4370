package restclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"
)

// APIError is a non-2xx response from a vendor API.
type APIError struct {
	Vendor     string
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%d %s) on %s %s: %s",
		e.Vendor, e.StatusCode, http.StatusText(e.StatusCode), e.Method, e.Path, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func newAPIError(vendor, method, path string, status int, body []byte) *APIError {
	msg := vendorMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Vendor: vendor, Method: method, Path: path, StatusCode: status, Message: msg}
}

// vendorMessage digs the human readable message out of the error bodies the
// supported vendors return.
func vendorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return truncate(trimmed, 300)
	}

	for _, key := range []string{"message", "Message", "error_description", "detail", "Detail"} {
		if s, ok := doc[key].(string); ok && s != "" {
			return s
		}
	}

	switch e := doc["error"].(type) {
	case string:
		return e
	case map[string]any:
		if s, ok := e["message"].(string); ok {
			return s
		}
	}

	for _, key := range []string{"errorMessages", "errors"} {
		if list, ok := doc[key].([]any); ok {
			var parts []string
			for _, item := range list {
				if s, ok := item.(string); ok {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		}
	}
	if fields, ok := doc["errors"].(map[string]any); ok {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", k, fields[k]))
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	return truncate(trimmed, 300)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
