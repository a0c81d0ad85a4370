package credctx

import "fmt"

// Result is the outcome of extracting credentials from a request: either the
// credentials were found, or they were missing for a stated reason.
type Result[T any] struct {
	value  T
	found  bool
	reason string
}

// Found wraps extracted credentials.
func Found[T any](v T) Result[T] {
	return Result[T]{value: v, found: true}
}

// Missing reports that no usable credentials were present.
func Missing[T any](format string, args ...any) Result[T] {
	return Result[T]{reason: fmt.Sprintf(format, args...)}
}

// Get returns the credentials and whether they were found.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.found
}

// OK reports whether credentials were found.
func (r Result[T]) OK() bool {
	return r.found
}

// Reason explains a Missing result. Empty for Found.
func (r Result[T]) Reason() string {
	if r.found {
		return ""
	}
	if r.reason == "" {
		return "credentials not provided"
	}
	return r.reason
}
