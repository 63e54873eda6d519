package farmos

import (
	"fmt"
	"unicode/utf8"
)

// AuthError reports that the farmOS token endpoint rejected a grant
// request or returned a malformed response. It carries the HTTP status
// and a sanitized body preview for diagnostics; the credentials that were
// sent are never included.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (%d): %s", e.Status, e.Body)
}

// APIError reports a non-2xx response from a farmOS resource endpoint
// after the client has exhausted its single authentication retry.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("farmOS API returned status %d: %s", e.Status, e.Body)
}

// RequestError wraps a transport-level failure (connection refused,
// timeout, DNS). The client never retries these; the caller decides.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	var clean []byte

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]

			continue
		}

		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}

		body = body[size:]
	}

	return string(clean)
}
