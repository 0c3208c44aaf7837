// Package failures defines the error kinds that may reach the HTTP layer and
// classifies upstream errors into them.
package failures

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/openai/openai-go/v3"
)

// Kind is the classification of a request-level failure.
type Kind string

const (
	Validation         Kind = "validation"
	Configuration      Kind = "configuration"
	NotFound           Kind = "not_found"
	UpstreamAuth       Kind = "upstream_auth"
	UpstreamRateLimit  Kind = "upstream_rate_limit"
	UpstreamTimeout    Kind = "upstream_timeout"
	UpstreamConnection Kind = "upstream_connection"
	MalformedResponse  Kind = "malformed_response"
	Internal           Kind = "internal"
)

// Status maps a kind to the HTTP status the API answers with.
func (k Kind) Status() int {
	switch k {
	case Validation, Configuration:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case UpstreamAuth:
		return http.StatusUnauthorized
	case UpstreamRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to API clients; Err
// keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns a classified error around err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Classify returns the kind carried by err when it is already classified, and
// otherwise picks the most specific kind for an upstream error. Structured data
// (API status codes, net errors) wins over message markers; auth beats rate
// limiting, which beats timeouts, which beat connection failures.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return UpstreamAuth
		case apiErr.StatusCode == http.StatusTooManyRequests || strings.EqualFold(apiErr.Code, "rate_limit_exceeded"):
			return UpstreamRateLimit
		case apiErr.StatusCode == http.StatusRequestTimeout || apiErr.StatusCode == http.StatusGatewayTimeout:
			return UpstreamTimeout
		default:
			return Internal
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return UpstreamTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return UpstreamTimeout
	}

	if kind := classifyMessage(err.Error()); kind != "" {
		return kind
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return UpstreamConnection
	}
	return Internal
}

var markers = []struct {
	kind Kind
	re   *regexp.Regexp
}{
	{UpstreamAuth, regexp.MustCompile(`\b(401|403)\b|unauthori[sz]ed|invalid api key|incorrect api key|authentication|api key not configured`)},
	{UpstreamRateLimit, regexp.MustCompile(`\b429\b|rate.?limit|too many requests|quota`)},
	{UpstreamTimeout, regexp.MustCompile(`timeout|timed out|deadline exceeded`)},
	{UpstreamConnection, regexp.MustCompile(`connection refused|connection reset|no such host|network is unreachable|broken pipe|\beof\b|dial tcp`)},
}

func classifyMessage(msg string) Kind {
	msg = strings.ToLower(msg)
	for _, m := range markers {
		if m.re.MatchString(msg) {
			return m.kind
		}
	}
	return ""
}

// Describe returns a client-facing message for a failed LLM call.
func Describe(kind Kind) string {
	switch kind {
	case UpstreamAuth:
		return "LLM API authentication failed, please check the API key configuration"
	case UpstreamRateLimit:
		return "LLM API rate limit reached, please try again later"
	case UpstreamTimeout:
		return "LLM API request timed out, please try again later"
	case UpstreamConnection:
		return "could not connect to the LLM API, please check the network connection"
	case MalformedResponse:
		return "LLM API returned an empty response"
	default:
		return "an unexpected error occurred while contacting the LLM API"
	}
}
