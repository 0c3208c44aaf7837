package failures

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"api 401", &openai.Error{StatusCode: http.StatusUnauthorized}, UpstreamAuth},
		{"api 403", &openai.Error{StatusCode: http.StatusForbidden}, UpstreamAuth},
		{"api 429", &openai.Error{StatusCode: http.StatusTooManyRequests}, UpstreamRateLimit},
		{"api 504", &openai.Error{StatusCode: http.StatusGatewayTimeout}, UpstreamTimeout},
		{"context deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), UpstreamTimeout},
		{"dial error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}, UpstreamConnection},
		{"dns error", &net.DNSError{Err: "server misbehaving", Name: "api.example.com"}, UpstreamConnection},
		{"auth marker", errors.New("Error code: 401 - invalid api key"), UpstreamAuth},
		{"rate marker", errors.New("Too Many Requests"), UpstreamRateLimit},
		{"timeout marker", errors.New("request timed out"), UpstreamTimeout},
		{"connection marker", errors.New("read tcp: connection reset by peer"), UpstreamConnection},
		{"already classified", Wrap(MalformedResponse, "empty", errors.New("no choices")), MalformedResponse},
		{"unknown", errors.New("something odd"), Internal},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClassifyPrefersMostSpecificMarker(t *testing.T) {
	err := errors.New("connection reset while handling 401 unauthorized")
	assert.Equal(t, UpstreamAuth, Classify(err))
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation.Status())
	assert.Equal(t, http.StatusBadRequest, Configuration.Status())
	assert.Equal(t, http.StatusNotFound, NotFound.Status())
	assert.Equal(t, http.StatusUnauthorized, UpstreamAuth.Status())
	assert.Equal(t, http.StatusTooManyRequests, UpstreamRateLimit.Status())
	assert.Equal(t, http.StatusInternalServerError, UpstreamTimeout.Status())
	assert.Equal(t, http.StatusInternalServerError, UpstreamConnection.Status())
	assert.Equal(t, http.StatusInternalServerError, MalformedResponse.Status())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Internal, "failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")
}
