package google

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func apiError(code int, reason string) *googleapi.Error {
	e := &googleapi.Error{Code: code, Message: "api says no", Header: http.Header{}}
	if reason != "" {
		e.Errors = []googleapi.ErrorItem{{Reason: reason}}
	}
	return e
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unauthorised", apiError(http.StatusUnauthorized, ""), ErrUnauthorized},
		{"forbidden", apiError(http.StatusForbidden, "insufficientPermissions"), ErrForbidden},
		{"rate limited 429", apiError(http.StatusTooManyRequests, ""), ErrRateLimited},
		{"rate limited 403", apiError(http.StatusForbidden, "userRateLimitExceeded"), ErrRateLimited},
		{"quota", apiError(http.StatusForbidden, "dailyLimitExceeded"), ErrQuotaExceeded},
		{"not found", apiError(http.StatusNotFound, ""), ErrNotFound},
		{"wrapped api error", fmt.Errorf("call: %w", apiError(http.StatusNotFound, "")), ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err)
			assert.True(t, errors.Is(got, tt.want), "got %v", got)
			assert.Contains(t, got.Error(), "api says no")
		})
	}
}

func TestWrapError_Passthrough(t *testing.T) {
	assert.Nil(t, WrapError(nil))

	plain := errors.New("dial tcp: refused")
	assert.Same(t, plain, WrapError(plain))

	server := apiError(http.StatusInternalServerError, "")
	assert.Equal(t, error(server), WrapError(server))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsUnauthorized(apiError(http.StatusUnauthorized, "")))
	assert.True(t, IsUnauthorized(ErrUnauthorized))
	assert.False(t, IsUnauthorized(apiError(http.StatusForbidden, "")))

	assert.True(t, IsNotFound(apiError(http.StatusNotFound, "")))
	assert.True(t, IsNotFound(fmt.Errorf("x: %w", ErrNotFound)))

	assert.True(t, IsRateLimited(apiError(http.StatusTooManyRequests, "")))
	assert.True(t, IsRateLimited(apiError(http.StatusForbidden, "rateLimitExceeded")))
	assert.False(t, IsRateLimited(apiError(http.StatusForbidden, "insufficientPermissions")))
	assert.False(t, IsRateLimited(errors.New("other")))
}

func TestRetryAfter(t *testing.T) {
	e := apiError(http.StatusTooManyRequests, "")
	assert.Equal(t, 0, RetryAfter(e))

	e.Header.Set("Retry-After", "12")
	assert.Equal(t, 12, RetryAfter(e))
	assert.Equal(t, 12, RetryAfter(fmt.Errorf("wrapped: %w", e)))

	e.Header.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	assert.Equal(t, 0, RetryAfter(e))

	assert.Equal(t, 0, RetryAfter(errors.New("plain")))
}
