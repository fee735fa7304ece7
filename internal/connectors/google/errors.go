package google

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"google.golang.org/api/googleapi"
)

// Common Google API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("google: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("google: resource not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("google: rate limit exceeded")

	// ErrQuotaExceeded indicates the daily API quota was exceeded.
	ErrQuotaExceeded = errors.New("google: quota exceeded")

	// ErrTokenMissing indicates no cached OAuth token exists.
	ErrTokenMissing = errors.New("google: no cached token (run 'pulse-brief auth gmail')")
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || hasCode(err, http.StatusUnauthorized)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || hasCode(err, http.StatusNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
// Gmail reports per-user rate limits as 403 with a rateLimitExceeded reason.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) || hasCode(err, http.StatusTooManyRequests) {
		return true
	}
	return hasReason(err, "rateLimitExceeded", "userRateLimitExceeded")
}

// RetryAfter returns the Retry-After delay in seconds carried by err, or 0.
func RetryAfter(err error) int {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	n, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || n < 0 {
		return 0
	}
	return n
}

// WrapError converts a Google API error to a more specific error.
// The API message is kept; errors.Is matches the sentinel.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	var sentinel error
	switch {
	case gerr.Code == http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case IsRateLimited(err):
		sentinel = ErrRateLimited
	case hasReason(err, "quotaExceeded", "dailyLimitExceeded"):
		sentinel = ErrQuotaExceeded
	case gerr.Code == http.StatusForbidden:
		sentinel = ErrForbidden
	case gerr.Code == http.StatusNotFound:
		sentinel = ErrNotFound
	default:
		return err
	}

	if gerr.Message == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, gerr.Message)
}

func hasCode(err error, code int) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == code
}

func hasReason(err error, reasons ...string) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	for _, item := range gerr.Errors {
		for _, r := range reasons {
			if item.Reason == r {
				return true
			}
		}
	}
	return false
}
