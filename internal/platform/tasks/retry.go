package tasks

import (
	"errors"
	"math"
	"time"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// maxAttempts is spec.md §4.7's application-level retry ceiling, distinct
// from Kafka's own delivery redelivery.
const maxAttempts = 200

const maxBackoff = 5 * time.Minute

// backoff computes the exponential delay before retrying attempt+1, for
// an UnexpectedError outcome.
func backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

// retryAfterOf extracts the rate limiter's requested delay from a
// KindRateLimited error, defaulting to 1s per spec.md §4.8.
func retryAfterOf(err error) time.Duration {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.RetryAfter > 0 {
		return appErr.RetryAfter
	}
	return time.Second
}
