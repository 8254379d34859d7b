package ai

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
	"resumatch/internal/errors"
)

// Backoff bounds for retried backend calls.
var (
	retryBaseDelay = time.Second
	retryMaxDelay  = 30 * time.Second
)

// WithRetry runs fn up to maxRetries+1 times, backing off exponentially with
// jitter between attempts. Only errors accepted by IsRetryableError are retried.
func WithRetry[T any](ctx context.Context, operation string, maxRetries int, logger *errors.Logger, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(backoffDelay(attempt)):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		if !IsRetryableError(err) {
			logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", maxRetries+1)

	return zero, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, maxRetries, lastErr)
}

// backoffDelay returns 2^(attempt-1) base delays plus up to 10% jitter, capped.
func backoffDelay(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * retryBaseDelay
	jitter := time.Duration(0)
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if jitterBig, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(jitterBig.Int64())
		}
	}
	return min(baseDelay+jitter, retryMaxDelay)
}

// IsRetryableError determines if an error should trigger a retry
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	// Timeouts, refused connections and resets are all worth another attempt.
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	if code, ok := statusCode(err); ok {
		return isRetryableStatus(code)
	}

	return false
}

func statusCode(err error) (int, bool) {
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		return genaiErr.Code, true
	}
	return 0, false
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// ClassifyError wraps a failed backend call in the matching AppError type:
// timeouts and retryable failures are transient, an open breaker means the
// backend is unavailable, anything else is a plain AI error.
func ClassifyError(operation string, err error) *errors.AppError {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewBackendTransientError(errors.ErrCodeAITimeout,
			fmt.Sprintf("%s timed out", operation), err)
	case stderrors.Is(err, gobreaker.ErrOpenState), stderrors.Is(err, gobreaker.ErrTooManyRequests):
		return errors.NewBackendUnavailableError(errors.ErrCodeAIServiceFailed,
			fmt.Sprintf("%s backend is temporarily unavailable", operation), err)
	case IsRetryableError(err):
		return errors.NewBackendTransientError(errors.ErrCodeAIServiceFailed,
			fmt.Sprintf("%s failed with a transient error", operation), err)
	default:
		return errors.NewAIError(errors.ErrCodeAIServiceFailed,
			fmt.Sprintf("%s failed", operation), err)
	}
}
