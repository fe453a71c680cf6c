package gemini

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/grounder-cli/internal/core/domain"
	"github.com/custodia-labs/grounder-cli/internal/logger"
)

// Retry schedule for the assistant transport path.
const (
	retryAttempts   = 3
	retryBackoff    = 4 * time.Second
	retryBackoffMax = 60 * time.Second
)

// transientError marks a failure worth retrying: 5xx responses and generic
// network errors. Rate limits carry domain.ErrRateLimited instead.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// retryable reports whether an error is worth another attempt.
func retryable(err error) bool {
	var transient *transientError
	return errors.Is(err, domain.ErrRateLimited) || errors.As(err, &transient)
}

// withRetry runs fn up to retryAttempts times, sleeping with exponential
// backoff between attempts, and gives up early on non-retryable errors.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	backoff := retryBackoff / time.Second * c.backoffUnit
	maxBackoff := retryBackoffMax / time.Second * c.backoffUnit

	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
		if attempt == retryAttempts {
			break
		}

		logger.Warn("assistant attempt %d/%d failed, retrying in %s: %v", attempt, retryAttempts, backoff, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return err
}
