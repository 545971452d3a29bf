package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ferrors "github.com/docpress/docpress/internal/foundation/errors"
)

// Do runs fn under the policy, sleeping between attempts per Delay. Errors
// classified as non-retryable stop immediately; unclassified errors are
// treated as transient. Context cancellation aborts the wait.
func Do(ctx context.Context, p Policy, op string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("Retrying operation",
				slog.String("operation", op),
				slog.Int("attempt", attempt),
				slog.Int("max_retries", p.MaxRetries))
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if classified, ok := ferrors.AsClassified(err); ok && !classified.CanRetry() {
			return err
		}
		if attempt == p.MaxRetries {
			break
		}

		select {
		case <-time.After(p.Delay(attempt + 1)):
		case <-ctx.Done():
			return fmt.Errorf("%s aborted: %w", op, ctx.Err())
		}
	}
	return fmt.Errorf("%s failed after %d retries: %w", op, p.MaxRetries, lastErr)
}
