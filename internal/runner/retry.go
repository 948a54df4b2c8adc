package runner

import (
	"context"
	"time"

	"github.com/harrison/updatectl/internal/logger"
)

// Executor runs a single process invocation. Runner implements it; tests
// substitute fakes.
type Executor interface {
	Run(ctx context.Context, cmd Command) (*ProcessResult, error)
}

// RunWithRetry invokes ex up to maxRetries+1 times, sleeping delay between
// attempts and returning on the first success.
//
// When every attempt completes but fails, the last ProcessResult is returned
// with a nil error so the caller can still inspect the exit code and timeout
// status. An error from a non-final attempt is logged and retried; an error
// on the final attempt propagates.
func RunWithRetry(ctx context.Context, ex Executor, cmd Command, maxRetries int, delay time.Duration, log *logger.Logger) (*ProcessResult, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	attempts := maxRetries + 1

	var last *ProcessResult
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := ex.Run(ctx, cmd)
		if err != nil {
			if attempt == attempts {
				return nil, err
			}
			if log != nil {
				log.Warn("runner", "attempt %d/%d for %s failed: %v", attempt, attempts, cmd.FilePath, err)
			}
		} else {
			if result.Success {
				return result, nil
			}
			last = result
			if log != nil {
				log.Warn("runner", "attempt %d/%d for %s exited with code %d", attempt, attempts, cmd.FilePath, result.ExitCode)
			}
		}

		if attempt < attempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return last, ctx.Err()
			}
		}
	}

	return last, nil
}
