package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// Retry policy for mutations. Delays grow base * factor^attempt, giving
// 1s, 2s, 4s between the four total attempts.
const (
	maxAttempts = 4
	baseDelay   = 1 * time.Second
	delayFactor = 2.0
)

// MutationFunc performs one attempt of a mutation. The pipeline passes the
// same idempotency key to every attempt of a submission; implementations
// must rebuild their request from scratch per call.
type MutationFunc func(ctx context.Context, idempotencyKey string) error

// Pipeline runs mutations with bounded retries. Only transport-level
// failures (timeouts, refused or reset connections, unreachable hosts) are
// retried; any response from the server, including 5xx, means the request
// arrived and is not retried blindly.
type Pipeline struct {
	logger    *slog.Logger
	sleepFunc func(ctx context.Context, d time.Duration) error
	newKey    func() string
}

// NewPipeline creates a mutation pipeline.
func NewPipeline(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger:    logger,
		sleepFunc: sleepContext,
		newKey:    uuid.NewString,
	}
}

// Submit runs fn until it succeeds, fails permanently, or exhausts all
// attempts. A fresh idempotency key is generated per Submit call and held
// constant across its attempts, so server-side dedupe can collapse
// retransmissions of the same logical mutation.
func (p *Pipeline) Submit(ctx context.Context, op string, fn MutationFunc) error {
	key := p.newKey()

	for attempt := 0; ; attempt++ {
		err := fn(ctx, key)
		if err == nil {
			if attempt > 0 {
				p.logger.Info("mutation succeeded after retry",
					slog.String("op", op),
					slog.Int("attempts", attempt+1))
			}

			return nil
		}

		// A canceled context is never a retryable condition, even when
		// the underlying failure looks like a transport error.
		if ctx.Err() != nil {
			return fmt.Errorf("api: %s canceled: %w", op, ctx.Err())
		}

		if !isTransportError(err) {
			p.logger.Debug("mutation failed permanently",
				slog.String("op", op),
				slog.String("error", err.Error()))

			return err
		}

		if attempt >= maxAttempts-1 {
			return fmt.Errorf("api: %s failed after %d attempts: %w", op, maxAttempts, err)
		}

		delay := retryDelay(attempt)

		p.logger.Warn("transport error, retrying mutation",
			slog.String("op", op),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		if sleepErr := p.sleepFunc(ctx, delay); sleepErr != nil {
			return fmt.Errorf("api: %s canceled: %w", op, sleepErr)
		}
	}
}

// retryDelay returns the wait before the attempt after `attempt` (0-based).
func retryDelay(attempt int) time.Duration {
	return time.Duration(float64(baseDelay) * math.Pow(delayFactor, float64(attempt)))
}

// isTransportError reports whether err is a transport-level failure that
// never reached the server: timeout, DNS failure, refused/reset connection,
// or unreachable host/network. HTTP status errors carry an *APIError and
// are excluded by construction.
func isTransportError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EPIPE)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
