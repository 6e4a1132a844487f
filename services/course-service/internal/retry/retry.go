package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/studymate/backend/services/course-service/internal/generation"
	"go.uber.org/zap"
)

// Policy holds the backoff parameters for generation calls
type Policy struct {
	MaxRetries      int
	RateLimitBase   time.Duration
	ServerErrorBase time.Duration
	// Pause is added after every backoff delay
	Pause time.Duration
}

// DefaultPolicy returns the production backoff policy
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      3,
		RateLimitBase:   30 * time.Second,
		ServerErrorBase: 20 * time.Second,
		Pause:           5 * time.Second,
	}
}

// Decision is the outcome of Decide
type Decision struct {
	Retry bool
	Delay time.Duration
}

// Decide returns whether a call that failed with class on the given attempt (0 based) should be retried.
// Rate limits back off as 2^n times RateLimitBase, server errors as 1.5^n times ServerErrorBase.
func (p Policy) Decide(class generation.Class, attempt int) Decision {
	if attempt >= p.MaxRetries {
		return Decision{}
	}

	switch class {
	case generation.ClassRateLimited:
		return Decision{Retry: true, Delay: scale(p.RateLimitBase, math.Pow(2, float64(attempt)))}
	case generation.ClassServiceUnavailable:
		return Decision{Retry: true, Delay: scale(p.ServerErrorBase, math.Pow(1.5, float64(attempt)))}
	default:
		return Decision{}
	}
}

func scale(base time.Duration, factor float64) time.Duration {
	return time.Duration(float64(base) * factor)
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Runner repeats a generation call according to a Policy
type Runner struct {
	policy Policy
	sleep  Sleeper
	logger *zap.Logger
}

// NewRunner creates a Runner. A nil sleeper uses Sleep.
func NewRunner(policy Policy, sleep Sleeper, logger *zap.Logger) *Runner {
	if sleep == nil {
		sleep = Sleep
	}
	return &Runner{policy: policy, sleep: sleep, logger: logger}
}

// Do calls fn until it succeeds, fails with a non retryable class or the retry budget is spent.
// Context errors are returned unchanged.
func (r *Runner) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	for attempt := 0; ; attempt++ {
		text, err := fn(ctx)
		if err == nil {
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		class := generation.ClassOf(err)
		decision := r.policy.Decide(class, attempt)
		if !decision.Retry {
			return "", err
		}

		r.logger.Warn("generation call failed, backing off",
			zap.Stringer("class", class),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", decision.Delay),
			zap.Error(err),
		)

		if err := r.sleep(ctx, decision.Delay); err != nil {
			return "", err
		}
		if err := r.sleep(ctx, r.policy.Pause); err != nil {
			return "", err
		}
	}
}
