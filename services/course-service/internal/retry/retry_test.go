package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studymate/backend/services/course-service/internal/generation"
	"go.uber.org/zap"
)

func TestPolicy_Decide(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name     string
		class    generation.Class
		attempt  int
		expected Decision
	}{
		{name: "rate limit first", class: generation.ClassRateLimited, attempt: 0, expected: Decision{Retry: true, Delay: 30 * time.Second}},
		{name: "rate limit second", class: generation.ClassRateLimited, attempt: 1, expected: Decision{Retry: true, Delay: 60 * time.Second}},
		{name: "rate limit third", class: generation.ClassRateLimited, attempt: 2, expected: Decision{Retry: true, Delay: 120 * time.Second}},
		{name: "rate limit exhausted", class: generation.ClassRateLimited, attempt: 3, expected: Decision{}},
		{name: "server error first", class: generation.ClassServiceUnavailable, attempt: 0, expected: Decision{Retry: true, Delay: 20 * time.Second}},
		{name: "server error second", class: generation.ClassServiceUnavailable, attempt: 1, expected: Decision{Retry: true, Delay: 30 * time.Second}},
		{name: "server error third", class: generation.ClassServiceUnavailable, attempt: 2, expected: Decision{Retry: true, Delay: 45 * time.Second}},
		{name: "unauthorized", class: generation.ClassUnauthorized, attempt: 0, expected: Decision{}},
		{name: "unknown", class: generation.ClassUnknown, attempt: 0, expected: Decision{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, policy.Decide(tt.class, tt.attempt))
		})
	}
}

type recordingSleeper struct {
	delays []time.Duration
	err    error
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return s.err
}

func failing(class generation.Class) error {
	return &generation.Error{Class: class, Err: errors.New("provider failure")}
}

func TestRunner_Do(t *testing.T) {
	tests := []struct {
		name           string
		errs           []error
		expectError    bool
		expectedCalls  int
		expectedDelays []time.Duration
	}{
		{
			name:           "rate limited until exhausted",
			errs:           []error{failing(generation.ClassRateLimited), failing(generation.ClassRateLimited), failing(generation.ClassRateLimited), failing(generation.ClassRateLimited)},
			expectError:    true,
			expectedCalls:  4,
			expectedDelays: []time.Duration{30 * time.Second, 5 * time.Second, 60 * time.Second, 5 * time.Second, 120 * time.Second, 5 * time.Second},
		},
		{
			name:           "server errors until exhausted",
			errs:           []error{failing(generation.ClassServiceUnavailable), failing(generation.ClassServiceUnavailable), failing(generation.ClassServiceUnavailable), failing(generation.ClassServiceUnavailable)},
			expectError:    true,
			expectedCalls:  4,
			expectedDelays: []time.Duration{20 * time.Second, 5 * time.Second, 30 * time.Second, 5 * time.Second, 45 * time.Second, 5 * time.Second},
		},
		{
			name:           "recovers after one rate limit",
			errs:           []error{failing(generation.ClassRateLimited), nil},
			expectedCalls:  2,
			expectedDelays: []time.Duration{30 * time.Second, 5 * time.Second},
		},
		{
			name:          "unknown is not retried",
			errs:          []error{failing(generation.ClassUnknown)},
			expectError:   true,
			expectedCalls: 1,
		},
		{
			name:          "unclassified error is not retried",
			errs:          []error{errors.New("boom")},
			expectError:   true,
			expectedCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sleeper := &recordingSleeper{}
			runner := NewRunner(DefaultPolicy(), sleeper.sleep, zap.NewNop())

			calls := 0
			text, err := runner.Do(context.Background(), func(ctx context.Context) (string, error) {
				err := tt.errs[calls]
				calls++
				if err != nil {
					return "", err
				}
				return "done", nil
			})

			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "done", text)
			}
			assert.Equal(t, tt.expectedCalls, calls)
			assert.Equal(t, tt.expectedDelays, sleeper.delays)
		})
	}
}

func TestRunner_Do_ContextCancelledDuringSleep(t *testing.T) {
	sleeper := &recordingSleeper{err: context.Canceled}
	runner := NewRunner(DefaultPolicy(), sleeper.sleep, zap.NewNop())

	calls := 0
	_, err := runner.Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "", failing(generation.ClassRateLimited)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRunner_Do_ContextAlreadyDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sleeper := &recordingSleeper{}
	runner := NewRunner(DefaultPolicy(), sleeper.sleep, zap.NewNop())

	_, err := runner.Do(ctx, func(ctx context.Context) (string, error) {
		return "", failing(generation.ClassRateLimited)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sleeper.delays)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}
