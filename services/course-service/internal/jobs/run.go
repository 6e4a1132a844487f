package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// CheckpointStore persists the output of completed steps per event
type CheckpointStore interface {
	// Get returns the stored output of a step and whether it exists
	Get(ctx context.Context, eventID, step string) ([]byte, bool, error)
	// Save stores the output of a completed step
	Save(ctx context.Context, eventID, step string, output []byte) error
}

// Run is one delivery of an event to its handler
type Run struct {
	EventID string
	Name    string
	// Attempt is 0 on first delivery
	Attempt int
	Payload []byte

	store  CheckpointStore
	logger *zap.Logger
}

// Decode unmarshals the event payload into v
func (r *Run) Decode(v any) error {
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return Permanent(fmt.Errorf("failed to decode %s payload: %w", r.Name, err))
	}
	return nil
}

// Step runs fn once per event. When a redelivered event reaches a step that
// already completed, fn is skipped.
func (r *Run) Step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	_, err := StepResult(ctx, r, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// StepResult runs fn once per event and checkpoints its JSON encoded result.
// On redelivery the stored result is returned without calling fn.
func StepResult[T any](ctx context.Context, r *Run, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T

	stored, ok, err := r.store.Get(ctx, r.EventID, name)
	if err != nil {
		return result, fmt.Errorf("failed to load checkpoint %q: %w", name, err)
	}
	if ok {
		if err := json.Unmarshal(stored, &result); err != nil {
			return result, fmt.Errorf("failed to decode checkpoint %q: %w", name, err)
		}
		r.logger.Debug("step already completed, skipping",
			zap.String("event_id", r.EventID),
			zap.String("step", name),
		)
		return result, nil
	}

	result, err = fn(ctx)
	if err != nil {
		return result, fmt.Errorf("step %q: %w", name, err)
	}

	output, err := json.Marshal(result)
	if err != nil {
		return result, fmt.Errorf("failed to encode checkpoint %q: %w", name, err)
	}
	if err := r.store.Save(ctx, r.EventID, name, output); err != nil {
		return result, fmt.Errorf("failed to save checkpoint %q: %w", name, err)
	}

	return result, nil
}
