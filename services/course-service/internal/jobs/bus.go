package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

var (
	// ErrUnknownEvent is returned for event names missing from the Catalog
	ErrUnknownEvent = errors.New("unknown event")
	// ErrDuplicateEvent is returned when an identical unique event is still queued or running
	ErrDuplicateEvent = errors.New("duplicate event")
)

// Bus publishes named events with a JSON payload
type Bus interface {
	// Emit publishes an event and returns its id.
	// Delivery is at least once, handlers must tolerate redelivery.
	Emit(ctx context.Context, name string, payload any) (string, error)
}

// enqueuer is the part of *asynq.Client the bus needs
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqBus publishes events as asynq tasks
type AsynqBus struct {
	client enqueuer
}

// NewAsynqBus creates a bus backed by an asynq client
func NewAsynqBus(client enqueuer) *AsynqBus {
	return &AsynqBus{client: client}
}

// Emit implements Bus
func (b *AsynqBus) Emit(ctx context.Context, name string, payload any) (string, error) {
	spec, ok := Catalog[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s payload: %w", name, err)
	}

	opts := []asynq.Option{
		asynq.TaskID(uuid.NewString()),
		asynq.MaxRetry(spec.Retries),
		asynq.Queue(spec.Queue),
	}
	if spec.UniqueFor > 0 {
		opts = append(opts, asynq.Unique(spec.UniqueFor))
	}

	info, err := b.client.EnqueueContext(ctx, asynq.NewTask(name, data), opts...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateEvent, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s: %w", name, err)
	}

	return info.ID, nil
}
