package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// InlineBus delivers events synchronously to a Dispatcher, redelivering
// failed runs up to the catalog retry budget. It is used in tests and local tools.
type InlineBus struct {
	dispatcher *Dispatcher
}

// NewInlineBus creates a synchronous bus
func NewInlineBus(d *Dispatcher) *InlineBus {
	return &InlineBus{dispatcher: d}
}

// Emit implements Bus
func (b *InlineBus) Emit(ctx context.Context, name string, payload any) (string, error) {
	spec, ok := Catalog[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s payload: %w", name, err)
	}

	eventID := uuid.NewString()
	for attempt := 0; attempt <= spec.Retries; attempt++ {
		err = b.dispatcher.Dispatch(ctx, eventID, name, attempt, data)
		if err == nil || errors.Is(err, asynq.SkipRetry) {
			break
		}
	}

	return eventID, err
}

// MemoryCheckpointStore keeps checkpoints in memory
type MemoryCheckpointStore struct {
	mu    sync.Mutex
	steps map[string][]byte
}

// NewMemoryCheckpointStore creates an empty in-memory store
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{steps: make(map[string][]byte)}
}

// Get implements CheckpointStore
func (s *MemoryCheckpointStore) Get(ctx context.Context, eventID, step string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.steps[eventID+"/"+step]
	return out, ok, nil
}

// Save implements CheckpointStore
func (s *MemoryCheckpointStore) Save(ctx context.Context, eventID, step string, output []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps[eventID+"/"+step] = output
	return nil
}

// Len returns the number of stored checkpoints
func (s *MemoryCheckpointStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}
