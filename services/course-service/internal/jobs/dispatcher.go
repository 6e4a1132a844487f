package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Handler processes one delivery of an event
type Handler func(ctx context.Context, run *Run) error

// Permanent marks err as not worth redelivering
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
}

// Dispatcher routes delivered events to registered handlers
type Dispatcher struct {
	handlers map[string]Handler
	store    CheckpointStore
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher that checkpoints steps in store
func NewDispatcher(store CheckpointStore, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		store:    store,
		logger:   logger,
	}
}

// Register binds a handler to an event from the Catalog
func (d *Dispatcher) Register(name string, h Handler) error {
	if _, ok := Catalog[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}
	if _, ok := d.handlers[name]; ok {
		return fmt.Errorf("handler for %s already registered", name)
	}
	d.handlers[name] = h
	return nil
}

// Dispatch runs the handler for one delivery
func (d *Dispatcher) Dispatch(ctx context.Context, eventID, name string, attempt int, payload []byte) error {
	h, ok := d.handlers[name]
	if !ok {
		return Permanent(fmt.Errorf("%w: %s", ErrUnknownEvent, name))
	}

	run := &Run{
		EventID: eventID,
		Name:    name,
		Attempt: attempt,
		Payload: payload,
		store:   d.store,
		logger:  d.logger,
	}

	d.logger.Info("Processing event",
		zap.String("event", name),
		zap.String("event_id", eventID),
		zap.Int("attempt", attempt),
	)

	if err := h(ctx, run); err != nil {
		d.logger.Error("Event handler failed",
			zap.String("event", name),
			zap.String("event_id", eventID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return err
	}

	d.logger.Info("Event processed", zap.String("event", name), zap.String("event_id", eventID))
	return nil
}

// ProcessTask adapts Dispatch to an asynq handler
func (d *Dispatcher) ProcessTask(ctx context.Context, t *asynq.Task) error {
	eventID, _ := asynq.GetTaskID(ctx)
	attempt, _ := asynq.GetRetryCount(ctx)
	return d.Dispatch(ctx, eventID, t.Type(), attempt, t.Payload())
}

// Mount registers every bound event on an asynq mux
func (d *Dispatcher) Mount(mux *asynq.ServeMux) {
	for name := range d.handlers {
		mux.HandleFunc(name, d.ProcessTask)
	}
}
