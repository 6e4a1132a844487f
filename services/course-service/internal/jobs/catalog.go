package jobs

import "time"

// Event names
const (
	EventUserCreate       = "user.create"
	EventNotesGenerate    = "notes.generate"
	EventStudyTypeContent = "studyType.content"
)

// Queue names consumed by the worker
const (
	QueueGeneration = "generation"
	QueueDefault    = "default"
)

// EventSpec describes how an event is delivered
type EventSpec struct {
	// Retries is how many times a failed handler run is redelivered
	Retries int
	Queue   string
	// UniqueFor rejects an identical event while an earlier one is queued or running.
	// Zero disables the check.
	UniqueFor time.Duration
}

// Catalog lists every event the bus accepts
var Catalog = map[string]EventSpec{
	EventUserCreate:       {Retries: 1, Queue: QueueDefault},
	EventNotesGenerate:    {Retries: 1, Queue: QueueGeneration, UniqueFor: time.Hour},
	EventStudyTypeContent: {Retries: 1, Queue: QueueGeneration},
}
