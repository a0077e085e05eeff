package pipeline

import (
	"context"
	"encoding/json"
	"time"
)

// EventType identifies a progress event variant.
type EventType string

// Progress event types emitted during a pipeline run.
const (
	EventPipelineStarted   EventType = "pipeline_started"
	EventStageStarted      EventType = "stage_started"
	EventStageCompleted    EventType = "stage_completed"
	EventPipelineCompleted EventType = "pipeline_completed"
	EventError             EventType = "error"
)

// Event is a single progress update. Progress variants populate Data;
// the error variant populates Error and Details instead.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
	Details   []string       `json:"details,omitempty"`
}

// NDJSON serializes the event as one newline-terminated JSON line.
func (e Event) NDJSON() ([]byte, error) {
	line, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

// Terminal reports whether the event ends a run.
func (e Event) Terminal() bool {
	return e.Type == EventPipelineCompleted || e.Type == EventError
}

func progressEvent(t EventType, data map[string]any) Event {
	return Event{
		Type:      t,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func errorEvent(message string, details []string) Event {
	return Event{
		Type:      EventError,
		Timestamp: time.Now().UTC(),
		Error:     message,
		Details:   details,
	}
}

// emit delivers an event unless the run context has ended. Delivery is
// at-least-once from the consumer's perspective; an abandoned consumer
// cancels the context and emission stops.
func emit(ctx context.Context, events chan<- Event, e Event) {
	select {
	case events <- e:
	case <-ctx.Done():
	}
}
