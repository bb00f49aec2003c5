package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"activity-service/internal/models"
	"activity-service/internal/observability"
)

// Routing keys consumed by the notification dispatcher.
const (
	RouteActivityCreated = "activity.created"
	RouteMessageCreated  = "message.created"
)

// Envelope wraps every emitted event.
type Envelope struct {
	SchemaVersion int    `json:"schema_version"`
	EventType     string `json:"event_type"`
	OccurredAt    string `json:"occurred_at"`
	Service       string `json:"service"`
	Environment   string `json:"environment"`
	RequestID     string `json:"request_id"`
	Payload       any    `json:"payload"`
}

// Emitter builds envelopes and hands them to the publisher. All emits are
// fire-and-forget: errors are logged and counted, never returned.
type Emitter struct {
	publisher   Publisher
	service     string
	environment string
	log         zerolog.Logger
}

// NewEmitter constructs an Emitter.
func NewEmitter(publisher Publisher, service, environment string, log zerolog.Logger) *Emitter {
	return &Emitter{
		publisher:   publisher,
		service:     service,
		environment: environment,
		log:         log,
	}
}

func (e *Emitter) emit(ctx context.Context, routingKey, eventType, requestID string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := Envelope{
		SchemaVersion: 1,
		EventType:     eventType,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		Payload:       payload,
	}

	if err := e.publisher.Publish(ctx, routingKey, envelope); err != nil {
		observability.IncPublishError()
		e.log.Warn().Err(err).Str("event_type", eventType).Msg("event publish failed")
	}
}

// ActivityCreated announces a new activity.
func (e *Emitter) ActivityCreated(ctx context.Context, requestID string, activity models.Activity) {
	e.emit(ctx, RouteActivityCreated, "activity_created", requestID, activity)
}

// MessageCreated announces a new chat message.
func (e *Emitter) MessageCreated(ctx context.Context, requestID string, msg models.Message) {
	e.emit(ctx, RouteMessageCreated, "message_created", requestID, msg)
}
