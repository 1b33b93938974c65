package services

import (
	"context"
	"time"

	"model-eval/eventbus"
	"model-eval/events"
	"model-eval/internal/logger"
	"model-eval/trace"
)

// publishTimeout bounds how long a request waits on the broker after its
// writes are committed.
var publishTimeout = 2 * time.Second

// publish emits a domain event. Failures are logged and never reach the caller.
// The wait is detached from request cancellation and capped by publishTimeout.
func publish(ctx context.Context, bus eventbus.Publisher, topic eventbus.Topic, id string, event any) {
	if bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	fields := logger.Fields(trace.Fields(ctx))
	fields["topic"] = topic.Base()

	data, eventType, err := events.SerializeEvent(event)
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("event serialize failed", fields)
		return
	}
	fields["event_type"] = string(eventType)

	err = bus.Publish(ctx, topic.Base(), eventbus.Event{
		ID:      id,
		Type:    string(eventType),
		Payload: data,
	})
	if err != nil {
		fields["error"] = err.Error()
		logger.WarnWithFields("event publish failed", fields)
		return
	}
	logger.DebugWithFields("event published", fields)
}
