package infrastructure

import (
	"clanhall/domain/events"
	"clanhall/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// NoopEventPublisher drops all events. Used when no message bus is
// configured, e.g. in local development or tests.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a new no-op event publisher
func NewNoopEventPublisher() interfaces.EventPublisher {
	return &NoopEventPublisher{}
}

// Publish logs and discards the event
func (p *NoopEventPublisher) Publish(event events.Event) error {
	log.WithField("eventType", event.Type()).Debug("Event dropped (no publisher configured)")
	return nil
}
