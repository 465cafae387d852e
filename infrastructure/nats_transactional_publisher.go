package infrastructure

import (
	"context"

	"clanhall/domain/events"
	"clanhall/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// NATSTransactionalPublisher queues events during a unit of work. Flush
// after a successful commit delivers them; Discard after rollback drops
// them, so collaborators never see events for state that was rolled back.
type NATSTransactionalPublisher struct {
	realPublisher interfaces.EventPublisher
	pending       []events.Event
}

// NewNATSTransactionalPublisher creates a new transactional publisher
func NewNATSTransactionalPublisher(realPublisher interfaces.EventPublisher) interfaces.TransactionalEventPublisher {
	return &NATSTransactionalPublisher{
		realPublisher: realPublisher,
		pending:       make([]events.Event, 0),
	}
}

// Publish stores an event in the pending queue without immediately publishing
func (p *NATSTransactionalPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

// Flush publishes all pending events. Called after commit; a single failed
// event is logged and does not block the rest.
func (p *NATSTransactionalPublisher) Flush(ctx context.Context) error {
	for _, event := range p.pending {
		if err := p.realPublisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}
	p.pending = p.pending[:0]
	return nil
}

// Discard drops all pending events. Called after rollback.
func (p *NATSTransactionalPublisher) Discard() {
	if len(p.pending) > 0 {
		log.WithField("discardedCount", len(p.pending)).Debug("Discarding pending events after rollback")
	}
	p.pending = p.pending[:0]
}
