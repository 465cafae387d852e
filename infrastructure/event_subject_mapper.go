package infrastructure

import (
	"fmt"

	"clanhall/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeWalletChange:
		return "wallets.balance_changed"
	case events.EventTypeBidPlaced:
		return "auctions.bid_placed"
	case events.EventTypeOutbid:
		return "auctions.outbid"
	case events.EventTypeTimerExtended:
		return "auctions.timer_extended"
	case events.EventTypeLotFinished:
		return "auctions.lot_finished"
	case events.EventTypeAuctionUpdated:
		return "auctions.updated"
	case events.EventTypeRandomizerStarted:
		return "randomizer.started"
	case events.EventTypeRandomizerFinished:
		return "randomizer.finished"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"wallets.balance_changed",
		"auctions.bid_placed",
		"auctions.outbid",
		"auctions.timer_extended",
		"auctions.lot_finished",
		"auctions.updated",
		"randomizer.started",
		"randomizer.finished",
	}
}
