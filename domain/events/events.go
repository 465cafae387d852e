package events

import "clanhall/domain/entities"

// EventType represents different types of events in the system.
type EventType string

const (
	EventTypeWalletChange       EventType = "wallet_change"
	EventTypeBidPlaced          EventType = "bid_placed"
	EventTypeOutbid             EventType = "outbid"
	EventTypeTimerExtended      EventType = "timer_extended"
	EventTypeLotFinished        EventType = "lot_finished"
	EventTypeAuctionUpdated     EventType = "auction_updated"
	EventTypeRandomizerStarted  EventType = "randomizer_started"
	EventTypeRandomizerFinished EventType = "randomizer_finished"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
}

// WalletChangeEvent represents a ledger movement that occurred.
type WalletChangeEvent struct {
	MemberID        int64
	ClanID          int64
	OldBalance      int64
	NewBalance      int64
	TransactionType entities.TransactionType
	ChangeAmount    int64
}

func (e WalletChangeEvent) Type() EventType { return EventTypeWalletChange }

// BidPlacedEvent represents an accepted bid on a lot.
type BidPlacedEvent struct {
	BidID     int64
	LotID     int64
	AuctionID int64
	MemberID  int64
	Amount    int64
	IsAutoBid bool
}

func (e BidPlacedEvent) Type() EventType { return EventTypeBidPlaced }

// OutbidEvent notifies the previous leader that their hold was released.
type OutbidEvent struct {
	LotID          int64
	OutbidMemberID int64
	NewLeaderID    int64
	NewPrice       int64
}

func (e OutbidEvent) Type() EventType { return EventTypeOutbid }

// TimerExtendedEvent represents an anti-sniper deadline extension.
type TimerExtendedEvent struct {
	LotID     int64
	AuctionID int64
	NewEndsAt int64 // unix seconds
}

func (e TimerExtendedEvent) Type() EventType { return EventTypeTimerExtended }

// LotFinishedEvent represents a lot reaching a terminal state.
type LotFinishedEvent struct {
	LotID          int64
	AuctionID      int64
	Outcome        entities.LotOutcome
	WinnerMemberID *int64
	FinalPrice     int64
}

func (e LotFinishedEvent) Type() EventType { return EventTypeLotFinished }

// AuctionUpdatedEvent represents an auction lifecycle transition.
type AuctionUpdatedEvent struct {
	AuctionID int64
	ClanID    int64
	OldStatus entities.AuctionStatus
	NewStatus entities.AuctionStatus
}

func (e AuctionUpdatedEvent) Type() EventType { return EventTypeAuctionUpdated }

// RandomizerStartedEvent represents a new committed draw session.
type RandomizerStartedEvent struct {
	SessionID int64
	ClanID    int64
	ItemID    int64
	SeedHash  string
}

func (e RandomizerStartedEvent) Type() EventType { return EventTypeRandomizerStarted }

// RandomizerFinishedEvent represents a completed draw.
type RandomizerFinishedEvent struct {
	SessionID      int64
	ClanID         int64
	WinnerMemberID int64
	Roll           float64
}

func (e RandomizerFinishedEvent) Type() EventType { return EventTypeRandomizerFinished }
