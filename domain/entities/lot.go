package entities

import "time"

// LotStatus represents the lifecycle state of a lot.
type LotStatus string

const (
	LotStatusPending LotStatus = "pending"
	LotStatusActive  LotStatus = "active"
	LotStatusSold    LotStatus = "sold"
	LotStatusUnsold  LotStatus = "unsold"
)

// LotOutcome is the terminal result recorded for a lot.
type LotOutcome string

const (
	LotOutcomeSold   LotOutcome = "sold"
	LotOutcomeUnsold LotOutcome = "unsold"
)

// Lot is one sellable unit inside an auction. At most one lot per auction is
// active at any time; lots resolve strictly in sort order.
type Lot struct {
	ID             int64      `db:"id"`
	AuctionID      int64      `db:"auction_id"`
	ItemID         int64      `db:"item_id"`
	Quantity       int64      `db:"quantity"`
	StartPrice     int64      `db:"start_price"`
	MinStep        int64      `db:"min_step"`
	CurrentPrice   int64      `db:"current_price"` // zero until the first bid
	EndsAt         *time.Time `db:"ends_at"`
	Status         LotStatus  `db:"status"`
	WinnerMemberID *int64     `db:"winner_member_id"`
	SortOrder      int        `db:"sort_order"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// MinBid returns the minimum acceptable next bid: the start price when no bid
// has been placed, otherwise the current price plus one step.
func (l *Lot) MinBid() int64 {
	if l.WinnerMemberID == nil {
		return l.StartPrice
	}
	return l.CurrentPrice + l.MinStep
}

// IsActive returns true while the lot accepts bids.
func (l *Lot) IsActive() bool {
	return l.Status == LotStatusActive
}

// IsTerminal returns true once the lot has resolved.
func (l *Lot) IsTerminal() bool {
	return l.Status == LotStatusSold || l.Status == LotStatusUnsold
}

// DeadlinePassed reports whether the lot's deadline is at or before now.
func (l *Lot) DeadlinePassed(now time.Time) bool {
	return l.EndsAt != nil && !now.Before(*l.EndsAt)
}

// LotResult is the terminal record written exactly once when a lot closes.
type LotResult struct {
	ID             int64      `db:"id"`
	LotID          int64      `db:"lot_id"`
	WinnerMemberID *int64     `db:"winner_member_id"`
	WinningBidID   *int64     `db:"winning_bid_id"`
	FinalPrice     int64      `db:"final_price"`
	Outcome        LotOutcome `db:"outcome"`
	CreatedAt      time.Time  `db:"created_at"`
}
