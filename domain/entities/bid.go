package entities

import (
	"errors"
	"time"
)

// Bid is an immutable record of a bid on a lot. System-generated proxy bids
// carry IsAutoBid and reuse the ceiling of the bidder they act for.
type Bid struct {
	ID             int64     `db:"id"`
	LotID          int64     `db:"lot_id"`
	MemberID       int64     `db:"member_id"`
	ClanID         int64     `db:"clan_id"`
	Amount         int64     `db:"amount"`
	MaxAutoBid     *int64    `db:"max_auto_bid"`
	IsAutoBid      bool      `db:"is_auto_bid"`
	IdempotencyKey *string   `db:"idempotency_key"`
	HoldID         *int64    `db:"hold_id"`
	CreatedAt      time.Time `db:"created_at"`
}

// HasCeiling returns true if the bid declared a proxy ceiling.
func (b *Bid) HasCeiling() bool {
	return b.MaxAutoBid != nil && *b.MaxAutoBid > b.Amount
}

// Ceiling returns the declared proxy ceiling, or the bid amount when none was set.
func (b *Bid) Ceiling() int64 {
	if b.MaxAutoBid == nil {
		return b.Amount
	}
	return *b.MaxAutoBid
}

// Validate performs basic validation on the bid.
func (b *Bid) Validate() error {
	if b.Amount <= 0 {
		return errors.New("bid amount must be positive")
	}
	if b.MaxAutoBid != nil && *b.MaxAutoBid < b.Amount {
		return errors.New("auto-bid ceiling cannot be below the bid amount")
	}
	return nil
}
