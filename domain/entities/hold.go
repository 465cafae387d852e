package entities

import "time"

// HoldStatus represents the lifecycle state of an escrow hold.
type HoldStatus string

const (
	HoldStatusActive    HoldStatus = "active"
	HoldStatusFinalized HoldStatus = "finalized"
	HoldStatusReleased  HoldStatus = "released"
)

// Hold is an escrow record reserving wallet funds against a bid. A hold is
// terminated (finalized or released) exactly once; a second termination is a
// hard error to protect the wallet's on-hold counter.
type Hold struct {
	ID        int64      `db:"id"`
	MemberID  int64      `db:"member_id"`
	ClanID    int64      `db:"clan_id"`
	Amount    int64      `db:"amount"`
	Status    HoldStatus `db:"status"`
	BidID     *int64     `db:"bid_id"`
	CreatedAt time.Time  `db:"created_at"`
	ClosedAt  *time.Time `db:"closed_at"`
}

// IsActive returns true if the hold still reserves funds.
func (h *Hold) IsActive() bool {
	return h.Status == HoldStatusActive
}

// IsTerminated returns true once the hold has been finalized or released.
func (h *Hold) IsTerminated() bool {
	return h.Status == HoldStatusFinalized || h.Status == HoldStatusReleased
}
