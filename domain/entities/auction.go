package entities

import (
	"errors"
	"time"
)

// AuctionStatus represents the lifecycle state of an auction.
type AuctionStatus string

const (
	AuctionStatusDraft     AuctionStatus = "draft"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusCompleted AuctionStatus = "completed"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// Auction is a clan-scoped container of sequentially resolved lots.
type Auction struct {
	ID                  int64         `db:"id"`
	ClanID              int64         `db:"clan_id"`
	Title               string        `db:"title"`
	Status              AuctionStatus `db:"status"`
	AntiSniperEnabled   bool          `db:"anti_sniper_enabled"`
	AntiSniperThreshold time.Duration `db:"-"` // stored as seconds
	AntiSniperExtension time.Duration `db:"-"` // stored as seconds
	CreatedByMemberID   int64         `db:"created_by"`
	CreatedAt           time.Time     `db:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at"`
}

// IsDraft returns true while lots may still be added.
func (a *Auction) IsDraft() bool {
	return a.Status == AuctionStatusDraft
}

// IsActive returns true while bidding is open on the auction's current lot.
func (a *Auction) IsActive() bool {
	return a.Status == AuctionStatusActive
}

// IsTerminal returns true once the auction can no longer change state.
func (a *Auction) IsTerminal() bool {
	return a.Status == AuctionStatusCompleted || a.Status == AuctionStatusCancelled
}

// CanStart validates the draft->active transition.
func (a *Auction) CanStart(lotCount int) error {
	if a.Status != AuctionStatusDraft {
		return errors.New("auction is not in draft state")
	}
	if lotCount == 0 {
		return errors.New("auction has no lots")
	}
	return nil
}

// ShouldExtendDeadline reports whether a bid landing at now, against a lot
// ending at endsAt, falls inside the anti-sniper window.
func (a *Auction) ShouldExtendDeadline(now, endsAt time.Time) bool {
	if !a.AntiSniperEnabled {
		return false
	}
	return endsAt.Sub(now) <= a.AntiSniperThreshold
}
