package interfaces

import (
	"context"

	"clanhall/domain/entities"
)

// LedgerService owns wallet balance bookkeeping and the immutable transaction
// log. Pure bookkeeping: no domain knowledge of auctions.
type LedgerService interface {
	// Credit adds amount to the wallet. A duplicate idempotency key returns
	// the prior transaction unchanged.
	Credit(ctx context.Context, memberID, amount int64, txType entities.TransactionType, ref *TransactionRef, idemKey string) (*entities.Transaction, error)

	// Debit removes amount from the wallet, failing on insufficient available
	// balance unless allowNegativeHeld is set (penalties).
	Debit(ctx context.Context, memberID, amount int64, txType entities.TransactionType, ref *TransactionRef, allowNegativeHeld bool, idemKey string) (*entities.Transaction, error)

	// GetWallet returns the member's wallet.
	GetWallet(ctx context.Context, memberID int64) (*entities.Wallet, error)
}

// TransactionRef points a transaction at its causing entity.
type TransactionRef struct {
	ID   int64
	Type entities.RelatedType
}

// HoldService is the escrow primitive built on the ledger.
type HoldService interface {
	// PlaceHold reserves amount against the wallet. The causing bid is
	// attached by the bid processor once the bid row exists.
	PlaceHold(ctx context.Context, memberID, amount int64) (*entities.Hold, error)

	// FinalizeHold settles an active hold: the funds leave the wallet.
	FinalizeHold(ctx context.Context, holdID int64) error

	// ReleaseHold returns an active hold's funds to available balance.
	ReleaseHold(ctx context.Context, holdID int64) error
}

// AuctionService owns the auction/lot lifecycle and lot sequencing.
type AuctionService interface {
	CreateAuction(ctx context.Context, auction *entities.Auction) (*entities.Auction, error)
	AddLot(ctx context.Context, auctionID int64, lot *entities.Lot) (*entities.Lot, error)
	StartAuction(ctx context.Context, auctionID int64) error
	CancelAuction(ctx context.Context, auctionID int64) error
	RegisterParticipant(ctx context.Context, auctionID, memberID int64) error

	// AdvanceAfterLot activates the next pending lot after lotID resolved, or
	// completes the auction when none remains.
	AdvanceAfterLot(ctx context.Context, auctionID int64) error

	GetAuction(ctx context.Context, auctionID int64) (*entities.Auction, error)
	GetLots(ctx context.Context, auctionID int64) ([]*entities.Lot, error)
}

// BidReceipt is returned from PlaceBid.
type BidReceipt struct {
	Bid           *entities.Bid
	Lot           *entities.Lot
	Extended      bool // anti-sniper extension applied
	AutoBid       *entities.Bid
	WasIdemReplay bool
}

// LotCloseResult is returned from FinishLot.
type LotCloseResult struct {
	Result          *entities.LotResult
	ReleasedHolds   int
	AuctionComplete bool
}

// BidService validates and records bids and resolves lot completion.
type BidService interface {
	// PlaceBid runs the full bid pipeline: idempotency, lot/participant
	// validation, minimum bid, hold placement, previous-leader release,
	// anti-sniper extension and proxy resolution.
	PlaceBid(ctx context.Context, lotID, memberID, amount int64, idemKey string, maxAutoBid *int64) (*BidReceipt, error)

	// FinishLot settles a lot: finalize the winner's hold, release the rest,
	// move stock, record the result and advance the auction.
	FinishLot(ctx context.Context, lotID int64) (*LotCloseResult, error)
}

// DrawResult is returned from RunDraw.
type DrawResult struct {
	Session *entities.RandomizerSession
	Result  *entities.RandomizerResult
}

// RandomizerService commits seeds and performs verifiable weighted draws.
type RandomizerService interface {
	CreateSession(ctx context.Context, clanID, itemID, quantity int64) (*entities.RandomizerSession, error)
	RunDraw(ctx context.Context, sessionID int64) (*DrawResult, error)
}

// InventoryService is the warehouse collaborator consumed by the auction and
// randomizer cores.
type InventoryService interface {
	GetItem(ctx context.Context, id int64) (*entities.Item, error)
	DecrementQuantity(ctx context.Context, id int64, n int64) error
	IncrementQuantity(ctx context.Context, id int64, n int64) error
}

// PermissionService is the capability predicate evaluated before role-gated
// operations run, decoupled from transport.
type PermissionService interface {
	Can(actor *entities.Member, action Action, resourceClanID int64) bool
}

// Action names a role-gated operation.
type Action string

const (
	ActionManageAuction  Action = "manage_auction"
	ActionIssuePenalty   Action = "issue_penalty"
	ActionAdminAdjust    Action = "admin_adjust"
	ActionRunRandomizer  Action = "run_randomizer"
	ActionCreditActivity Action = "credit_activity"
)
