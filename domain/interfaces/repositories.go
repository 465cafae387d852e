package interfaces

import (
	"context"
	"time"

	"clanhall/domain/entities"
	"clanhall/domain/events"
)

// WalletRepository defines the interface for wallet data access.
// The ledger and hold manager are the exclusive write path for balances.
type WalletRepository interface {
	// GetByMemberID retrieves a member's wallet.
	GetByMemberID(ctx context.Context, memberID int64) (*entities.Wallet, error)

	// GetByMemberIDForUpdate retrieves a member's wallet with a row lock.
	GetByMemberIDForUpdate(ctx context.Context, memberID int64) (*entities.Wallet, error)

	// Create creates a wallet for a member with an initial balance.
	Create(ctx context.Context, memberID int64, initialBalance int64) (*entities.Wallet, error)

	// UpdateBalances writes the wallet's balance, on-hold and lifetime-earned
	// counters atomically.
	UpdateBalances(ctx context.Context, wallet *entities.Wallet) error
}

// TransactionRepository defines the interface for the append-only transaction log.
type TransactionRepository interface {
	// Record appends a new transaction. Rows are never mutated.
	Record(ctx context.Context, tx *entities.Transaction) error

	// GetByIdempotencyKey returns a prior transaction with the key, or nil.
	GetByIdempotencyKey(ctx context.Context, key string) (*entities.Transaction, error)

	// GetByMember returns recent transactions for a member, newest first.
	GetByMember(ctx context.Context, memberID int64, limit int) ([]*entities.Transaction, error)

	// SumAmountsByMember returns the sum of all signed amounts for a member.
	SumAmountsByMember(ctx context.Context, memberID int64) (int64, error)
}

// HoldRepository defines the interface for escrow hold data access.
type HoldRepository interface {
	// Create creates a new hold.
	Create(ctx context.Context, hold *entities.Hold) error

	// GetByID retrieves a hold by its ID.
	GetByID(ctx context.Context, id int64) (*entities.Hold, error)

	// GetByIDForUpdate retrieves a hold with a row lock.
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Hold, error)

	// Update writes a hold's status and close timestamp.
	Update(ctx context.Context, hold *entities.Hold) error

	// AttachBid links a hold to the bid that caused it.
	AttachBid(ctx context.Context, holdID, bidID int64) error

	// GetActiveByLot returns all still-active holds whose bids target the lot.
	GetActiveByLot(ctx context.Context, lotID int64) ([]*entities.Hold, error)
}

// AuctionRepository defines the interface for auction data access.
type AuctionRepository interface {
	Create(ctx context.Context, auction *entities.Auction) error
	GetByID(ctx context.Context, id int64) (*entities.Auction, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Auction, error)
	Update(ctx context.Context, auction *entities.Auction) error
	ListByClan(ctx context.Context, clanID int64) ([]*entities.Auction, error)

	// AddParticipant registers a member as a bidder on the auction.
	AddParticipant(ctx context.Context, auctionID, memberID int64) error

	// IsParticipant reports whether the member is registered on the auction.
	IsParticipant(ctx context.Context, auctionID, memberID int64) (bool, error)
}

// LotRepository defines the interface for lot data access.
type LotRepository interface {
	Create(ctx context.Context, lot *entities.Lot) error
	GetByID(ctx context.Context, id int64) (*entities.Lot, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Lot, error)
	Update(ctx context.Context, lot *entities.Lot) error

	// GetByAuction returns the auction's lots in sort order.
	GetByAuction(ctx context.Context, auctionID int64) ([]*entities.Lot, error)

	// GetNextPending returns the lowest-sort-order pending lot, or nil.
	GetNextPending(ctx context.Context, auctionID int64) (*entities.Lot, error)

	// CountByAuction returns the number of lots in the auction.
	CountByAuction(ctx context.Context, auctionID int64) (int, error)

	// CreateResult writes the terminal record for a closed lot.
	CreateResult(ctx context.Context, result *entities.LotResult) error

	// GetResultByLot returns the terminal record for a lot, or nil.
	GetResultByLot(ctx context.Context, lotID int64) (*entities.LotResult, error)

	// GetNextDeadline returns the earliest deadline among active lots, or nil.
	GetNextDeadline(ctx context.Context) (*time.Time, error)

	// GetExpiredActive returns active lots whose deadline is at or before now.
	GetExpiredActive(ctx context.Context, now time.Time) ([]*entities.Lot, error)
}

// BidRepository defines the interface for bid data access.
type BidRepository interface {
	// Create creates a new bid record.
	Create(ctx context.Context, bid *entities.Bid) error

	// GetByID retrieves a bid by its ID.
	GetByID(ctx context.Context, id int64) (*entities.Bid, error)

	// GetByIdempotencyKey returns a prior bid with the key, or nil.
	GetByIdempotencyKey(ctx context.Context, key string) (*entities.Bid, error)

	// GetHighestByLot returns the highest bid on a lot, ties broken by
	// earliest creation time, or nil when the lot has no bids.
	GetHighestByLot(ctx context.Context, lotID int64) (*entities.Bid, error)

	// GetByLot returns all bids on a lot, newest first.
	GetByLot(ctx context.Context, lotID int64) ([]*entities.Bid, error)

	// GetProxyBidsByLot returns bids on the lot that declared an auto-bid
	// ceiling, ordered by ceiling descending then creation time ascending.
	GetProxyBidsByLot(ctx context.Context, lotID int64) ([]*entities.Bid, error)
}

// RandomizerRepository defines the interface for randomizer data access.
type RandomizerRepository interface {
	CreateSession(ctx context.Context, session *entities.RandomizerSession) error
	GetSessionByID(ctx context.Context, id int64) (*entities.RandomizerSession, error)
	GetSessionByIDForUpdate(ctx context.Context, id int64) (*entities.RandomizerSession, error)
	UpdateSession(ctx context.Context, session *entities.RandomizerSession) error
	CreateEntries(ctx context.Context, entries []*entities.RandomizerEntry) error
	GetEntriesBySession(ctx context.Context, sessionID int64) ([]*entities.RandomizerEntry, error)
	CreateResult(ctx context.Context, result *entities.RandomizerResult) error
	GetResultBySession(ctx context.Context, sessionID int64) (*entities.RandomizerResult, error)
}

// MemberRepository defines the interface for member profile data access.
type MemberRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.Member, error)
	ListByClan(ctx context.Context, clanID int64) ([]*entities.Member, error)
	Create(ctx context.Context, member *entities.Member) error
}

// ItemRepository implements the inventory collaborator against the warehouse
// table. The core never touches item rows outside these calls.
type ItemRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.Item, error)
	DecrementQuantity(ctx context.Context, id int64, n int64) error
	IncrementQuantity(ctx context.Context, id int64, n int64) error
}

// AuditRepository is the audit sink. Failures are logged by callers, never
// escalated into the originating operation.
type AuditRepository interface {
	Record(ctx context.Context, entry *entities.AuditEntry) error
}

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers published events until the enclosing
// unit of work resolves: Flush after commit, Discard after rollback.
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
