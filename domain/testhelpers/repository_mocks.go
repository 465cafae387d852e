package testhelpers

import (
	"context"
	"time"

	"clanhall/domain/entities"
	"clanhall/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByMemberID(ctx context.Context, memberID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByMemberIDForUpdate(ctx context.Context, memberID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, memberID int64, initialBalance int64) (*entities.Wallet, error) {
	args := m.Called(ctx, memberID, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateBalances(ctx context.Context, wallet *entities.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Record(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entities.Transaction, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByMember(ctx context.Context, memberID int64, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, memberID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumAmountsByMember(ctx context.Context, memberID int64) (int64, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(int64), args.Error(1)
}

// MockHoldRepository is a mock implementation of HoldRepository
type MockHoldRepository struct {
	mock.Mock
}

func (m *MockHoldRepository) Create(ctx context.Context, hold *entities.Hold) error {
	args := m.Called(ctx, hold)
	return args.Error(0)
}

func (m *MockHoldRepository) GetByID(ctx context.Context, id int64) (*entities.Hold, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Hold), args.Error(1)
}

func (m *MockHoldRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Hold, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Hold), args.Error(1)
}

func (m *MockHoldRepository) Update(ctx context.Context, hold *entities.Hold) error {
	args := m.Called(ctx, hold)
	return args.Error(0)
}

func (m *MockHoldRepository) AttachBid(ctx context.Context, holdID, bidID int64) error {
	args := m.Called(ctx, holdID, bidID)
	return args.Error(0)
}

func (m *MockHoldRepository) GetActiveByLot(ctx context.Context, lotID int64) ([]*entities.Hold, error) {
	args := m.Called(ctx, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Hold), args.Error(1)
}

// MockAuctionRepository is a mock implementation of AuctionRepository
type MockAuctionRepository struct {
	mock.Mock
}

func (m *MockAuctionRepository) Create(ctx context.Context, auction *entities.Auction) error {
	args := m.Called(ctx, auction)
	return args.Error(0)
}

func (m *MockAuctionRepository) GetByID(ctx context.Context, id int64) (*entities.Auction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Auction), args.Error(1)
}

func (m *MockAuctionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Auction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Auction), args.Error(1)
}

func (m *MockAuctionRepository) Update(ctx context.Context, auction *entities.Auction) error {
	args := m.Called(ctx, auction)
	return args.Error(0)
}

func (m *MockAuctionRepository) ListByClan(ctx context.Context, clanID int64) ([]*entities.Auction, error) {
	args := m.Called(ctx, clanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Auction), args.Error(1)
}

func (m *MockAuctionRepository) AddParticipant(ctx context.Context, auctionID, memberID int64) error {
	args := m.Called(ctx, auctionID, memberID)
	return args.Error(0)
}

func (m *MockAuctionRepository) IsParticipant(ctx context.Context, auctionID, memberID int64) (bool, error) {
	args := m.Called(ctx, auctionID, memberID)
	return args.Bool(0), args.Error(1)
}

// MockLotRepository is a mock implementation of LotRepository
type MockLotRepository struct {
	mock.Mock
}

func (m *MockLotRepository) Create(ctx context.Context, lot *entities.Lot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockLotRepository) GetByID(ctx context.Context, id int64) (*entities.Lot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lot), args.Error(1)
}

func (m *MockLotRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Lot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lot), args.Error(1)
}

func (m *MockLotRepository) Update(ctx context.Context, lot *entities.Lot) error {
	args := m.Called(ctx, lot)
	return args.Error(0)
}

func (m *MockLotRepository) GetByAuction(ctx context.Context, auctionID int64) ([]*entities.Lot, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Lot), args.Error(1)
}

func (m *MockLotRepository) GetNextPending(ctx context.Context, auctionID int64) (*entities.Lot, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lot), args.Error(1)
}

func (m *MockLotRepository) CountByAuction(ctx context.Context, auctionID int64) (int, error) {
	args := m.Called(ctx, auctionID)
	return args.Int(0), args.Error(1)
}

func (m *MockLotRepository) CreateResult(ctx context.Context, result *entities.LotResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockLotRepository) GetResultByLot(ctx context.Context, lotID int64) (*entities.LotResult, error) {
	args := m.Called(ctx, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LotResult), args.Error(1)
}

func (m *MockLotRepository) GetNextDeadline(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockLotRepository) GetExpiredActive(ctx context.Context, now time.Time) ([]*entities.Lot, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Lot), args.Error(1)
}

// MockBidRepository is a mock implementation of BidRepository
type MockBidRepository struct {
	mock.Mock
}

func (m *MockBidRepository) Create(ctx context.Context, bid *entities.Bid) error {
	args := m.Called(ctx, bid)
	return args.Error(0)
}

func (m *MockBidRepository) GetByID(ctx context.Context, id int64) (*entities.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bid), args.Error(1)
}

func (m *MockBidRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entities.Bid, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bid), args.Error(1)
}

func (m *MockBidRepository) GetHighestByLot(ctx context.Context, lotID int64) (*entities.Bid, error) {
	args := m.Called(ctx, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bid), args.Error(1)
}

func (m *MockBidRepository) GetByLot(ctx context.Context, lotID int64) ([]*entities.Bid, error) {
	args := m.Called(ctx, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bid), args.Error(1)
}

func (m *MockBidRepository) GetProxyBidsByLot(ctx context.Context, lotID int64) ([]*entities.Bid, error) {
	args := m.Called(ctx, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bid), args.Error(1)
}

// MockRandomizerRepository is a mock implementation of RandomizerRepository
type MockRandomizerRepository struct {
	mock.Mock
}

func (m *MockRandomizerRepository) CreateSession(ctx context.Context, session *entities.RandomizerSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockRandomizerRepository) GetSessionByID(ctx context.Context, id int64) (*entities.RandomizerSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RandomizerSession), args.Error(1)
}

func (m *MockRandomizerRepository) GetSessionByIDForUpdate(ctx context.Context, id int64) (*entities.RandomizerSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RandomizerSession), args.Error(1)
}

func (m *MockRandomizerRepository) UpdateSession(ctx context.Context, session *entities.RandomizerSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockRandomizerRepository) CreateEntries(ctx context.Context, entries []*entities.RandomizerEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockRandomizerRepository) GetEntriesBySession(ctx context.Context, sessionID int64) ([]*entities.RandomizerEntry, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RandomizerEntry), args.Error(1)
}

func (m *MockRandomizerRepository) CreateResult(ctx context.Context, result *entities.RandomizerResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockRandomizerRepository) GetResultBySession(ctx context.Context, sessionID int64) (*entities.RandomizerResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RandomizerResult), args.Error(1)
}

// MockMemberRepository is a mock implementation of MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id int64) (*entities.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Member), args.Error(1)
}

func (m *MockMemberRepository) ListByClan(ctx context.Context, clanID int64) ([]*entities.Member, error) {
	args := m.Called(ctx, clanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Member), args.Error(1)
}

func (m *MockMemberRepository) Create(ctx context.Context, member *entities.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetByID(ctx context.Context, id int64) (*entities.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Item), args.Error(1)
}

func (m *MockItemRepository) DecrementQuantity(ctx context.Context, id int64, n int64) error {
	args := m.Called(ctx, id, n)
	return args.Error(0)
}

func (m *MockItemRepository) IncrementQuantity(ctx context.Context, id int64, n int64) error {
	args := m.Called(ctx, id, n)
	return args.Error(0)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, entry *entities.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
