package services

import (
	"context"
	"testing"
	"time"

	"clanhall/domain/entities"
	"clanhall/domain/errs"
	"clanhall/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type bidFixture struct {
	lotRepo     *testhelpers.MockLotRepository
	bidRepo     *testhelpers.MockBidRepository
	auctionRepo *testhelpers.MockAuctionRepository
	holdRepo    *testhelpers.MockHoldRepository
	walletRepo  *testhelpers.MockWalletRepository
	txRepo      *testhelpers.MockTransactionRepository
	itemRepo    *testhelpers.MockItemRepository
	auditRepo   *testhelpers.MockAuditRepository
	publisher   *testhelpers.MockEventPublisher
	svc         *bidService
}

func newBidFixture() *bidFixture {
	f := &bidFixture{
		lotRepo:     new(testhelpers.MockLotRepository),
		bidRepo:     new(testhelpers.MockBidRepository),
		auctionRepo: new(testhelpers.MockAuctionRepository),
		holdRepo:    new(testhelpers.MockHoldRepository),
		walletRepo:  new(testhelpers.MockWalletRepository),
		txRepo:      new(testhelpers.MockTransactionRepository),
		itemRepo:    new(testhelpers.MockItemRepository),
		auditRepo:   new(testhelpers.MockAuditRepository),
		publisher:   new(testhelpers.MockEventPublisher),
	}
	auditRepo := f.auditRepo
	auditRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything).Return(nil)
	f.txRepo.On("Record", mock.Anything, mock.Anything).Return(nil)

	holds := NewHoldService(f.walletRepo, f.holdRepo, f.txRepo, auditRepo, f.publisher)
	auctions := NewAuctionService(f.auctionRepo, f.lotRepo, f.itemRepo, auditRepo, f.publisher, 0)
	inventory := NewInventoryService(f.itemRepo)
	f.svc = NewBidService(f.lotRepo, f.bidRepo, f.auctionRepo, f.holdRepo, holds, auctions, inventory, auditRepo, f.publisher).(*bidService)
	return f
}

func activeLot(endsIn time.Duration) *entities.Lot {
	endsAt := time.Now().UTC().Add(endsIn)
	return &entities.Lot{
		ID:         10,
		AuctionID:  20,
		ItemID:     30,
		Quantity:   1,
		StartPrice: 100,
		MinStep:    10,
		Status:     entities.LotStatusActive,
		EndsAt:     &endsAt,
	}
}

func plainAuction() *entities.Auction {
	return &entities.Auction{ID: 20, ClanID: 7, Title: "weekly", Status: entities.AuctionStatusActive}
}

func TestBidService_PlaceBid_FirstBidBelowStartPrice(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(activeLot(time.Hour), nil)
	f.auctionRepo.On("GetByID", ctx, int64(20)).Return(plainAuction(), nil)
	f.auctionRepo.On("IsParticipant", ctx, int64(20), int64(1)).Return(true, nil)

	_, err := f.svc.PlaceBid(ctx, 10, 1, 99, "", nil)

	assert.True(t, errs.IsValidation(err))
	f.holdRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBidService_PlaceBid_FirstBidAccepted(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	lot := activeLot(time.Hour)
	wallet := &entities.Wallet{ID: 1, MemberID: 1, ClanID: 7, Balance: 500}

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(lot, nil)
	f.auctionRepo.On("GetByID", ctx, int64(20)).Return(plainAuction(), nil)
	f.auctionRepo.On("IsParticipant", ctx, int64(20), int64(1)).Return(true, nil)
	f.bidRepo.On("GetHighestByLot", ctx, int64(10)).Return(nil, nil)
	f.walletRepo.On("GetByMemberIDForUpdate", ctx, int64(1)).Return(wallet, nil)
	f.walletRepo.On("UpdateBalances", ctx, mock.Anything).Return(nil)
	f.holdRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Hold).ID = 5
	})
	f.bidRepo.On("Create", ctx, mock.MatchedBy(func(b *entities.Bid) bool {
		return b.LotID == 10 && b.MemberID == 1 && b.Amount == 100 && *b.HoldID == 5
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Bid).ID = 2
	})
	f.holdRepo.On("AttachBid", ctx, int64(5), int64(2)).Return(nil)
	f.lotRepo.On("Update", ctx, mock.MatchedBy(func(l *entities.Lot) bool {
		return l.CurrentPrice == 100 && l.WinnerMemberID != nil && *l.WinnerMemberID == 1
	})).Return(nil)

	receipt, err := f.svc.PlaceBid(ctx, 10, 1, 100, "", nil)

	require.NoError(t, err)
	assert.False(t, receipt.Extended)
	assert.Nil(t, receipt.AutoBid)
	assert.Equal(t, int64(100), wallet.OnHold)
	f.lotRepo.AssertExpectations(t)
	f.holdRepo.AssertExpectations(t)
}

func TestBidService_PlaceBid_RaiseBelowMinStep(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	leader := int64(1)
	lot := activeLot(time.Hour)
	lot.CurrentPrice = 100
	lot.WinnerMemberID = &leader

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(lot, nil)
	f.auctionRepo.On("GetByID", ctx, int64(20)).Return(plainAuction(), nil)
	f.auctionRepo.On("IsParticipant", ctx, int64(20), int64(2)).Return(true, nil)

	// Minimum is currentPrice + minStep = 110.
	_, err := f.svc.PlaceBid(ctx, 10, 2, 105, "", nil)

	assert.True(t, errs.IsValidation(err))
}

func TestBidService_PlaceBid_ReleasesPreviousLeaderHold(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	leader := int64(1)
	lot := activeLot(time.Hour)
	lot.CurrentPrice = 100
	lot.WinnerMemberID = &leader

	prevHoldID := int64(5)
	prevBid := &entities.Bid{ID: 2, LotID: 10, MemberID: 1, Amount: 100, HoldID: &prevHoldID}
	prevHold := &entities.Hold{ID: 5, MemberID: 1, ClanID: 7, Amount: 100, Status: entities.HoldStatusActive}

	walletA := &entities.Wallet{ID: 1, MemberID: 1, ClanID: 7, Balance: 500, OnHold: 100}
	walletB := &entities.Wallet{ID: 2, MemberID: 2, ClanID: 7, Balance: 500}

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(lot, nil)
	f.auctionRepo.On("GetByID", ctx, int64(20)).Return(plainAuction(), nil)
	f.auctionRepo.On("IsParticipant", ctx, int64(20), int64(2)).Return(true, nil)
	f.bidRepo.On("GetHighestByLot", ctx, int64(10)).Return(prevBid, nil)

	f.walletRepo.On("GetByMemberIDForUpdate", ctx, int64(1)).Return(walletA, nil)
	f.walletRepo.On("GetByMemberIDForUpdate", ctx, int64(2)).Return(walletB, nil)
	f.walletRepo.On("UpdateBalances", ctx, mock.Anything).Return(nil)

	f.holdRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Hold).ID = 6
	})
	f.holdRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(prevHold, nil)
	f.holdRepo.On("Update", ctx, mock.Anything).Return(nil)
	f.bidRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Bid).ID = 3
	})
	f.holdRepo.On("AttachBid", ctx, int64(6), int64(3)).Return(nil)
	f.lotRepo.On("Update", ctx, mock.Anything).Return(nil)

	receipt, err := f.svc.PlaceBid(ctx, 10, 2, 110, "", nil)

	require.NoError(t, err)
	assert.Equal(t, int64(110), receipt.Lot.CurrentPrice)
	assert.Equal(t, entities.HoldStatusReleased, prevHold.Status)
	assert.Equal(t, int64(0), walletA.OnHold)
	assert.Equal(t, int64(110), walletB.OnHold)
	f.publisher.AssertCalled(t, "Publish", mock.AnythingOfType("events.OutbidEvent"))
}

func TestBidService_PlaceBid_NotParticipant(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(activeLot(time.Hour), nil)
	f.auctionRepo.On("GetByID", ctx, int64(20)).Return(plainAuction(), nil)
	f.auctionRepo.On("IsParticipant", ctx, int64(20), int64(9)).Return(false, nil)

	_, err := f.svc.PlaceBid(ctx, 10, 9, 100, "", nil)

	assert.True(t, errs.IsForbidden(err))
}

func TestBidService_PlaceBid_DeadlinePassed(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(activeLot(-time.Second), nil)

	_, err := f.svc.PlaceBid(ctx, 10, 1, 100, "", nil)

	assert.True(t, errs.IsInvalidState(err))
}

func TestBidService_PlaceBid_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	key := "bid-key-1"
	prior := &entities.Bid{ID: 2, LotID: 10, MemberID: 1, Amount: 100, IdempotencyKey: &key}
	f.bidRepo.On("GetByIdempotencyKey", ctx, key).Return(prior, nil)
	f.lotRepo.On("GetByID", ctx, int64(10)).Return(activeLot(time.Hour), nil)

	receipt, err := f.svc.PlaceBid(ctx, 10, 1, 100, key, nil)

	require.NoError(t, err)
	assert.True(t, receipt.WasIdemReplay)
	assert.Equal(t, prior, receipt.Bid)
	f.holdRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.bidRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBidService_PlaceBid_AntiSniperExtendsDeadline(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	auction := plainAuction()
	auction.AntiSniperEnabled = true
	auction.AntiSniperThreshold = 30 * time.Second
	auction.AntiSniperExtension = 30 * time.Second

	lot := activeLot(15 * time.Second)
	wallet := &entities.Wallet{ID: 1, MemberID: 1, ClanID: 7, Balance: 500}

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(lot, nil)
	f.auctionRepo.On("GetByID", ctx, int64(20)).Return(auction, nil)
	f.auctionRepo.On("IsParticipant", ctx, int64(20), int64(1)).Return(true, nil)
	f.bidRepo.On("GetHighestByLot", ctx, int64(10)).Return(nil, nil)
	f.walletRepo.On("GetByMemberIDForUpdate", ctx, int64(1)).Return(wallet, nil)
	f.walletRepo.On("UpdateBalances", ctx, mock.Anything).Return(nil)
	f.holdRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Hold).ID = 5
	})
	f.bidRepo.On("Create", ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Bid).ID = 2
	})
	f.holdRepo.On("AttachBid", ctx, int64(5), int64(2)).Return(nil)
	f.lotRepo.On("Update", ctx, mock.Anything).Return(nil)

	receipt, err := f.svc.PlaceBid(ctx, 10, 1, 100, "", nil)

	require.NoError(t, err)
	assert.True(t, receipt.Extended)
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Second), *lot.EndsAt, 2*time.Second)
	f.publisher.AssertCalled(t, "Publish", mock.AnythingOfType("events.TimerExtendedEvent"))
}

// Two declared ceilings trigger one proxy round: the higher ceiling wins at
// the runner-up's ceiling plus one step, never at its own declared maximum.
func TestBidService_PlaceBid_AutoBidResolution(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	leader := int64(1)
	lot := activeLot(time.Hour)
	lot.CurrentPrice = 100
	lot.WinnerMemberID = &leader

	ceilingA := int64(500)
	ceilingB := int64(300)
	prevHoldID := int64(5)
	bidA := &entities.Bid{ID: 2, LotID: 10, MemberID: 1, Amount: 100, MaxAutoBid: &ceilingA, HoldID: &prevHoldID, CreatedAt: time.Now().Add(-time.Minute)}
	holdA := &entities.Hold{ID: 5, MemberID: 1, ClanID: 7, Amount: 100, Status: entities.HoldStatusActive}

	walletA := &entities.Wallet{ID: 1, MemberID: 1, ClanID: 7, Balance: 1000, OnHold: 100}
	walletB := &entities.Wallet{ID: 2, MemberID: 2, ClanID: 7, Balance: 1000}

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(lot, nil)
	f.auctionRepo.On("GetByID", ctx, int64(20)).Return(plainAuction(), nil)
	f.auctionRepo.On("IsParticipant", ctx, int64(20), int64(2)).Return(true, nil)

	holdBID := int64(6)
	bidB := &entities.Bid{ID: 3, LotID: 10, MemberID: 2, Amount: 110, MaxAutoBid: &ceilingB, HoldID: &holdBID, CreatedAt: time.Now()}
	holdB := &entities.Hold{ID: 6, MemberID: 2, ClanID: 7, Amount: 110, Status: entities.HoldStatusActive}

	f.walletRepo.On("GetByMemberIDForUpdate", ctx, int64(1)).Return(walletA, nil)
	f.walletRepo.On("GetByMemberIDForUpdate", ctx, int64(2)).Return(walletB, nil)
	f.walletRepo.On("UpdateBalances", ctx, mock.Anything).Return(nil)

	// Leading bid before B's manual bid, then B's bid once it leads.
	f.bidRepo.On("GetHighestByLot", ctx, int64(10)).Return(bidA, nil).Once()
	f.bidRepo.On("GetHighestByLot", ctx, int64(10)).Return(bidB, nil).Once()

	// B's manual bid at 110, then the system bid raising A to 310.
	f.holdRepo.On("Create", ctx, mock.Anything).Return(nil).Once().Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Hold).ID = 6
	})
	f.holdRepo.On("Create", ctx, mock.Anything).Return(nil).Once().Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Hold).ID = 7
	})
	f.bidRepo.On("Create", ctx, mock.MatchedBy(func(b *entities.Bid) bool {
		return b.MemberID == 2 && b.Amount == 110 && !b.IsAutoBid
	})).Return(nil).Once().Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Bid).ID = 3
	})
	f.bidRepo.On("Create", ctx, mock.MatchedBy(func(b *entities.Bid) bool {
		return b.MemberID == 1 && b.Amount == 310 && b.IsAutoBid
	})).Return(nil).Once().Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Bid).ID = 4
	})
	f.holdRepo.On("AttachBid", ctx, int64(6), int64(3)).Return(nil)
	f.holdRepo.On("AttachBid", ctx, int64(7), int64(4)).Return(nil)
	f.holdRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(holdA, nil)
	f.holdRepo.On("GetByIDForUpdate", ctx, int64(6)).Return(holdB, nil)
	f.holdRepo.On("Update", ctx, mock.Anything).Return(nil)
	f.lotRepo.On("Update", ctx, mock.Anything).Return(nil)

	f.bidRepo.On("GetProxyBidsByLot", ctx, int64(10)).Return([]*entities.Bid{bidA, bidB}, nil)

	receipt, err := f.svc.PlaceBid(ctx, 10, 2, 110, "", &ceilingB)

	require.NoError(t, err)
	require.NotNil(t, receipt.AutoBid)
	// min(runner-up ceiling 300 + step 10, leader ceiling 500) = 310.
	assert.Equal(t, int64(310), receipt.AutoBid.Amount)
	assert.Equal(t, int64(1), receipt.AutoBid.MemberID)
	assert.True(t, receipt.AutoBid.IsAutoBid)
	assert.Equal(t, int64(310), lot.CurrentPrice)
	assert.Equal(t, int64(1), *lot.WinnerMemberID)
	assert.Equal(t, int64(310), walletA.OnHold)
	assert.Equal(t, int64(0), walletB.OnHold)
	f.bidRepo.AssertExpectations(t)
	f.holdRepo.AssertExpectations(t)
}

// A proxy bidder whose ceiling is no longer covered by their available
// balance forfeits the raise; the triggering manual bid must still stand.
func TestBidService_PlaceBid_ProxyRaiseSkippedWhenUnderfunded(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	leader := int64(1)
	lot := activeLot(time.Hour)
	lot.CurrentPrice = 100
	lot.WinnerMemberID = &leader

	ceilingA := int64(500)
	ceilingB := int64(300)
	prevHoldID := int64(5)
	bidA := &entities.Bid{ID: 2, LotID: 10, MemberID: 1, Amount: 100, MaxAutoBid: &ceilingA, HoldID: &prevHoldID, CreatedAt: time.Now().Add(-time.Minute)}
	holdA := &entities.Hold{ID: 5, MemberID: 1, ClanID: 7, Amount: 100, Status: entities.HoldStatusActive}

	// A declared 500 but only 300 remains: the 310 raise cannot be held.
	walletA := &entities.Wallet{ID: 1, MemberID: 1, ClanID: 7, Balance: 300, OnHold: 100}
	walletB := &entities.Wallet{ID: 2, MemberID: 2, ClanID: 7, Balance: 1000}

	holdBID := int64(6)
	bidB := &entities.Bid{ID: 3, LotID: 10, MemberID: 2, Amount: 110, MaxAutoBid: &ceilingB, HoldID: &holdBID, CreatedAt: time.Now()}

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(lot, nil)
	f.auctionRepo.On("GetByID", ctx, int64(20)).Return(plainAuction(), nil)
	f.auctionRepo.On("IsParticipant", ctx, int64(20), int64(2)).Return(true, nil)

	f.walletRepo.On("GetByMemberIDForUpdate", ctx, int64(1)).Return(walletA, nil)
	f.walletRepo.On("GetByMemberIDForUpdate", ctx, int64(2)).Return(walletB, nil)
	f.walletRepo.On("UpdateBalances", ctx, mock.Anything).Return(nil)

	f.bidRepo.On("GetHighestByLot", ctx, int64(10)).Return(bidA, nil).Once()
	f.bidRepo.On("GetHighestByLot", ctx, int64(10)).Return(bidB, nil).Once()

	f.holdRepo.On("Create", ctx, mock.Anything).Return(nil).Once().Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Hold).ID = 6
	})
	f.bidRepo.On("Create", ctx, mock.MatchedBy(func(b *entities.Bid) bool {
		return b.MemberID == 2 && b.Amount == 110 && !b.IsAutoBid
	})).Return(nil).Once().Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Bid).ID = 3
	})
	f.holdRepo.On("AttachBid", ctx, int64(6), int64(3)).Return(nil)
	f.holdRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(holdA, nil)
	f.holdRepo.On("Update", ctx, mock.Anything).Return(nil)
	f.lotRepo.On("Update", ctx, mock.Anything).Return(nil)

	f.bidRepo.On("GetProxyBidsByLot", ctx, int64(10)).Return([]*entities.Bid{bidA, bidB}, nil)

	receipt, err := f.svc.PlaceBid(ctx, 10, 2, 110, "", &ceilingB)

	require.NoError(t, err)
	assert.Nil(t, receipt.AutoBid)
	assert.Equal(t, int64(110), lot.CurrentPrice)
	assert.Equal(t, int64(2), *lot.WinnerMemberID)
	f.bidRepo.AssertNumberOfCalls(t, "Create", 1)
	f.holdRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestBidService_FinishLot_Sold(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	winner := int64(1)
	lot := activeLot(-time.Minute)
	lot.CurrentPrice = 110
	lot.WinnerMemberID = &winner

	holdID := int64(5)
	winning := &entities.Bid{ID: 2, LotID: 10, MemberID: 1, Amount: 110, HoldID: &holdID}
	winnersHold := &entities.Hold{ID: 5, MemberID: 1, ClanID: 7, Amount: 110, Status: entities.HoldStatusActive}
	wallet := &entities.Wallet{ID: 1, MemberID: 1, ClanID: 7, Balance: 500, OnHold: 110}

	auction := plainAuction()

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(lot, nil)
	f.bidRepo.On("GetHighestByLot", ctx, int64(10)).Return(winning, nil)
	f.holdRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(winnersHold, nil)
	f.walletRepo.On("GetByMemberIDForUpdate", ctx, int64(1)).Return(wallet, nil)
	f.walletRepo.On("UpdateBalances", ctx, mock.Anything).Return(nil)
	f.holdRepo.On("Update", ctx, mock.Anything).Return(nil)
	f.itemRepo.On("DecrementQuantity", ctx, int64(30), int64(1)).Return(nil)
	f.lotRepo.On("Update", ctx, mock.MatchedBy(func(l *entities.Lot) bool {
		return l.Status == entities.LotStatusSold
	})).Return(nil)
	f.lotRepo.On("CreateResult", ctx, mock.MatchedBy(func(r *entities.LotResult) bool {
		return r.Outcome == entities.LotOutcomeSold && *r.WinnerMemberID == 1 && r.FinalPrice == 110
	})).Return(nil)
	f.holdRepo.On("GetActiveByLot", ctx, int64(10)).Return([]*entities.Hold{winnersHold}, nil)

	// No pending lot remains, so the auction completes.
	f.auctionRepo.On("GetByIDForUpdate", ctx, int64(20)).Return(auction, nil)
	f.lotRepo.On("GetNextPending", ctx, int64(20)).Return(nil, nil)
	f.auctionRepo.On("Update", ctx, mock.MatchedBy(func(a *entities.Auction) bool {
		return a.Status == entities.AuctionStatusCompleted
	})).Return(nil)
	f.auctionRepo.On("GetByID", ctx, int64(20)).Return(auction, nil)

	close, err := f.svc.FinishLot(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, entities.LotOutcomeSold, close.Result.Outcome)
	assert.True(t, close.AuctionComplete)
	assert.Equal(t, int64(390), wallet.Balance)
	assert.Equal(t, int64(0), wallet.OnHold)
	assert.Equal(t, entities.HoldStatusFinalized, winnersHold.Status)
	f.itemRepo.AssertExpectations(t)
	f.lotRepo.AssertExpectations(t)
}

func TestBidService_FinishLot_UnsoldLeavesStock(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	lot := activeLot(-time.Minute)
	auction := plainAuction()
	nextLot := &entities.Lot{ID: 11, AuctionID: 20, ItemID: 31, Quantity: 1, StartPrice: 50, MinStep: 5, Status: entities.LotStatusPending}

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(lot, nil)
	f.bidRepo.On("GetHighestByLot", ctx, int64(10)).Return(nil, nil)
	f.lotRepo.On("Update", ctx, mock.MatchedBy(func(l *entities.Lot) bool {
		return l.ID == 10 && l.Status == entities.LotStatusUnsold
	})).Return(nil)
	f.lotRepo.On("CreateResult", ctx, mock.MatchedBy(func(r *entities.LotResult) bool {
		return r.Outcome == entities.LotOutcomeUnsold && r.WinnerMemberID == nil
	})).Return(nil)
	f.holdRepo.On("GetActiveByLot", ctx, int64(10)).Return([]*entities.Hold{}, nil)

	// The next pending lot opens and the auction stays active.
	f.auctionRepo.On("GetByIDForUpdate", ctx, int64(20)).Return(auction, nil)
	f.lotRepo.On("GetNextPending", ctx, int64(20)).Return(nextLot, nil)
	f.lotRepo.On("Update", ctx, mock.MatchedBy(func(l *entities.Lot) bool {
		return l.ID == 11 && l.Status == entities.LotStatusActive && l.EndsAt != nil
	})).Return(nil)
	f.auctionRepo.On("GetByID", ctx, int64(20)).Return(auction, nil)

	close, err := f.svc.FinishLot(ctx, 10)

	require.NoError(t, err)
	assert.Equal(t, entities.LotOutcomeUnsold, close.Result.Outcome)
	assert.False(t, close.AuctionComplete)
	f.itemRepo.AssertNotCalled(t, "DecrementQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestBidService_FinishLot_AlreadyResolved(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	lot := activeLot(-time.Minute)
	lot.Status = entities.LotStatusSold
	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(lot, nil)

	_, err := f.svc.FinishLot(ctx, 10)

	assert.True(t, errs.IsInvalidState(err))
	f.lotRepo.AssertNotCalled(t, "CreateResult", mock.Anything, mock.Anything)
}

// The close audit entry must land under the owning clan, not under the
// auction's own ID.
func TestBidService_FinishLot_AuditScopedToClan(t *testing.T) {
	ctx := context.Background()
	f := newBidFixture()

	lot := activeLot(-time.Minute)
	auction := plainAuction()

	f.lotRepo.On("GetByIDForUpdate", ctx, int64(10)).Return(lot, nil)
	f.bidRepo.On("GetHighestByLot", ctx, int64(10)).Return(nil, nil)
	f.lotRepo.On("Update", ctx, mock.Anything).Return(nil)
	f.lotRepo.On("CreateResult", ctx, mock.Anything).Return(nil)
	f.holdRepo.On("GetActiveByLot", ctx, int64(10)).Return([]*entities.Hold{}, nil)
	f.auctionRepo.On("GetByIDForUpdate", ctx, int64(20)).Return(auction, nil)
	f.lotRepo.On("GetNextPending", ctx, int64(20)).Return(nil, nil)
	f.auctionRepo.On("Update", ctx, mock.Anything).Return(nil)
	f.auctionRepo.On("GetByID", ctx, int64(20)).Return(auction, nil)

	_, err := f.svc.FinishLot(ctx, 10)
	require.NoError(t, err)

	var entry *entities.AuditEntry
	for _, call := range f.auditRepo.Calls {
		e := call.Arguments.Get(1).(*entities.AuditEntry)
		if e.Action == "lot.finish" {
			entry = e
		}
	}
	require.NotNil(t, entry)
	assert.Equal(t, auction.ClanID, entry.ClanID)
	assert.Equal(t, lot.ID, entry.EntityID)
}
