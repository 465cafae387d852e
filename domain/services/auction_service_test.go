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

func newAuctionFixture() (*testhelpers.MockAuctionRepository, *testhelpers.MockLotRepository, *testhelpers.MockItemRepository, *auctionService) {
	auctionRepo := new(testhelpers.MockAuctionRepository)
	lotRepo := new(testhelpers.MockLotRepository)
	itemRepo := new(testhelpers.MockItemRepository)
	auditRepo := new(testhelpers.MockAuditRepository)
	publisher := new(testhelpers.MockEventPublisher)

	auditRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	publisher.On("Publish", mock.Anything).Return(nil)

	svc := NewAuctionService(auctionRepo, lotRepo, itemRepo, auditRepo, publisher, 10*time.Minute).(*auctionService)
	return auctionRepo, lotRepo, itemRepo, svc
}

func TestAuctionService_CreateAuction(t *testing.T) {
	ctx := context.Background()
	auctionRepo, _, _, svc := newAuctionFixture()

	auctionRepo.On("Create", ctx, mock.MatchedBy(func(a *entities.Auction) bool {
		return a.Status == entities.AuctionStatusDraft
	})).Return(nil)

	auction, err := svc.CreateAuction(ctx, &entities.Auction{ClanID: 7, Title: "weekly", CreatedByMemberID: 1})

	require.NoError(t, err)
	assert.Equal(t, entities.AuctionStatusDraft, auction.Status)
}

func TestAuctionService_CreateAuction_InvalidAntiSniper(t *testing.T) {
	ctx := context.Background()
	_, _, _, svc := newAuctionFixture()

	_, err := svc.CreateAuction(ctx, &entities.Auction{
		ClanID:            7,
		Title:             "weekly",
		AntiSniperEnabled: true,
	})

	assert.True(t, errs.IsValidation(err))
}

func TestAuctionService_AddLot_RejectsNonDraft(t *testing.T) {
	ctx := context.Background()
	auctionRepo, _, _, svc := newAuctionFixture()

	active := &entities.Auction{ID: 20, ClanID: 7, Status: entities.AuctionStatusActive}
	auctionRepo.On("GetByIDForUpdate", ctx, int64(20)).Return(active, nil)

	_, err := svc.AddLot(ctx, 20, &entities.Lot{ItemID: 30, Quantity: 1, StartPrice: 100, MinStep: 10})

	assert.True(t, errs.IsInvalidState(err))
}

func TestAuctionService_AddLot_RejectsInsufficientStock(t *testing.T) {
	ctx := context.Background()
	auctionRepo, _, itemRepo, svc := newAuctionFixture()

	draft := &entities.Auction{ID: 20, ClanID: 7, Status: entities.AuctionStatusDraft}
	auctionRepo.On("GetByIDForUpdate", ctx, int64(20)).Return(draft, nil)
	itemRepo.On("GetByID", ctx, int64(30)).Return(&entities.Item{ID: 30, Quantity: 1}, nil)

	_, err := svc.AddLot(ctx, 20, &entities.Lot{ItemID: 30, Quantity: 3, StartPrice: 100, MinStep: 10})

	assert.True(t, errs.IsValidation(err))
}

func TestAuctionService_AddLot_AppendsInSortOrder(t *testing.T) {
	ctx := context.Background()
	auctionRepo, lotRepo, itemRepo, svc := newAuctionFixture()

	draft := &entities.Auction{ID: 20, ClanID: 7, Status: entities.AuctionStatusDraft}
	auctionRepo.On("GetByIDForUpdate", ctx, int64(20)).Return(draft, nil)
	itemRepo.On("GetByID", ctx, int64(30)).Return(&entities.Item{ID: 30, Quantity: 5}, nil)
	lotRepo.On("CountByAuction", ctx, int64(20)).Return(2, nil)
	lotRepo.On("Create", ctx, mock.MatchedBy(func(l *entities.Lot) bool {
		return l.AuctionID == 20 && l.Status == entities.LotStatusPending && l.SortOrder == 2
	})).Return(nil)

	lot, err := svc.AddLot(ctx, 20, &entities.Lot{ItemID: 30, Quantity: 1, StartPrice: 100, MinStep: 10})

	require.NoError(t, err)
	assert.Equal(t, 2, lot.SortOrder)
	lotRepo.AssertExpectations(t)
}

func TestAuctionService_StartAuction_RequiresLots(t *testing.T) {
	ctx := context.Background()
	auctionRepo, lotRepo, _, svc := newAuctionFixture()

	draft := &entities.Auction{ID: 20, ClanID: 7, Status: entities.AuctionStatusDraft}
	auctionRepo.On("GetByIDForUpdate", ctx, int64(20)).Return(draft, nil)
	lotRepo.On("CountByAuction", ctx, int64(20)).Return(0, nil)

	err := svc.StartAuction(ctx, 20)

	assert.True(t, errs.IsInvalidState(err))
	auctionRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAuctionService_StartAuction_ActivatesFirstLot(t *testing.T) {
	ctx := context.Background()
	auctionRepo, lotRepo, _, svc := newAuctionFixture()

	draft := &entities.Auction{ID: 20, ClanID: 7, Status: entities.AuctionStatusDraft}
	first := &entities.Lot{ID: 10, AuctionID: 20, Status: entities.LotStatusPending}

	auctionRepo.On("GetByIDForUpdate", ctx, int64(20)).Return(draft, nil)
	lotRepo.On("CountByAuction", ctx, int64(20)).Return(2, nil)
	auctionRepo.On("Update", ctx, mock.MatchedBy(func(a *entities.Auction) bool {
		return a.Status == entities.AuctionStatusActive
	})).Return(nil)
	lotRepo.On("GetNextPending", ctx, int64(20)).Return(first, nil)
	lotRepo.On("Update", ctx, mock.MatchedBy(func(l *entities.Lot) bool {
		return l.Status == entities.LotStatusActive && l.EndsAt != nil
	})).Return(nil)

	err := svc.StartAuction(ctx, 20)

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), *first.EndsAt, 2*time.Second)
	lotRepo.AssertExpectations(t)
}

func TestAuctionService_CancelAuction_RejectsTerminal(t *testing.T) {
	ctx := context.Background()
	auctionRepo, _, _, svc := newAuctionFixture()

	done := &entities.Auction{ID: 20, ClanID: 7, Status: entities.AuctionStatusCompleted}
	auctionRepo.On("GetByIDForUpdate", ctx, int64(20)).Return(done, nil)

	err := svc.CancelAuction(ctx, 20)

	assert.True(t, errs.IsInvalidState(err))
}
