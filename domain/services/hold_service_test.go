package services

import (
	"context"
	"testing"

	"clanhall/domain/entities"
	"clanhall/domain/errs"
	"clanhall/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newHoldFixture() (*testhelpers.MockWalletRepository, *testhelpers.MockHoldRepository, *testhelpers.MockTransactionRepository, *holdService) {
	walletRepo := new(testhelpers.MockWalletRepository)
	holdRepo := new(testhelpers.MockHoldRepository)
	txRepo := new(testhelpers.MockTransactionRepository)
	auditRepo := new(testhelpers.MockAuditRepository)
	publisher := new(testhelpers.MockEventPublisher)

	auditRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	publisher.On("Publish", mock.Anything).Return(nil)

	svc := NewHoldService(walletRepo, holdRepo, txRepo, auditRepo, publisher).(*holdService)
	return walletRepo, holdRepo, txRepo, svc
}

func TestHoldService_PlaceHold(t *testing.T) {
	ctx := context.Background()
	walletRepo, holdRepo, txRepo, svc := newHoldFixture()

	wallet := &entities.Wallet{ID: 1, MemberID: 42, ClanID: 7, Balance: 100}

	walletRepo.On("GetByMemberIDForUpdate", ctx, int64(42)).Return(wallet, nil)
	walletRepo.On("UpdateBalances", ctx, mock.MatchedBy(func(w *entities.Wallet) bool {
		return w.Balance == 100 && w.OnHold == 60
	})).Return(nil)
	holdRepo.On("Create", ctx, mock.MatchedBy(func(h *entities.Hold) bool {
		return h.MemberID == 42 && h.Amount == 60 && h.Status == entities.HoldStatusActive
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.Hold).ID = 5
	})
	txRepo.On("Record", ctx, mock.MatchedBy(func(tx *entities.Transaction) bool {
		return tx.Type == entities.TransactionTypeAuctionHold &&
			tx.Amount == 0 &&
			tx.BalanceBefore == 100 &&
			tx.BalanceAfter == 100
	})).Return(nil)

	hold, err := svc.PlaceHold(ctx, 42, 60)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), hold.ID)
	assert.Equal(t, int64(40), wallet.Available())
	walletRepo.AssertExpectations(t)
	holdRepo.AssertExpectations(t)
	txRepo.AssertExpectations(t)
}

func TestHoldService_PlaceHold_InsufficientAvailable(t *testing.T) {
	ctx := context.Background()
	walletRepo, _, _, svc := newHoldFixture()

	// Balance 100 with 60 already on hold: a second hold of 50 must fail.
	wallet := &entities.Wallet{ID: 1, MemberID: 42, ClanID: 7, Balance: 100, OnHold: 60}
	walletRepo.On("GetByMemberIDForUpdate", ctx, int64(42)).Return(wallet, nil)

	_, err := svc.PlaceHold(ctx, 42, 50)

	assert.True(t, errs.IsInsufficientFunds(err))
	walletRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything)
}

func TestHoldService_FinalizeHold(t *testing.T) {
	ctx := context.Background()
	walletRepo, holdRepo, txRepo, svc := newHoldFixture()

	hold := &entities.Hold{ID: 5, MemberID: 42, ClanID: 7, Amount: 60, Status: entities.HoldStatusActive}
	wallet := &entities.Wallet{ID: 1, MemberID: 42, ClanID: 7, Balance: 100, OnHold: 60}

	holdRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(hold, nil)
	walletRepo.On("GetByMemberIDForUpdate", ctx, int64(42)).Return(wallet, nil)
	walletRepo.On("UpdateBalances", ctx, mock.MatchedBy(func(w *entities.Wallet) bool {
		return w.Balance == 40 && w.OnHold == 0
	})).Return(nil)
	holdRepo.On("Update", ctx, mock.MatchedBy(func(h *entities.Hold) bool {
		return h.Status == entities.HoldStatusFinalized && h.ClosedAt != nil
	})).Return(nil)
	txRepo.On("Record", ctx, mock.MatchedBy(func(tx *entities.Transaction) bool {
		return tx.Type == entities.TransactionTypeAuctionPayment &&
			tx.Amount == -60 &&
			tx.BalanceBefore == 100 &&
			tx.BalanceAfter == 40
	})).Return(nil)

	err := svc.FinalizeHold(ctx, 5)

	assert.NoError(t, err)
	walletRepo.AssertExpectations(t)
	holdRepo.AssertExpectations(t)
	txRepo.AssertExpectations(t)
}

func TestHoldService_ReleaseHold(t *testing.T) {
	ctx := context.Background()
	walletRepo, holdRepo, txRepo, svc := newHoldFixture()

	hold := &entities.Hold{ID: 5, MemberID: 42, ClanID: 7, Amount: 60, Status: entities.HoldStatusActive}
	wallet := &entities.Wallet{ID: 1, MemberID: 42, ClanID: 7, Balance: 100, OnHold: 60}

	holdRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(hold, nil)
	walletRepo.On("GetByMemberIDForUpdate", ctx, int64(42)).Return(wallet, nil)
	walletRepo.On("UpdateBalances", ctx, mock.MatchedBy(func(w *entities.Wallet) bool {
		return w.Balance == 100 && w.OnHold == 0
	})).Return(nil)
	holdRepo.On("Update", ctx, mock.MatchedBy(func(h *entities.Hold) bool {
		return h.Status == entities.HoldStatusReleased && h.ClosedAt != nil
	})).Return(nil)
	txRepo.On("Record", ctx, mock.MatchedBy(func(tx *entities.Transaction) bool {
		return tx.Type == entities.TransactionTypeAuctionRelease && tx.Amount == 0
	})).Return(nil)

	err := svc.ReleaseHold(ctx, 5)

	assert.NoError(t, err)
	assert.Equal(t, int64(100), wallet.Available())
	walletRepo.AssertExpectations(t)
}

func TestHoldService_TerminatedHoldCannotBeTerminatedAgain(t *testing.T) {
	ctx := context.Background()
	walletRepo, holdRepo, _, svc := newHoldFixture()

	released := &entities.Hold{ID: 5, MemberID: 42, Amount: 60, Status: entities.HoldStatusReleased}
	holdRepo.On("GetByIDForUpdate", ctx, int64(5)).Return(released, nil)

	assert.True(t, errs.IsInvalidState(svc.ReleaseHold(ctx, 5)))
	assert.True(t, errs.IsInvalidState(svc.FinalizeHold(ctx, 5)))
	walletRepo.AssertNotCalled(t, "UpdateBalances", mock.Anything, mock.Anything)
}
