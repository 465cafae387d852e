package services

import (
	"context"
	"fmt"
	"time"

	"clanhall/domain/entities"
	"clanhall/domain/errs"
	"clanhall/domain/interfaces"
	"clanhall/domain/utils"
)

type holdService struct {
	walletRepo     interfaces.WalletRepository
	holdRepo       interfaces.HoldRepository
	txRepo         interfaces.TransactionRepository
	auditRepo      interfaces.AuditRepository
	eventPublisher interfaces.EventPublisher
}

// NewHoldService creates a new hold service.
func NewHoldService(walletRepo interfaces.WalletRepository, holdRepo interfaces.HoldRepository, txRepo interfaces.TransactionRepository, auditRepo interfaces.AuditRepository, eventPublisher interfaces.EventPublisher) interfaces.HoldService {
	return &holdService{
		walletRepo:     walletRepo,
		holdRepo:       holdRepo,
		txRepo:         txRepo,
		auditRepo:      auditRepo,
		eventPublisher: eventPublisher,
	}
}

func (s *holdService) PlaceHold(ctx context.Context, memberID, amount int64) (*entities.Hold, error) {
	if amount <= 0 {
		return nil, errs.Validationf("hold amount %d must be positive", amount)
	}

	wallet, err := s.walletRepo.GetByMemberIDForUpdate(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, errs.NotFound("wallet for member", memberID)
	}
	if !wallet.CanReserve(amount) {
		return nil, errs.InsufficientFunds(wallet.Available(), amount)
	}

	wallet.OnHold += amount
	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}

	hold := &entities.Hold{
		MemberID: memberID,
		ClanID:   wallet.ClanID,
		Amount:   amount,
		Status:   entities.HoldStatusActive,
	}
	if err := s.holdRepo.Create(ctx, hold); err != nil {
		return nil, fmt.Errorf("failed to create hold: %w", err)
	}

	// Zero-delta marker so the escrow shows up in the transaction history.
	if err := s.recordMarker(ctx, wallet, hold, entities.TransactionTypeAuctionHold); err != nil {
		return nil, err
	}

	s.audit(ctx, hold, "hold.place")
	return hold, nil
}

func (s *holdService) FinalizeHold(ctx context.Context, holdID int64) error {
	hold, wallet, err := s.lockActiveHold(ctx, holdID)
	if err != nil {
		return err
	}

	balanceBefore := wallet.Balance
	wallet.Balance -= hold.Amount
	wallet.OnHold -= hold.Amount
	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	now := time.Now().UTC()
	hold.Status = entities.HoldStatusFinalized
	hold.ClosedAt = &now
	if err := s.holdRepo.Update(ctx, hold); err != nil {
		return fmt.Errorf("failed to update hold: %w", err)
	}

	holdID64 := hold.ID
	relType := entities.RelatedTypeHold
	tx := &entities.Transaction{
		MemberID:      wallet.MemberID,
		ClanID:        wallet.ClanID,
		Type:          entities.TransactionTypeAuctionPayment,
		Amount:        -hold.Amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  wallet.Balance,
		RelatedID:     &holdID64,
		RelatedType:   &relType,
	}
	if err := utils.RecordLedgerEntry(ctx, s.txRepo, s.eventPublisher, tx); err != nil {
		return err
	}

	s.audit(ctx, hold, "hold.finalize")
	return nil
}

func (s *holdService) ReleaseHold(ctx context.Context, holdID int64) error {
	hold, wallet, err := s.lockActiveHold(ctx, holdID)
	if err != nil {
		return err
	}

	wallet.OnHold -= hold.Amount
	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}

	now := time.Now().UTC()
	hold.Status = entities.HoldStatusReleased
	hold.ClosedAt = &now
	if err := s.holdRepo.Update(ctx, hold); err != nil {
		return fmt.Errorf("failed to update hold: %w", err)
	}

	if err := s.recordMarker(ctx, wallet, hold, entities.TransactionTypeAuctionRelease); err != nil {
		return err
	}

	s.audit(ctx, hold, "hold.release")
	return nil
}

// lockActiveHold loads the hold and its wallet under row locks, rejecting any
// hold that has already been terminated. A second termination attempt is a
// hard error: silently ignoring it would corrupt the on-hold counter.
func (s *holdService) lockActiveHold(ctx context.Context, holdID int64) (*entities.Hold, *entities.Wallet, error) {
	hold, err := s.holdRepo.GetByIDForUpdate(ctx, holdID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get hold: %w", err)
	}
	if hold == nil {
		return nil, nil, errs.NotFound("hold", holdID)
	}
	if !hold.IsActive() {
		return nil, nil, errs.InvalidStatef("hold %d is already %s", hold.ID, hold.Status)
	}

	wallet, err := s.walletRepo.GetByMemberIDForUpdate(ctx, hold.MemberID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, nil, errs.NotFound("wallet for member", hold.MemberID)
	}
	return hold, wallet, nil
}

func (s *holdService) recordMarker(ctx context.Context, wallet *entities.Wallet, hold *entities.Hold, txType entities.TransactionType) error {
	holdID := hold.ID
	relType := entities.RelatedTypeHold
	tx := &entities.Transaction{
		MemberID:      wallet.MemberID,
		ClanID:        wallet.ClanID,
		Type:          txType,
		Amount:        0,
		BalanceBefore: wallet.Balance,
		BalanceAfter:  wallet.Balance,
		RelatedID:     &holdID,
		RelatedType:   &relType,
		Metadata:      map[string]any{"hold_amount": hold.Amount},
	}
	return utils.RecordLedgerEntry(ctx, s.txRepo, s.eventPublisher, tx)
}

func (s *holdService) audit(ctx context.Context, hold *entities.Hold, action string) {
	utils.RecordAudit(ctx, s.auditRepo, &entities.AuditEntry{
		ClanID:        hold.ClanID,
		ActorMemberID: hold.MemberID,
		Action:        action,
		EntityType:    "hold",
		EntityID:      hold.ID,
		After:         map[string]any{"status": string(hold.Status), "amount": hold.Amount},
	})
}
