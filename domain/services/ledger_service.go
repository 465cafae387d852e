package services

import (
	"context"
	"fmt"

	"clanhall/domain/entities"
	"clanhall/domain/errs"
	"clanhall/domain/interfaces"
	"clanhall/domain/utils"
)

type ledgerService struct {
	walletRepo     interfaces.WalletRepository
	txRepo         interfaces.TransactionRepository
	auditRepo      interfaces.AuditRepository
	eventPublisher interfaces.EventPublisher
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(walletRepo interfaces.WalletRepository, txRepo interfaces.TransactionRepository, auditRepo interfaces.AuditRepository, eventPublisher interfaces.EventPublisher) interfaces.LedgerService {
	return &ledgerService{
		walletRepo:     walletRepo,
		txRepo:         txRepo,
		auditRepo:      auditRepo,
		eventPublisher: eventPublisher,
	}
}

func (s *ledgerService) Credit(ctx context.Context, memberID, amount int64, txType entities.TransactionType, ref *interfaces.TransactionRef, idemKey string) (*entities.Transaction, error) {
	if amount <= 0 {
		return nil, errs.Validationf("credit amount %d must be positive", amount)
	}

	if prior, err := s.replayByKey(ctx, idemKey); err != nil || prior != nil {
		return prior, err
	}

	wallet, err := s.walletRepo.GetByMemberIDForUpdate(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, errs.NotFound("wallet for member", memberID)
	}

	balanceBefore := wallet.Balance
	wallet.Balance += amount
	wallet.TotalEarned += amount
	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}

	tx := s.newTransaction(wallet, txType, amount, balanceBefore, ref, idemKey)
	if err := utils.RecordLedgerEntry(ctx, s.txRepo, s.eventPublisher, tx); err != nil {
		return nil, err
	}

	s.audit(ctx, wallet, "ledger.credit", balanceBefore, wallet.Balance)
	return tx, nil
}

func (s *ledgerService) Debit(ctx context.Context, memberID, amount int64, txType entities.TransactionType, ref *interfaces.TransactionRef, allowNegativeHeld bool, idemKey string) (*entities.Transaction, error) {
	if amount <= 0 {
		return nil, errs.Validationf("debit amount %d must be positive", amount)
	}

	if prior, err := s.replayByKey(ctx, idemKey); err != nil || prior != nil {
		return prior, err
	}

	wallet, err := s.walletRepo.GetByMemberIDForUpdate(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, errs.NotFound("wallet for member", memberID)
	}

	// Balance itself never goes below zero. Penalties may drive the
	// available balance negative (held funds exceeding balance), but only
	// when explicitly allowed.
	if wallet.Balance < amount {
		return nil, errs.InsufficientFunds(wallet.Balance, amount)
	}
	if !allowNegativeHeld && wallet.Available() < amount {
		return nil, errs.InsufficientFunds(wallet.Available(), amount)
	}

	balanceBefore := wallet.Balance
	wallet.Balance -= amount
	if err := s.walletRepo.UpdateBalances(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}

	tx := s.newTransaction(wallet, txType, -amount, balanceBefore, ref, idemKey)
	if err := utils.RecordLedgerEntry(ctx, s.txRepo, s.eventPublisher, tx); err != nil {
		return nil, err
	}

	s.audit(ctx, wallet, "ledger.debit", balanceBefore, wallet.Balance)
	return tx, nil
}

func (s *ledgerService) GetWallet(ctx context.Context, memberID int64) (*entities.Wallet, error) {
	wallet, err := s.walletRepo.GetByMemberID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, errs.NotFound("wallet for member", memberID)
	}
	return wallet, nil
}

// replayByKey returns the prior transaction when the idempotency key was
// already used, giving retried requests exactly-once semantics.
func (s *ledgerService) replayByKey(ctx context.Context, idemKey string) (*entities.Transaction, error) {
	if idemKey == "" {
		return nil, nil
	}
	prior, err := s.txRepo.GetByIdempotencyKey(ctx, idemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return prior, nil
}

func (s *ledgerService) newTransaction(wallet *entities.Wallet, txType entities.TransactionType, amount, balanceBefore int64, ref *interfaces.TransactionRef, idemKey string) *entities.Transaction {
	tx := &entities.Transaction{
		MemberID:      wallet.MemberID,
		ClanID:        wallet.ClanID,
		Type:          txType,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  wallet.Balance,
	}
	if idemKey != "" {
		tx.IdempotencyKey = &idemKey
	}
	if ref != nil {
		tx.RelatedID = &ref.ID
		relType := ref.Type
		tx.RelatedType = &relType
	}
	return tx
}

func (s *ledgerService) audit(ctx context.Context, wallet *entities.Wallet, action string, before, after int64) {
	utils.RecordAudit(ctx, s.auditRepo, &entities.AuditEntry{
		ClanID:        wallet.ClanID,
		ActorMemberID: wallet.MemberID,
		Action:        action,
		EntityType:    "wallet",
		EntityID:      wallet.ID,
		Before:        map[string]any{"balance": before},
		After:         map[string]any{"balance": after},
	})
}
