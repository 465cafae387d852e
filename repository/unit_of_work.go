package repository

import (
	"context"
	"fmt"

	"clanhall/application"
	"clanhall/database"
	"clanhall/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	clanID                 int64
	transactionalPublisher interfaces.TransactionalEventPublisher

	walletRepo      interfaces.WalletRepository
	transactionRepo interfaces.TransactionRepository
	holdRepo        interfaces.HoldRepository
	auctionRepo     interfaces.AuctionRepository
	lotRepo         interfaces.LotRepository
	bidRepo         interfaces.BidRepository
	randomizerRepo  interfaces.RandomizerRepository
	memberRepo      interfaces.MemberRepository
	itemRepo        interfaces.ItemRepository
	auditRepo       interfaces.AuditRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// CreateForClanWithPublisher creates a new UnitOfWork with a specific transactional publisher
func (f *unitOfWorkFactory) CreateForClanWithPublisher(clanID int64, transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		clanID:                 clanID,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new serializable transaction. Serializable isolation is the
// correctness boundary for all money-moving and lot-mutating operations; a
// conflicting concurrent transaction aborts with SQLSTATE 40001 and is
// retried by the caller.
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create clan-scoped repositories with the transaction
	u.walletRepo = NewWalletRepositoryScoped(tx, u.clanID)
	u.transactionRepo = NewTransactionRepositoryScoped(tx, u.clanID)
	u.holdRepo = NewHoldRepositoryScoped(tx, u.clanID)
	u.auctionRepo = NewAuctionRepositoryScoped(tx, u.clanID)
	u.lotRepo = NewLotRepositoryWithTx(tx)
	u.bidRepo = NewBidRepositoryScoped(tx, u.clanID)
	u.randomizerRepo = NewRandomizerRepositoryScoped(tx, u.clanID)
	u.memberRepo = NewMemberRepositoryWithTx(tx)
	u.itemRepo = NewItemRepositoryWithTx(tx)
	u.auditRepo = NewAuditRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Flush(u.ctx)
	}
	return nil
}

// Rollback rolls back the transaction and discards pending events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}
	return nil
}

func (u *unitOfWork) WalletRepository() interfaces.WalletRepository {
	return u.walletRepo
}

func (u *unitOfWork) TransactionRepository() interfaces.TransactionRepository {
	return u.transactionRepo
}

func (u *unitOfWork) HoldRepository() interfaces.HoldRepository {
	return u.holdRepo
}

func (u *unitOfWork) AuctionRepository() interfaces.AuctionRepository {
	return u.auctionRepo
}

func (u *unitOfWork) LotRepository() interfaces.LotRepository {
	return u.lotRepo
}

func (u *unitOfWork) BidRepository() interfaces.BidRepository {
	return u.bidRepo
}

func (u *unitOfWork) RandomizerRepository() interfaces.RandomizerRepository {
	return u.randomizerRepo
}

func (u *unitOfWork) MemberRepository() interfaces.MemberRepository {
	return u.memberRepo
}

func (u *unitOfWork) ItemRepository() interfaces.ItemRepository {
	return u.itemRepo
}

func (u *unitOfWork) AuditRepository() interfaces.AuditRepository {
	return u.auditRepo
}

// EventBus returns the transactional publisher so events queued during the
// unit of work only leave the process after commit
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalPublisher
}
