package application

import (
	"context"
	"errors"
	"fmt"

	"clanhall/domain/interfaces"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

// UnitOfWork defines the interface for transactional repository operations.
// All money-moving and lot-mutating work runs inside one unit of work at
// serializable isolation; the transactional event publisher flushes on
// commit and discards on rollback.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	WalletRepository() interfaces.WalletRepository
	TransactionRepository() interfaces.TransactionRepository
	HoldRepository() interfaces.HoldRepository
	AuctionRepository() interfaces.AuctionRepository
	LotRepository() interfaces.LotRepository
	BidRepository() interfaces.BidRepository
	RandomizerRepository() interfaces.RandomizerRepository
	MemberRepository() interfaces.MemberRepository
	ItemRepository() interfaces.ItemRepository
	AuditRepository() interfaces.AuditRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// CreateForClan creates a new UnitOfWork instance scoped to a specific clan
	CreateForClan(clanID int64) UnitOfWork
}

// maxSerializationRetries bounds the retry loop for aborted serializable
// transactions.
const maxSerializationRetries = 3

// RunInTx executes fn inside a unit of work, committing on success and
// rolling back on error. Serialization failures and deadlocks are retried
// with a fresh unit of work; any other error is returned unchanged.
func RunInTx(ctx context.Context, factory UnitOfWorkFactory, clanID int64, fn func(uow UnitOfWork) error) error {
	var err error
	for attempt := 0; attempt <= maxSerializationRetries; attempt++ {
		if attempt > 0 {
			log.WithFields(log.Fields{
				"clanID":  clanID,
				"attempt": attempt,
			}).Warn("Retrying aborted serializable transaction")
		}

		err = runOnce(ctx, factory, clanID, fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return fmt.Errorf("transaction aborted after %d retries: %w", maxSerializationRetries, err)
}

func runOnce(ctx context.Context, factory UnitOfWorkFactory, clanID int64, fn func(uow UnitOfWork) error) error {
	uow := factory.CreateForClan(clanID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin unit of work: %w", err)
	}

	if err := fn(uow); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithError(rbErr).Error("Failed to roll back unit of work")
		}
		return err
	}

	if err := uow.Commit(); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithError(rbErr).Error("Failed to roll back unit of work after commit failure")
		}
		return fmt.Errorf("failed to commit unit of work: %w", err)
	}
	return nil
}

// isSerializationFailure matches postgres serialization_failure (40001) and
// deadlock_detected (40P01).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
