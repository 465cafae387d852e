package utils

import (
	"context"
	"fmt"

	"clanhall/domain/entities"
	"clanhall/domain/events"
	"clanhall/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	// InitialBalance is the starting DKP balance for new members.
	InitialBalance int64 = 0
)

// RecordLedgerEntry appends a transaction row and emits the wallet change
// event. This is the single entry point for all balance-affecting writes.
func RecordLedgerEntry(ctx context.Context, txRepo interfaces.TransactionRepository, eventPublisher interfaces.EventPublisher, tx *entities.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	if err := txRepo.Record(ctx, tx); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	event := events.WalletChangeEvent{
		MemberID:        tx.MemberID,
		ClanID:          tx.ClanID,
		OldBalance:      tx.BalanceBefore,
		NewBalance:      tx.BalanceAfter,
		TransactionType: tx.Type,
		ChangeAmount:    tx.Amount,
	}
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish wallet change event")
	}

	return nil
}

// RecordAudit writes an audit entry, logging and swallowing any failure so
// the originating operation is never rolled back by the audit side channel.
func RecordAudit(ctx context.Context, auditRepo interfaces.AuditRepository, entry *entities.AuditEntry) {
	if err := auditRepo.Record(ctx, entry); err != nil {
		log.WithFields(log.Fields{
			"action":     entry.Action,
			"entityType": entry.EntityType,
			"entityID":   entry.EntityID,
		}).WithError(err).Error("Failed to record audit entry")
	}
}
