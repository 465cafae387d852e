package entities

import (
	"errors"
	"time"
)

// RelatedType represents what type of entity a transaction's RelatedID refers to.
type RelatedType string

const (
	RelatedTypeBid        RelatedType = "bid"
	RelatedTypeLot        RelatedType = "lot"
	RelatedTypeHold       RelatedType = "hold"
	RelatedTypeRandomizer RelatedType = "randomizer_session"
)

// Transaction is an immutable, append-only record of a balance-affecting event.
// The before/after snapshot pair lets an auditor replay the ledger without
// recomputation. Rows are never updated or deleted.
type Transaction struct {
	ID             int64           `db:"id"`
	MemberID       int64           `db:"member_id"`
	ClanID         int64           `db:"clan_id"`
	Type           TransactionType `db:"transaction_type"`
	Amount         int64           `db:"amount"` // signed; zero for escrow markers
	BalanceBefore  int64           `db:"balance_before"`
	BalanceAfter   int64           `db:"balance_after"`
	IdempotencyKey *string         `db:"idempotency_key"`
	RelatedID      *int64          `db:"related_id"`
	RelatedType    *RelatedType    `db:"related_type"`
	Metadata       map[string]any  `db:"metadata"`
	CreatedAt      time.Time       `db:"created_at"`
}

// IsCredit returns true if the transaction increased the balance.
func (t *Transaction) IsCredit() bool {
	return t.Amount > 0
}

// IsDebit returns true if the transaction decreased the balance.
func (t *Transaction) IsDebit() bool {
	return t.Amount < 0
}

// Validate checks the snapshot pair is consistent with the signed amount.
func (t *Transaction) Validate() error {
	if t.BalanceAfter != t.BalanceBefore+t.Amount {
		return errors.New("balance snapshot is inconsistent with amount")
	}
	if t.Amount == 0 && !t.Type.IsEscrowMarker() {
		return errors.New("only escrow markers may carry a zero amount")
	}
	return nil
}
