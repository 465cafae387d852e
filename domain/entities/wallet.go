package entities

import (
	"errors"
	"time"
)

// Wallet holds a member's DKP balance within a clan. The ledger and hold
// manager are the only writers of Balance and OnHold.
type Wallet struct {
	ID          int64     `db:"id"`
	MemberID    int64     `db:"member_id"`
	ClanID      int64     `db:"clan_id"`
	Balance     int64     `db:"balance"`
	OnHold      int64     `db:"on_hold"`
	TotalEarned int64     `db:"total_earned"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Available returns the spendable balance: total balance minus escrowed funds.
func (w *Wallet) Available() int64 {
	return w.Balance - w.OnHold
}

// CanReserve checks whether an additional hold of amount fits the available balance.
func (w *Wallet) CanReserve(amount int64) bool {
	return w.Available() >= amount
}

// CanAfford checks if the wallet has sufficient available balance for an amount.
func (w *Wallet) CanAfford(amount int64) bool {
	return w.Available() >= amount
}

// Validate checks the wallet invariant 0 <= onHold <= balance.
func (w *Wallet) Validate() error {
	if w.OnHold < 0 {
		return errors.New("on-hold amount cannot be negative")
	}
	if w.OnHold > w.Balance {
		return errors.New("on-hold amount cannot exceed balance")
	}
	return nil
}
