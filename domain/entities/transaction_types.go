package entities

// TransactionType represents the type of a ledger movement.
type TransactionType string

// All transaction types written by the ledger.
const (
	// Auction-related transactions
	TransactionTypeAuctionHold    TransactionType = "auction_hold"    // zero-delta escrow marker
	TransactionTypeAuctionRelease TransactionType = "auction_release" // zero-delta escrow release marker
	TransactionTypeAuctionPayment TransactionType = "auction_payment" // winner's finalized hold

	// Reward transactions
	TransactionTypeActivityReward TransactionType = "activity_reward"
	TransactionTypeInitial        TransactionType = "initial"

	// Administrative transactions
	TransactionTypePenalty     TransactionType = "penalty"
	TransactionTypeAdminAdjust TransactionType = "admin_adjust"
)

// IsEscrowMarker returns true for zero-delta transactions recorded purely for
// hold traceability.
func (tt TransactionType) IsEscrowMarker() bool {
	return tt == TransactionTypeAuctionHold || tt == TransactionTypeAuctionRelease
}

// IsCreditType returns true if the transaction type normally increases balance.
func (tt TransactionType) IsCreditType() bool {
	return tt == TransactionTypeActivityReward || tt == TransactionTypeInitial
}

// String returns the string representation of the transaction type.
func (tt TransactionType) String() string {
	return string(tt)
}
