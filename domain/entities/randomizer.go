package entities

import "time"

// RandomizerStatus represents the lifecycle state of a randomizer session.
type RandomizerStatus string

const (
	RandomizerStatusPending   RandomizerStatus = "pending"
	RandomizerStatusCompleted RandomizerStatus = "completed"
)

// RandomizerSession is a clan-scoped weighted draw for a warehouse item.
// The seed hash is published at creation; the seed itself is revealed only
// when the draw runs, so participants can verify fairness after the fact.
type RandomizerSession struct {
	ID          int64            `db:"id"`
	ClanID      int64            `db:"clan_id"`
	ItemID      int64            `db:"item_id"`
	Quantity    int64            `db:"quantity"`
	Seed        string           `db:"seed"`
	SeedHash    string           `db:"seed_hash"`
	Status      RandomizerStatus `db:"status"`
	CreatedAt   time.Time        `db:"created_at"`
	CompletedAt *time.Time       `db:"completed_at"`
}

// IsCompleted returns true once the draw has run.
func (s *RandomizerSession) IsCompleted() bool {
	return s.Status == RandomizerStatusCompleted
}

// RandomizerEntry is one eligible member's weighted ticket in a session.
type RandomizerEntry struct {
	ID          int64   `db:"id"`
	SessionID   int64   `db:"session_id"`
	MemberID    int64   `db:"member_id"`
	CombatPower int64   `db:"combat_power"`
	Level       int     `db:"level"`
	Weight      float64 `db:"weight"`
}

// RandomizerResult records the winner along with a proof object from which any
// third party can recompute the same winner.
type RandomizerResult struct {
	ID             int64           `db:"id"`
	SessionID      int64           `db:"session_id"`
	WinnerMemberID int64           `db:"winner_member_id"`
	Roll           float64         `db:"roll"`
	Proof          RandomizerProof `db:"proof"`
	CreatedAt      time.Time       `db:"created_at"`
}

// RandomizerProof is the published reproducibility proof for a draw.
type RandomizerProof struct {
	Seed           string       `json:"seed"`
	SeedHash       string       `json:"seed_hash"`
	Roll           float64      `json:"roll"`
	Entries        []ProofEntry `json:"entries"`
	WinnerMemberID int64        `json:"winner_member_id"`
}

// ProofEntry is one member's weight and normalized share within a proof.
type ProofEntry struct {
	MemberID int64   `json:"member_id"`
	Weight   float64 `json:"weight"`
	Share    float64 `json:"share"`
}
