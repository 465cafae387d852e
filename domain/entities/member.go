package entities

import "time"

// MemberRole is a member's rank within the clan.
type MemberRole string

const (
	MemberRoleLeader MemberRole = "leader"
	MemberRoleElder  MemberRole = "elder"
	MemberRoleMember MemberRole = "member"
)

// Member is a clan member profile. A wallet is created alongside the profile
// and lives as long as the member does.
type Member struct {
	ID          int64      `db:"id"`
	ClanID      int64      `db:"clan_id"`
	Name        string     `db:"name"`
	Role        MemberRole `db:"role"`
	CombatPower int64      `db:"combat_power"`
	Level       int        `db:"level"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// IsOfficer returns true for roles that may administer auctions and draws.
func (m *Member) IsOfficer() bool {
	return m.Role == MemberRoleLeader || m.Role == MemberRoleElder
}
