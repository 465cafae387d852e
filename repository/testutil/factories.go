package testutil

import (
	"context"
	"testing"

	"clanhall/database"
	"clanhall/domain/entities"

	"github.com/stretchr/testify/require"
)

// CreateTestMember inserts a member profile and returns it with its ID set
func CreateTestMember(t *testing.T, db *database.DB, clanID int64, name string) *entities.Member {
	return CreateTestMemberWithStats(t, db, clanID, name, 1000, 50)
}

// CreateTestMemberWithStats inserts a member with specific combat power and level
func CreateTestMemberWithStats(t *testing.T, db *database.DB, clanID int64, name string, combatPower int64, level int) *entities.Member {
	member := &entities.Member{
		ClanID:      clanID,
		Name:        name,
		Role:        entities.MemberRoleMember,
		CombatPower: combatPower,
		Level:       level,
	}
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO members (clan_id, name, role, combat_power, level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, member.ClanID, member.Name, member.Role, member.CombatPower, member.Level).
		Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
	require.NoError(t, err)
	return member
}

// CreateTestItem inserts a warehouse item with the given stock
func CreateTestItem(t *testing.T, db *database.DB, clanID int64, name string, quantity int64) *entities.Item {
	item := &entities.Item{
		ClanID:   clanID,
		Name:     name,
		Quantity: quantity,
	}
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO items (clan_id, name, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, item.ClanID, item.Name, item.Quantity).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	require.NoError(t, err)
	return item
}

// CreateTestAuction inserts an auction in the given status
func CreateTestAuction(t *testing.T, db *database.DB, clanID, createdBy int64, status entities.AuctionStatus) *entities.Auction {
	auction := &entities.Auction{
		ClanID:            clanID,
		Title:             "Test Auction",
		Status:            status,
		CreatedByMemberID: createdBy,
	}
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO auctions (clan_id, title, status, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, auction.ClanID, auction.Title, auction.Status, auction.CreatedByMemberID).
		Scan(&auction.ID, &auction.CreatedAt, &auction.UpdatedAt)
	require.NoError(t, err)
	return auction
}
