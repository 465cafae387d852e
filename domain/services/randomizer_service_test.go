package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"clanhall/domain/entities"
	"clanhall/domain/errs"
	"clanhall/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRandomizerFixture() (*testhelpers.MockRandomizerRepository, *testhelpers.MockMemberRepository, *testhelpers.MockItemRepository, *randomizerService) {
	randomizerRepo := new(testhelpers.MockRandomizerRepository)
	memberRepo := new(testhelpers.MockMemberRepository)
	itemRepo := new(testhelpers.MockItemRepository)
	auditRepo := new(testhelpers.MockAuditRepository)
	publisher := new(testhelpers.MockEventPublisher)

	auditRepo.On("Record", mock.Anything, mock.Anything).Return(nil)
	publisher.On("Publish", mock.Anything).Return(nil)

	svc := NewRandomizerService(randomizerRepo, memberRepo, NewInventoryService(itemRepo), auditRepo, publisher, 0, 1).(*randomizerService)
	return randomizerRepo, memberRepo, itemRepo, svc
}

func TestComputeWeights_WeakerMembersGetLargerBonus(t *testing.T) {
	members := []*entities.Member{
		{ID: 1, CombatPower: 1000, Level: 60},
		{ID: 2, CombatPower: 500, Level: 40},
		{ID: 3, CombatPower: 100, Level: 20},
	}

	weights := ComputeWeights(members, 0, 1)

	// Strongest on both axes gets weight 1, weakest gets 2.
	assert.Equal(t, 1.0, weights[1])
	assert.Equal(t, 2.0, weights[3])
	assert.Greater(t, weights[2], weights[1])
	assert.Less(t, weights[2], weights[3])
}

func TestComputeWeights_TiedAxisGivesMidpoint(t *testing.T) {
	members := []*entities.Member{
		{ID: 1, CombatPower: 500, Level: 50},
		{ID: 2, CombatPower: 500, Level: 50},
	}

	weights := ComputeWeights(members, 0, 1)

	assert.Equal(t, 1.5, weights[1])
	assert.Equal(t, 1.5, weights[2])
}

func TestRollFromSeed_DeterministicAndInRange(t *testing.T) {
	roll := RollFromSeed("fixed-seed")

	assert.Equal(t, roll, RollFromSeed("fixed-seed"))
	assert.GreaterOrEqual(t, roll, 0.0)
	assert.Less(t, roll, 1.0)
	assert.NotEqual(t, roll, RollFromSeed("another-seed"))
}

func TestRandomizerService_CreateSession(t *testing.T) {
	ctx := context.Background()
	randomizerRepo, memberRepo, itemRepo, svc := newRandomizerFixture()

	members := []*entities.Member{
		{ID: 1, ClanID: 7, CombatPower: 1000, Level: 60},
		{ID: 2, ClanID: 7, CombatPower: 100, Level: 20},
	}

	itemRepo.On("GetByID", ctx, int64(30)).Return(&entities.Item{ID: 30, Quantity: 5}, nil)
	memberRepo.On("ListByClan", ctx, int64(7)).Return(members, nil)
	randomizerRepo.On("CreateSession", ctx, mock.MatchedBy(func(s *entities.RandomizerSession) bool {
		return s.ClanID == 7 &&
			s.Status == entities.RandomizerStatusPending &&
			s.Seed != "" &&
			s.SeedHash != ""
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.RandomizerSession).ID = 9
	})
	randomizerRepo.On("CreateEntries", ctx, mock.MatchedBy(func(entries []*entities.RandomizerEntry) bool {
		return len(entries) == 2 && entries[0].SessionID == 9 && entries[1].Weight == 2.0
	})).Return(nil)

	session, err := svc.CreateSession(ctx, 7, 30, 1)

	require.NoError(t, err)
	// The published hash must commit to the stored seed.
	sum := sha256.Sum256([]byte(session.Seed))
	assert.Equal(t, hex.EncodeToString(sum[:]), session.SeedHash)
	randomizerRepo.AssertExpectations(t)
}

func TestRandomizerService_CreateSession_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	_, _, itemRepo, svc := newRandomizerFixture()

	itemRepo.On("GetByID", ctx, int64(30)).Return(&entities.Item{ID: 30, Quantity: 1}, nil)

	_, err := svc.CreateSession(ctx, 7, 30, 3)

	assert.True(t, errs.IsValidation(err))
}

func TestRandomizerService_RunDraw(t *testing.T) {
	ctx := context.Background()
	randomizerRepo, _, itemRepo, svc := newRandomizerFixture()

	seed := "test-seed"
	sum := sha256.Sum256([]byte(seed))
	session := &entities.RandomizerSession{
		ID:       9,
		ClanID:   7,
		ItemID:   30,
		Quantity: 1,
		Seed:     seed,
		SeedHash: hex.EncodeToString(sum[:]),
		Status:   entities.RandomizerStatusPending,
	}
	entries := []*entities.RandomizerEntry{
		{SessionID: 9, MemberID: 1, Weight: 1.0},
		{SessionID: 9, MemberID: 2, Weight: 2.0},
	}

	randomizerRepo.On("GetSessionByIDForUpdate", ctx, int64(9)).Return(session, nil)
	randomizerRepo.On("GetEntriesBySession", ctx, int64(9)).Return(entries, nil)
	itemRepo.On("DecrementQuantity", ctx, int64(30), int64(1)).Return(nil)
	randomizerRepo.On("CreateResult", ctx, mock.MatchedBy(func(r *entities.RandomizerResult) bool {
		return r.SessionID == 9 && r.Proof.Seed == seed && len(r.Proof.Entries) == 2
	})).Return(nil)
	randomizerRepo.On("UpdateSession", ctx, mock.MatchedBy(func(s *entities.RandomizerSession) bool {
		return s.Status == entities.RandomizerStatusCompleted && s.CompletedAt != nil
	})).Return(nil)

	result, err := svc.RunDraw(ctx, 9)

	require.NoError(t, err)
	assert.Equal(t, RollFromSeed(seed), result.Result.Roll)
	assert.Equal(t, result.Result.WinnerMemberID, result.Result.Proof.WinnerMemberID)
	// Anyone holding the proof can recompute the same winner.
	assert.NoError(t, VerifyProof(&result.Result.Proof))
	randomizerRepo.AssertExpectations(t)
	itemRepo.AssertExpectations(t)
}

func TestRandomizerService_RunDraw_IsDeterministic(t *testing.T) {
	entries := []*entities.RandomizerEntry{
		{MemberID: 3, Weight: 1.5},
		{MemberID: 1, Weight: 1.0},
		{MemberID: 2, Weight: 2.0},
	}
	roll := RollFromSeed("replay-seed")

	first, winnerA := selectWinner(entries, roll)
	second, winnerB := selectWinner(entries, roll)

	assert.Equal(t, winnerA, winnerB)
	assert.Equal(t, first, second)
	// Entries are walked in member order regardless of input order.
	assert.Equal(t, int64(1), first[0].MemberID)
	assert.Equal(t, int64(3), first[2].MemberID)
}

func TestRandomizerService_RunDraw_RejectsCompletedSession(t *testing.T) {
	ctx := context.Background()
	randomizerRepo, _, itemRepo, svc := newRandomizerFixture()

	done := &entities.RandomizerSession{ID: 9, Status: entities.RandomizerStatusCompleted}
	randomizerRepo.On("GetSessionByIDForUpdate", ctx, int64(9)).Return(done, nil)

	_, err := svc.RunDraw(ctx, 9)

	assert.True(t, errs.IsInvalidState(err))
	itemRepo.AssertNotCalled(t, "DecrementQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyProof_DetectsTamperedSeed(t *testing.T) {
	proof := &entities.RandomizerProof{
		Seed:     "forged",
		SeedHash: "0000",
		Roll:     0.5,
	}

	assert.True(t, errs.IsValidation(VerifyProof(proof)))
}
