package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"time"

	"clanhall/domain/entities"
	"clanhall/domain/errs"
	"clanhall/domain/events"
	"clanhall/domain/interfaces"
	"clanhall/domain/utils"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultMinWeightBonus and DefaultMaxWeightBonus bound the draw weight
	// bonus. The weakest member on an axis gets the max bonus, the strongest
	// gets the min.
	DefaultMinWeightBonus = 0.0
	DefaultMaxWeightBonus = 1.0

	seedBytes = 32
)

type randomizerService struct {
	randomizerRepo interfaces.RandomizerRepository
	memberRepo     interfaces.MemberRepository
	inventory      interfaces.InventoryService
	auditRepo      interfaces.AuditRepository
	eventPublisher interfaces.EventPublisher
	minBonus       float64
	maxBonus       float64
}

// NewRandomizerService creates a new randomizer service. minBonus and
// maxBonus configure the weight bonus range; passing equal values gives
// every member the same weight.
func NewRandomizerService(
	randomizerRepo interfaces.RandomizerRepository,
	memberRepo interfaces.MemberRepository,
	inventory interfaces.InventoryService,
	auditRepo interfaces.AuditRepository,
	eventPublisher interfaces.EventPublisher,
	minBonus, maxBonus float64,
) interfaces.RandomizerService {
	if maxBonus < minBonus {
		minBonus, maxBonus = maxBonus, minBonus
	}
	return &randomizerService{
		randomizerRepo: randomizerRepo,
		memberRepo:     memberRepo,
		inventory:      inventory,
		auditRepo:      auditRepo,
		eventPublisher: eventPublisher,
		minBonus:       minBonus,
		maxBonus:       maxBonus,
	}
}

// CreateSession computes weighted entries for every clan member, commits a
// seed and publishes its hash. The seed itself stays hidden until RunDraw.
func (s *randomizerService) CreateSession(ctx context.Context, clanID, itemID, quantity int64) (*entities.RandomizerSession, error) {
	if quantity <= 0 {
		return nil, errs.Validationf("draw quantity %d must be positive", quantity)
	}

	item, err := s.inventory.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, errs.NotFound("item", itemID)
	}
	if !item.HasStock(quantity) {
		return nil, errs.Validationf("item %d has %d in stock, draw needs %d", itemID, item.Quantity, quantity)
	}

	members, err := s.memberRepo.ListByClan(ctx, clanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clan members: %w", err)
	}
	if len(members) == 0 {
		return nil, errs.Validationf("clan %d has no eligible members", clanID)
	}

	seed, seedHash, err := commitSeed()
	if err != nil {
		return nil, fmt.Errorf("failed to generate seed: %w", err)
	}

	session := &entities.RandomizerSession{
		ClanID:   clanID,
		ItemID:   itemID,
		Quantity: quantity,
		Seed:     seed,
		SeedHash: seedHash,
		Status:   entities.RandomizerStatusPending,
	}
	if err := s.randomizerRepo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	weights := ComputeWeights(members, s.minBonus, s.maxBonus)
	entries := make([]*entities.RandomizerEntry, len(members))
	for i, m := range members {
		entries[i] = &entities.RandomizerEntry{
			SessionID:   session.ID,
			MemberID:    m.ID,
			CombatPower: m.CombatPower,
			Level:       m.Level,
			Weight:      weights[m.ID],
		}
	}
	if err := s.randomizerRepo.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to create entries: %w", err)
	}

	s.publish(events.RandomizerStartedEvent{
		SessionID: session.ID,
		ClanID:    clanID,
		ItemID:    itemID,
		SeedHash:  seedHash,
	})

	utils.RecordAudit(ctx, s.auditRepo, &entities.AuditEntry{
		ClanID:     clanID,
		Action:     "randomizer.create",
		EntityType: "randomizer_session",
		EntityID:   session.ID,
		After:      map[string]any{"item_id": itemID, "quantity": quantity, "seed_hash": seedHash},
	})

	log.WithFields(log.Fields{
		"sessionID": session.ID,
		"clanID":    clanID,
		"entries":   len(entries),
	}).Info("Randomizer session created")
	return session, nil
}

// RunDraw reveals the seed, derives the roll and selects the winner. The
// persisted proof lets any third party recompute the same winner offline.
func (s *randomizerService) RunDraw(ctx context.Context, sessionID int64) (*interfaces.DrawResult, error) {
	session, err := s.randomizerRepo.GetSessionByIDForUpdate(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, errs.NotFound("randomizer session", sessionID)
	}
	if session.Status != entities.RandomizerStatusPending {
		return nil, errs.InvalidStatef("session %d is %s, draw already ran", sessionID, session.Status)
	}

	entries, err := s.randomizerRepo.GetEntriesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, errs.InvalidStatef("session %d has no entries", sessionID)
	}

	roll := RollFromSeed(session.Seed)
	proofEntries, winnerID := selectWinner(entries, roll)

	if err := s.inventory.DecrementQuantity(ctx, session.ItemID, session.Quantity); err != nil {
		return nil, fmt.Errorf("failed to decrement item stock: %w", err)
	}

	result := &entities.RandomizerResult{
		SessionID:      sessionID,
		WinnerMemberID: winnerID,
		Roll:           roll,
		Proof: entities.RandomizerProof{
			Seed:           session.Seed,
			SeedHash:       session.SeedHash,
			Roll:           roll,
			Entries:        proofEntries,
			WinnerMemberID: winnerID,
		},
	}
	if err := s.randomizerRepo.CreateResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to create result: %w", err)
	}

	now := time.Now().UTC()
	session.Status = entities.RandomizerStatusCompleted
	session.CompletedAt = &now
	if err := s.randomizerRepo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	s.publish(events.RandomizerFinishedEvent{
		SessionID:      sessionID,
		ClanID:         session.ClanID,
		WinnerMemberID: winnerID,
		Roll:           roll,
	})

	utils.RecordAudit(ctx, s.auditRepo, &entities.AuditEntry{
		ClanID:     session.ClanID,
		Action:     "randomizer.draw",
		EntityType: "randomizer_session",
		EntityID:   sessionID,
		After:      map[string]any{"winner_member_id": winnerID, "roll": roll},
	})

	log.WithFields(log.Fields{
		"sessionID": sessionID,
		"winnerID":  winnerID,
		"roll":      roll,
	}).Info("Randomizer draw completed")
	return &interfaces.DrawResult{Session: session, Result: result}, nil
}

func (s *randomizerService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish event")
	}
}

// ComputeWeights returns weight = 1 + bonus per member, where the bonus
// interpolates between minBonus and maxBonus on the member's inverse
// normalized rank across combat power and level: weaker and lower-level
// members get the larger bonus. A fully tied axis yields the midpoint bonus.
func ComputeWeights(members []*entities.Member, minBonus, maxBonus float64) map[int64]float64 {
	power := axisScores(members, func(m *entities.Member) float64 { return float64(m.CombatPower) })
	level := axisScores(members, func(m *entities.Member) float64 { return float64(m.Level) })

	weights := make(map[int64]float64, len(members))
	for _, m := range members {
		score := (power[m.ID] + level[m.ID]) / 2
		bonus := minBonus + score*(maxBonus-minBonus)
		weights[m.ID] = 1 + bonus
	}
	return weights
}

// axisScores maps each member to an inverse normalized position in [0,1]:
// the lowest value scores 1, the highest 0, ties all at 0.5 when the axis
// has no spread.
func axisScores(members []*entities.Member, value func(*entities.Member) float64) map[int64]float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, m := range members {
		v := value(m)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	scores := make(map[int64]float64, len(members))
	for _, m := range members {
		if hi == lo {
			scores[m.ID] = 0.5
			continue
		}
		scores[m.ID] = (hi - value(m)) / (hi - lo)
	}
	return scores
}

// RollFromSeed derives the deterministic roll in [0,1) from the committed
// seed: the first eight bytes of SHA-256(seed) read as a big-endian integer,
// scaled by 2^64.
func RollFromSeed(seed string) float64 {
	sum := sha256.Sum256([]byte(seed))
	n := binary.BigEndian.Uint64(sum[:8])
	return float64(n) / float64(1<<63) / 2
}

// selectWinner walks entries in member ID order accumulating normalized
// shares until the cumulative share reaches the roll.
func selectWinner(entries []*entities.RandomizerEntry, roll float64) ([]entities.ProofEntry, int64) {
	ordered := make([]*entities.RandomizerEntry, len(entries))
	copy(ordered, entries)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].MemberID < ordered[j].MemberID })

	var total float64
	for _, e := range ordered {
		total += e.Weight
	}

	proof := make([]entities.ProofEntry, len(ordered))
	winnerID := ordered[len(ordered)-1].MemberID
	cumulative := 0.0
	found := false
	for i, e := range ordered {
		share := e.Weight / total
		proof[i] = entities.ProofEntry{MemberID: e.MemberID, Weight: e.Weight, Share: share}
		cumulative += share
		if !found && cumulative >= roll {
			winnerID = e.MemberID
			found = true
		}
	}
	return proof, winnerID
}

// VerifyProof recomputes the winner from a published proof and reports
// whether the proof is internally consistent.
func VerifyProof(proof *entities.RandomizerProof) error {
	sum := sha256.Sum256([]byte(proof.Seed))
	if hex.EncodeToString(sum[:]) != proof.SeedHash {
		return errs.Validationf("seed does not match committed hash")
	}
	if roll := RollFromSeed(proof.Seed); roll != proof.Roll {
		return errs.Validationf("roll %v does not match seed-derived roll %v", proof.Roll, roll)
	}

	cumulative := 0.0
	for _, e := range proof.Entries {
		cumulative += e.Share
		if cumulative >= proof.Roll {
			if e.MemberID != proof.WinnerMemberID {
				return errs.Validationf("recomputed winner %d does not match recorded winner %d", e.MemberID, proof.WinnerMemberID)
			}
			return nil
		}
	}
	if len(proof.Entries) > 0 && proof.Entries[len(proof.Entries)-1].MemberID == proof.WinnerMemberID {
		return nil
	}
	return errs.Validationf("proof entries do not reach the recorded roll")
}

func commitSeed() (seed, hash string, err error) {
	buf := make([]byte, seedBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	seed = hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(seed))
	return seed, hex.EncodeToString(sum[:]), nil
}
